package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/foodshare/foodshare-api/internal/application/upload"
	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploadSvc struct{ mock.Mock }

func (m *mockUploadSvc) UploadImage(ctx context.Context, in upload.UploadInput) (*upload.UploadedImage, error) {
	args := m.Called(ctx, in)
	if img, _ := args.Get(0).(*upload.UploadedImage); img != nil {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadSvc) UploadImages(ctx context.Context, ins []upload.UploadInput) ([]upload.UploadedImage, error) {
	args := m.Called(ctx, ins)
	if imgs, _ := args.Get(0).([]upload.UploadedImage); imgs != nil {
		return imgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadSvc) DeleteImage(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

// multipartImage builds a multipart body with one "image" part.
func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadImage_HappyPath(t *testing.T) {
	svc := &mockUploadSvc{}
	var got upload.UploadInput
	svc.On("UploadImage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(upload.UploadInput)
	}).Return(&upload.UploadedImage{
		ImageURL: "https://bucket.s3.us-east-1.amazonaws.com/images/abc.png",
		PublicID: "abc.png",
	}, nil)
	h := NewUploadHandler(svc)

	body, contentType := multipartImage(t, "dinner.png", "image/png", []byte("fake-png"))
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.UploadImage(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "dinner.png", got.Filename)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, int64(len("fake-png")), got.Size)

	var resp upload.UploadedImage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "abc.png", resp.PublicID)
}

func TestUploadImage_MissingImageField(t *testing.T) {
	h := NewUploadHandler(&mockUploadSvc{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	h.UploadImage(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadImage_ServiceRejectionIs400(t *testing.T) {
	svc := &mockUploadSvc{}
	svc.On("UploadImage", mock.Anything, mock.Anything).Return(nil, domain.ErrBadRequest)
	h := NewUploadHandler(svc)

	body, contentType := multipartImage(t, "script.sh", "application/x-sh", []byte("#!/bin/sh"))
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.UploadImage(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// multipartImages builds a multipart body with one "images" part per filename.
func multipartImages(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, filename := range filenames {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
		hdr.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadImages_HappyPath(t *testing.T) {
	svc := &mockUploadSvc{}
	var got []upload.UploadInput
	svc.On("UploadImages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([]upload.UploadInput)
	}).Return([]upload.UploadedImage{
		{ImageURL: "https://bucket.s3.us-east-1.amazonaws.com/images/a.jpg", PublicID: "a.jpg"},
		{ImageURL: "https://bucket.s3.us-east-1.amazonaws.com/images/b.jpg", PublicID: "b.jpg"},
	}, nil)
	h := NewUploadHandler(svc)

	body, contentType := multipartImages(t, "lunch.jpg", "dinner.jpg")
	r := httptest.NewRequest(http.MethodPost, "/api/upload/images", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.UploadImages(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, got, 2)
	assert.Equal(t, "lunch.jpg", got[0].Filename)
	assert.Equal(t, "dinner.jpg", got[1].Filename)

	var resp ImagesEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Images, 2)
	assert.Equal(t, "b.jpg", resp.Images[1].PublicID)
}

func TestUploadImages_MissingImagesField(t *testing.T) {
	h := NewUploadHandler(&mockUploadSvc{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload/images", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	h.UploadImages(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteImage_HappyPath(t *testing.T) {
	svc := &mockUploadSvc{}
	svc.On("DeleteImage", mock.Anything, "abc.png").Return(nil)
	h := NewUploadHandler(svc)

	r := httptest.NewRequest(http.MethodDelete, "/api/upload/image/abc.png", nil)
	r = withChiParam(r, "publicId", "abc.png")
	rr := httptest.NewRecorder()
	h.DeleteImage(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
