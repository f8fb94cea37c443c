package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodshare/foodshare-api/internal/application/upload"
)

// UploadHandler handles listing image upload and removal.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer f.Close()

	img, err := h.svc.UploadImage(r.Context(), upload.UploadInput{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// ImagesEnvelope is the response body of a bulk upload.
type ImagesEnvelope struct {
	Images []upload.UploadedImage `json:"images"`
}

func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxImagesPerRequest * upload.MaxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "missing images field")
		return
	}

	ins := make([]upload.UploadInput, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable image file")
			return
		}
		defer f.Close()
		ins = append(ins, upload.UploadInput{
			Reader:      f,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		})
	}

	images, err := h.svc.UploadImages(r.Context(), ins)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImagesEnvelope{Images: images})
}

func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteImage(r.Context(), chi.URLParam(r, "publicId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "image deleted"})
}
