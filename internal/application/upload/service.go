package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/foodshare/foodshare-api/internal/pkg/id"
)

// MaxImageSize is the largest accepted upload, 5 MiB.
const MaxImageSize = 5 << 20

// MaxImagesPerRequest caps how many files a bulk upload accepts.
const MaxImagesPerRequest = 5

const keyPrefix = "images/"

// ObjectStore is the blob storage surface for listing images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadInput is one incoming image file.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// UploadedImage is the response body of a successful upload. PublicID is
// what delete takes back.
type UploadedImage struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

type Service interface {
	UploadImage(ctx context.Context, in UploadInput) (*UploadedImage, error)
	UploadImages(ctx context.Context, ins []UploadInput) ([]UploadedImage, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type service struct {
	store ObjectStore
}

func NewService(store ObjectStore) Service {
	return &service{store: store}
}

func (s *service) UploadImage(ctx context.Context, in UploadInput) (*UploadedImage, error) {
	if in.Size > MaxImageSize {
		return nil, fmt.Errorf("image exceeds the 5MB limit: %w", domain.ErrBadRequest)
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, fmt.Errorf("only image files are accepted: %w", domain.ErrBadRequest)
	}

	// Client filenames are untrusted; only the extension survives.
	ext := strings.ToLower(filepath.Ext(in.Filename))
	key := keyPrefix + id.New() + ext

	url, err := s.store.Upload(ctx, key, io.LimitReader(in.Reader, MaxImageSize), in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	return &UploadedImage{
		ImageURL: url,
		PublicID: strings.TrimPrefix(key, keyPrefix),
	}, nil
}

// UploadImages stores each file in turn. Any rejection or storage failure
// aborts the batch; already-stored objects are removed best effort so a
// failed batch leaves nothing behind.
func (s *service) UploadImages(ctx context.Context, ins []UploadInput) ([]UploadedImage, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("no image files provided: %w", domain.ErrBadRequest)
	}
	if len(ins) > MaxImagesPerRequest {
		return nil, fmt.Errorf("at most %d images per request: %w", MaxImagesPerRequest, domain.ErrBadRequest)
	}

	images := make([]UploadedImage, 0, len(ins))
	for _, in := range ins {
		img, err := s.UploadImage(ctx, in)
		if err != nil {
			for _, stored := range images {
				if derr := s.DeleteImage(ctx, stored.PublicID); derr != nil {
					slog.Warn("batch upload cleanup failed", "public_id", stored.PublicID, "err", derr)
				}
			}
			return nil, err
		}
		images = append(images, *img)
	}
	return images, nil
}

func (s *service) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" || strings.Contains(publicID, "/") {
		return fmt.Errorf("invalid image id: %w", domain.ErrBadRequest)
	}
	return s.store.Delete(ctx, keyPrefix+publicID)
}
