package image

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrNotConfigured is returned when no upload backend was configured but
// a product form carried image bytes.
var ErrNotConfigured = errors.New("image storage not configured")

// Upload is a stored blob reference: the hosted URL plus the backend's
// id, kept so the blob can be destroyed when the product goes away.
type Upload struct {
	URL      string
	PublicID string
}

// Uploader moves image bytes to hosted storage and back out again.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (*Upload, error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an Uploader from a CLOUDINARY_URL-style DSN. An
// empty DSN yields a nil Uploader, which callers treat as "uploads
// disabled".
func NewCloudinary(dsn string) (Uploader, error) {
	if dsn == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(dsn)
	if err != nil {
		return nil, err
	}
	return &cloudinaryUploader{cld: cld}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, r io.Reader) (*Upload, error) {
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: "nexuscart/products"})
	if err != nil {
		return nil, err
	}
	return &Upload{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (u *cloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
