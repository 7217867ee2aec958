package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

type StoreRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service interface {
	Store(ctx context.Context, req StoreRequest) (*Upload, error)
	List(ctx context.Context) ([]Upload, error)

	// Open returns the stored bytes for download. Caller closes.
	Open(ctx context.Context, id snowflake.ID) (io.ReadCloser, *Upload, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidFilename     = errors.New("invalid_filename")
	ErrUnsupportedType     = errors.New("unsupported_file_type")
	ErrFileTooLarge        = errors.New("file_too_large")
	ErrUploadNotFound      = errors.New("upload_not_found")
)
