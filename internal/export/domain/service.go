package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

type Request struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	Category  string
}

type Result struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Bytes    int64  `json:"bytes"`
}

// Service renders transaction exports. WriteCSV streams rows straight
// to w, the caller owns headers and must not write after an error.
type Service interface {
	WriteCSV(ctx context.Context, req Request, w io.Writer) (*Result, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
