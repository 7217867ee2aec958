// Package exportclient downloads rendered exports over HTTP and lands
// them on disk atomically. A failed download never leaves a file behind.
package exportclient

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smallbiznis/ledgerview/internal/endpoints"
)

// ErrExportFailed is returned for any non-2xx response. The response
// body is intentionally not inspected, the caller gets the same error
// whatever the server said.
var ErrExportFailed = errors.New("export failed")

const defaultFilename = "transactions.csv"

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DownloadCSV issues a single GET against the transaction export
// endpoint and writes the body to destDir. It does not retry. The
// returned path points at the finished file.
func (c *Client) DownloadCSV(ctx context.Context, query url.Values, destDir string) (string, error) {
	path, ok := endpoints.Path(endpoints.TransactionExportCSV)
	if !ok {
		return "", ErrExportFailed
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ErrExportFailed
	}

	dest := filepath.Join(destDir, filenameFromResponse(resp))

	// Stream to a temp file first. The final name only ever exists as
	// a complete download.
	tmp, err := os.CreateTemp(destDir, ".export-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return dest, nil
}

func filenameFromResponse(resp *http.Response) string {
	cd := resp.Header.Get("Content-Disposition")
	if cd == "" {
		return defaultFilename
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return defaultFilename
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) {
		return defaultFilename
	}
	return name
}
