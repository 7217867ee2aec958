package exportclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/ledgerview/internal/endpoints"
)

func TestDownloadCSVWritesFile(t *testing.T) {
	const body = "id,amount\n1,-4200\n"

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		path, _ := endpoints.Path(endpoints.TransactionExportCSV)
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "acc_1", r.URL.Query().Get("account_id"))

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions-20260829.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(srv.URL)

	query := url.Values{}
	query.Set("account_id", "acc_1")

	path, err := c.DownloadCSV(context.Background(), query, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transactions-20260829.csv"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assertOnlyFile(t, dir, "transactions-20260829.csv")
}

func TestDownloadCSVFallbackFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("id\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := New(srv.URL).DownloadCSV(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transactions.csv"), path)
}

func TestDownloadCSVFailureLeavesNothing(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"detailed server side reason"}`))
		}))

		dir := t.TempDir()
		path, err := New(srv.URL).DownloadCSV(context.Background(), nil, dir)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExportFailed)
		assert.EqualError(t, err, "export failed")
		assert.Empty(t, path)

		// one request, no retry
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries, "status %d left an artifact behind", status)

		srv.Close()
	}
}

func TestDownloadCSVRejectsTraversalFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="../../etc/passwd"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("id\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := New(srv.URL).DownloadCSV(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name())
}
