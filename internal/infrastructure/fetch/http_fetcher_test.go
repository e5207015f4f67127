package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gritsee-inspector/internal/domain/entity"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(2*time.Second, 2*time.Second)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	payload := []byte("jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	path, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestHTTPFetcher_Non200IsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/missing.jpg")
	require.ErrorIs(t, err, entity.ErrFetch)
}

func TestHTTPFetcher_UnreachableHostIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/img.jpg")
	require.ErrorIs(t, err, entity.ErrFetch)
}

func TestHTTPFetcher_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Fetch(ctx, srv.URL+"/img.jpg")
	require.ErrorIs(t, err, entity.ErrFetch)
}
