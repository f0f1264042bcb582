package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		Username:  "kobo-user",
		Password:  "s3cret",
	})
}

func TestFetchText_SendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	text, err := newTestFetcher().FetchText(context.Background(), srv.URL+"/data.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", text)
}

func TestFetchText_SendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "kobo-user" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	text, err := newTestFetcher().FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestFetchText_NonOKStatus(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher().FetchText(context.Background(), srv.URL+"/data.csv")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), attempts.Load(), "non-200 responses are not retried")
}

func TestFetchText_ServerErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher().FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchText_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=ISO-8859-1")
		// "Café" in Latin-1.
		w.Write([]byte{'C', 'a', 'f', 0xE9})
	}))
	defer srv.Close()

	text, err := newTestFetcher().FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café", text)
}

func TestFetchText_StripsBOM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("\xef\xbb\xbfOutlet Code,Price\n"))
	}))
	defer srv.Close()

	text, err := newTestFetcher().FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Outlet Code,Price\n", text)
}

func TestFetchText_UnknownCharsetFallsBackToUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=made-up")
		w.Write([]byte("héllo"))
	}))
	defer srv.Close()

	text, err := newTestFetcher().FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)
}

func TestFetchText_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("never read"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().FetchText(ctx, srv.URL)
	require.Error(t, err)
}

func TestFetchText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: 20 * time.Millisecond})
	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, 60*time.Second, f.opts.Timeout)
	assert.Equal(t, "kobo-sync/1.0", f.opts.UserAgent)
	assert.Equal(t, 60*time.Second, f.client.Timeout)
}
