package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTitleFetcher(timeout time.Duration) *TitleFetcher {
	return NewTitleFetcher(&http.Client{}, "TestAgent/1.0", timeout)
}

func TestTitleFetcherReturnsStrippedTitle(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>\n   Foo   Page \n</title></head><body>hi</body></html>"))
	}))
	defer server.Close()

	result := newTestTitleFetcher(time.Second).Run(context.Background(), server.URL)

	require.True(t, result.OK(), "unexpected skip: %s %v", result.Reason, result.Err)
	assert.Equal(t, "Foo Page", result.Title)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "TestAgent/1.0", userAgent)
	assert.NotEmpty(t, result.Body)
}

func TestTitleFetcherSkipReasons(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  SkipReason
		status  int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("<html><head><title>Not Found</title></head></html>"))
			},
			reason: ReasonBadStatus,
			status: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			reason: ReasonBadStatus,
			status: http.StatusInternalServerError,
		},
		{
			name: "empty title",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><head><title>   </title></head><body>content</body></html>"))
			},
			reason: ReasonNoTitle,
			status: http.StatusOK,
		},
		{
			name: "missing title",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><body><h1>Heading only</h1></body></html>"))
			},
			reason: ReasonNoTitle,
			status: http.StatusOK,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
			reason: ReasonTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			result := newTestTitleFetcher(100*time.Millisecond).Run(context.Background(), server.URL)

			assert.False(t, result.OK())
			assert.Empty(t, result.Title)
			assert.Nil(t, result.Body)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.Error(t, result.Err)
		})
	}
}

func TestTitleFetcherConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestTitleFetcher(time.Second).Run(context.Background(), url)

	assert.Equal(t, ReasonFetchError, result.Reason)
	assert.Error(t, result.Err)
}

func TestTitleFetcherDecodesDeclaredCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1
		w.Write([]byte("<html><head><title>Caf\xe9</title></head></html>"))
	}))
	defer server.Close()

	result := newTestTitleFetcher(time.Second).Run(context.Background(), server.URL)

	require.True(t, result.OK())
	assert.Equal(t, "Café", result.Title)
}

func TestTitleFetcherUsesFirstTitleElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Primary</title></head><body><svg><title>Icon</title></svg></body></html>`))
	}))
	defer server.Close()

	result := newTestTitleFetcher(time.Second).Run(context.Background(), server.URL)

	require.True(t, result.OK())
	assert.Equal(t, "Primary", result.Title)
}
