package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/link-comb/app/tasks"
)

// MockScheduler implements tasks.TaskSchedulerInterface for handler tests
type MockScheduler struct {
	report     *tasks.RunReport
	enqueueErr error
	enqueued   int
}

func (m *MockScheduler) Start() {}
func (m *MockScheduler) Stop()  {}

func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued++
	return nil
}

func (m *MockScheduler) EnqueueRun() (tasks.TaskInterface, error) {
	task := &tasks.BuildFeedTask{Task: tasks.NewTask(tasks.TaskTypeBuildFeed)}
	if err := m.EnqueueTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (m *MockScheduler) LastReport() *tasks.RunReport {
	return m.report
}

func newTestServer(t *testing.T, scheduler *MockScheduler, apiKey string) (http.Handler, string) {
	t.Helper()
	outputPath := filepath.Join(t.TempDir(), "links_feed.xml")
	handler := NewHandler(scheduler, outputPath, "test")
	return NewServer(handler, apiKey), outputPath
}

func serve(server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestGetFeedBeforeFirstRun(t *testing.T) {
	server, _ := newTestServer(t, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/feed.xml", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFeedServesFile(t *testing.T) {
	finished := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	scheduler := &MockScheduler{report: &tasks.RunReport{
		StartedAt:    finished.Add(-time.Minute),
		FinishedAt:   finished,
		ItemsWritten: 3,
	}}
	server, outputPath := newTestServer(t, scheduler, "")

	content := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Links</title></channel></rss>`
	require.NoError(t, os.WriteFile(outputPath, []byte(content), 0644))

	w := serve(server, http.MethodGet, "/feed.xml", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "3", w.Header().Get("X-Feed-Items"))
	assert.Equal(t, finished.Format(time.RFC3339), w.Header().Get("X-Last-Updated"))
	assert.Equal(t, content, w.Body.String())
}

func TestHealthReportsLastRun(t *testing.T) {
	now := time.Now()
	scheduler := &MockScheduler{report: &tasks.RunReport{
		TaskID:           "run-1",
		StartedAt:        now.Add(-time.Second),
		FinishedAt:       now,
		EntriesProcessed: 2,
		LinksExtracted:   4,
		Links: []tasks.LinkResult{
			{URL: "https://a.test/1", Status: tasks.LinkAdded},
			{URL: "https://a.test/2", Status: tasks.LinkSkipped},
			{URL: "https://a.test/1", Status: tasks.LinkDuplicate},
		},
		ItemsWritten: 1,
		Err:          errors.New("failed to write link feed"),
	}}
	server, _ := newTestServer(t, scheduler, "")

	w := serve(server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "degraded", body["status"])
	lastRun, ok := body["last_run"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "run-1", lastRun["id"])
	assert.Equal(t, float64(1), lastRun["links_added"])
	assert.Equal(t, float64(1), lastRun["links_skipped"])
	assert.Equal(t, float64(1), lastRun["links_duplicate"])
	assert.Equal(t, "failed to write link feed", lastRun["error"])
}

func TestHealthWithoutRuns(t *testing.T) {
	server, _ := newTestServer(t, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "last_run")
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, &MockScheduler{}, "")

	w := serve(server, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRefreshRequiresAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusAccepted},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := &MockScheduler{}
			server, _ := newTestServer(t, scheduler, "secret")

			w := serve(server, http.MethodPost, "/api/refresh", tt.headers)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusAccepted {
				assert.Equal(t, 1, scheduler.enqueued)
			} else {
				assert.Zero(t, scheduler.enqueued)
			}
		})
	}
}

func TestRefreshWhenRunAlreadyQueued(t *testing.T) {
	scheduler := &MockScheduler{enqueueErr: tasks.ErrQueueFull}
	server, _ := newTestServer(t, scheduler, "secret")

	w := serve(server, http.MethodPost, "/api/refresh", map[string]string{"X-API-Key": "secret"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshDisabledWithoutAPIKey(t *testing.T) {
	server, _ := newTestServer(t, &MockScheduler{}, "")

	w := serve(server, http.MethodPost, "/api/refresh", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshIsRateLimited(t *testing.T) {
	scheduler := &MockScheduler{}
	server, _ := newTestServer(t, scheduler, "secret")
	headers := map[string]string{"X-API-Key": "secret"}

	for i := 0; i < refreshBurst; i++ {
		w := serve(server, http.MethodPost, "/api/refresh", headers)
		assert.Equal(t, http.StatusAccepted, w.Code)
	}

	w := serve(server, http.MethodPost, "/api/refresh", headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	assert.Equal(t, refreshBurst, scheduler.enqueued)
}

func TestRefreshRejectedKeyDoesNotSpendTokens(t *testing.T) {
	scheduler := &MockScheduler{}
	server, _ := newTestServer(t, scheduler, "secret")

	for i := 0; i < refreshBurst+2; i++ {
		w := serve(server, http.MethodPost, "/api/refresh", map[string]string{"X-API-Key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := serve(server, http.MethodPost, "/api/refresh", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}
