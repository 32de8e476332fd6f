package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkaul/serverchallenge/internal/config"
	"github.com/pkaul/serverchallenge/internal/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "example.txt"), []byte("hello"), 0o644))

	cfg := config.Default()
	cfg.Static.DocumentRoot = root
	require.NoError(t, cfg.Validate())

	s, err := New(cfg, logger.NewDiscard())
	require.NoError(t, err)
	return s
}

func TestServerServesContent(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/example.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestServerExposesMetrics(t *testing.T) {
	s := newTestServer(t)

	// One content request so the request counters have samples.
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/example.txt", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "serverchallenge_http_requests_total")
}

func TestServerRejectsBadDocumentRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Static.DocumentRoot = filepath.Join(t.TempDir(), "gone")

	_, err := New(cfg, logger.NewDiscard())
	require.Error(t, err)
}
