package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/catalog-ranker/pkg/metrics"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth_AlwaysAlive(t *testing.T) {
	s := NewServer(0, map[string]Checker{
		"database": func() error { return errors.New("down") },
	})

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/health?verbose=true")
	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "unhealthy: down", status.Checks["database"])
}

func TestReadiness(t *testing.T) {
	var redisErr error
	s := NewServer(0, map[string]Checker{
		"database": func() error { return nil },
		"redis":    func() error { return redisErr },
	})

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/ready").Code)

	s.SetReady(true)
	rec := get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status ReadinessStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.Ready)
	assert.Equal(t, "healthy", status.Checks["redis"])

	redisErr = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/ready").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.ScoreCacheHits.Inc()
	s := NewServer(0, nil)

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "score_cache_hits_total"))
}
