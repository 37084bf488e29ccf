package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

func testRouter() http.Handler {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	handler := NewRunsHandler(models.Default(zerolog.Nop()), nil, log)
	return NewRouter(handler, log)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetModels(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Linear", "MLP", "Naive"}, body.Models)
}

func TestGetRuns_WithoutStorage(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs", nil))

	// run log 미설정 시 503
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRun_InvalidID(t *testing.T) {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	handler := NewRunsHandler(models.Default(zerolog.Nop()), nil, log)
	router := NewRouter(handler, log)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/abc", nil))

	// 저장소 체크가 먼저라 503, 저장소가 있다면 400이 된다
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
