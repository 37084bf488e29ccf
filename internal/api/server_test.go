package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

func TestNew_ServerSettings(t *testing.T) {
	cfg := &config.Config{Env: "development", Port: "9090", LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)

	srv := New(cfg, log, http.NewServeMux())
	require.NotNil(t, srv.httpServer)

	assert.Equal(t, ":9090", srv.httpServer.Addr)
	// 리포트 응답이 커질 수 있어 write 타임아웃이 read보다 길어야 한다
	assert.Greater(t, srv.httpServer.WriteTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.httpServer.ReadHeaderTimeout)
}
