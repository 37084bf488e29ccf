package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/foresight/internal/api"
	"github.com/wonny/foresight/internal/models"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `학습 이력 조회용 REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 모델 목록 / 학습 이력 조회 엔드포인트 제공

Endpoints:
  GET  /health            - Health check
  GET  /api/models        - 등록된 모델 목록
  GET  /api/runs          - 학습 이력 조회 (?model=, ?limit=)
  GET  /api/runs/{id}     - 단건 학습 이력 조회

Example:
  go run ./cmd/foresight serve
  go run ./cmd/foresight serve --port 8091`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Foresight API Server ===")

	ctx := cmd.Context()

	cfg, log, db, runs, err := initDeps(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	if runs == nil {
		log.Warn("DATABASE_URL not set, /api/runs endpoints will return 503")
	}

	registry := models.Default(log.Zerolog())
	handler := api.NewRunsHandler(registry, runs, log)
	router := api.NewRouter(handler, log)
	server := api.New(cfg, log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/models")
	fmt.Println("  GET  /api/runs")
	fmt.Println("  GET  /api/runs/{id}")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
