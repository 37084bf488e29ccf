package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/internal/runlog"
	"github.com/wonny/foresight/pkg/logger"
)

// RunsHandler serves the training-run audit trail
type RunsHandler struct {
	registry *models.Registry
	runs     *runlog.Repository // nil이면 run log 비활성
	logger   *logger.Logger
}

// NewRunsHandler creates a handler over the registry and run log
func NewRunsHandler(registry *models.Registry, runs *runlog.Repository, log *logger.Logger) *RunsHandler {
	return &RunsHandler{registry: registry, runs: runs, logger: log}
}

// GetModels lists the available forecast models in registry order
func (h *RunsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models": h.registry.Names(),
	})
}

// GetRuns lists recent training runs, optionally filtered by model
func (h *RunsHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run log storage is not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), r.URL.Query().Get("model"), limit)
	if err != nil {
		h.logger.WithError(err).Error("List runs failed")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// GetRun returns a single training run by id
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run log storage is not configured")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Get run failed")
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
