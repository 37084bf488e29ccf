package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/foresight/internal/contracts"
)

// HistorySidecar bundles everything needed to reproduce a training run
type HistorySidecar struct {
	History *contracts.TrainingHistory `json:"history"`
	Model   string                     `json:"model"`
	Dataset string                     `json:"dataset"`
	Args    contracts.Params           `json:"args"`
}

// persist writes the model weights and the history sidecar. Each
// artifact goes through temp-then-rename so an interruption leaves the
// prior artifact or nothing, never a corrupt partial file.
func (c *Coordinator) persist(m contracts.ForecastModel, history *contracts.TrainingHistory, datasetPath string, opts Options) error {
	base := artifactBase(opts.SavePrefix, m)

	modelPath := base + ModelExt
	if err := atomically(modelPath, m.Save); err != nil {
		return ArtifactWriteError{Model: m.Name(), Path: modelPath, Err: err}
	}

	sidecar := HistorySidecar{
		History: history,
		Model:   m.Name(),
		Dataset: datasetPath,
		Args:    opts.Args,
	}
	historyPath := base + HistoryExt
	if err := atomically(historyPath, func(path string) error {
		data, err := json.MarshalIndent(sidecar, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}); err != nil {
		return ArtifactWriteError{Model: m.Name(), Path: historyPath, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"model":   m.Name(),
		"weights": modelPath,
		"history": historyPath,
	}).Info("Artifacts saved")

	return nil
}

// atomically runs write against a temp file in the target's directory,
// then renames it over the target
func atomically(target string, write func(path string) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadSidecar reads a history sidecar artifact
func LoadSidecar(path string) (*HistorySidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history sidecar: %w", err)
	}

	var sidecar HistorySidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, fmt.Errorf("parse history sidecar %s: %w", path, err)
	}
	return &sidecar, nil
}

// record appends the outcome to the run log; failures only log
func (c *Coordinator) record(ctx context.Context, outcome ModelOutcome, datasetPath string, opts Options) {
	run := contracts.RunRecord{
		Model:   outcome.Model,
		Dataset: datasetPath,
		Args:    formatArgs(opts.Args),
		Trained: outcome.Trained,
	}
	if outcome.History != nil {
		run.FinalLoss, _ = outcome.History.Last("loss")
		run.FinalValLoss, _ = outcome.History.Last("val_loss")
	}
	if outcome.Sim != nil {
		run.SimBalance = outcome.Sim.FinalBalance
		run.SimTrades = outcome.Sim.Trades
	}

	if _, err := c.runs.SaveRun(ctx, run); err != nil {
		c.logger.WithError(err).WithField("model", outcome.Model).Warn("Run log insert failed")
	}
}

func formatArgs(args contracts.Params) string {
	out := ""
	for key, value := range args {
		if out != "" {
			out += ","
		}
		out += key + "=" + value.String()
	}
	return out
}
