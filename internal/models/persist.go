package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// weightsFile is the on-disk shape shared by all model types
type weightsFile struct {
	Model   string      `json:"model"`
	Weights interface{} `json:"weights"`
}

// saveWeights serializes weights to path, tagged with the model name
func saveWeights(path, model string, weights interface{}) error {
	data, err := json.MarshalIndent(weightsFile{Model: model, Weights: weights}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s weights: %w", model, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s weights: %w", model, err)
	}
	return nil
}

// loadWeights deserializes weights from path into out, rejecting files
// saved by a different model type
func loadWeights(path, model string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s weights: %w", model, err)
	}

	var file struct {
		Model   string          `json:"model"`
		Weights json.RawMessage `json:"weights"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s weights: %w", model, err)
	}
	if file.Model != model {
		return fmt.Errorf("weight file %s belongs to model %s, not %s", path, file.Model, model)
	}

	if err := json.Unmarshal(file.Weights, out); err != nil {
		return fmt.Errorf("decode %s weights: %w", model, err)
	}
	return nil
}

// mse computes mean squared error over aligned prediction/label rows
func mse(pred, labels [][]float64) float64 {
	if len(pred) == 0 {
		return 0
	}

	var sum float64
	var count int
	for i := range pred {
		for j := range pred[i] {
			diff := pred[i][j] - labels[i][j]
			sum += diff * diff
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
