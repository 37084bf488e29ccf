package models

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// Linear is a multivariate linear regressor trained by mini-batch SGD.
// 가장 단순한 기준 모델.
type Linear struct {
	// weights[t] = coefficients for target t, last entry is the bias
	weights [][]float64
	log     zerolog.Logger
}

// NewLinear 새 선형 모델 생성
func NewLinear(log zerolog.Logger) *Linear {
	return &Linear{log: log.With().Str("component", "models.linear").Logger()}
}

func (m *Linear) Name() string { return "Linear" }

func (m *Linear) Schema() contracts.ParamSchema {
	return contracts.ParamSchema{
		"epochs": {contracts.ParamInt},
		"lr":     {contracts.ParamFloat, contracts.ParamInt},
		"batch":  {contracts.ParamInt},
	}
}

// Train fits the model on the train split, reporting loss per epoch and
// val_loss on the warm split
func (m *Linear) Train(ds *contracts.Dataset, args contracts.Params) (*contracts.TrainingHistory, error) {
	train := ds.Split(contracts.SplitTrain)
	warm := ds.Split(contracts.SplitWarm)
	if train.Len() == 0 {
		return nil, fmt.Errorf("linear: train split is empty")
	}

	epochs := args.Int("epochs", 50)
	lr := args.Float("lr", 0.05)
	batch := args.Int("batch", 16)
	if batch <= 0 {
		batch = 16
	}

	features := len(train.Features[0])
	targets := len(train.Labels[0])

	// 이어 학습(resume)이면 로드된 가중치에서 시작
	if len(m.weights) != targets || len(m.weights[0]) != features+1 {
		m.weights = zeros(targets, features+1)
	}

	history := contracts.NewTrainingHistory()
	for epoch := 0; epoch < epochs; epoch++ {
		for start := 0; start < train.Len(); start += batch {
			end := start + batch
			if end > train.Len() {
				end = train.Len()
			}
			m.step(train.Features[start:end], train.Labels[start:end], lr)
		}

		pred, _ := m.Predict(train.Features)
		history.Append("loss", mse(pred, train.Labels))

		if warm.Len() > 0 {
			warmPred, _ := m.Predict(warm.Features)
			history.Append("val_loss", mse(warmPred, warm.Labels))
		}
	}

	loss, _ := history.Last("loss")
	m.log.Info().Int("epochs", epochs).Float64("loss", loss).Msg("training completed")

	return history, nil
}

// step applies one gradient update over a mini-batch
func (m *Linear) step(features, labels [][]float64, lr float64) {
	scale := lr / float64(len(features))

	for i, x := range features {
		for t := range m.weights {
			// residual = prediction - label
			residual := m.weights[t][len(x)]
			for j, v := range x {
				residual += m.weights[t][j] * v
			}
			residual -= labels[i][t]

			for j, v := range x {
				m.weights[t][j] -= scale * residual * v
			}
			m.weights[t][len(x)] -= scale * residual
		}
	}
}

// Predict runs inference; rows align with the input samples
func (m *Linear) Predict(features [][]float64) ([][]float64, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("linear: model is not trained")
	}

	out := make([][]float64, len(features))
	for i, x := range features {
		row := make([]float64, len(m.weights))
		for t := range m.weights {
			if len(x)+1 != len(m.weights[t]) {
				return nil, fmt.Errorf("linear: sample has %d features, model expects %d", len(x), len(m.weights[t])-1)
			}
			v := m.weights[t][len(x)]
			for j, f := range x {
				v += m.weights[t][j] * f
			}
			row[t] = v
		}
		out[i] = row
	}
	return out, nil
}

// Save persists weights to path
func (m *Linear) Save(path string) error {
	return saveWeights(path, m.Name(), m.weights)
}

// Load restores weights from path
func (m *Linear) Load(path string) error {
	return loadWeights(path, m.Name(), &m.weights)
}

func zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
