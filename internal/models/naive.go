package models

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// naiveWeights is the serializable state of the baseline
type naiveWeights struct {
	Alpha  float64   `json:"alpha"`
	Scale  []float64 `json:"scale"`
	Offset []float64 `json:"offset"`
}

// Naive is an exponential-smoothing baseline: each sample's feature
// window is smoothed into a single level, then mapped to the targets by
// a least-squares affine fit. 다른 모델의 성능 하한선 역할.
type Naive struct {
	w   naiveWeights
	log zerolog.Logger
}

// NewNaive 새 베이스라인 모델 생성
func NewNaive(log zerolog.Logger) *Naive {
	return &Naive{log: log.With().Str("component", "models.naive").Logger()}
}

func (m *Naive) Name() string { return "Naive" }

func (m *Naive) Schema() contracts.ParamSchema {
	return contracts.ParamSchema{
		"alpha": {contracts.ParamFloat},
	}
}

// level smooths one feature window into a single scalar
func (m *Naive) level(x []float64, alpha float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := x[0]
	for _, v := range x[1:] {
		s = alpha*v + (1-alpha)*s
	}
	return s
}

// Train fits the affine map level → target by least squares.
// 반복 학습이 아니므로 history는 한 epoch 분량이다.
func (m *Naive) Train(ds *contracts.Dataset, args contracts.Params) (*contracts.TrainingHistory, error) {
	train := ds.Split(contracts.SplitTrain)
	warm := ds.Split(contracts.SplitWarm)
	if train.Len() == 0 {
		return nil, fmt.Errorf("naive: train split is empty")
	}

	alpha := args.Float("alpha", 0.3)
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("naive: alpha must be in (0, 1], got %g", alpha)
	}

	targets := len(train.Labels[0])
	levels := make([]float64, train.Len())
	var meanLevel float64
	for i, x := range train.Features {
		levels[i] = m.level(x, alpha)
		meanLevel += levels[i]
	}
	meanLevel /= float64(train.Len())

	var variance float64
	for _, s := range levels {
		variance += (s - meanLevel) * (s - meanLevel)
	}

	m.w = naiveWeights{
		Alpha:  alpha,
		Scale:  make([]float64, targets),
		Offset: make([]float64, targets),
	}
	for t := 0; t < targets; t++ {
		var meanLabel, cov float64
		for i := range train.Labels {
			meanLabel += train.Labels[i][t]
		}
		meanLabel /= float64(train.Len())

		for i, s := range levels {
			cov += (s - meanLevel) * (train.Labels[i][t] - meanLabel)
		}

		if variance > 0 {
			m.w.Scale[t] = cov / variance
		}
		m.w.Offset[t] = meanLabel - m.w.Scale[t]*meanLevel
	}

	history := contracts.NewTrainingHistory()
	pred, _ := m.Predict(train.Features)
	history.Append("loss", mse(pred, train.Labels))
	if warm.Len() > 0 {
		warmPred, _ := m.Predict(warm.Features)
		history.Append("val_loss", mse(warmPred, warm.Labels))
	}

	loss, _ := history.Last("loss")
	m.log.Info().Float64("alpha", alpha).Float64("loss", loss).Msg("baseline fitted")

	return history, nil
}

// Predict runs inference; rows align with the input samples
func (m *Naive) Predict(features [][]float64) ([][]float64, error) {
	if m.w.Scale == nil {
		return nil, fmt.Errorf("naive: model is not trained")
	}

	out := make([][]float64, len(features))
	for i, x := range features {
		s := m.level(x, m.w.Alpha)
		row := make([]float64, len(m.w.Scale))
		for t := range row {
			row[t] = m.w.Scale[t]*s + m.w.Offset[t]
		}
		out[i] = row
	}
	return out, nil
}

// Save persists the fitted state to path
func (m *Naive) Save(path string) error {
	return saveWeights(path, m.Name(), m.w)
}

// Load restores the fitted state from path
func (m *Naive) Load(path string) error {
	return loadWeights(path, m.Name(), &m.w)
}
