package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// mlpWeights is the serializable weight state of the network
type mlpWeights struct {
	// Hidden[h] = input weights for hidden unit h, last entry is the bias
	Hidden [][]float64 `json:"hidden"`
	// Output[t] = hidden weights for target t, last entry is the bias
	Output [][]float64 `json:"output"`
}

// MLP is a single-hidden-layer feedforward network with tanh
// activation, trained by SGD
type MLP struct {
	w   mlpWeights
	log zerolog.Logger
}

// NewMLP 새 MLP 모델 생성
func NewMLP(log zerolog.Logger) *MLP {
	return &MLP{log: log.With().Str("component", "models.mlp").Logger()}
}

func (m *MLP) Name() string { return "MLP" }

func (m *MLP) Schema() contracts.ParamSchema {
	return contracts.ParamSchema{
		"epochs": {contracts.ParamInt},
		"lr":     {contracts.ParamFloat, contracts.ParamInt},
		"batch":  {contracts.ParamInt},
		// hidden=16 또는 hidden=16:8 (첫 값만 사용)
		"hidden": {contracts.ParamInt, contracts.ParamIntList},
		"seed":   {contracts.ParamInt},
	}
}

func (m *MLP) hiddenSize(args contracts.Params) int {
	if ints := args.Ints("hidden", nil); len(ints) > 0 {
		return ints[0]
	}
	return args.Int("hidden", 8)
}

// Train fits the network on the train split, validating on warm
func (m *MLP) Train(ds *contracts.Dataset, args contracts.Params) (*contracts.TrainingHistory, error) {
	train := ds.Split(contracts.SplitTrain)
	warm := ds.Split(contracts.SplitWarm)
	if train.Len() == 0 {
		return nil, fmt.Errorf("mlp: train split is empty")
	}

	epochs := args.Int("epochs", 80)
	lr := args.Float("lr", 0.02)
	hidden := m.hiddenSize(args)
	if hidden <= 0 {
		return nil, fmt.Errorf("mlp: hidden size must be positive, got %d", hidden)
	}

	features := len(train.Features[0])
	targets := len(train.Labels[0])

	// 이어 학습이 아니면 가중치 초기화
	if len(m.w.Hidden) != hidden || len(m.w.Output) != targets ||
		len(m.w.Hidden) == 0 || len(m.w.Hidden[0]) != features+1 {
		m.initWeights(features, hidden, targets, int64(args.Int("seed", 1)))
	}

	history := contracts.NewTrainingHistory()
	for epoch := 0; epoch < epochs; epoch++ {
		for i := range train.Features {
			m.step(train.Features[i], train.Labels[i], lr)
		}

		pred, _ := m.Predict(train.Features)
		history.Append("loss", mse(pred, train.Labels))

		if warm.Len() > 0 {
			warmPred, _ := m.Predict(warm.Features)
			history.Append("val_loss", mse(warmPred, warm.Labels))
		}
	}

	loss, _ := history.Last("loss")
	m.log.Info().Int("epochs", epochs).Int("hidden", hidden).Float64("loss", loss).Msg("training completed")

	return history, nil
}

func (m *MLP) initWeights(features, hidden, targets int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	scale := 1.0 / math.Sqrt(float64(features))

	m.w.Hidden = make([][]float64, hidden)
	for h := range m.w.Hidden {
		m.w.Hidden[h] = make([]float64, features+1)
		for j := range m.w.Hidden[h] {
			m.w.Hidden[h][j] = rng.NormFloat64() * scale
		}
	}

	m.w.Output = make([][]float64, targets)
	for t := range m.w.Output {
		m.w.Output[t] = make([]float64, hidden+1)
		for j := range m.w.Output[t] {
			m.w.Output[t][j] = rng.NormFloat64() / math.Sqrt(float64(hidden))
		}
	}
}

// forward computes hidden activations and outputs for one sample
func (m *MLP) forward(x []float64) (act, out []float64) {
	act = make([]float64, len(m.w.Hidden))
	for h, wh := range m.w.Hidden {
		v := wh[len(x)]
		for j, f := range x {
			v += wh[j] * f
		}
		act[h] = math.Tanh(v)
	}

	out = make([]float64, len(m.w.Output))
	for t, wt := range m.w.Output {
		v := wt[len(act)]
		for h, a := range act {
			v += wt[h] * a
		}
		out[t] = v
	}
	return act, out
}

// step backpropagates one sample
func (m *MLP) step(x, label []float64, lr float64) {
	act, out := m.forward(x)

	// output layer deltas
	deltaOut := make([]float64, len(out))
	for t := range out {
		deltaOut[t] = out[t] - label[t]
	}

	// hidden layer deltas through tanh'
	deltaHidden := make([]float64, len(act))
	for h := range act {
		var sum float64
		for t := range deltaOut {
			sum += deltaOut[t] * m.w.Output[t][h]
		}
		deltaHidden[h] = sum * (1 - act[h]*act[h])
	}

	for t := range m.w.Output {
		for h, a := range act {
			m.w.Output[t][h] -= lr * deltaOut[t] * a
		}
		m.w.Output[t][len(act)] -= lr * deltaOut[t]
	}

	for h := range m.w.Hidden {
		for j, f := range x {
			m.w.Hidden[h][j] -= lr * deltaHidden[h] * f
		}
		m.w.Hidden[h][len(x)] -= lr * deltaHidden[h]
	}
}

// Predict runs inference; rows align with the input samples
func (m *MLP) Predict(features [][]float64) ([][]float64, error) {
	if m.w.Hidden == nil {
		return nil, fmt.Errorf("mlp: model is not trained")
	}

	out := make([][]float64, len(features))
	for i, x := range features {
		if len(x)+1 != len(m.w.Hidden[0]) {
			return nil, fmt.Errorf("mlp: sample has %d features, model expects %d", len(x), len(m.w.Hidden[0])-1)
		}
		_, row := m.forward(x)
		out[i] = row
	}
	return out, nil
}

// Save persists weights to path
func (m *MLP) Save(path string) error {
	return saveWeights(path, m.Name(), m.w)
}

// Load restores weights from path
func (m *MLP) Load(path string) error {
	return loadWeights(path, m.Name(), &m.w)
}
