package models

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/internal/contracts"
)

// syntheticDataset builds splits where the label is a clean linear
// function of the features, so every model should fit it well
func syntheticDataset(warm, train, test int) *contracts.Dataset {
	build := func(n, offset int) *contracts.SplitRecord {
		split := &contracts.SplitRecord{
			Norm: contracts.Normalization{Min: []float64{10}, Max: []float64{20}},
		}
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			x := float64((i+offset)%17) / 17
			y := float64((i+offset)%13) / 13
			split.Features = append(split.Features, []float64{x, y})
			split.Labels = append(split.Labels, []float64{0.4*x + 0.2*y + 0.1})
			split.Dates = append(split.Dates, base.Add(time.Duration(i+offset)*time.Hour))
		}
		return split
	}

	return &contracts.Dataset{
		Source: "synthetic",
		Splits: map[contracts.SplitKind]*contracts.SplitRecord{
			contracts.SplitWarm:  build(warm, 1000),
			contracts.SplitTrain: build(train, 0),
			contracts.SplitTest:  build(test, 2000),
		},
	}
}

func TestModels_TrainPredictSaveLoad(t *testing.T) {
	ds := syntheticDataset(20, 120, 30)
	args := contracts.Params{
		"epochs": contracts.IntValue(120),
		"lr":     contracts.FloatValue(0.05),
	}

	for _, m := range Default(zerolog.Nop()).All() {
		m := m
		t.Run(m.Name(), func(t *testing.T) {
			history, err := m.Train(ds, args)
			require.NoError(t, err)
			require.NotNil(t, history)

			// loss와 val_loss가 기록되어야 한다
			assert.Contains(t, history.Metrics(), "loss")
			assert.Contains(t, history.Metrics(), "val_loss")

			loss, ok := history.Last("loss")
			require.True(t, ok)
			assert.Less(t, loss, 0.05, "model should fit the synthetic data")

			// 예측은 입력과 index-for-index 정렬
			pred, err := m.Predict(ds.Split(contracts.SplitTest).Features)
			require.NoError(t, err)
			require.Len(t, pred, ds.Split(contracts.SplitTest).Len())
			require.Len(t, pred[0], 1)

			// save → load 후 예측 동일
			path := filepath.Join(t.TempDir(), "weights.json")
			require.NoError(t, m.Save(path))

			fresh := freshModel(t, m.Name())
			require.NoError(t, fresh.Load(path))

			pred2, err := fresh.Predict(ds.Split(contracts.SplitTest).Features)
			require.NoError(t, err)
			for i := range pred {
				assert.InDelta(t, pred[i][0], pred2[i][0], 1e-12)
			}
		})
	}
}

func freshModel(t *testing.T, name string) contracts.ForecastModel {
	t.Helper()
	for _, m := range Default(zerolog.Nop()).All() {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("unknown model %s", name)
	return nil
}

func TestLoad_RejectsForeignWeights(t *testing.T) {
	ds := syntheticDataset(5, 40, 5)

	linear := NewLinear(zerolog.Nop())
	_, err := linear.Train(ds, contracts.Params{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, linear.Save(path))

	mlp := NewMLP(zerolog.Nop())
	assert.Error(t, mlp.Load(path), "MLP must refuse Linear weights")
}

func TestPredict_Untrained(t *testing.T) {
	for _, m := range Default(zerolog.Nop()).All() {
		_, err := m.Predict([][]float64{{1, 2}})
		assert.Error(t, err, "%s must refuse to predict untrained", m.Name())
	}
}

func TestTrain_EmptySplit(t *testing.T) {
	ds := &contracts.Dataset{
		Splits: map[contracts.SplitKind]*contracts.SplitRecord{
			contracts.SplitWarm:  {},
			contracts.SplitTrain: {},
			contracts.SplitTest:  {},
		},
	}

	for _, m := range Default(zerolog.Nop()).All() {
		_, err := m.Train(ds, contracts.Params{})
		assert.Error(t, err)
	}
}

func TestNormalizationRoundTrip(t *testing.T) {
	norm := contracts.Normalization{Min: []float64{5, -10}, Max: []float64{25, 10}}

	samples := [][]float64{{7.5, -3.2}, {25, 10}, {5, -10}, {12.125, 0.001}}
	for _, s := range samples {
		back := norm.Reverse([][]float64{norm.Apply(s)})
		for j := range s {
			assert.True(t, math.Abs(back[0][j]-s[j]) < 1e-9,
				"round trip mismatch: %v vs %v", s[j], back[0][j])
		}
	}
}
