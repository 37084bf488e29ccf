package evaluate

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/internal/contracts"
)

// doubleModel predicts twice the first feature
type doubleModel struct{ fail bool }

func (m doubleModel) Name() string                   { return "Double" }
func (m doubleModel) Schema() contracts.ParamSchema  { return contracts.ParamSchema{} }
func (m doubleModel) Save(string) error              { return nil }
func (m doubleModel) Load(string) error              { return nil }
func (m doubleModel) Train(*contracts.Dataset, contracts.Params) (*contracts.TrainingHistory, error) {
	return contracts.NewTrainingHistory(), nil
}

func (m doubleModel) Predict(features [][]float64) ([][]float64, error) {
	if m.fail {
		return nil, fmt.Errorf("inference backend unavailable")
	}
	out := make([][]float64, len(features))
	for i, x := range features {
		out[i] = []float64{2 * x[0]}
	}
	return out, nil
}

func evalDataset() *contracts.Dataset {
	norm := contracts.Normalization{Min: []float64{100}, Max: []float64{200}}
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	// train split은 셔플된 상태를 흉내내 역순 날짜로 구성
	train := &contracts.SplitRecord{Norm: norm}
	for i := 4; i >= 0; i-- {
		train.Features = append(train.Features, []float64{float64(i) / 10})
		train.Labels = append(train.Labels, []float64{float64(i) / 5})
		train.Dates = append(train.Dates, base.Add(time.Duration(i)*24*time.Hour))
	}

	test := &contracts.SplitRecord{Norm: norm}
	for i := 0; i < 3; i++ {
		test.Features = append(test.Features, []float64{float64(i) / 10})
		test.Labels = append(test.Labels, []float64{float64(i) / 5})
		test.Dates = append(test.Dates, base.Add(time.Duration(100+i)*24*time.Hour))
	}

	return &contracts.Dataset{
		Source: "eval",
		Splits: map[contracts.SplitKind]*contracts.SplitRecord{
			contracts.SplitWarm:  {Norm: norm},
			contracts.SplitTrain: train,
			contracts.SplitTest:  test,
		},
	}
}

func TestEvaluate(t *testing.T) {
	d := NewDenormalizer(zerolog.Nop())

	series, err := d.Evaluate(doubleModel{}, evalDataset())
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, contracts.SplitTrain, series[0].Split)
	assert.Equal(t, contracts.SplitTest, series[1].Split)

	// train split: 날짜 오름차순 복원
	trainSeries := series[0]
	require.Len(t, trainSeries.Points, 5)
	for i := 1; i < len(trainSeries.Points); i++ {
		assert.True(t, trainSeries.Points[i-1].Date.Before(trainSeries.Points[i].Date),
			"train series must be chronologically ordered")
	}

	// 역정규화: 첫 포인트는 i=0 → feature 0, label 0
	// predicted = 2*0 → reverse → 100, actual = 0 → reverse → 100
	first := trainSeries.Points[0]
	assert.InDelta(t, 100.0, first.Predicted[0], 1e-9)
	assert.InDelta(t, 100.0, first.Actual[0], 1e-9)

	// i=4 → predicted = 2*0.4=0.8 → 100+0.8*100=180, actual = 0.8 → 180
	last := trainSeries.Points[4]
	assert.InDelta(t, 180.0, last.Predicted[0], 1e-9)
	assert.InDelta(t, 180.0, last.Actual[0], 1e-9)

	// test split은 이미 시간순 → 순서 유지
	testSeries := series[1]
	require.Len(t, testSeries.Points, 3)
	assert.InDelta(t, 100.0, testSeries.Points[0].Predicted[0], 1e-9)
	assert.InDelta(t, 140.0, testSeries.Points[2].Predicted[0], 1e-9)
}

func TestEvaluate_PredictFailure(t *testing.T) {
	d := NewDenormalizer(zerolog.Nop())

	_, err := d.Evaluate(doubleModel{fail: true}, evalDataset())
	assert.Error(t, err)
}
