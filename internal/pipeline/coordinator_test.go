package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/internal/contracts"
	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// writeTestDataset writes a three-split dataset whose labels follow the
// features linearly, with strictly increasing dates per split
func writeTestDataset(t *testing.T, dir string) string {
	t.Helper()

	build := func(n, offset int) *contracts.SplitRecord {
		split := &contracts.SplitRecord{
			Norm: contracts.Normalization{Min: []float64{50}, Max: []float64{150}},
		}
		base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			x := float64((i+offset)%11) / 11
			split.Features = append(split.Features, []float64{x, x * x})
			split.Labels = append(split.Labels, []float64{0.5*x + 0.2})
			split.Dates = append(split.Dates, base.Add(time.Duration(i+offset)*time.Hour))
		}
		return split
	}

	data, err := json.Marshal([]*contracts.SplitRecord{build(12, 500), build(60, 0), build(20, 900)})
	require.NoError(t, err)

	path := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun_TrainSaveEvaluate(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)

	c := New(models.Default(zerolog.Nop()), nil, testLogger())

	savePrefix := filepath.Join(dir, "out")
	summary, err := c.Run(context.Background(), Options{
		DatasetPath:  dsPath,
		Train:        true,
		SavePrefix:   savePrefix,
		Quiet:        true,
		Simulate:     true,
		StartBalance: 100,
	})
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.False(t, summary.Skipped)

	require.Len(t, summary.Outcomes, 3)
	for _, outcome := range summary.Outcomes {
		assert.NoError(t, outcome.Err, "model %s", outcome.Model)
		assert.NoError(t, outcome.PersistErr, "model %s", outcome.Model)
		assert.True(t, outcome.Trained)
		require.NotNil(t, outcome.History)
		require.NotNil(t, outcome.Report)
		assert.Len(t, outcome.Report.Series, 2)
		require.NotNil(t, outcome.Sim, "simulate flag must produce a result")
	}

	// 모델별 히스토리 슬롯
	assert.Len(t, summary.Histories, 3)
	assert.Contains(t, summary.Histories, "Linear")

	// 아티팩트 3종 생성 확인
	for _, name := range []string{"linear", "mlp", "naive"} {
		assert.FileExists(t, savePrefix+"."+name+ModelExt)
		assert.FileExists(t, savePrefix+"."+name+HistoryExt)
		assert.FileExists(t, savePrefix+"."+name+ReportExt)
	}

	// sidecar 내용 확인
	sidecar, err := LoadSidecar(savePrefix + ".linear" + HistoryExt)
	require.NoError(t, err)
	assert.Equal(t, "Linear", sidecar.Model)
	assert.Equal(t, dsPath, sidecar.Dataset)
	require.NotNil(t, sidecar.History)
	assert.Contains(t, sidecar.History.Metrics(), "loss")

	// temp 파일이 남아있으면 안 된다
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".artifact-")
	}
}

func TestRun_NoReplaceSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)
	savePrefix := filepath.Join(dir, "out")

	// 기존 아티팩트를 흉내
	require.NoError(t, os.WriteFile(savePrefix+".linear"+ModelExt, []byte("{}"), 0o644))

	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	summary, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Train:       true,
		SavePrefix:  savePrefix,
		NoReplace:   true,
	})
	require.NoError(t, err, "no-replace early return must succeed")
	assert.True(t, summary.Skipped)
	assert.Empty(t, summary.Outcomes, "no training/prediction/persistence calls")

	// 기존 파일은 그대로
	data, err := os.ReadFile(savePrefix + ".linear" + ModelExt)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

// explodingModel fails training to exercise per-model isolation
type explodingModel struct{}

func (explodingModel) Name() string                  { return "Exploding" }
func (explodingModel) Schema() contracts.ParamSchema { return contracts.ParamSchema{} }
func (explodingModel) Save(string) error             { return nil }
func (explodingModel) Load(string) error             { return nil }
func (explodingModel) Predict([][]float64) ([][]float64, error) {
	return nil, fmt.Errorf("no weights")
}
func (explodingModel) Train(*contracts.Dataset, contracts.Params) (*contracts.TrainingHistory, error) {
	return nil, fmt.Errorf("diverged")
}

func TestRun_TrainingFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)

	registry := models.NewRegistry(explodingModel{}, models.NewLinear(zerolog.Nop()))
	c := New(registry, nil, testLogger())

	summary, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Train:       true,
	})
	require.NoError(t, err, "a per-model failure must not abort the batch")

	require.Len(t, summary.Outcomes, 2)
	require.Error(t, summary.Outcomes[0].Err)
	assert.ErrorAs(t, summary.Outcomes[0].Err, &TrainingError{})
	assert.NoError(t, summary.Outcomes[1].Err, "Linear must still run after Exploding failed")
	assert.True(t, summary.Outcomes[1].Trained)

	// 실패한 모델의 히스토리는 기록되지 않는다
	assert.NotContains(t, summary.Histories, "Exploding")
	assert.Contains(t, summary.Histories, "Linear")
}

func TestRun_ResumeMustBeExplicit(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)

	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	_, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Train:       true,
		LoadPrefix:  filepath.Join(dir, "prev"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume")
}

func TestRun_LoadThenEvaluateWithoutTraining(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)
	savePrefix := filepath.Join(dir, "out")

	c := New(models.Default(zerolog.Nop()), nil, testLogger())

	// 1차: Linear만 학습하고 저장
	_, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Models:      []string{"linear"},
		Train:       true,
		SavePrefix:  savePrefix,
	})
	require.NoError(t, err)

	// 2차: no-train + load → 평가만
	fresh := New(models.Default(zerolog.Nop()), nil, testLogger())
	summary, err := fresh.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Models:      []string{"linear"},
		Train:       false,
		LoadPrefix:  savePrefix,
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	outcome := summary.Outcomes[0]
	assert.NoError(t, outcome.Err)
	assert.False(t, outcome.Trained)
	assert.Nil(t, outcome.History)
	require.NotNil(t, outcome.Report)
	assert.Nil(t, outcome.Report.History, "history absent when only evaluating")
}

func TestRun_Resume(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)
	savePrefix := filepath.Join(dir, "out")

	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	_, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Models:      []string{"linear"},
		Train:       true,
		SavePrefix:  savePrefix,
	})
	require.NoError(t, err)

	// 저장된 가중치에서 이어 학습
	fresh := New(models.Default(zerolog.Nop()), nil, testLogger())
	summary, err := fresh.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Models:      []string{"linear"},
		Train:       true,
		Resume:      true,
		LoadPrefix:  savePrefix,
	})
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.NoError(t, summary.Outcomes[0].Err)
	assert.True(t, summary.Outcomes[0].Trained)
}

func TestRun_TrimBatchRequiresBatchArg(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)

	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	_, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Train:       true,
		TrimBatch:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}

func TestRun_UnknownHyperparameterRejected(t *testing.T) {
	dir := t.TempDir()
	dsPath := writeTestDataset(t, dir)

	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	_, err := c.Run(context.Background(), Options{
		DatasetPath: dsPath,
		Train:       true,
		Args:        contracts.Params{"bogus": contracts.IntValue(3)},
	})
	require.Error(t, err)
}

func TestRun_DatasetErrorAbortsRun(t *testing.T) {
	c := New(models.Default(zerolog.Nop()), nil, testLogger())
	_, err := c.Run(context.Background(), Options{
		DatasetPath: filepath.Join(t.TempDir(), "missing.json"),
		Train:       true,
	})
	require.Error(t, err)
}
