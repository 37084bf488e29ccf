package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/foresight/internal/contracts"
	"github.com/wonny/foresight/internal/dataset"
	"github.com/wonny/foresight/internal/evaluate"
	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/internal/params"
	"github.com/wonny/foresight/internal/report"
	"github.com/wonny/foresight/internal/runlog"
	"github.com/wonny/foresight/internal/trading"
	"github.com/wonny/foresight/pkg/logger"
)

// Artifact extensions
const (
	ModelExt   = ".model.json"
	HistoryExt = ".history.json"
	ReportExt  = ".report.json"
)

// baseSchema holds pipeline-level hyperparameter keys that are valid
// regardless of the selected models (batch is consumed by trimming)
var baseSchema = contracts.ParamSchema{
	"batch": {contracts.ParamInt},
}

// TrainingError 한 모델의 학습 실패. 배치 실행을 막지 않도록 격리된다.
type TrainingError struct {
	Model string
	Err   error
}

func (e TrainingError) Error() string {
	return fmt.Sprintf("training %s: %v", e.Model, e.Err)
}

func (e TrainingError) Unwrap() error { return e.Err }

// ArtifactWriteError 모델/히스토리 아티팩트 저장 실패.
// 해당 모델의 persistence 단계에만 치명적이다.
type ArtifactWriteError struct {
	Model string
	Path  string
	Err   error
}

func (e ArtifactWriteError) Error() string {
	return fmt.Sprintf("writing artifact %s for %s: %v", e.Path, e.Model, e.Err)
}

func (e ArtifactWriteError) Unwrap() error { return e.Err }

// Options configures one pipeline run
type Options struct {
	DatasetPath string
	Models      []string // nil = 전체 모델
	Args        contracts.Params

	Train  bool
	Resume bool // 로드된 가중치에서 이어 학습 (명시적 resume)

	LoadPrefix string
	SavePrefix string
	NoReplace  bool

	Quiet     bool
	Shuffle   bool
	Seed      int64
	TrimBatch bool

	Simulate     bool
	StartBalance float64
}

// ModelOutcome is the per-model result of one run
type ModelOutcome struct {
	Model      string
	Trained    bool
	History    *contracts.TrainingHistory
	Report     *contracts.Report
	Sim        *trading.Result
	Err        error // training/evaluation failure, isolated per model
	PersistErr error // artifact write failure, isolated per model
}

// RunSummary is the process-scoped result of one pipeline run
type RunSummary struct {
	Dataset  string
	Skipped  bool // no-replace early return
	Outcomes []ModelOutcome

	// Histories is keyed by model name; each model writes only its own
	// slot, so parallel execution would need no lock
	Histories map[string]*contracts.TrainingHistory
}

// Coordinator orchestrates partitioning, training, persistence,
// evaluation and reporting for each selected model
// ⭐ SSOT: 파이프라인 실행 순서는 여기서만
type Coordinator struct {
	registry    *models.Registry
	partitioner *dataset.Partitioner
	denorm      *evaluate.Denormalizer
	assembler   *report.Assembler
	runs        *runlog.Repository // nil이면 run log 비활성
	logger      *logger.Logger
}

// New creates a coordinator over an injected, immutable registry
func New(registry *models.Registry, runs *runlog.Repository, log *logger.Logger) *Coordinator {
	zlog := log.Zerolog()
	return &Coordinator{
		registry:    registry,
		partitioner: dataset.NewPartitioner(zlog),
		denorm:      evaluate.NewDenormalizer(zlog),
		assembler:   report.NewAssembler(zlog),
		runs:        runs,
		logger:      log,
	}
}

// artifactBase derives the per-model artifact path prefix
func artifactBase(prefix string, model contracts.ForecastModel) string {
	return prefix + "." + strings.ToLower(model.Name())
}

// Run executes the pipeline over the configured dataset and models
func (c *Coordinator) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	selected := c.registry.Select(opts.Models)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no models selected (registry: %s)", strings.Join(c.registry.Names(), ", "))
	}

	if opts.LoadPrefix != "" && opts.Train && !opts.Resume {
		return nil, fmt.Errorf("loading weights before training requires the explicit resume option")
	}

	// no-replace: 대상 아티팩트가 이미 있으면 아무 작업 없이 성공 종료
	if opts.NoReplace && opts.SavePrefix != "" {
		for _, m := range selected {
			target := artifactBase(opts.SavePrefix, m) + ModelExt
			if _, err := os.Stat(target); err == nil {
				c.logger.WithField("path", target).Info("Save target already exists, skipping run (no-replace)")
				return &RunSummary{Dataset: opts.DatasetPath, Skipped: true}, nil
			}
		}
	}

	schemas := []contracts.ParamSchema{baseSchema}
	for _, m := range selected {
		schemas = append(schemas, m.Schema())
	}
	if err := params.Validate(opts.Args, schemas...); err != nil {
		return nil, err
	}

	trimBatch := 0
	if opts.TrimBatch {
		trimBatch = opts.Args.Int("batch", 0)
		if trimBatch <= 0 {
			return nil, fmt.Errorf("trim-batch requires a positive batch argument")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"dataset": opts.DatasetPath,
		"models":  modelNames(selected),
		"train":   opts.Train,
	}).Info("Starting pipeline run")

	ds, err := c.partitioner.Partition(opts.DatasetPath, dataset.Options{
		TrimBatch: trimBatch,
		Shuffle:   opts.Shuffle,
		Seed:      opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Dataset:   opts.DatasetPath,
		Histories: make(map[string]*contracts.TrainingHistory, len(selected)),
	}

	for _, m := range selected {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		outcome := c.runModel(ctx, m, ds, opts)
		if outcome.Err != nil {
			// 한 모델의 실패가 나머지 모델 실행을 막으면 안 된다
			c.logger.WithError(outcome.Err).WithField("model", m.Name()).Error("Model run failed, continuing with remaining models")
		}
		if outcome.History != nil {
			summary.Histories[m.Name()] = outcome.History
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	return summary, nil
}

// runModel executes load → train → persist → evaluate → simulate →
// report for a single model; all failures stay inside the outcome
func (c *Coordinator) runModel(ctx context.Context, m contracts.ForecastModel, ds *contracts.Dataset, opts Options) ModelOutcome {
	outcome := ModelOutcome{Model: m.Name()}

	if opts.LoadPrefix != "" {
		path := artifactBase(opts.LoadPrefix, m) + ModelExt
		if err := m.Load(path); err != nil {
			outcome.Err = fmt.Errorf("load model %s: %w", m.Name(), err)
			return outcome
		}
		c.logger.WithFields(map[string]interface{}{
			"model": m.Name(),
			"path":  path,
		}).Info("Loaded saved weights")
	}

	if opts.Train {
		history, err := m.Train(ds, opts.Args)
		if err != nil {
			outcome.Err = TrainingError{Model: m.Name(), Err: err}
			return outcome
		}
		outcome.Trained = true
		outcome.History = history

		// persistence는 학습이 성공한 뒤에만, 아티팩트 단위로 원자적으로
		if opts.SavePrefix != "" {
			if err := c.persist(m, history, ds.Source, opts); err != nil {
				outcome.PersistErr = err
				c.logger.WithError(err).WithField("model", m.Name()).Error("Artifact persistence failed")
			}
		}
	}

	series, err := c.denorm.Evaluate(m, ds)
	if err != nil {
		outcome.Err = fmt.Errorf("evaluate %s: %w", m.Name(), err)
		return outcome
	}

	if opts.Simulate {
		outcome.Sim = c.simulate(m.Name(), series, opts.StartBalance)
	}

	rep := c.assembler.Assemble(m.Name(), ds.Source, series, outcome.History)
	outcome.Report = rep

	if opts.Quiet {
		// quiet는 대화형 요약을 억제한다; 저장 prefix가 있으면 파일로만 남긴다
		if opts.SavePrefix != "" {
			target := artifactBase(opts.SavePrefix, m) + ReportExt
			if err := c.assembler.Emit(rep, target); err != nil {
				outcome.PersistErr = err
			}
		}
	} else if err := c.assembler.Emit(rep, ""); err != nil {
		outcome.PersistErr = err
	}

	if c.runs != nil {
		c.record(ctx, outcome, ds.Source, opts)
	}

	return outcome
}

// simulate runs the trading diagnostic on the test split's first target
func (c *Coordinator) simulate(model string, series []contracts.EvalSeries, startBalance float64) *trading.Result {
	if startBalance <= 0 {
		startBalance = 100
	}

	for _, s := range series {
		if s.Split != contracts.SplitTest || len(s.Points) == 0 {
			continue
		}

		predicted, actual := s.Column(0)
		res, err := trading.Simulate(predicted, actual, startBalance)
		if err != nil {
			// 시뮬레이션 실패는 학습/리포트에 영향을 주지 않는다
			c.logger.WithError(err).WithField("model", model).Warn("Trading simulation failed")
			return nil
		}

		c.logger.WithFields(map[string]interface{}{
			"model":   model,
			"balance": res.FinalBalance,
			"trades":  res.Trades,
		}).Info("Trading simulation completed")
		return &res
	}
	return nil
}

func modelNames(selected []contracts.ForecastModel) []string {
	names := make([]string, len(selected))
	for i, m := range selected {
		names[i] = m.Name()
	}
	return names
}
