package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// Assembler builds the report artifact from denormalized series and
// optional training history. 렌더링(그래프)은 이 컨트랙트를 소비하는
// 외부 경계이고 여기서는 데이터만 만든다.
type Assembler struct {
	log zerolog.Logger
}

// NewAssembler 새 리포트 어셈블러 생성
func NewAssembler(log zerolog.Logger) *Assembler {
	return &Assembler{
		log: log.With().Str("component", "report.assembler").Logger(),
	}
}

// Assemble packs the per-split series and history into the report contract
func (a *Assembler) Assemble(model, dataset string, series []contracts.EvalSeries, history *contracts.TrainingHistory) *contracts.Report {
	return &contracts.Report{
		Model:   model,
		Dataset: dataset,
		Series:  series,
		History: history,
	}
}

// Emit delivers the report to its output target. 빈 target은 대화형
// 출력(stdout 요약 패널), 그 외에는 파일로 직렬화한다.
func (a *Assembler) Emit(report *contracts.Report, target string) error {
	if target == "" {
		a.printSummary(report)
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	// 중단돼도 부분 파일이 남지 않도록 temp → rename
	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*")
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write report: %w", err)
	}

	a.log.Info().Str("model", report.Model).Str("path", target).Msg("report saved")
	return nil
}

// Load reads a previously emitted report artifact
func Load(path string) (*contracts.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report contracts.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}

// printSummary renders one panel per target dimension per split plus,
// when history is present, one line per tracked metric
func (a *Assembler) printSummary(report *contracts.Report) {
	fmt.Printf("\n═══ Performance of %s ═══\n", report.Model)

	for _, series := range report.Series {
		if len(series.Points) == 0 {
			fmt.Printf("[%s] no samples\n", series.Split)
			continue
		}

		dims := len(series.Points[0].Actual)
		for dim := 0; dim < dims; dim++ {
			predicted, actual := series.Column(dim)
			fmt.Printf("[%s] target %d: %d samples, MAE=%.4f RMSE=%.4f (%s ~ %s)\n",
				series.Split, dim, len(series.Points),
				meanAbsErr(predicted, actual), rootMeanSqErr(predicted, actual),
				series.Points[0].Date.Format("2006-01-02"),
				series.Points[len(series.Points)-1].Date.Format("2006-01-02"))
		}
	}

	if report.History != nil {
		for _, metric := range report.History.Metrics() {
			if last, ok := report.History.Last(metric); ok {
				fmt.Printf("[history] %s: %d epochs, final %.6f\n",
					metric, len(report.History.Series[metric]), last)
			}
		}
	}
}

func meanAbsErr(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(actual))
}

func rootMeanSqErr(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		diff := predicted[i] - actual[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
