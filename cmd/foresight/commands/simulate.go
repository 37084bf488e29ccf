package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/foresight/internal/contracts"
	"github.com/wonny/foresight/internal/report"
	"github.com/wonny/foresight/internal/trading"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [report.json]",
	Short: "저장된 리포트로 트레이딩 시뮬레이션",
	Long: `저장된 평가 리포트의 예측/실측 시계열로 트레이딩을 시뮬레이션합니다.

규칙:
- 다음 스텝 예측가가 현재 실측가보다 높으면 전량 매수/보유
- 아니면 전량 매도/관망
- 마지막에 보유 중이면 마지막 매수가 기준으로 청산

Example:
  go run ./cmd/foresight simulate out/run1.linear.report.json
  go run ./cmd/foresight simulate out/run1.mlp.report.json --balance 1000 --split train`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simBalance float64
	simSplit   string
	simDim     int
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simBalance, "balance", 100, "시작 잔고")
	simulateCmd.Flags().StringVar(&simSplit, "split", "test", "시뮬레이션할 분할 (train|test)")
	simulateCmd.Flags().IntVar(&simDim, "dim", 0, "타깃 차원 인덱스")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	reportPath := args[0]

	rep, err := report.Load(reportPath)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	var series *contracts.EvalSeries
	for i := range rep.Series {
		if rep.Series[i].Split == contracts.SplitKind(simSplit) {
			series = &rep.Series[i]
			break
		}
	}
	if series == nil {
		return fmt.Errorf("report has no %q series", simSplit)
	}
	if len(series.Points) > 0 && simDim >= len(series.Points[0].Predicted) {
		return fmt.Errorf("dimension %d out of range (%d targets)", simDim, len(series.Points[0].Predicted))
	}

	predicted, actual := series.Column(simDim)

	fmt.Printf("=== Trading Simulation: %s ===\n\n", rep.Model)
	fmt.Printf("📊 Split: %s (%d points, dim %d)\n", simSplit, len(series.Points), simDim)
	fmt.Printf("💵 Start balance: %.2f\n\n", simBalance)

	result, err := trading.Simulate(predicted, actual, simBalance)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	ret := 0.0
	if simBalance > 0 {
		ret = (result.FinalBalance - simBalance) / simBalance * 100
	}

	fmt.Printf("✅ Final balance: %.2f (%+.2f%%)\n", result.FinalBalance, ret)
	fmt.Printf("🔄 Trades: %d\n", result.Trades)
	return nil
}
