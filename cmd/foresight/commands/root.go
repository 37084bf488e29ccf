package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foresight",
	Short: "Foresight - 예측 모델 학습 파이프라인",
	Long: `Foresight Unified CLI

시계열 예측 모델의 학습/평가/리포트 파이프라인.
데이터셋 분할부터 모델 학습, 역정규화 평가, 트레이딩 시뮬레이션까지.

Usage:
  go run ./cmd/foresight [command]

Examples:
  go run ./cmd/foresight train dataset.json --save out/model
  go run ./cmd/foresight simulate out/model.linear.report.json
  go run ./cmd/foresight models
  go run ./cmd/foresight serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
