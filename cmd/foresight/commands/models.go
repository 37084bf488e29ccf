package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "사용 가능한 모델 목록",
	Long: `등록된 예측 모델과 각 모델의 하이퍼파라미터 스키마를 출력합니다.

Example:
  go run ./cmd/foresight models`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	registry := models.Default(log.Zerolog())

	fmt.Println("=== Registered Models ===")
	for _, m := range registry.All() {
		fmt.Printf("\n📦 %s\n", m.Name())

		schema := m.Schema()
		keys := make([]string, 0, len(schema))
		for key := range schema {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			kinds := make([]string, len(schema[key]))
			for i, kind := range schema[key] {
				kinds[i] = string(kind)
			}
			fmt.Printf("   %-8s %s\n", key, strings.Join(kinds, "|"))
		}
	}

	return nil
}
