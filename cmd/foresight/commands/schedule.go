package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/internal/params"
	"github.com/wonny/foresight/internal/pipeline"
	"github.com/wonny/foresight/internal/scheduler"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule [dataset.json]",
	Short: "주기적 재학습 스케줄러 시작",
	Long: `주기적으로 학습 파이프라인을 재실행하는 스케줄러를 시작합니다.

데이터셋 파일이 갱신되는 환경에서 저장된 모델을 최신 상태로 유지합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/foresight schedule dataset.json --save out/nightly --cron "0 2 * * *"
  go run ./cmd/foresight schedule dataset.json --save out/hourly --cron "@hourly" --models linear`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

var (
	scheduleCron    string
	scheduleModels  string
	scheduleArgs    string
	scheduleSave    string
	scheduleShuffle bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "0 2 * * *", "재학습 cron 표현식")
	scheduleCmd.Flags().StringVar(&scheduleModels, "models", "", "학습할 모델 이름 (쉼표 구분, 기본: 전체)")
	scheduleCmd.Flags().StringVar(&scheduleArgs, "args", "", "하이퍼파라미터 (key=value,key=value)")
	scheduleCmd.Flags().StringVar(&scheduleSave, "save", "", "아티팩트 저장 prefix")
	scheduleCmd.Flags().BoolVar(&scheduleShuffle, "shuffle", false, "train 분할 셔플")

	_ = scheduleCmd.MarkFlagRequired("save")
}

func runSchedule(cmd *cobra.Command, cmdArgs []string) error {
	fmt.Println("=== Foresight Scheduler ===")

	ctx := cmd.Context()
	datasetPath := cmdArgs[0]

	hyper, err := params.ParseArgs(scheduleArgs)
	if err != nil {
		return fmt.Errorf("parse --args: %w", err)
	}

	var selected []string
	if scheduleModels != "" {
		selected = strings.Split(scheduleModels, ",")
	}

	cfg, log, db, runs, err := initDeps(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	_ = cfg

	coordinator := pipeline.New(models.Default(log.Zerolog()), runs, log)

	opts := pipeline.Options{
		DatasetPath: datasetPath,
		Models:      selected,
		Args:        hyper,
		Train:       true,
		SavePrefix:  scheduleSave,
		Quiet:       true,
		Shuffle:     scheduleShuffle,
		Seed:        time.Now().UnixNano(),
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(scheduler.NewRetrainJob(coordinator, opts, scheduleCron)); err != nil {
		return fmt.Errorf("add retrain job: %w", err)
	}

	sched.Start()

	fmt.Printf("\n✅ Scheduler started (cron: %s)\n", scheduleCron)
	fmt.Printf("📂 Dataset: %s\n", datasetPath)
	fmt.Printf("💾 Artifacts: %s.*\n", scheduleSave)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}
