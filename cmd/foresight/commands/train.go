package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/foresight/internal/models"
	"github.com/wonny/foresight/internal/params"
	"github.com/wonny/foresight/internal/pipeline"
)

var trainCmd = &cobra.Command{
	Use:   "train [dataset.json]",
	Short: "예측 모델 학습 파이프라인 실행",
	Long: `데이터셋을 분할하고 선택된 모델을 학습/평가합니다.

파이프라인 단계:
1. 데이터셋 로드 (warm/train/test 3분할)
2. 배치 트림 / 셔플 (옵션)
3. 모델별 학습 (모델 간 실패 격리)
4. 아티팩트 저장 (.model.json / .history.json)
5. 역정규화 평가 + 리포트 (.report.json)
6. 트레이딩 시뮬레이션 (옵션)

Example:
  go run ./cmd/foresight train dataset.json --save out/run1
  go run ./cmd/foresight train dataset.json --models linear,mlp --args epochs=50,lr=0.01
  go run ./cmd/foresight train dataset.json --load out/run1 --resume --save out/run2
  go run ./cmd/foresight train dataset.json --no-train --load out/run1 --simulate`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

var (
	trainModels    string
	trainArgs      string
	trainParams    string
	trainSave      string
	trainLoad      string
	trainResume    bool
	trainQuiet     bool
	trainShuffle   bool
	trainSeed      int64
	trainTrimBatch bool
	trainNoReplace bool
	trainNoTrain   bool
	trainSimulate  bool
	trainBalance   float64
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainModels, "models", "", "학습할 모델 이름 (쉼표 구분, 기본: 전체)")
	trainCmd.Flags().StringVar(&trainArgs, "args", "", "하이퍼파라미터 (key=value,key=value)")
	trainCmd.Flags().StringVar(&trainParams, "params", "", "하이퍼파라미터 YAML 파일 (--args가 우선)")
	trainCmd.Flags().StringVar(&trainSave, "save", "", "아티팩트 저장 prefix")
	trainCmd.Flags().StringVar(&trainLoad, "load", "", "아티팩트 로드 prefix")
	trainCmd.Flags().BoolVar(&trainResume, "resume", false, "로드된 가중치에서 이어 학습")
	trainCmd.Flags().BoolVarP(&trainQuiet, "quiet", "q", false, "요약 출력 생략, 리포트는 파일로만")
	trainCmd.Flags().BoolVar(&trainShuffle, "shuffle", false, "train 분할 셔플")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "셔플 시드 (기본: 현재 시각)")
	trainCmd.Flags().BoolVar(&trainTrimBatch, "trim-batch", false, "분할 길이를 배치 크기 배수로 트림")
	trainCmd.Flags().BoolVar(&trainNoReplace, "no-replace", false, "아티팩트가 이미 있으면 실행 전체를 건너뜀")
	trainCmd.Flags().BoolVar(&trainNoTrain, "no-train", false, "학습 생략 (로드 + 평가만)")
	trainCmd.Flags().BoolVar(&trainSimulate, "simulate", false, "test 분할로 트레이딩 시뮬레이션")
	trainCmd.Flags().Float64Var(&trainBalance, "balance", 100, "시뮬레이션 시작 잔고")
}

func runTrain(cmd *cobra.Command, cmdArgs []string) error {
	fmt.Println("=== Foresight Training Pipeline ===")

	ctx := cmd.Context()
	datasetPath := cmdArgs[0]

	opts, err := buildTrainOptions(cmd, datasetPath)
	if err != nil {
		return err
	}

	cfg, log, db, runs, err := initDeps(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	_ = cfg

	fmt.Printf("📂 Dataset: %s\n", datasetPath)
	if opts.Models != nil {
		fmt.Printf("🎯 Models: %s\n", strings.Join(opts.Models, ", "))
	}
	fmt.Println()

	coordinator := pipeline.New(models.Default(log.Zerolog()), runs, log)

	summary, err := coordinator.Run(ctx, *opts)
	if err != nil {
		return err
	}

	if summary.Skipped {
		fmt.Println("⚠️  Existing artifacts found, run skipped (--no-replace)")
		return nil
	}

	printOutcomes(summary)

	failed := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	if failed > 0 && failed == len(summary.Outcomes) {
		return fmt.Errorf("all %d models failed", failed)
	}

	argsDesc := trainArgs
	if argsDesc == "" {
		argsDesc = "(defaults)"
	}
	fmt.Printf("\n📄 Used dataset %s with arguments %s\n", datasetPath, argsDesc)
	fmt.Printf("✅ Pipeline completed: %d/%d models succeeded\n",
		len(summary.Outcomes)-failed, len(summary.Outcomes))
	return nil
}

// buildTrainOptions merges flag and file hyperparameters into pipeline
// options. CLI --args override the YAML file on key conflicts.
func buildTrainOptions(cmd *cobra.Command, datasetPath string) (*pipeline.Options, error) {
	hyper, err := params.ParseArgs(trainArgs)
	if err != nil {
		return nil, fmt.Errorf("parse --args: %w", err)
	}

	if trainParams != "" {
		fileParams, err := params.LoadFile(trainParams)
		if err != nil {
			return nil, fmt.Errorf("load --params: %w", err)
		}
		hyper = params.Merge(fileParams, hyper)
	}

	var selected []string
	if trainModels != "" {
		selected = strings.Split(trainModels, ",")
	}

	seed := trainSeed
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}

	return &pipeline.Options{
		DatasetPath:  datasetPath,
		Models:       selected,
		Args:         hyper,
		Train:        !trainNoTrain,
		Resume:       trainResume,
		LoadPrefix:   trainLoad,
		SavePrefix:   trainSave,
		NoReplace:    trainNoReplace,
		Quiet:        trainQuiet,
		Shuffle:      trainShuffle,
		Seed:         seed,
		TrimBatch:    trainTrimBatch,
		Simulate:     trainSimulate,
		StartBalance: trainBalance,
	}, nil
}

func printOutcomes(summary *pipeline.RunSummary) {
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			fmt.Printf("❌ %s: %v\n", outcome.Model, outcome.Err)
			continue
		}

		status := "evaluated"
		if outcome.Trained {
			status = "trained"
		}
		fmt.Printf("✅ %s: %s", outcome.Model, status)

		if outcome.History != nil {
			if loss, ok := outcome.History.Last("loss"); ok {
				fmt.Printf(" (loss=%.6f", loss)
				if valLoss, ok := outcome.History.Last("val_loss"); ok {
					fmt.Printf(", val_loss=%.6f", valLoss)
				}
				fmt.Print(")")
			}
		}
		fmt.Println()

		if outcome.Sim != nil {
			fmt.Printf("   💰 Simulation: balance %.2f, %d trades\n",
				outcome.Sim.FinalBalance, outcome.Sim.Trades)
		}
		if outcome.PersistErr != nil {
			fmt.Printf("   ⚠️ Artifact write failed: %v\n", outcome.PersistErr)
		}
	}
}
