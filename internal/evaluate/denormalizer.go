package evaluate

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// EvalSplits are the splits evaluated for reporting, in output order
var EvalSplits = []contracts.SplitKind{contracts.SplitTrain, contracts.SplitTest}

// Denormalizer turns raw model output into chronologically ordered
// real-unit series
type Denormalizer struct {
	log zerolog.Logger
}

// NewDenormalizer 새 역정규화기 생성
func NewDenormalizer(log zerolog.Logger) *Denormalizer {
	return &Denormalizer{
		log: log.With().Str("component", "evaluate.denormalizer").Logger(),
	}
}

// Evaluate runs inference for each evaluated split, reverses the
// split's own normalization on predictions and labels, and restores
// chronological order. train split은 셔플로 시간 순서가 깨졌으므로
// 정렬이 필수이고, test split에서는 no-op이다.
func (d *Denormalizer) Evaluate(model contracts.ForecastModel, ds *contracts.Dataset) ([]contracts.EvalSeries, error) {
	series := make([]contracts.EvalSeries, 0, len(EvalSplits))

	for _, kind := range EvalSplits {
		split := ds.Split(kind)

		raw, err := model.Predict(split.Features)
		if err != nil {
			return nil, fmt.Errorf("predict %s split: %w", kind, err)
		}
		if len(raw) != split.Len() {
			return nil, fmt.Errorf("predict %s split: %d outputs for %d samples", kind, len(raw), split.Len())
		}

		predicted := split.Norm.Reverse(raw)
		actual := split.Norm.Reverse(split.Labels)

		points := make([]contracts.EvalPoint, split.Len())
		for i := range points {
			points[i] = contracts.EvalPoint{
				Date:      split.Dates[i],
				Predicted: predicted[i],
				Actual:    actual[i],
			}
		}

		sort.SliceStable(points, func(a, b int) bool {
			return points[a].Date.Before(points[b].Date)
		})

		series = append(series, contracts.EvalSeries{Split: kind, Points: points})

		d.log.Debug().
			Str("model", model.Name()).
			Str("split", string(kind)).
			Int("points", len(points)).
			Msg("split evaluated")
	}

	return series, nil
}
