package contracts

// TrainingHistory is the per-epoch record of named training metrics
// for one model, in insertion order
type TrainingHistory struct {
	Order  []string             `json:"order"`
	Series map[string][]float64 `json:"series"`
}

// NewTrainingHistory creates an empty history
func NewTrainingHistory() *TrainingHistory {
	return &TrainingHistory{Series: make(map[string][]float64)}
}

// Append records one epoch value for a metric, registering the metric
// on first use
func (h *TrainingHistory) Append(metric string, value float64) {
	if _, ok := h.Series[metric]; !ok {
		h.Order = append(h.Order, metric)
	}
	h.Series[metric] = append(h.Series[metric], value)
}

// Metrics returns metric names in insertion order
func (h *TrainingHistory) Metrics() []string {
	return h.Order
}

// Last returns the final recorded value for a metric
func (h *TrainingHistory) Last(metric string) (float64, bool) {
	vals, ok := h.Series[metric]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[len(vals)-1], true
}

// ForecastModel 예측 모델 capability 인터페이스
// ⭐ 코디네이터는 구체 타입이 아닌 이 인터페이스에만 의존한다
type ForecastModel interface {
	// Name is the unique model identifier used for selection and
	// history keys
	Name() string

	// Schema lists accepted hyperparameter keys
	Schema() ParamSchema

	// Train fits the model on the train split, validating on the warm
	// split, and returns the per-epoch history. 내부 가중치를 변경한다.
	Train(ds *Dataset, args Params) (*TrainingHistory, error)

	// Predict runs inference; output rows align index-for-index with
	// the input samples
	Predict(features [][]float64) ([][]float64, error)

	// Save persists weights and architecture to path
	Save(path string) error

	// Load restores weights and architecture from path
	Load(path string) error
}
