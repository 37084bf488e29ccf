package contracts

import "time"

// EvalPoint is one chronologically ordered evaluation sample in real units
type EvalPoint struct {
	Date      time.Time `json:"date"`
	Predicted []float64 `json:"predicted"`
	Actual    []float64 `json:"actual"`
}

// EvalSeries is the denormalized prediction series for one split
type EvalSeries struct {
	Split  SplitKind   `json:"split"`
	Points []EvalPoint `json:"points"`
}

// Column extracts one target dimension from the series
func (s EvalSeries) Column(dim int) (predicted, actual []float64) {
	predicted = make([]float64, len(s.Points))
	actual = make([]float64, len(s.Points))
	for i, p := range s.Points {
		predicted[i] = p.Predicted[dim]
		actual[i] = p.Actual[dim]
	}
	return predicted, actual
}

// Report is the fixed contract consumed by the report sink:
// one series per evaluated split plus the optional training history
type Report struct {
	Model   string           `json:"model"`
	Dataset string           `json:"dataset"`
	Series  []EvalSeries     `json:"series"`
	History *TrainingHistory `json:"history,omitempty"`
}

// RunRecord is one row of the training-run audit trail
type RunRecord struct {
	ID           int64     `json:"id"`
	Model        string    `json:"model"`
	Dataset      string    `json:"dataset"`
	Args         string    `json:"args"`
	Trained      bool      `json:"trained"`
	FinalLoss    float64   `json:"final_loss"`
	FinalValLoss float64   `json:"final_val_loss"`
	SimBalance   float64   `json:"sim_balance"`
	SimTrades    int       `json:"sim_trades"`
	CreatedAt    time.Time `json:"created_at"`
}
