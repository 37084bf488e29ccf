package contracts

import "time"

// SplitKind 데이터셋 분할 종류
type SplitKind string

const (
	SplitWarm  SplitKind = "warm"
	SplitTrain SplitKind = "train"
	SplitTest  SplitKind = "test"
)

// SplitOrder is the fixed order in which splits are stored and loaded
var SplitOrder = []SplitKind{SplitWarm, SplitTrain, SplitTest}

// Normalization holds per-split scale parameters mapping model-internal
// values back to real-world units
type Normalization struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Apply maps a real-unit vector into the model's [0, 1] range
func (n Normalization) Apply(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		span := n.Max[i] - n.Min[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - n.Min[i]) / span
	}
	return out
}

// Reverse maps normalized vectors back to real units
// ⭐ 모델 출력과 라벨 모두 동일한 역정규화를 거친다
func (n Normalization) Reverse(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		rr := make([]float64, len(row))
		for j, v := range row {
			rr[j] = v*(n.Max[j]-n.Min[j]) + n.Min[j]
		}
		out[i] = rr
	}
	return out
}

// SplitRecord is one partition of the dataset with index-aligned
// features, labels and dates
type SplitRecord struct {
	Features [][]float64   `json:"dataset"`
	Labels   [][]float64   `json:"labels"`
	Dates    []time.Time   `json:"dates"`
	Norm     Normalization `json:"normalization"`
}

// Len returns the number of samples in the split
func (s *SplitRecord) Len() int {
	return len(s.Features)
}

// Consistent reports whether features, labels and dates are index-aligned
func (s *SplitRecord) Consistent() bool {
	return len(s.Features) == len(s.Labels) && len(s.Labels) == len(s.Dates)
}

// Dataset holds the three splits after partitioning
// 생성 후 read-only로 취급한다
type Dataset struct {
	Source string
	Splits map[SplitKind]*SplitRecord
}

// Split returns the record for the given kind
func (d *Dataset) Split(kind SplitKind) *SplitRecord {
	return d.Splits[kind]
}
