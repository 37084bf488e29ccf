package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// LoadError 데이터셋 파일을 읽거나 해석할 수 없음 (실행 전체 중단)
type LoadError struct {
	Path   string
	Reason string
}

func (e LoadError) Error() string {
	return fmt.Sprintf("dataset %s: %s", e.Path, e.Reason)
}

// LengthMismatchError 동기화된 split 배열의 길이가 서로 다름
type LengthMismatchError struct {
	Split    contracts.SplitKind
	Features int
	Labels   int
	Dates    int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("split %s: features=%d labels=%d dates=%d must be equal",
		e.Split, e.Features, e.Labels, e.Dates)
}

// Options controls optional partitioning steps
type Options struct {
	TrimBatch int   // 0 = no trimming
	Shuffle   bool  // shuffle the train split
	Seed      int64 // shuffle permutation seed
}

// Partitioner loads and prepares the three-split dataset
// ⭐ SSOT: 데이터셋 파일 접근은 여기서만
type Partitioner struct {
	log zerolog.Logger
}

// NewPartitioner 새 파티셔너 생성
func NewPartitioner(log zerolog.Logger) *Partitioner {
	return &Partitioner{
		log: log.With().Str("component", "dataset.partitioner").Logger(),
	}
}

// Load deserializes exactly three splits in [warm, train, test] order
func (p *Partitioner) Load(path string) (*contracts.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadError{Path: path, Reason: err.Error()}
	}

	var raw []*contracts.SplitRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LoadError{Path: path, Reason: fmt.Sprintf("malformed dataset: %v", err)}
	}
	if len(raw) != len(contracts.SplitOrder) {
		return nil, LoadError{
			Path:   path,
			Reason: fmt.Sprintf("expected %d splits, got %d", len(contracts.SplitOrder), len(raw)),
		}
	}

	ds := &contracts.Dataset{
		Source: path,
		Splits: make(map[contracts.SplitKind]*contracts.SplitRecord, len(raw)),
	}
	for i, kind := range contracts.SplitOrder {
		if raw[i] == nil {
			return nil, LoadError{Path: path, Reason: fmt.Sprintf("split %s is null", kind)}
		}
		if !raw[i].Consistent() {
			return nil, LengthMismatchError{
				Split:    kind,
				Features: len(raw[i].Features),
				Labels:   len(raw[i].Labels),
				Dates:    len(raw[i].Dates),
			}
		}
		// 역정규화가 라벨 차원마다 bounds를 인덱싱하므로 여기서 막는다
		if raw[i].Len() > 0 {
			norm := raw[i].Norm
			targets := len(raw[i].Labels[0])
			if len(norm.Min) != targets || len(norm.Max) != targets {
				return nil, LoadError{
					Path: path,
					Reason: fmt.Sprintf("split %s: normalization bounds have min=%d max=%d entries for %d targets",
						kind, len(norm.Min), len(norm.Max), targets),
				}
			}
		}
		ds.Splits[kind] = raw[i]
	}

	p.log.Info().
		Str("path", path).
		Int("warm", ds.Split(contracts.SplitWarm).Len()).
		Int("train", ds.Split(contracts.SplitTrain).Len()).
		Int("test", ds.Split(contracts.SplitTest).Len()).
		Msg("dataset loaded")

	return ds, nil
}

// Trim truncates each split from the end to a batch-aligned length.
// Idempotent; no-op when batch <= 0.
func (p *Partitioner) Trim(ds *contracts.Dataset, batch int) {
	if batch <= 0 {
		return
	}

	for _, kind := range contracts.SplitOrder {
		split := ds.Split(kind)
		target := split.Len() - split.Len()%batch
		if target == split.Len() {
			continue
		}

		p.log.Debug().
			Str("split", string(kind)).
			Int("from", split.Len()).
			Int("to", target).
			Msg("trimming split")

		split.Features = split.Features[:target]
		split.Labels = split.Labels[:target]
		split.Dates = split.Dates[:target]
	}
}

// Shuffle reorders the train split's features, labels and dates by one
// shared random permutation, preserving index correspondence
func (p *Partitioner) Shuffle(ds *contracts.Dataset, seed int64) error {
	split := ds.Split(contracts.SplitTrain)
	if !split.Consistent() {
		return LengthMismatchError{
			Split:    contracts.SplitTrain,
			Features: len(split.Features),
			Labels:   len(split.Labels),
			Dates:    len(split.Dates),
		}
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(split.Len())

	features := make([][]float64, split.Len())
	labels := make([][]float64, split.Len())
	dates := make([]time.Time, split.Len())
	for i, j := range perm {
		features[i] = split.Features[j]
		labels[i] = split.Labels[j]
		dates[i] = split.Dates[j]
	}

	split.Features = features
	split.Labels = labels
	split.Dates = dates

	p.log.Info().Int64("seed", seed).Int("samples", split.Len()).Msg("train split shuffled")
	return nil
}

// Partition runs load, optional trim and optional shuffle, producing a
// dataset that is read-only for the rest of the run
func (p *Partitioner) Partition(path string, opts Options) (*contracts.Dataset, error) {
	ds, err := p.Load(path)
	if err != nil {
		return nil, err
	}

	p.Trim(ds, opts.TrimBatch)

	if opts.Shuffle {
		if err := p.Shuffle(ds, opts.Seed); err != nil {
			return nil, err
		}
	}

	return ds, nil
}
