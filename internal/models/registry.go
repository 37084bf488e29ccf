package models

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/foresight/internal/contracts"
)

// Registry is the fixed, ordered set of available forecast models.
// ⭐ 전역 변수가 아님: 프로세스 시작 시 한 번 생성해서 주입한다
type Registry struct {
	models []contracts.ForecastModel
}

// NewRegistry creates a registry over the given models, in order
func NewRegistry(models ...contracts.ForecastModel) *Registry {
	return &Registry{models: models}
}

// Default builds the standard registry
func Default(log zerolog.Logger) *Registry {
	return NewRegistry(
		NewLinear(log),
		NewMLP(log),
		NewNaive(log),
	)
}

// All returns every model in registry order
func (r *Registry) All() []contracts.ForecastModel {
	return r.models
}

// Names returns the model names in registry order
func (r *Registry) Names() []string {
	names := make([]string, len(r.models))
	for i, m := range r.models {
		names[i] = m.Name()
	}
	return names
}

// Select resolves requested names case-insensitively. nil selects all
// models. 결과는 요청 순서가 아니라 registry 순서를 따른다 (재현성).
// Names with no match are silently excluded.
func (r *Registry) Select(requested []string) []contracts.ForecastModel {
	if requested == nil {
		return r.models
	}

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var selected []contracts.ForecastModel
	for _, m := range r.models {
		if wanted[strings.ToLower(m.Name())] {
			selected = append(selected, m)
		}
	}
	return selected
}
