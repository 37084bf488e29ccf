package models

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_RegistryOrder(t *testing.T) {
	r := Default(zerolog.Nop())
	require.Equal(t, []string{"Linear", "MLP", "Naive"}, r.Names())

	// 요청 순서와 무관하게 registry 순서 유지, 대소문자 무시
	selected := r.Select([]string{"naive", "LINEAR"})
	require.Len(t, selected, 2)
	assert.Equal(t, "Linear", selected[0].Name())
	assert.Equal(t, "Naive", selected[1].Name())
}

func TestSelect_NilSelectsAll(t *testing.T) {
	r := Default(zerolog.Nop())
	assert.Len(t, r.Select(nil), 3)
}

func TestSelect_UnknownNamesSilentlyExcluded(t *testing.T) {
	r := Default(zerolog.Nop())

	selected := r.Select([]string{"mlp", "conv9d"})
	require.Len(t, selected, 1)
	assert.Equal(t, "MLP", selected[0].Name())

	assert.Empty(t, r.Select([]string{"nothing"}))
}
