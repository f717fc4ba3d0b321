package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/sermon-evaluator/internal/app"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to wildcard", "", []string{"*"}},
		{"wildcard passes through", "*", []string{"*"}},
		{"single origin", "https://example.com", []string{"https://example.com"}},
		{
			"multiple origins trimmed",
			" https://a.example , https://b.example ",
			[]string{"https://a.example", "https://b.example"},
		},
		{"blank entries dropped", "https://a.example,,  ,", []string{"https://a.example"}},
		{"only separators defaults to wildcard", ", ,", []string{"*"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, app.ParseOrigins(tc.input))
		})
	}
}
