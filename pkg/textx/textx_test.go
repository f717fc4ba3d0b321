package textx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/sermon-evaluator/pkg/textx"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "grace and truth", "grace and truth"},
		{"control chars stripped", "gra\x00ce \x08and\x1f truth", "grace and truth"},
		{"tabs and newlines kept", "line one\n\tline two\r\n", "line one\n\tline two"},
		{"surrounding space trimmed", "  padded  ", "padded"},
		{"del stripped", "a\x7fb", "ab"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, textx.SanitizeText(tc.input))
		})
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, textx.WordCount(""))
	assert.Equal(t, 0, textx.WordCount("   \n\t"))
	assert.Equal(t, 3, textx.WordCount("grace and truth"))
	assert.Equal(t, 2, textx.WordCount("  spaced   out  "))
}
