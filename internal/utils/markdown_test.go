package utils

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "2 patients found", "2 patients found"},
		{"bold", "Found **2** patients", "Found 2 patients"},
		{"italic", "values are _approximate_ here", "values are approximate here"},
		{"heading", "## Summary", "Summary"},
		{"soft wrap", "first line\nsecond line", "first line second line"},
		{"paragraphs", "one\n\ntwo", "one\ntwo"},
		{"snake case kept", "see canonical_test_name", "see canonical_test_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderMarkdown(tt.in))
		})
	}
}

func TestRenderMarkdown_Lists(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderMarkdown("Results:\n- Asha Rao\n- Ravi Kumar\n1. first")
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, "Results:", lines[0])
	assert.Contains(t, lines[1], "• Asha Rao")
	assert.Contains(t, lines[3], "1. first")
}
