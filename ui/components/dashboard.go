package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

var counterLabels = [4]string{"Patients", "Tests", "Abnormal", "Test types"}

// maxBars caps how many tests the distribution charts show
const maxBars = 8

func RenderDashboard(data models.PageData, loading bool, width int) string {
	if msg, ok := pageState(data, loading, "Loading statistics"); ok {
		return msg
	}
	stats := models.Stats{}
	if data.Stats != nil {
		stats = *data.Stats
	}

	counters := stats.Counters()
	cards := make([]string, 0, len(counters))
	for i, n := range counters {
		cards = append(cards, styles.CardStyle().Render(fmt.Sprintf("%d\n%s", n, counterLabels[i])))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")
	b.WriteString(RenderBars("Tests by type", stats.TestDistribution, styles.Accent, width))
	b.WriteString("\n")
	b.WriteString(RenderBars("Abnormal by test", stats.AbnormalByTest, styles.Danger, width))
	return b.String()
}

type bar struct {
	label string
	count int
}

// RenderBars draws a horizontal bar chart of the largest counts
func RenderBars(title string, counts map[string]int, color lipgloss.Color, width int) string {
	header := styles.HeaderStyle().Render(title)
	if len(counts) == 0 {
		return header + "\n" + styles.HintStyle().Render("No data") + "\n"
	}

	bars := make([]bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, bar{label, n})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].count != bars[j].count {
			return bars[i].count > bars[j].count
		}
		return bars[i].label < bars[j].label
	})
	if len(bars) > maxBars {
		bars = bars[:maxBars]
	}

	labelWidth := 0
	for _, b := range bars {
		labelWidth = max(labelWidth, len(b.label))
	}
	span := max(10, width-labelWidth-12)
	peak := max(1, bars[0].count)
	fill := lipgloss.NewStyle().Foreground(color)

	var b strings.Builder
	b.WriteString(header + "\n")
	for _, item := range bars {
		n := item.count * span / peak
		if item.count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&b, "  %-*s %s %d\n", labelWidth, item.label, fill.Render(strings.Repeat("█", n)), item.count)
	}
	return b.String()
}
