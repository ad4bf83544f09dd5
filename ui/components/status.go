package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Archith7/MediSaarthi/ui/styles"
)

// RenderStatus draws the status bar with the API health indicator on the right
func RenderStatus(status string, busy bool, loadingDots int, width int, healthKnown, reachable bool, baseURL string) string {
	statusContent := status
	if busy {
		statusContent += strings.Repeat(".", loadingDots)
	}

	health := lipgloss.NewStyle().Foreground(styles.Muted).Render("○ checking " + baseURL)
	if healthKnown {
		if reachable {
			health = lipgloss.NewStyle().Foreground(styles.Success).Render("● online " + baseURL)
		} else {
			health = lipgloss.NewStyle().Foreground(styles.Danger).Render("● offline " + baseURL)
		}
	}

	gap := max(1, width-lipgloss.Width(statusContent)-lipgloss.Width(health)-2)
	return styles.StatusStyle(width).Render(statusContent + strings.Repeat(" ", gap) + health)
}
