package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

func RenderTabs(active models.Page) string {
	tabs := make([]string, 0, len(models.Pages))
	for _, p := range models.Pages {
		tabs = append(tabs, styles.TabStyle(p == active).Render(p.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
