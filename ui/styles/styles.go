package styles

import "github.com/charmbracelet/lipgloss"

var (
	Accent  = lipgloss.Color("62")
	Muted   = lipgloss.Color("241")
	Danger  = lipgloss.Color("203")
	Success = lipgloss.Color("42")
	Low     = lipgloss.Color("39")
	High    = lipgloss.Color("208")
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(0, 1).
		Width(max(10, width-4))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func SystemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Padding(0, 2)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(2)
}

func AssistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		MarginLeft(2)
}

func PendingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true).
		MarginLeft(3)
}

func TabStyle(active bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 2)
	if active {
		return s.Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(Accent)
	}
	return s.Foreground(Muted)
}

func CardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(0, 2).
		MarginRight(1).
		Align(lipgloss.Center)
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)
}

func CellStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1)
}

func PlaceholderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Danger).
		Padding(1, 2)
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Padding(0, 2)
}

func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("25"))
}

// DirectionStyle colours an abnormal flag by direction
func DirectionStyle(direction string) lipgloss.Style {
	switch direction {
	case "LOW":
		return lipgloss.NewStyle().Foreground(Low).Bold(true)
	case "HIGH", "CRITICAL":
		return lipgloss.NewStyle().Foreground(High).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(Muted)
}

func OutcomeStyle(succeeded bool) lipgloss.Style {
	if succeeded {
		return lipgloss.NewStyle().Foreground(Success)
	}
	return lipgloss.NewStyle().Foreground(Danger)
}
