package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/update"
	"github.com/Archith7/MediSaarthi/ui/components"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus)

	return m, cmd
}

func (m *AppModel) View() string {
	state := m.appModel
	var b strings.Builder

	b.WriteString(components.RenderTabs(state.Page))
	b.WriteString("\n\n")

	data := state.Pages[state.Page]
	loading := state.Loading[state.Page]
	switch state.Page {
	case models.PageDashboard:
		b.WriteString(components.RenderDashboard(data, loading, state.Width))
	case models.PageAbnormal:
		b.WriteString(components.RenderAbnormal(data, loading, state.Width))
	case models.PagePatients:
		b.WriteString(components.RenderPatients(data, loading, state.Width))
	case models.PageQuery:
		b.WriteString(components.RenderMessages(state.Chat.Messages, state.LoadingDots, state.Width))
		b.WriteString(components.RenderSuggestions(state.Chat.Suggestions))
		b.WriteString("\n")
		b.WriteString(components.RenderInput(state.ChatInput, state.Width))
	case models.PageUpload:
		b.WriteString(components.RenderUpload(state.PathInput, state.Upload, state.UploadCursor, state.Width))
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle().Render(keyHelp(state.Page)))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(state.Status, state.Busy(), state.LoadingDots, state.Width, state.HealthKnown, state.Reachable, state.BaseURL))

	return b.String()
}

func keyHelp(page models.Page) string {
	switch page {
	case models.PageQuery:
		return "tab switch page • enter ask • F1-F4 suggestions • ctrl+r new chat • ctrl+c quit"
	case models.PageUpload:
		return "tab switch page • enter select/upload • ↑/↓ choose • ctrl+d remove • esc cancel • ctrl+c quit"
	}
	return "tab switch page • r refresh • q quit"
}
