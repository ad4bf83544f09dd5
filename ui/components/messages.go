package components

import (
	"strings"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/utils"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

// RenderMessages renders the transcript in insertion order. The pending
// indicator animates with loadingDots.
func RenderMessages(messages []models.Message, loadingDots int, width int) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	pendingStyle := styles.PendingStyle()

	for _, msg := range messages {
		switch msg.Role {
		case models.User:
			b.WriteString(userStyle.Render("You: "+msg.Text) + "\n\n")
		case models.Assistant:
			b.WriteString(assistantStyle.Render("Assistant: "+utils.RenderMarkdown(msg.Text)) + "\n")
			if len(msg.Records) > 0 {
				b.WriteString(RenderRecords(msg.Records, width) + "\n")
			}
			b.WriteString("\n")
		case models.Pending:
			b.WriteString(pendingStyle.Render(msg.Text+strings.Repeat(".", loadingDots)) + "\n\n")
		}
	}

	return b.String()
}

// RenderSuggestions lists the canned queries with their function keys
func RenderSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	lines := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		lines = append(lines, "F"+string(rune('1'+i))+"  "+s)
	}
	return styles.HintStyle().Render(strings.Join(lines, "\n"))
}
