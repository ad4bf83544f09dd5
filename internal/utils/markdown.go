package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	orderedItem = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCode  = regexp.MustCompile("`([^`]+)`")
	boldText    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicText  = regexp.MustCompile(`(^|[^*\w])[*_]([^*_]+)[*_]([^*\w]|$)`)
	paragraphs  = regexp.MustCompile(`\n\s*\n`)

	codeStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	listStyle   = lipgloss.NewStyle().MarginLeft(2)
)

// RenderMarkdown renders the small markdown subset the analytics server
// puts in answers: headings, bullet and numbered lists, inline code, bold
// and italic. Paragraphs are separated by a single newline.
func RenderMarkdown(text string) string {
	var out []string
	for _, para := range paragraphs.Split(strings.TrimSpace(text), -1) {
		for _, line := range joinLines(para) {
			out = append(out, renderLine(line))
		}
	}
	return strings.Join(out, "\n")
}

// joinLines folds soft-wrapped lines of a paragraph back together while
// keeping headings and list items on their own lines.
func joinLines(para string) []string {
	var lines []string
	for _, raw := range strings.Split(para, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(lines) == 0 || isBlockLine(line) || isBlockLine(lines[len(lines)-1]) {
			lines = append(lines, line)
			continue
		}
		lines[len(lines)-1] += " " + line
	}
	return lines
}

func isBlockLine(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "* ") ||
		orderedItem.MatchString(line)
}

func renderLine(line string) string {
	if title, ok := cutHeading(line); ok {
		return boldStyle.Render(renderInline(title))
	}
	for _, bullet := range []string{"- ", "* "} {
		if item, ok := strings.CutPrefix(line, bullet); ok {
			return listStyle.Render("• " + renderInline(item))
		}
	}
	if m := orderedItem.FindStringSubmatch(line); m != nil {
		return listStyle.Render(m[1] + ". " + renderInline(m[2]))
	}
	return renderInline(line)
}

func cutHeading(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, "#")
	if trimmed == line || !strings.HasPrefix(trimmed, " ") {
		return "", false
	}
	return strings.TrimSpace(trimmed), true
}

func renderInline(line string) string {
	line = inlineCode.ReplaceAllStringFunc(line, func(m string) string {
		return codeStyle.Render(strings.Trim(m, "`"))
	})
	line = boldText.ReplaceAllStringFunc(line, func(m string) string {
		return boldStyle.Render(strings.Trim(m, "*"))
	})
	return italicText.ReplaceAllStringFunc(line, func(m string) string {
		parts := italicText.FindStringSubmatch(m)
		return parts[1] + italicStyle.Render(parts[2]) + parts[3]
	})
}
