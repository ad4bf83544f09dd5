package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

// RenderUpload renders the path field, the pending batch, the progress
// bar and the per-file outcomes.
func RenderUpload(input textinput.Model, snap models.UploadSnapshot, cursor int, width int) string {
	var b strings.Builder

	b.WriteString(RenderInput(input, width) + "\n")

	switch snap.State {
	case models.UploadIdle, models.UploadCancelled:
		b.WriteString(styles.HintStyle().Render("Enter image paths or globs, then press enter to preview") + "\n")
	case models.UploadPreviewing:
		b.WriteString(styles.HeaderStyle().Render(fmt.Sprintf("%d file(s) ready", len(snap.Files))) + "\n")
		for i, name := range snap.Files {
			line := "  " + name
			if i == cursor {
				line = styles.SelectedStyle().Render("> " + name)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(styles.HintStyle().Render("enter upload • ctrl+d remove • esc cancel") + "\n")
	case models.UploadUploading, models.UploadCompleted:
		b.WriteString(RenderProgress(snap.Progress, width) + "\n")
		if snap.Current != "" {
			b.WriteString(styles.HintStyle().Render("Uploading "+snap.Current) + "\n")
		}
	}

	if len(snap.Outcomes) > 0 {
		b.WriteString("\n" + RenderOutcomes(snap.Outcomes))
	}
	return b.String()
}

func RenderProgress(p models.UploadProgress, width int) string {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(max(10, width-20)))
	return fmt.Sprintf("  %s  %d/%d", bar.ViewAs(float64(p.Percent())/100), p.Completed, p.Total)
}

func RenderOutcomes(outcomes []models.UploadOutcome) string {
	var b strings.Builder
	for _, o := range outcomes {
		mark := "✓"
		if !o.Succeeded {
			mark = "✗"
		}
		b.WriteString(styles.OutcomeStyle(o.Succeeded).Render(fmt.Sprintf("  %s %s  %s", mark, o.FileName, o.Message)) + "\n")
	}
	return b.String()
}
