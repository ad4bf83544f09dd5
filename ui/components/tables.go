package components

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/ui/styles"
)

func newTable(width int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Accent)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle()
			}
			return styles.CellStyle()
		}).
		Width(max(40, width-2)).
		Headers(headers...)
}

// RenderRecords renders the data rows returned with a query answer
func RenderRecords(records []models.TestRecord, width int) string {
	t := newTable(width, "Patient", "Test", "Value", "Unit", "Reference", "Flag")
	for _, r := range records {
		flag := ""
		if r.IsAbnormal {
			flag = styles.DirectionStyle(r.AbnormalDirection).Render(models.OrNA(r.AbnormalDirection))
		}
		t.Row(
			models.OrNA(r.PatientName),
			r.Test(),
			r.Value.String(),
			r.Unit,
			models.Range(r.ReferenceMin, r.ReferenceMax),
			flag,
		)
	}
	return t.Render()
}

// RenderAbnormal renders the recent abnormal results page
func RenderAbnormal(data models.PageData, loading bool, width int) string {
	if msg, ok := pageState(data, loading, "Loading recent abnormal results"); ok {
		return msg
	}
	if len(data.Abnormal) == 0 {
		return styles.HintStyle().Render("No abnormal results recorded yet")
	}

	t := newTable(width, "Patient", "Test", "Value", "Unit", "Reference", "Direction")
	for _, r := range data.Abnormal {
		t.Row(
			models.OrNA(r.PatientName),
			models.OrNA(r.CanonicalTest),
			r.Value.String(),
			r.Unit,
			models.Range(r.ReferenceMin, r.ReferenceMax),
			styles.DirectionStyle(r.AbnormalDirection).Render(models.OrNA(r.AbnormalDirection)),
		)
	}
	return t.Render()
}

// RenderPatients renders the patient directory
func RenderPatients(data models.PageData, loading bool, width int) string {
	if msg, ok := pageState(data, loading, "Loading patients"); ok {
		return msg
	}
	if len(data.Patients) == 0 {
		return styles.HintStyle().Render("No patients yet. Upload a lab report to get started.")
	}

	t := newTable(width, "Name", "Age", "Gender", "Tests", "Latest", "Abnormal")
	for _, p := range data.Patients {
		abnormal := styles.OutcomeStyle(true).Render("no")
		if p.HasAbnormal {
			abnormal = styles.OutcomeStyle(false).Render("yes")
		}
		t.Row(
			models.OrNA(p.Name),
			p.Age.String(),
			models.OrNA(p.Gender),
			strconv.Itoa(p.TestCount),
			p.Latest(),
			abnormal,
		)
	}
	return t.Render()
}

// pageState returns the loading or placeholder text when the page has no
// usable data.
func pageState(data models.PageData, loading bool, loadingText string) (string, bool) {
	switch {
	case loading:
		return styles.HintStyle().Render(loadingText + "..."), true
	case data.Failed():
		return styles.PlaceholderStyle().Render(data.Placeholder), true
	case data.FetchedAt.IsZero():
		return styles.HintStyle().Render("Press r to refresh"), true
	}
	return "", false
}
