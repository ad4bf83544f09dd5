package models

import "github.com/charmbracelet/bubbles/textinput"

// AppModel represents the UI state. Controller state arrives as snapshots
// from core; everything else here is local to the terminal.
type AppModel struct {
	Page         Page              // Active tab
	Chat         SessionSnapshot   // Latest transcript from core
	Upload       UploadSnapshot    // Latest upload pipeline state from core
	Pages        map[Page]PageData // Last fetch result per data page
	Loading      map[Page]bool     // Pages with a fetch in progress
	ChatInput    textinput.Model   // Query composer
	PathInput    textinput.Model   // File path / glob field on the upload page
	UploadCursor int               // Selected row in the pending batch
	Status       string            // Status bar text
	Reachable    bool              // Last health probe result
	HealthKnown  bool              // Whether a probe has completed yet
	LoadingDots  int               // Animation counter for loading dots
	Width        int               // Terminal width
	Height       int               // Terminal height
	BaseURL      string            // API base shown in the status bar
}

// NewAppModel builds the initial UI state for the given API base
func NewAppModel(baseURL string) AppModel {
	chat := textinput.New()
	chat.Placeholder = "Ask about lab results..."
	chat.CharLimit = 500

	paths := textinput.New()
	paths.Placeholder = "report.png scans/*.jpg"
	paths.CharLimit = 1000

	return AppModel{
		Page:      PageDashboard,
		Pages:     make(map[Page]PageData),
		Loading:   make(map[Page]bool),
		ChatInput: chat,
		PathInput: paths,
		Status:    "Ready",
		Width:     100,
		Height:    30,
		BaseURL:   baseURL,
	}
}

// Busy reports whether anything the status bar animates is in progress
func (m AppModel) Busy() bool {
	if m.Chat.State.InFlight() || m.Upload.State == UploadUploading {
		return true
	}
	for _, loading := range m.Loading {
		if loading {
			return true
		}
	}
	return false
}
