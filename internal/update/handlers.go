package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archith7/MediSaarthi/internal/eventbus"
	"github.com/Archith7/MediSaarthi/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab":
		return SwitchPage(appModel, appModel.Page.Next(1), eb)
	case "shift+tab":
		return SwitchPage(appModel, appModel.Page.Next(-1), eb)
	}

	switch appModel.Page {
	case models.PageQuery:
		return handleQueryKey(appModel, keyMsg, eb)
	case models.PageUpload:
		return handleUploadKey(appModel, keyMsg, eb)
	}

	switch keyMsg.String() {
	case "q":
		return tea.Quit
	case "r":
		send(appModel, eb, eventbus.ActivatePageEvent{Page: appModel.Page})
	}
	return nil
}

// SwitchPage makes page active. Data pages are fetched once per activation.
func SwitchPage(appModel *models.AppModel, page models.Page, eb *eventbus.EventBus) tea.Cmd {
	appModel.Page = page
	appModel.ChatInput.Blur()
	appModel.PathInput.Blur()

	switch page {
	case models.PageQuery:
		return appModel.ChatInput.Focus()
	case models.PageUpload:
		return appModel.PathInput.Focus()
	}
	send(appModel, eb, eventbus.ActivatePageEvent{Page: page})
	return nil
}

func handleQueryKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "enter":
		text := appModel.ChatInput.Value()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if appModel.Chat.State.InFlight() {
			appModel.Status = "Wait for the current answer before asking again"
			return nil
		}
		if send(appModel, eb, eventbus.SubmitQueryEvent{Text: text}) {
			appModel.ChatInput.Reset()
		}
		return nil
	case "ctrl+r":
		send(appModel, eb, eventbus.ResetChatEvent{})
		return nil
	case "f1", "f2", "f3", "f4":
		index := int(keyMsg.String()[1] - '1')
		if appModel.Chat.State.InFlight() {
			appModel.Status = "Wait for the current answer before asking again"
			return nil
		}
		send(appModel, eb, eventbus.SuggestionEvent{Index: index})
		return nil
	}

	var cmd tea.Cmd
	appModel.ChatInput, cmd = appModel.ChatInput.Update(keyMsg)
	return cmd
}

func handleUploadKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "enter":
		if paths := strings.Fields(appModel.PathInput.Value()); len(paths) > 0 {
			if send(appModel, eb, eventbus.SelectFilesEvent{Paths: paths}) {
				appModel.PathInput.Reset()
				appModel.UploadCursor = 0
			}
			return nil
		}
		if appModel.Upload.State == models.UploadPreviewing {
			send(appModel, eb, eventbus.StartUploadEvent{})
		}
		return nil
	case "up":
		if appModel.UploadCursor > 0 {
			appModel.UploadCursor--
		}
		return nil
	case "down":
		if appModel.UploadCursor < len(appModel.Upload.Files)-1 {
			appModel.UploadCursor++
		}
		return nil
	case "ctrl+d":
		if appModel.Upload.State == models.UploadPreviewing {
			send(appModel, eb, eventbus.RemoveFileEvent{Index: appModel.UploadCursor})
		}
		return nil
	case "esc":
		send(appModel, eb, eventbus.CancelUploadEvent{})
		return nil
	}

	var cmd tea.Cmd
	appModel.PathInput, cmd = appModel.PathInput.Update(keyMsg)
	return cmd
}

func send(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) bool {
	if err := eb.SendToCore(event); err != nil {
		appModel.Status = "Error sending event: " + err.Error()
		return false
	}
	return true
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.ChatUpdateEvent:
		if event.Session.Version < appModel.Chat.Version {
			return nil
		}
		appModel.Chat = event.Session
		switch {
		case event.Session.State.InFlight():
			appModel.Status = "Analyzing your query"
		case event.Session.State == models.QueryResolved:
			appModel.Status = "Ready"
		}
	case eventbus.UploadUpdateEvent:
		if event.Upload.Version < appModel.Upload.Version {
			return nil
		}
		appModel.Upload = event.Upload
		if appModel.UploadCursor >= len(event.Upload.Files) {
			appModel.UploadCursor = max(0, len(event.Upload.Files)-1)
		}
		appModel.Status = uploadStatus(event.Upload)
	case eventbus.PageLoadingEvent:
		appModel.Loading[event.Page] = true
	case eventbus.PageDataEvent:
		appModel.Loading[event.Data.Page] = false
		appModel.Pages[event.Data.Page] = event.Data
		if event.Data.Failed() {
			appModel.Status = event.Data.Placeholder
		}
	case eventbus.HealthEvent:
		appModel.Reachable = event.Reachable
		appModel.HealthKnown = true
	case eventbus.NoticeEvent:
		appModel.Status = event.Message
	}

	return nil
}

func uploadStatus(snap models.UploadSnapshot) string {
	switch snap.State {
	case models.UploadUploading:
		return "Uploading " + snap.Current
	case models.UploadCompleted:
		if failed := snap.Failed(); failed > 0 {
			return "Upload finished with failures"
		}
		return "Upload complete"
	case models.UploadCancelled:
		return "Upload cancelled"
	}
	return "Ready"
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
	appModel.ChatInput.Width = max(10, sizeMsg.Width-8)
	appModel.PathInput.Width = max(10, sizeMsg.Width-8)
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Busy() {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
