package app

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Archith7/MediSaarthi/internal/config"
	"github.com/Archith7/MediSaarthi/internal/core"
	"github.com/Archith7/MediSaarthi/internal/dispatcher"
	"github.com/Archith7/MediSaarthi/internal/eventbus"
	"github.com/Archith7/MediSaarthi/internal/models"
)

// DebugEnv names the variable holding a log file path for TUI sessions
const DebugEnv = "MEDISAARTHI_DEBUG"

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.Service
	model      *AppModel
	logFile    io.Closer
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func NewApplication(cfg *config.Config) (*Application, error) {
	logFile, err := setupLogging()
	if err != nil {
		return nil, err
	}

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		log.Printf("event bus: %v", e)
	})

	disp := dispatcher.NewEventDispatcher(eb)

	service, err := core.NewService(cfg, eb)
	if err != nil {
		log.Printf("Failed to initialize service: %v", err)
		return nil, err
	}

	model := &AppModel{
		appModel:   models.NewAppModel(service.BaseURL()),
		dispatcher: disp,
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		model:      model,
		logFile:    logFile,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	// the dashboard is the landing page and needs its first fetch
	if err := app.eventBus.SendToCore(eventbus.ActivatePageEvent{Page: models.PageDashboard}); err != nil {
		log.Printf("Failed to activate dashboard: %v", err)
	}

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	if app.logFile != nil {
		app.logFile.Close()
	}
}

// setupLogging keeps log output off the terminal the TUI draws on
func setupLogging() (io.Closer, error) {
	path := os.Getenv(DebugEnv)
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	f, err := tea.LogToFile(path, "medisaarthi")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return f, nil
}
