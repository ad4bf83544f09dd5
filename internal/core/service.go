package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Archith7/MediSaarthi/internal/config"
	"github.com/Archith7/MediSaarthi/internal/eventbus"
	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

// Service owns every controller and translates UI events into controller
// calls. Long operations run on their own goroutines so queries, uploads
// and page fetches interleave freely.
type Service struct {
	config   *config.Config
	client   *transport.Client
	session  *QuerySession
	uploads  *UploadPipeline
	binder   *Binder
	health   *HealthMonitor
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewService(cfg *config.Config, eb *eventbus.EventBus) (*Service, error) {
	client, err := transport.NewClient(cfg.GetBaseURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return NewServiceWithClient(cfg, client, eb), nil
}

// NewServiceWithClient wires the controllers around an existing client
func NewServiceWithClient(cfg *config.Config, client *transport.Client, eb *eventbus.EventBus) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		config:   cfg,
		client:   client,
		session:  NewQuerySession(client),
		uploads:  NewUploadPipeline(client),
		binder:   NewBinder(client, cfg.GetRecentLimit()),
		health:   NewHealthMonitor(client, cfg.GetHealthInterval()),
		eventBus: eb,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.session.OnChange(func(snap models.SessionSnapshot) {
		s.push(eventbus.ChatUpdateEvent{Session: snap})
	})
	s.uploads.OnChange(func(snap models.UploadSnapshot) {
		s.push(eventbus.UploadUpdateEvent{Upload: snap})
	})
	s.health.OnChange(func(reachable bool) {
		s.push(eventbus.HealthEvent{Reachable: reachable})
	})

	return s
}

// Start pushes the initial state and starts the event loop and the
// health probe.
func (s *Service) Start() {
	s.push(eventbus.ChatUpdateEvent{Session: s.session.Snapshot()})
	s.push(eventbus.UploadUpdateEvent{Upload: s.uploads.Snapshot()})

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.health.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.eventLoop()
	}()
}

// Stop cancels outstanding work and waits for it to finish
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) Session() *QuerySession   { return s.session }
func (s *Service) Uploads() *UploadPipeline { return s.uploads }
func (s *Service) Binder() *Binder          { return s.binder }
func (s *Service) Health() *HealthMonitor   { return s.health }

// BaseURL returns the API base the service talks to
func (s *Service) BaseURL() string {
	return s.client.BaseURL()
}

func (s *Service) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *Service) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SubmitQueryEvent:
		s.goRun(func() { s.notice(s.session.Submit(s.ctx, e.Text)) })
	case eventbus.SuggestionEvent:
		s.goRun(func() { s.notice(s.session.Suggest(s.ctx, e.Index)) })
	case eventbus.ResetChatEvent:
		s.session.Reset()
	case eventbus.SelectFilesEvent:
		s.selectFiles(e.Paths)
	case eventbus.RemoveFileEvent:
		s.notice(s.uploads.RemoveFile(e.Index))
	case eventbus.StartUploadEvent:
		s.goRun(s.upload)
	case eventbus.CancelUploadEvent:
		s.notice(s.uploads.Cancel())
	case eventbus.ActivatePageEvent:
		s.activate(e.Page)
	}
}

func (s *Service) selectFiles(paths []string) {
	files, err := LoadFiles(paths)
	if err != nil {
		s.notice(err)
		return
	}
	kept, err := s.uploads.SelectFiles(files)
	if err != nil {
		s.notice(err)
		return
	}
	if dropped := len(files) - kept; dropped > 0 {
		log.Printf("ignored %d non-image file(s)", dropped)
	}
}

func (s *Service) upload() {
	outcomes, err := s.uploads.Upload(s.ctx)
	if err != nil {
		s.notice(err)
		return
	}
	for _, o := range outcomes {
		if o.Succeeded {
			// new reports change the aggregate numbers
			s.activate(models.PageDashboard)
			return
		}
	}
}

func (s *Service) activate(page models.Page) {
	if !page.HasData() {
		return
	}
	s.push(eventbus.PageLoadingEvent{Page: page})
	s.goRun(func() {
		s.push(eventbus.PageDataEvent{Data: s.binder.Activate(s.ctx, page)})
	})
}

func (s *Service) goRun(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Service) notice(err error) {
	if err == nil || errors.Is(err, ErrSessionReset) {
		return
	}
	s.push(eventbus.NoticeEvent{Message: err.Error(), Err: err})
}

func (s *Service) push(event eventbus.CoreEvent) {
	if err := s.eventBus.SendToUIWait(s.ctx, event); err != nil {
		log.Printf("Error sending state to UI: %v", err)
	}
}
