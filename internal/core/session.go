package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

const (
	queryPath = "/api/query"

	WelcomeMessage             = "Hello! Ask me anything about the lab reports, for example which patients have abnormal results."
	PendingMessage             = "Analyzing your query"
	ConnectivityFailureMessage = "Sorry, I couldn't reach the analytics server. Please check that the API server is running and try again."
	FallbackFailureMessage     = "Sorry, I couldn't process that query. Please try rephrasing it."
)

// DefaultSuggestions are the shortcut queries offered in the welcome state
var DefaultSuggestions = []string{
	"Show patients with low hemoglobin",
	"Show all abnormal test results",
	"Which patients have high glucose?",
	"Show cholesterol results above normal",
}

// Querier performs JSON calls against the API
type Querier interface {
	Call(ctx context.Context, method, path string, body any) (*transport.Response, error)
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Data        []models.TestRecord `json:"data"`
	ResultCount int                 `json:"result_count"`
}

// QuerySession owns the chat transcript and allows one query in flight.
type QuerySession struct {
	mu          sync.Mutex
	api         Querier
	messages    []models.Message
	draft       string
	state       models.QueryState
	pendingID   string
	generation  uint64
	cancel      context.CancelFunc
	suggestions []string
	version     uint64
	publish     publisher[models.SessionSnapshot]
	now         func() time.Time
}

func NewQuerySession(api Querier) *QuerySession {
	s := &QuerySession{
		api:         api,
		suggestions: append([]string(nil), DefaultSuggestions...),
		now:         time.Now,
	}
	s.messages = s.welcome()
	return s
}

// OnChange registers the observer notified after every transcript change
func (s *QuerySession) OnChange(fn func(models.SessionSnapshot)) {
	s.publish.set(fn)
}

// SetDraft updates the composition field
func (s *QuerySession) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	snap, notify := s.publishLocked()
	s.mu.Unlock()
	notify(snap)
}

func (s *QuerySession) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submit sends text as a query and blocks until the answer (or failure) is
// in the transcript. Blank text is ignored.
func (s *QuerySession) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.state.InFlight() {
		s.mu.Unlock()
		return ErrQueryInFlight
	}

	s.messages = append(s.messages, models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Role:      models.User,
		Timestamp: s.now(),
	})
	s.draft = ""
	s.state = models.QuerySent

	s.pendingID = uuid.NewString()
	s.messages = append(s.messages, models.Message{
		ID:        s.pendingID,
		Text:      PendingMessage,
		Role:      models.Pending,
		Timestamp: s.now(),
	})
	s.state = models.QueryAwaiting

	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	generation := s.generation
	snap, notify := s.publishLocked()
	s.mu.Unlock()
	notify(snap)

	resp, err := s.api.Call(callCtx, http.MethodPost, queryPath, queryRequest{Query: text})
	cancel()
	answer, records := interpretQuery(resp, err)

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		log.Printf("dropping response to %q: session was reset", text)
		return ErrSessionReset
	}

	s.removePendingLocked()
	s.messages = append(s.messages, models.Message{
		ID:        uuid.NewString(),
		Text:      answer,
		Role:      models.Assistant,
		Timestamp: s.now(),
		Records:   records,
	})
	s.state = models.QueryResolved
	s.cancel = nil
	snap, notify = s.publishLocked()
	s.mu.Unlock()
	notify(snap)

	return nil
}

// Suggest submits the suggestion at index as if it had been typed
func (s *QuerySession) Suggest(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.suggestions) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchSuggestion, index)
	}
	text := s.suggestions[index]
	s.mu.Unlock()

	s.SetDraft(text)
	return s.Submit(ctx, s.Draft())
}

// Reset returns the transcript to the welcome state. An outstanding query
// is cancelled and its response discarded.
func (s *QuerySession) Reset() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.messages = s.welcome()
	s.draft = ""
	s.pendingID = ""
	s.state = models.QueryComposing
	snap, notify := s.publishLocked()
	s.mu.Unlock()
	notify(snap)
}

// Pending returns the id of the current pending indicator, if any
func (s *QuerySession) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID, s.pendingID != ""
}

// Awaiting reports whether a query is outstanding
func (s *QuerySession) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InFlight()
}

// Transcript returns a copy of the messages in insertion order
func (s *QuerySession) Transcript() []models.Message {
	return s.Snapshot().Messages
}

func (s *QuerySession) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions...)
}

func (s *QuerySession) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *QuerySession) welcome() []models.Message {
	return []models.Message{{
		ID:        uuid.NewString(),
		Text:      WelcomeMessage,
		Role:      models.Assistant,
		Timestamp: s.now(),
	}}
}

func (s *QuerySession) removePendingLocked() {
	if s.pendingID == "" {
		return
	}
	kept := s.messages[:0:0]
	for _, m := range s.messages {
		if m.ID != s.pendingID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.pendingID = ""
}

func (s *QuerySession) snapshotLocked() models.SessionSnapshot {
	return models.SessionSnapshot{
		Messages:    append([]models.Message(nil), s.messages...),
		Draft:       s.draft,
		State:       s.state,
		Suggestions: append([]string(nil), s.suggestions...),
		Version:     s.version,
	}
}

// publishLocked records a state change. The returned func must be called
// once s.mu is released.
func (s *QuerySession) publishLocked() (models.SessionSnapshot, func(models.SessionSnapshot)) {
	s.version++
	snap := s.snapshotLocked()
	return snap, s.publish.begin()
}

// interpretQuery turns a query reply into the assistant text
func interpretQuery(resp *transport.Response, err error) (string, []models.TestRecord) {
	if err != nil {
		log.Printf("query failed: %v", err)
		return ConnectivityFailureMessage, nil
	}

	env := resp.Envelope()
	if !env.Succeeded() {
		return models.FirstNonEmpty(env.Reason(), FallbackFailureMessage), nil
	}

	var body queryResponse
	if decodeErr := resp.Decode(&body); decodeErr != nil {
		log.Printf("query data ignored: %v", decodeErr)
	}

	message := strings.TrimSpace(env.Message)
	if message == "" {
		message = fmt.Sprintf("Found %d matching results.", max(body.ResultCount, len(body.Data)))
	}
	return message, body.Data
}
