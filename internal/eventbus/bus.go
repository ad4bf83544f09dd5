package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Archith7/MediSaarthi/internal/models"
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SubmitQueryEvent - UI submits the composed query
type SubmitQueryEvent struct {
	Text string
}

func (e SubmitQueryEvent) UIEvent() {}

// SuggestionEvent - UI picked one of the suggested queries
type SuggestionEvent struct {
	Index int
}

func (e SuggestionEvent) UIEvent() {}

// ResetChatEvent - UI asks for a fresh transcript
type ResetChatEvent struct{}

func (e ResetChatEvent) UIEvent() {}

// SelectFilesEvent - UI selected files (paths or glob patterns)
type SelectFilesEvent struct {
	Paths []string
}

func (e SelectFilesEvent) UIEvent() {}

// RemoveFileEvent - UI removed one file from the pending batch
type RemoveFileEvent struct {
	Index int
}

func (e RemoveFileEvent) UIEvent() {}

// StartUploadEvent - UI starts uploading the pending batch
type StartUploadEvent struct{}

func (e StartUploadEvent) UIEvent() {}

// CancelUploadEvent - UI discards the batch or the results
type CancelUploadEvent struct{}

func (e CancelUploadEvent) UIEvent() {}

// ActivatePageEvent - UI navigated to a page
type ActivatePageEvent struct {
	Page models.Page
}

func (e ActivatePageEvent) UIEvent() {}

// ChatUpdateEvent - Core pushes the transcript
type ChatUpdateEvent struct {
	Session models.SessionSnapshot
}

func (e ChatUpdateEvent) CoreEvent() {}

// UploadUpdateEvent - Core pushes the upload pipeline state
type UploadUpdateEvent struct {
	Upload models.UploadSnapshot
}

func (e UploadUpdateEvent) CoreEvent() {}

// PageLoadingEvent - Core started fetching a page
type PageLoadingEvent struct {
	Page models.Page
}

func (e PageLoadingEvent) CoreEvent() {}

// PageDataEvent - Core finished fetching a page
type PageDataEvent struct {
	Data models.PageData
}

func (e PageDataEvent) CoreEvent() {}

// HealthEvent - Core reports API reachability
type HealthEvent struct {
	Reachable bool
}

func (e HealthEvent) CoreEvent() {}

// NoticeEvent - Core reports a rejected command or a local failure
type NoticeEvent struct {
	Message string
	Err     error
}

func (e NoticeEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker implements circuit breaker pattern
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && time.Since(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
	closeOnce      sync.Once
}

func NewEventBus() *EventBus {
	return NewEventBusWithCapacity(100)
}

func NewEventBusWithCapacity(capacity int) *EventBus {
	return newEventBus(capacity, NewCircuitBreaker(5, 30*time.Second))
}

func newEventBus(capacity int, breaker *CircuitBreaker) *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, capacity),
		coreToUI:       make(chan CoreEvent, capacity),
		circuitBreaker: breaker,
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	if eb.circuitBreaker.IsOpen() {
		err := errors.New("circuit breaker is open")
		eb.reportError("SendToCore", err)
		return err
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("UI to Core channel is full")
		eb.reportError("SendToCore", err)
		return err
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	if eb.circuitBreaker.IsOpen() {
		err := errors.New("circuit breaker is open")
		eb.reportError("SendToUI", err)
		return err
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("Core to UI channel is full")
		eb.reportError("SendToUI", err)
		return err
	}
}

// SendToUIWait blocks until the UI has room for the event or ctx is done.
// State snapshots go through here so a slow UI never loses the final one.
// The breaker is not consulted; a delivery closes it again.
func (eb *EventBus) SendToUIWait(ctx context.Context, event CoreEvent) error {
	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	case <-ctx.Done():
		err := ctx.Err()
		eb.reportError("SendToUIWait", err)
		return err
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.State()
}

// Close closes both channels. Senders must have stopped first.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		close(eb.uiToCore)
		close(eb.coreToUI)
	})
}
