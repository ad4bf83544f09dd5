package core

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	healthPath = "/health"

	DefaultHealthInterval = 30 * time.Second
)

// Prober reports the HTTP status of a GET
type Prober interface {
	Probe(ctx context.Context, path string) (int, error)
}

// HealthMonitor keeps the API reachable flag current. It has no effect on
// any other controller.
type HealthMonitor struct {
	mu        sync.Mutex
	api       Prober
	interval  time.Duration
	reachable bool
	known     bool
	onChange  func(bool)
}

func NewHealthMonitor(api Prober, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &HealthMonitor{api: api, interval: interval}
}

// OnChange registers a callback fired on the first probe and whenever the
// flag flips.
func (h *HealthMonitor) OnChange(fn func(bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// ProbeOnce checks /health and updates the flag
func (h *HealthMonitor) ProbeOnce(ctx context.Context) bool {
	status, err := h.api.Probe(ctx, healthPath)
	reachable := err == nil && status >= http.StatusOK && status < http.StatusMultipleChoices
	if err != nil {
		log.Printf("health probe failed: %v", err)
	}

	h.mu.Lock()
	changed := !h.known || h.reachable != reachable
	h.reachable = reachable
	h.known = true
	fn := h.onChange
	h.mu.Unlock()

	if changed && fn != nil {
		fn(reachable)
	}
	return reachable
}

// Reachable returns the latest probe result
func (h *HealthMonitor) Reachable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reachable
}

// Run probes immediately and then on every interval until ctx is done
func (h *HealthMonitor) Run(ctx context.Context) {
	h.ProbeOnce(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.ProbeOnce(ctx)
		}
	}
}
