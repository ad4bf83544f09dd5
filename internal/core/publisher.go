package core

import "sync"

// publisher delivers controller snapshots to one observer in the order
// they were taken. Owners call begin while still holding their state lock
// and invoke the returned deliver func exactly once after releasing it.
// Observers must not call back into the owning controller.
type publisher[T any] struct {
	mu sync.Mutex
	fn func(T)
}

func (p *publisher[T]) set(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fn = fn
}

func (p *publisher[T]) begin() func(T) {
	p.mu.Lock()
	fn := p.fn
	return func(v T) {
		defer p.mu.Unlock()
		if fn != nil {
			fn(v)
		}
	}
}
