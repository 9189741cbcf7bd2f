package parking

import (
	"context"
	"sync"
)

// FacilityBuilder creates a fresh instrumented facility of the given size.
type FacilityBuilder func(capacity int) (*InstrumentedFacility, error)

// Site owns the facility currently in service. The shell and the HTTP
// server share one Site so they drive the same gates.
type Site struct {
	build FacilityBuilder

	mu       sync.RWMutex
	facility *InstrumentedFacility
	hooks    []func(*InstrumentedFacility)
}

func NewSite(build FacilityBuilder) *Site {
	return &Site{build: build}
}

// Current returns the facility in service, or nil before the first Replace.
func (s *Site) Current() *InstrumentedFacility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facility
}

// OnReplace calls fn for the facility in service and for every later one.
func (s *Site) OnReplace(fn func(*InstrumentedFacility)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	current := s.facility
	s.mu.Unlock()

	if current != nil {
		fn(current)
	}
}

// Replace builds a facility of the given capacity, puts it in service and
// retires the previous one.
func (s *Site) Replace(ctx context.Context, capacity int) (*InstrumentedFacility, error) {
	facility, err := s.build(capacity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.facility
	s.facility = facility
	hooks := make([]func(*InstrumentedFacility), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	if previous != nil {
		previous.Retire(ctx)
	}
	for _, fn := range hooks {
		fn(facility)
	}
	return facility, nil
}
