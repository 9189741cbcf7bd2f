package parking

import (
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Clock supplies the current time to registries and gates.
type Clock func() time.Time

// Registry holds the live sessions of one lot, keyed by plate.
type Registry struct {
	capacity int
	clock    Clock

	mu        sync.RWMutex
	sessions  map[string]*Session
	records   []ActivityRecord
	observers []func(ActivityRecord)

	// opMu serialises whole gate operations; mu only guards the data.
	opMu sync.Mutex
}

func NewRegistry(capacity int, clock Clock) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		capacity: capacity,
		clock:    clock,
		sessions: make(map[string]*Session, capacity),
	}
}

func (r *Registry) Capacity() int {
	return r.capacity
}

func (r *Registry) Occupied() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Available() int {
	return r.capacity - r.Occupied()
}

func (r *Registry) HasSpace() bool {
	return r.Occupied() < r.capacity
}

func (r *Registry) Add(session *Session) error {
	r.mu.Lock()
	if len(r.sessions) >= r.capacity {
		r.mu.Unlock()
		return errors.Wrapf(ErrCapacity, "capacity %d", r.capacity)
	}
	plate := session.Plate()
	if _, ok := r.sessions[plate]; ok {
		r.mu.Unlock()
		return errors.Wrapf(ErrDuplicateOccupant, "plate %s", plate)
	}
	r.sessions[plate] = session
	rec := r.appendLocked(ActivityRecord{At: r.clock(), Kind: ActivityEntry, Plate: plate})
	r.mu.Unlock()

	r.notify(rec)
	return nil
}

// Get returns the stored session itself, not a copy. Its ticket may only be
// read inside Exclusive.
func (r *Registry) Get(plate string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[plate]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "plate %s", plate)
	}
	return session, nil
}

func (r *Registry) Remove(plate string) (*Session, error) {
	r.mu.Lock()
	session, ok := r.sessions[plate]
	if !ok {
		r.mu.Unlock()
		return nil, errors.Wrapf(ErrNotFound, "plate %s", plate)
	}
	delete(r.sessions, plate)
	rec := r.appendLocked(ActivityRecord{At: r.clock(), Kind: ActivityExit, Plate: plate})
	r.mu.Unlock()

	r.notify(rec)
	return session, nil
}

// RecordPayment appends a PAY record for a settled exit.
func (r *Registry) RecordPayment(at time.Time, plate string, payment Payment) {
	r.mu.Lock()
	rec := r.appendLocked(ActivityRecord{
		At:        at,
		Kind:      ActivityPay,
		Plate:     plate,
		Amount:    payment.Amount,
		Method:    payment.Method,
		PaymentID: payment.ID,
	})
	r.mu.Unlock()

	r.notify(rec)
}

// Find returns a copy of the session for plate, taken between gate
// operations. It must not be called from inside Exclusive.
func (r *Registry) Find(plate string) (*Session, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	session, err := r.Get(plate)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Sessions returns copies of the live sessions ordered by plate, taken
// between gate operations. It must not be called from inside Exclusive.
func (r *Registry) Sessions() []*Session {
	r.opMu.Lock()
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s.Clone())
	}
	r.mu.RUnlock()
	r.opMu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Plate() < sessions[j].Plate()
	})
	return sessions
}

func (r *Registry) Records() []ActivityRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ActivityRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Log renders the activity records as text lines, oldest first.
func (r *Registry) Log() []string {
	records := r.Records()
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = rec.String()
	}
	return lines
}

// Subscribe registers fn to be called after every appended record.
func (r *Registry) Subscribe(fn func(ActivityRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Exclusive runs fn while holding the registry-wide operation lock, so a
// gate's check-then-act sequence cannot interleave with another gate's.
func (r *Registry) Exclusive(fn func() error) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	return fn()
}

func (r *Registry) appendLocked(rec ActivityRecord) ActivityRecord {
	r.records = append(r.records, rec)
	return rec
}

func (r *Registry) notify(rec ActivityRecord) {
	r.mu.RLock()
	observers := make([]func(ActivityRecord), len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, fn := range observers {
		fn(rec)
	}
}
