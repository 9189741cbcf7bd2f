package parking

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

type PassKind int

const (
	// PassRecurring admits any number of times until expiry.
	PassRecurring PassKind = iota + 1
	// PassSingleUse admits once before expiry.
	PassSingleUse
)

func (k PassKind) String() string {
	switch k {
	case PassRecurring:
		return "recurring"
	case PassSingleUse:
		return "single_use"
	default:
		return "unknown"
	}
}

func ParsePassKind(s string) (PassKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recurring", "monthly":
		return PassRecurring, nil
	case "single_use", "single-use", "single":
		return PassSingleUse, nil
	}
	return 0, errors.Wrapf(ErrUnknownPassKind, "kind %q", s)
}

// Pass is a pre-purchased admission right bound to one plate.
type Pass struct {
	ID         string
	Plate      string
	ValidUntil time.Time
	Kind       PassKind

	// used is read by status and pass listings while gates consume passes.
	used atomic.Bool
}

func NewRecurringPass(id, plate string, validUntil time.Time) *Pass {
	return &Pass{ID: id, Plate: plate, ValidUntil: validUntil, Kind: PassRecurring}
}

func NewSingleUsePass(id, plate string, validUntil time.Time) *Pass {
	return &Pass{ID: id, Plate: plate, ValidUntil: validUntil, Kind: PassSingleUse}
}

// Valid checks expiry only, whatever the kind.
func (p *Pass) Valid(now time.Time) bool {
	return !now.After(p.ValidUntil)
}

// Usable reports whether the pass may admit a vehicle at now.
func (p *Pass) Usable(now time.Time) bool {
	if p.Kind == PassSingleUse {
		return !p.used.Load() && p.Valid(now)
	}
	return p.Valid(now)
}

func (p *Pass) Used() bool {
	return p.used.Load()
}

// MarkUsed consumes a single-use pass. It cannot be undone.
func (p *Pass) MarkUsed() {
	p.used.Store(true)
}
