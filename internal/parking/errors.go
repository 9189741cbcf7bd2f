package parking

import "github.com/cockroachdb/errors"

// Registry failures.
var (
	ErrCapacity          = errors.New("parking lot is full")
	ErrDuplicateOccupant = errors.New("vehicle is already inside")
	ErrNotFound          = errors.New("no active session for plate")
)

// ErrFull is what the entry gate reports when there is no space. It still
// matches ErrCapacity under errors.Is.
var ErrFull = errors.Mark(errors.New("sorry, the parking is full right now"), ErrCapacity)

// Pass failures.
var (
	ErrPassMismatch    = errors.New("pass plate does not match the vehicle")
	ErrPassExpired     = errors.New("pass is expired or already used")
	ErrInvalidPass     = errors.New("pass is not valid anymore")
	ErrUnknownPassKind = errors.New("unknown pass kind")
	ErrPassNotFound    = errors.New("pass not found")
	ErrPassExists      = errors.New("pass already issued")
)

// Session and ticket failures.
var (
	ErrBrokenSession = errors.New("session is broken: no pass, no ticket")
	ErrInvalidTime   = errors.New("exit time is earlier than entry time")
	ErrTicketOpen    = errors.New("ticket is not closed yet")
	ErrTicketClosed  = errors.New("ticket is already closed")
	ErrUnknownKind   = errors.New("unknown vehicle kind")
)
