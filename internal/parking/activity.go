package parking

import (
	"fmt"
	"time"
)

const activityTimeFormat = "2006-01-02T15:04:05.000000Z07:00"

type ActivityKind string

const (
	ActivityEntry ActivityKind = "ENTRY"
	ActivityExit  ActivityKind = "EXIT"
	ActivityPay   ActivityKind = "PAY"
)

// ActivityRecord is one line of the registry's append-only log. Payment
// fields are only set for PAY records.
type ActivityRecord struct {
	At        time.Time    `json:"at"`
	Kind      ActivityKind `json:"kind"`
	Plate     string       `json:"plate"`
	Amount    float64      `json:"amount,omitempty"`
	Method    string       `json:"method,omitempty"`
	PaymentID string       `json:"payment_id,omitempty"`
}

func (r ActivityRecord) String() string {
	line := fmt.Sprintf("%s | %-5s | %s", r.At.Format(activityTimeFormat), r.Kind, r.Plate)
	if r.Kind == ActivityPay {
		line += fmt.Sprintf(" | %.2f | %s | %s", r.Amount, r.Method, r.PaymentID)
	}
	return line
}
