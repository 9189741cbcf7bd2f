package parking

import "time"

const DefaultPaymentMethod = "cash"

// Payment records a fee settled at the exit gate.
type Payment struct {
	ID     string
	Amount float64
	Method string
	PaidAt time.Time
}

func NewPayment(amount float64, method string, paidAt time.Time) Payment {
	if method == "" {
		method = DefaultPaymentMethod
	}
	return Payment{
		ID:     NewID(),
		Amount: amount,
		Method: method,
		PaidAt: paidAt,
	}
}
