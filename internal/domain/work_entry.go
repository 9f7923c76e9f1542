package domain

import "time"

// WorkEntry is a labour or material line performed under a service ticket.
type WorkEntry struct {
	ID           int64
	TicketID     int64
	Quantity     float64
	Price        float64
	Reference    *string
	Status       WorkStatus
	Description  string
	Observations string
	AgentCode    *string
	Nick         *string
	StartAt      *time.Time
	EndAt        *time.Time
}

// Amount is the line total.
func (w WorkEntry) Amount() float64 {
	return w.Price * w.Quantity
}

// ReferenceValue returns the product reference or "" when unset.
func (w WorkEntry) ReferenceValue() string {
	if w.Reference == nil {
		return ""
	}
	return *w.Reference
}

// NetTotal sums price * quantity over entries. Order does not matter.
func NetTotal(entries []WorkEntry) float64 {
	total := 0.0
	for _, entry := range entries {
		total += entry.Amount()
	}
	return total
}
