package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
)

// WorkEntryRequest is used for create and partial update. Status is the
// numeric work status code.
type WorkEntryRequest struct {
	Quantity     *float64   `json:"quantity"`
	Price        *float64   `json:"price"`
	Reference    *string    `json:"reference" validate:"omitempty,max=30"`
	Status       *int       `json:"status" validate:"omitempty,gte=0,lte=6"`
	Description  *string    `json:"description"`
	Observations *string    `json:"observations"`
	AgentCode    *string    `json:"agent_code" validate:"omitempty,max=10"`
	Nick         *string    `json:"nick" validate:"omitempty,max=50"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
}

// ToInput maps the request to the service input.
func (r WorkEntryRequest) ToInput() service.WorkEntryInput {
	input := service.WorkEntryInput{
		Quantity:     r.Quantity,
		Price:        r.Price,
		Reference:    r.Reference,
		Description:  r.Description,
		Observations: r.Observations,
		AgentCode:    r.AgentCode,
		Nick:         r.Nick,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
	}
	if r.Status != nil {
		status := domain.WorkStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// WorkEntryResponse is one work line.
type WorkEntryResponse struct {
	ID           int64      `json:"id"`
	TicketID     int64      `json:"ticket_id"`
	Quantity     float64    `json:"quantity"`
	Price        float64    `json:"price"`
	Amount       float64    `json:"amount"`
	Reference    *string    `json:"reference"`
	Status       int        `json:"status"`
	StatusName   string     `json:"status_name"`
	Description  string     `json:"description"`
	Observations string     `json:"observations"`
	AgentCode    *string    `json:"agent_code"`
	Nick         *string    `json:"nick"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
}

// NewWorkEntryResponse maps a work entry.
func NewWorkEntryResponse(entry *domain.WorkEntry) WorkEntryResponse {
	return WorkEntryResponse{
		ID:           entry.ID,
		TicketID:     entry.TicketID,
		Quantity:     entry.Quantity,
		Price:        entry.Price,
		Amount:       entry.Amount(),
		Reference:    entry.Reference,
		Status:       int(entry.Status),
		StatusName:   entry.Status.String(),
		Description:  entry.Description,
		Observations: entry.Observations,
		AgentCode:    entry.AgentCode,
		Nick:         entry.Nick,
		StartAt:      entry.StartAt,
		EndAt:        entry.EndAt,
	}
}

// NewWorkEntryResponses maps a list of work entries.
func NewWorkEntryResponses(entries []domain.WorkEntry) []WorkEntryResponse {
	out := make([]WorkEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, NewWorkEntryResponse(&entries[i]))
	}
	return out
}
