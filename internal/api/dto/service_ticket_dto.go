package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
)

// CreateServiceTicketRequest payload. Omitted status and priority fall back
// to the configured defaults.
type CreateServiceTicketRequest struct {
	CustomerCode  string  `json:"customer_code" validate:"max=10"`
	AgentCode     string  `json:"agent_code" validate:"max=10"`
	AssignedNick  string  `json:"assigned_nick" validate:"max=50"`
	WarehouseCode string  `json:"warehouse_code" validate:"max=4"`
	StatusID      *int64  `json:"status_id" validate:"omitempty,gt=0"`
	PriorityID    *int64  `json:"priority_id" validate:"omitempty,gt=0"`
	Description   string  `json:"description"`
	Material      string  `json:"material"`
	Observations  string  `json:"observations"`
	Solution      string  `json:"solution"`
	MachineIDs    []int64 `json:"machine_ids" validate:"max=4,dive,gt=0"`
}

// ToInput maps the request to the service input.
func (r CreateServiceTicketRequest) ToInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		CustomerCode:  r.CustomerCode,
		AgentCode:     r.AgentCode,
		AssignedNick:  r.AssignedNick,
		WarehouseCode: r.WarehouseCode,
		StatusID:      r.StatusID,
		PriorityID:    r.PriorityID,
		Description:   r.Description,
		Material:      r.Material,
		Observations:  r.Observations,
		Solution:      r.Solution,
		MachineIDs:    r.MachineIDs,
	}
}

// UpdateServiceTicketRequest is a partial update; absent fields are kept.
type UpdateServiceTicketRequest struct {
	CustomerCode  *string  `json:"customer_code" validate:"omitempty,max=10"`
	AgentCode     *string  `json:"agent_code" validate:"omitempty,max=10"`
	AssignedNick  *string  `json:"assigned_nick" validate:"omitempty,max=50"`
	Nick          *string  `json:"nick" validate:"omitempty,max=50"`
	WarehouseCode *string  `json:"warehouse_code" validate:"omitempty,max=4"`
	StatusID      *int64   `json:"status_id" validate:"omitempty,gt=0"`
	PriorityID    *int64   `json:"priority_id" validate:"omitempty,gte=0"`
	Description   *string  `json:"description"`
	Material      *string  `json:"material"`
	Observations  *string  `json:"observations"`
	Solution      *string  `json:"solution"`
	MachineIDs    *[]int64 `json:"machine_ids" validate:"omitempty,max=4,dive,gt=0"`
}

// ToInput maps the request to the service input.
func (r UpdateServiceTicketRequest) ToInput() service.TicketUpdateInput {
	return service.TicketUpdateInput{
		CustomerCode:  r.CustomerCode,
		AgentCode:     r.AgentCode,
		AssignedNick:  r.AssignedNick,
		Nick:          r.Nick,
		WarehouseCode: r.WarehouseCode,
		StatusID:      r.StatusID,
		PriorityID:    r.PriorityID,
		Description:   r.Description,
		Material:      r.Material,
		Observations:  r.Observations,
		Solution:      r.Solution,
		MachineIDs:    r.MachineIDs,
	}
}

// ServiceTicketResponse is the ticket header.
type ServiceTicketResponse struct {
	ID            int64     `json:"id"`
	CustomerCode  string    `json:"customer_code"`
	AgentCode     string    `json:"agent_code"`
	AssignedNick  string    `json:"assigned_nick"`
	Nick          string    `json:"nick"`
	WarehouseCode string    `json:"warehouse_code"`
	StatusID      int64     `json:"status_id"`
	PriorityID    *int64    `json:"priority_id"`
	Editable      bool      `json:"editable"`
	Net           float64   `json:"net"`
	Description   string    `json:"description"`
	Material      string    `json:"material"`
	Observations  string    `json:"observations"`
	Solution      string    `json:"solution"`
	MachineIDs    []int64   `json:"machine_ids"`
	URL           string    `json:"url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewServiceTicketResponse maps a ticket. siteURL may be empty.
func NewServiceTicketResponse(ticket *domain.ServiceTicket, siteURL string) ServiceTicketResponse {
	resp := ServiceTicketResponse{
		ID:            ticket.ID,
		CustomerCode:  ticket.CustomerCode,
		AgentCode:     ticket.AgentCode,
		AssignedNick:  ticket.AssignedNick,
		Nick:          ticket.Nick,
		WarehouseCode: ticket.WarehouseCode,
		StatusID:      ticket.StatusID,
		Editable:      ticket.Editable,
		Net:           ticket.Net,
		Description:   ticket.Description,
		Material:      ticket.Material,
		Observations:  ticket.Observations,
		Solution:      ticket.Solution,
		MachineIDs:    ticket.Machines(),
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
	if ticket.PriorityID != 0 {
		id := ticket.PriorityID
		resp.PriorityID = &id
	}
	if siteURL != "" {
		resp.URL = service.TicketURL(siteURL, ticket.ID)
	}
	return resp
}

// AuditEntryResponse is one audit trail line.
type AuditEntryResponse struct {
	ID        int64          `json:"id"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewAuditEntryResponses maps audit entries.
func NewAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuditEntryResponse{
			ID:        entry.ID,
			Message:   entry.Message,
			Data:      entry.Data,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
