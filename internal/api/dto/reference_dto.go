package dto

import (
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
)

// CreateStatusRequest payload.
type CreateStatusRequest struct {
	Name           string  `json:"name" validate:"required,max=50"`
	Editable       bool    `json:"editable"`
	Default        bool    `json:"default"`
	Assignee       *string `json:"assignee" validate:"omitempty,max=50"`
	Color          *string `json:"color" validate:"omitempty,max=20"`
	NotifyAssignee bool    `json:"notify_assignee"`
	NotifyAgent    bool    `json:"notify_agent"`
	NotifyCustomer bool    `json:"notify_customer"`
	NotifyUser     bool    `json:"notify_user"`
}

// ToInput maps the request to the service input.
func (r CreateStatusRequest) ToInput() service.StatusInput {
	return service.StatusInput{
		Name:           r.Name,
		Editable:       r.Editable,
		Default:        r.Default,
		Assignee:       r.Assignee,
		Color:          r.Color,
		NotifyAssignee: r.NotifyAssignee,
		NotifyAgent:    r.NotifyAgent,
		NotifyCustomer: r.NotifyCustomer,
		NotifyUser:     r.NotifyUser,
	}
}

// StatusResponse is a workflow status.
type StatusResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Editable       bool    `json:"editable"`
	Default        bool    `json:"default"`
	Assignee       *string `json:"assignee"`
	Color          *string `json:"color"`
	NotifyAssignee bool    `json:"notify_assignee"`
	NotifyAgent    bool    `json:"notify_agent"`
	NotifyCustomer bool    `json:"notify_customer"`
	NotifyUser     bool    `json:"notify_user"`
}

// NewStatusResponse maps a status.
func NewStatusResponse(s domain.Status) StatusResponse {
	return StatusResponse{
		ID:             s.ID,
		Name:           s.Name,
		Editable:       s.Editable,
		Default:        s.Default,
		Assignee:       s.Assignee,
		Color:          s.Color,
		NotifyAssignee: s.NotifyAssignee,
		NotifyAgent:    s.NotifyAgent,
		NotifyCustomer: s.NotifyCustomer,
		NotifyUser:     s.NotifyUser,
	}
}

// CreatePriorityRequest payload.
type CreatePriorityRequest struct {
	Name    string `json:"name" validate:"required,max=50"`
	Default bool   `json:"default"`
}

// PriorityResponse is a ticket priority.
type PriorityResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// CreateMachineRequest payload.
type CreateMachineRequest struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Reference        string  `json:"reference" validate:"max=30"`
	SerialNumber     string  `json:"serial_number" validate:"max=100"`
	ManufacturerCode *string `json:"manufacturer_code" validate:"omitempty,max=8"`
	CustomerCode     *string `json:"customer_code" validate:"omitempty,max=10"`
	AgentCode        *string `json:"agent_code" validate:"omitempty,max=10"`
	Description      string  `json:"description"`
}

// ToInput maps the request to the service input.
func (r CreateMachineRequest) ToInput() service.MachineInput {
	return service.MachineInput{
		Name:             r.Name,
		Reference:        r.Reference,
		SerialNumber:     r.SerialNumber,
		ManufacturerCode: r.ManufacturerCode,
		CustomerCode:     r.CustomerCode,
		AgentCode:        r.AgentCode,
		Description:      r.Description,
	}
}

// MachineResponse is a customer machine.
type MachineResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Reference        string  `json:"reference"`
	SerialNumber     string  `json:"serial_number"`
	ManufacturerCode *string `json:"manufacturer_code"`
	CustomerCode     *string `json:"customer_code"`
	AgentCode        *string `json:"agent_code"`
	Description      string  `json:"description"`
}

// NewMachineResponses maps machines.
func NewMachineResponses(machines []domain.Machine) []MachineResponse {
	out := make([]MachineResponse, 0, len(machines))
	for _, m := range machines {
		out = append(out, NewMachineResponse(m))
	}
	return out
}

// NewMachineResponse maps a machine.
func NewMachineResponse(m domain.Machine) MachineResponse {
	return MachineResponse{
		ID:               m.ID,
		Name:             m.Name,
		Reference:        m.Reference,
		SerialNumber:     m.SerialNumber,
		ManufacturerCode: m.ManufacturerCode,
		CustomerCode:     m.CustomerCode,
		AgentCode:        m.AgentCode,
		Description:      m.Description,
	}
}

// StockResponse is the on-hand quantity of a product in a warehouse.
type StockResponse struct {
	Reference     string  `json:"reference"`
	WarehouseCode string  `json:"warehouse_code"`
	Quantity      float64 `json:"quantity"`
}
