package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

func TestValidate(t *testing.T) {
	badStatus := 9
	tests := []struct {
		name    string
		payload any
		field   string
	}{
		{name: "login without nick", payload: &LoginRequest{Password: "x"}, field: "nick"},
		{name: "status without name", payload: &CreateStatusRequest{}, field: "name"},
		{name: "too many machines", payload: &CreateServiceTicketRequest{MachineIDs: []int64{1, 2, 3, 4, 5}}, field: "machine_ids"},
		{name: "unknown work status", payload: &WorkEntryRequest{Status: &badStatus}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}

	assert.NoError(t, Validate(&LoginRequest{Nick: "tech1", Password: "secret"}))
	assert.NoError(t, Validate(&CreateServiceTicketRequest{CustomerCode: "C1", MachineIDs: []int64{1}}))
}

func TestValidateColumnWidths(t *testing.T) {
	long := func(n int) *string {
		v := strings.Repeat("x", n)
		return &v
	}
	tests := []struct {
		name    string
		payload any
		fields  []string
	}{
		{
			name:    "ticket codes",
			payload: &CreateServiceTicketRequest{CustomerCode: "C1", WarehouseCode: "WH12345", AgentCode: "AGENT-CODE-TOO-LONG"},
			fields:  []string{"warehouse_code", "agent_code"},
		},
		{
			name:    "ticket patch",
			payload: &UpdateServiceTicketRequest{CustomerCode: long(11), WarehouseCode: long(5), Nick: long(51)},
			fields:  []string{"customer_code", "warehouse_code", "nick"},
		},
		{
			name:    "work entry reference",
			payload: &WorkEntryRequest{Reference: long(31), AgentCode: long(11)},
			fields:  []string{"reference", "agent_code"},
		},
		{
			name:    "machine codes",
			payload: &CreateMachineRequest{Name: "Boiler", ManufacturerCode: long(9), Reference: *long(31)},
			fields:  []string{"manufacturer_code", "reference"},
		},
		{
			name:    "status color",
			payload: &CreateStatusRequest{Name: "Open", Color: long(21)},
			fields:  []string{"color"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			for _, field := range tt.fields {
				assert.Contains(t, domainErr.Details, field)
			}
		})
	}

	assert.NoError(t, Validate(&CreateServiceTicketRequest{CustomerCode: *long(10), WarehouseCode: "W001", AgentCode: *long(10)}))
	assert.NoError(t, Validate(&WorkEntryRequest{Reference: long(30)}))
}

func TestWorkEntryRequestToInput(t *testing.T) {
	status := 1
	input := WorkEntryRequest{Status: &status}.ToInput()
	require.NotNil(t, input.Status)
	assert.Equal(t, domain.WorkStatusMakeInvoice, *input.Status)

	assert.Nil(t, WorkEntryRequest{}.ToInput().Status)
}

func TestNewServiceTicketResponse(t *testing.T) {
	ticket := &domain.ServiceTicket{ID: 12, CustomerCode: "C1"}
	ticket.SetMachines([]int64{3, 1})

	resp := NewServiceTicketResponse(ticket, "https://erp.example.com")
	assert.Equal(t, "https://erp.example.com/service-tickets/12", resp.URL)
	assert.Nil(t, resp.PriorityID)
	assert.Equal(t, []int64{3, 1}, resp.MachineIDs)

	ticket.PriorityID = 2
	resp = NewServiceTicketResponse(ticket, "")
	require.NotNil(t, resp.PriorityID)
	assert.Equal(t, int64(2), *resp.PriorityID)
	assert.Empty(t, resp.URL)
}
