package domain

import "time"

// MaxMachines is how many machines a ticket can reference.
const MaxMachines = 4

// ServiceTicket is the header of a technical service case.
type ServiceTicket struct {
	ID            int64
	CustomerCode  string
	AgentCode     string
	AssignedNick  string
	Nick          string
	WarehouseCode string
	StatusID      int64
	PriorityID    int64
	Editable      bool
	Net           float64
	Description   string
	Material      string
	Observations  string
	Solution      string
	MachineIDs    [MaxMachines]*int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Machines returns the machine ids that are set, in slot order.
func (t ServiceTicket) Machines() []int64 {
	ids := make([]int64, 0, MaxMachines)
	for _, id := range t.MachineIDs {
		if id != nil && *id != 0 {
			ids = append(ids, *id)
		}
	}
	return ids
}

// SetMachines fills the machine slots in order, clearing the rest.
func (t *ServiceTicket) SetMachines(ids []int64) {
	t.MachineIDs = [MaxMachines]*int64{}
	slot := 0
	for _, id := range ids {
		if id == 0 || slot == MaxMachines {
			continue
		}
		v := id
		t.MachineIDs[slot] = &v
		slot++
	}
}

// ApplyStatus keeps the ticket in sync with the status it moves into.
func (t *ServiceTicket) ApplyStatus(status Status) {
	t.StatusID = status.ID
	t.Editable = status.Editable
	if status.Assignee != nil && *status.Assignee != "" {
		t.AssignedNick = *status.Assignee
	}
}
