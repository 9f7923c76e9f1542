package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestDiff(t *testing.T) {
	base := TicketSnapshot{StatusID: 1, AssignedNick: "ana", AgentCode: "AG1", CustomerCode: "C1", Nick: "admin"}

	tests := []struct {
		name  string
		after func(TicketSnapshot) TicketSnapshot
		want  []Transition
	}{
		{
			name:  "nothing changed",
			after: func(s TicketSnapshot) TicketSnapshot { return s },
			want:  nil,
		},
		{
			name: "status changed",
			after: func(s TicketSnapshot) TicketSnapshot {
				s.StatusID = 3
				return s
			},
			want: []Transition{StatusChanged{OldStatusID: 1, NewStatusID: 3}},
		},
		{
			name: "status cleared is ignored",
			after: func(s TicketSnapshot) TicketSnapshot {
				s.StatusID = 0
				return s
			},
			want: nil,
		},
		{
			name: "assignee cleared is ignored",
			after: func(s TicketSnapshot) TicketSnapshot {
				s.AssignedNick = ""
				return s
			},
			want: nil,
		},
		{
			name: "every field changed keeps order",
			after: func(s TicketSnapshot) TicketSnapshot {
				return TicketSnapshot{StatusID: 2, AssignedNick: "bob", AgentCode: "AG2", CustomerCode: "C2", Nick: "eve"}
			},
			want: []Transition{
				StatusChanged{OldStatusID: 1, NewStatusID: 2},
				AssigneeChanged{Old: "ana", New: "bob"},
				AgentChanged{Old: "AG1", New: "AG2"},
				CustomerChanged{Old: "C1", New: "C2"},
				UserChanged{Old: "admin", New: "eve"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(base, tt.after(base)))
		})
	}
}

func TestSnapshotOf(t *testing.T) {
	ticket := domain.ServiceTicket{StatusID: 4, AssignedNick: "a", AgentCode: "b", CustomerCode: "c", Nick: "d"}
	assert.Equal(t, TicketSnapshot{StatusID: 4, AssignedNick: "a", AgentCode: "b", CustomerCode: "c", Nick: "d"}, SnapshotOf(ticket))
}

func TestTransitionEventTypes(t *testing.T) {
	assert.Equal(t, EventTicketCreated, TicketCreated{}.EventType())
	assert.Equal(t, EventTicketStatusChanged, StatusChanged{}.EventType())
	assert.Equal(t, EventTicketAssigneeChanged, AssigneeChanged{}.EventType())
	assert.Equal(t, EventTicketAgentChanged, AgentChanged{}.EventType())
	assert.Equal(t, EventTicketCustomerChanged, CustomerChanged{}.EventType())
	assert.Equal(t, EventTicketUserChanged, UserChanged{}.EventType())
}
