package events

import "github.com/spec-kit/servicedesk/internal/domain"

// TicketSnapshot holds the fields whose changes have side effects.
type TicketSnapshot struct {
	StatusID     int64
	AssignedNick string
	AgentCode    string
	CustomerCode string
	Nick         string
}

// SnapshotOf captures the watched fields of a ticket.
func SnapshotOf(ticket domain.ServiceTicket) TicketSnapshot {
	return TicketSnapshot{
		StatusID:     ticket.StatusID,
		AssignedNick: ticket.AssignedNick,
		AgentCode:    ticket.AgentCode,
		CustomerCode: ticket.CustomerCode,
		Nick:         ticket.Nick,
	}
}

// StatusChangedTo reports whether after moved into a new, non-empty status.
func StatusChangedTo(before, after TicketSnapshot) bool {
	return after.StatusID != 0 && after.StatusID != before.StatusID
}

// Diff lists the transitions between two snapshots. Fields cleared to empty
// or left untouched produce nothing. Status comes first, then assignee,
// agent, customer and user. The StatusChanged element carries no Status
// record; callers attach the loaded one.
func Diff(before, after TicketSnapshot) []Transition {
	var out []Transition
	if StatusChangedTo(before, after) {
		out = append(out, StatusChanged{OldStatusID: before.StatusID, NewStatusID: after.StatusID})
	}
	if changed(before.AssignedNick, after.AssignedNick) {
		out = append(out, AssigneeChanged{Old: before.AssignedNick, New: after.AssignedNick})
	}
	if changed(before.AgentCode, after.AgentCode) {
		out = append(out, AgentChanged{Old: before.AgentCode, New: after.AgentCode})
	}
	if changed(before.CustomerCode, after.CustomerCode) {
		out = append(out, CustomerChanged{Old: before.CustomerCode, New: after.CustomerCode})
	}
	if changed(before.Nick, after.Nick) {
		out = append(out, UserChanged{Old: before.Nick, New: after.Nick})
	}
	return out
}

func changed(old, new string) bool {
	return new != "" && new != old
}
