package domain

import "strings"

// PartyKind names who is on the receiving end of a ticket notification.
type PartyKind string

const (
	PartyAssignee PartyKind = "assignee"
	PartyAgent    PartyKind = "agent"
	PartyCustomer PartyKind = "customer"
	PartyUser     PartyKind = "user"
)

// Party is anyone a ticket can notify: customer, agent or user.
type Party struct {
	Code  string
	Name  string
	Email string
}

// Reachable reports whether the party has somewhere to send mail.
func (p Party) Reachable() bool {
	return strings.TrimSpace(p.Email) != ""
}

// Customer is the ERP customer a ticket is opened for.
type Customer struct {
	Code  string
	Name  string
	Email string
}

// Agent is the sales agent linked to a ticket.
type Agent struct {
	Code  string
	Name  string
	Email string
}

func (c Customer) Party() Party {
	return Party{Code: c.Code, Name: c.Name, Email: c.Email}
}

func (a Agent) Party() Party {
	return Party{Code: a.Code, Name: a.Name, Email: a.Email}
}
