package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/notify"
	"github.com/spec-kit/servicedesk/internal/observability"
)

// Notification outcomes recorded in metrics.
const (
	outcomeSent    = "sent"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// PartyDirectory resolves notification recipients.
type PartyDirectory interface {
	Party(ctx context.Context, kind domain.PartyKind, code string) (domain.Party, error)
}

// NotificationService turns ticket events into mail for the parties involved.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	parties    PartyDirectory
	siteURL    string
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Notifier   notify.Notifier
	Parties    PartyDirectory
	Settings   config.ServiceSettings
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		parties:    deps.Parties,
		siteURL:    deps.Settings.SiteURL,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigneeChanged, n.partyHandler(domain.PartyAssignee, notify.TemplateNewAssignee))
	n.dispatcher.Subscribe(events.EventTicketAgentChanged, n.partyHandler(domain.PartyAgent, notify.TemplateNewAgent))
	n.dispatcher.Subscribe(events.EventTicketCustomerChanged, n.partyHandler(domain.PartyCustomer, notify.TemplateNewCustomer))
	n.dispatcher.Subscribe(events.EventTicketUserChanged, n.partyHandler(domain.PartyUser, notify.TemplateNewUser))
}

// handleTicketCreated notifies assignee, agent and customer once each.
// The creator is never notified of their own ticket.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.String("actor", event.Actor))
	var firstErr error
	for _, target := range []struct {
		kind     domain.PartyKind
		template string
	}{
		{domain.PartyAssignee, notify.TemplateNewAssignee},
		{domain.PartyAgent, notify.TemplateNewAgent},
		{domain.PartyCustomer, notify.TemplateNewCustomer},
	} {
		if err := n.notifyParty(ctx, event, target.kind, target.template); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// handleTicketStatusChanged notifies every party the new status asks for.
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.Payload.(events.StatusChanged)
	if !ok {
		return fmt.Errorf("status event carries %T", event.Payload)
	}
	n.logger.Info("TicketStatusChanged",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("old_status_id", changed.OldStatusID),
		zap.Int64("new_status_id", changed.NewStatusID))

	flags := []struct {
		enabled bool
		kind    domain.PartyKind
	}{
		{changed.Status.NotifyAssignee, domain.PartyAssignee},
		{changed.Status.NotifyAgent, domain.PartyAgent},
		{changed.Status.NotifyCustomer, domain.PartyCustomer},
		{changed.Status.NotifyUser, domain.PartyUser},
	}
	var firstErr error
	for _, flag := range flags {
		if !flag.enabled {
			continue
		}
		if err := n.notifyParty(ctx, event, flag.kind, notify.TemplateNewStatus); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *NotificationService) partyHandler(kind domain.PartyKind, template string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(string(event.Type), zap.Int64("ticket_id", event.TicketID), zap.String("party", string(kind)))
		return n.notifyParty(ctx, event, kind, template)
	}
}

func (n *NotificationService) notifyParty(ctx context.Context, event events.Event, kind domain.PartyKind, template string) error {
	code := partyCode(event.Ticket, kind)
	if code == "" || n.notifier == nil || n.parties == nil {
		return nil
	}

	party, err := n.parties.Party(ctx, kind, code)
	if err != nil || !party.Reachable() {
		n.metrics.RecordNotification(template, outcomeSkipped)
		n.logger.Debug("notification skipped",
			zap.String("template", template),
			zap.String("party", string(kind)),
			zap.String("code", code),
			zap.NamedError("lookup_error", err))
		return nil
	}

	vars := n.variables(ctx, event)
	if err := n.notifier.Send(ctx, template, party.Email, party.Name, vars); err != nil {
		n.metrics.RecordNotification(template, outcomeFailed)
		return fmt.Errorf("notify %s %s: %w", kind, code, err)
	}
	n.metrics.RecordNotification(template, outcomeSent)
	return nil
}

func (n *NotificationService) variables(ctx context.Context, event events.Event) map[string]any {
	customerName := ""
	if event.Ticket.CustomerCode != "" {
		if customer, err := n.parties.Party(ctx, domain.PartyCustomer, event.Ticket.CustomerCode); err == nil {
			customerName = customer.Name
		}
	}
	return map[string]any{
		"number":   event.Ticket.ID,
		"customer": customerName,
		"author":   event.Ticket.Nick,
		"status":   event.StatusName,
		"url":      TicketURL(n.siteURL, event.Ticket.ID),
	}
}

// TicketURL is the public link to a ticket.
func TicketURL(siteURL string, id int64) string {
	return fmt.Sprintf("%s/service-tickets/%d", siteURL, id)
}

func partyCode(ticket domain.ServiceTicket, kind domain.PartyKind) string {
	switch kind {
	case domain.PartyAssignee:
		return ticket.AssignedNick
	case domain.PartyAgent:
		return ticket.AgentCode
	case domain.PartyCustomer:
		return ticket.CustomerCode
	case domain.PartyUser:
		return ticket.Nick
	default:
		return ""
	}
}
