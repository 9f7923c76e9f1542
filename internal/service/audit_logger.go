package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

// Model classes recorded on audit entries.
const (
	ModelServiceTicket = "ServiceTicket"
	ModelWorkEntry     = "WorkEntry"
)

// Audit messages.
const (
	AuditTicketCreated = "new-service-created"
	AuditWorkCreated   = "new-work-created"
	AuditUpdated       = "updated-model"
	AuditDeleted       = "deleted-model"
)

// AuditMeta identifies the record an audit line is about.
type AuditMeta struct {
	ModelClass string
	ModelCode  string
	Data       map[string]any
}

// AuditLogger writes audit trail entries. Failures are logged, never returned,
// so an audit problem cannot undo a save that already committed.
type AuditLogger struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditLogger builds the logger. repo may be nil, in which case entries only
// go to the zap log.
func NewAuditLogger(repo repository.AuditRepository, logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{repo: repo, logger: logger.Named(domain.AuditChannel)}
}

// Info records message against the model described by meta.
func (a *AuditLogger) Info(ctx context.Context, message string, meta AuditMeta) {
	if a == nil {
		return
	}
	a.logger.Info(message,
		zap.String("model_class", meta.ModelClass),
		zap.String("model_code", meta.ModelCode),
	)
	if a.repo == nil {
		return
	}
	entry := &domain.AuditEntry{
		Channel:    domain.AuditChannel,
		Message:    message,
		ModelClass: meta.ModelClass,
		ModelCode:  meta.ModelCode,
		Data:       meta.Data,
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.logger.Warn("audit write failed",
			zap.String("message", message),
			zap.String("model_class", meta.ModelClass),
			zap.String("model_code", meta.ModelCode),
			zap.Error(err))
	}
}

// ListByModel returns the newest audit entries for one record.
func (a *AuditLogger) ListByModel(ctx context.Context, modelClass, modelCode string, limit int) ([]domain.AuditEntry, error) {
	if a == nil || a.repo == nil {
		return nil, nil
	}
	return a.repo.ListByModel(ctx, modelClass, modelCode, limit)
}

func ticketCode(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ticketAuditData(ticket domain.ServiceTicket) map[string]any {
	return map[string]any{
		"id":             ticket.ID,
		"customer_code":  ticket.CustomerCode,
		"agent_code":     ticket.AgentCode,
		"assigned_nick":  ticket.AssignedNick,
		"nick":           ticket.Nick,
		"warehouse_code": ticket.WarehouseCode,
		"status_id":      ticket.StatusID,
		"priority_id":    ticket.PriorityID,
		"editable":       ticket.Editable,
		"net":            ticket.Net,
	}
}

func workEntryAuditData(entry domain.WorkEntry) map[string]any {
	return map[string]any{
		"model":     ModelWorkEntry,
		"id":        entry.ID,
		"ticket_id": entry.TicketID,
		"reference": entry.ReferenceValue(),
		"quantity":  entry.Quantity,
		"price":     entry.Price,
		"status":    entry.Status.String(),
	}
}
