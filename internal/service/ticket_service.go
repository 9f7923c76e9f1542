package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sanitize"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// ReferenceData is the lookup data the ticket workflow reads.
type ReferenceData interface {
	Status(ctx context.Context, id int64) (*domain.Status, error)
	DefaultStatus(ctx context.Context) (*domain.Status, error)
	Priority(ctx context.Context, id int64) (*domain.Priority, error)
	DefaultPriority(ctx context.Context) (*domain.Priority, error)
	Machine(ctx context.Context, id int64) (*domain.Machine, error)
	MachinesByIDs(ctx context.Context, ids []int64) ([]domain.Machine, error)
}

// TicketService coordinates the service ticket workflow.
type TicketService struct {
	tx          repository.Transactor
	tickets     repository.ServiceTicketRepository
	workEntries repository.WorkEntryRepository
	reference   ReferenceData
	stock       *StockAdjuster
	dispatcher  events.Dispatcher
	audit       *AuditLogger
	sanitizer   *sanitize.Sanitizer
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Transactor    repository.Transactor
	TicketRepo    repository.ServiceTicketRepository
	WorkEntryRepo repository.WorkEntryRepository
	Reference     ReferenceData
	Stock         *StockAdjuster
	Dispatcher    events.Dispatcher
	Audit         *AuditLogger
	Sanitizer     *sanitize.Sanitizer
	Logger        *zap.Logger
}

// TicketCreateInput describes a new ticket. Nil ids pick the defaults.
type TicketCreateInput struct {
	CustomerCode  string
	AgentCode     string
	AssignedNick  string
	Nick          string
	WarehouseCode string
	StatusID      *int64
	PriorityID    *int64
	Description   string
	Material      string
	Observations  string
	Solution      string
	MachineIDs    []int64
}

// TicketUpdateInput is a partial update. Nil fields are left as they are.
type TicketUpdateInput struct {
	CustomerCode  *string
	AgentCode     *string
	AssignedNick  *string
	Nick          *string
	WarehouseCode *string
	StatusID      *int64
	PriorityID    *int64
	Description   *string
	Material      *string
	Observations  *string
	Solution      *string
	MachineIDs    *[]int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	return &TicketService{
		tx:          deps.Transactor,
		tickets:     deps.TicketRepo,
		workEntries: deps.WorkEntryRepo,
		reference:   deps.Reference,
		stock:       deps.Stock,
		dispatcher:  deps.Dispatcher,
		audit:       deps.Audit,
		sanitizer:   sanitizer,
		logger:      logger,
		now:         time.Now,
	}
}

// Create opens a ticket. Without an explicit status it starts in the default
// status; either way Editable follows the status. Assignee, agent and customer
// are notified once the ticket is stored.
func (s *TicketService) Create(ctx context.Context, actorNick string, input TicketCreateInput) (*domain.ServiceTicket, error) {
	ticket := &domain.ServiceTicket{
		CustomerCode:  s.sanitizer.Text(input.CustomerCode),
		AgentCode:     s.sanitizer.Text(input.AgentCode),
		AssignedNick:  s.sanitizer.Text(input.AssignedNick),
		Nick:          s.sanitizer.Text(input.Nick),
		WarehouseCode: s.sanitizer.Text(input.WarehouseCode),
		Description:   s.sanitizer.Text(input.Description),
		Material:      s.sanitizer.Text(input.Material),
		Observations:  s.sanitizer.Text(input.Observations),
		Solution:      s.sanitizer.Text(input.Solution),
		Net:           0,
	}
	if ticket.Nick == "" {
		ticket.Nick = actorNick
	}
	if ticket.CustomerCode == "" {
		return nil, apperrors.NewValidationError("customer is required", map[string]any{"field": "customer_code"})
	}
	if err := s.setMachines(ctx, ticket, input.MachineIDs); err != nil {
		return nil, err
	}

	status, err := s.initialStatus(ctx, input.StatusID)
	if err != nil {
		return nil, err
	}
	ticket.StatusID = status.ID
	ticket.Editable = status.Editable

	priorityID, err := s.initialPriority(ctx, input.PriorityID)
	if err != nil {
		return nil, err
	}
	ticket.PriorityID = priorityID

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create service ticket: %w", err)
	}

	s.audit.Info(ctx, AuditTicketCreated, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(ticket.ID),
		Data:       ticketAuditData(*ticket),
	})
	s.publish(ctx, actorNick, *ticket, status.Name, []events.Transition{events.TicketCreated{}})
	return ticket, nil
}

// Update applies a partial update. A move into a new status syncs Editable and
// the status's default assignee, then every watched field that changed to a
// non-empty value fires its notification after the save commits.
func (s *TicketService) Update(ctx context.Context, actorNick string, id int64, input TicketUpdateInput) (*domain.ServiceTicket, error) {
	var (
		updated     domain.ServiceTicket
		before      events.TicketSnapshot
		newStatus   *domain.Status
		transitions []events.Transition
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "service ticket", id)
		}
		before = events.SnapshotOf(*ticket)
		prevWarehouse := ticket.WarehouseCode

		if err := s.applyPatch(ctx, ticket, input); err != nil {
			return err
		}
		if ticket.WarehouseCode != prevWarehouse {
			if err := s.moveReservations(ctx, repos, ticket.ID, prevWarehouse, ticket.WarehouseCode); err != nil {
				return err
			}
		}

		if events.StatusChangedTo(before, events.SnapshotOf(*ticket)) {
			status, err := s.reference.Status(ctx, ticket.StatusID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return apperrors.NewValidationError("unknown status", map[string]any{"status_id": ticket.StatusID})
				}
				return err
			}
			ticket.ApplyStatus(*status)
			newStatus = status
		}

		if err := repos.Tickets.Update(ctx, ticket); err != nil {
			return fmt.Errorf("update service ticket: %w", err)
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	transitions = events.Diff(before, events.SnapshotOf(updated))

	message := AuditUpdated
	statusName := ""
	if newStatus != nil {
		statusName = newStatus.Name
		message = "changed status to " + newStatus.Name
		for i, transition := range transitions {
			if changed, ok := transition.(events.StatusChanged); ok {
				changed.Status = *newStatus
				transitions[i] = changed
			}
		}
	} else {
		statusName = s.statusName(ctx, updated.StatusID)
	}

	s.audit.Info(ctx, message, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(updated.ID),
		Data:       ticketAuditData(updated),
	})
	s.publish(ctx, actorNick, updated, statusName, transitions)
	return &updated, nil
}

// moveReservations hands every entry's reservation from one warehouse to the
// other so stock stays in step with the ticket's warehouse.
func (s *TicketService) moveReservations(ctx context.Context, repos repository.TxRepositories, ticketID int64, from, to string) error {
	entries, err := repos.WorkEntries.ListByTicket(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("list work entries: %w", err)
	}
	for _, entry := range entries {
		if err := s.stock.Release(ctx, repos, from, entry); err != nil {
			return err
		}
		if err := s.stock.Reserve(ctx, repos, to, entry); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the ticket and all of its work entries in one transaction,
// giving back the stock each entry reserved.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	var deleted domain.ServiceTicket
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "service ticket", id)
		}
		entries, err := repos.WorkEntries.ListByTicket(ctx, id)
		if err != nil {
			return fmt.Errorf("list work entries: %w", err)
		}
		for _, entry := range entries {
			if err := repos.WorkEntries.Delete(ctx, entry.ID); err != nil {
				return fmt.Errorf("delete work entry %d: %w", entry.ID, err)
			}
			if err := s.stock.Release(ctx, repos, ticket.WarehouseCode, entry); err != nil {
				return err
			}
		}
		if err := repos.Tickets.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete service ticket: %w", err)
		}
		deleted = *ticket
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Info(ctx, AuditDeleted, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(deleted.ID),
		Data:       ticketAuditData(deleted),
	})
	return nil
}

// Get returns one ticket.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "service ticket", id)
	}
	return ticket, nil
}

// List returns tickets matching filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.ServiceTicket, error) {
	return s.tickets.List(ctx, filter)
}

// Machines returns the machines attended under a ticket, in slot order.
func (s *TicketService) Machines(ctx context.Context, id int64) ([]domain.Machine, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reference.MachinesByIDs(ctx, ticket.Machines())
}

// WorkEntries returns a ticket's work entries ordered by start date.
func (s *TicketService) WorkEntries(ctx context.Context, id int64) ([]domain.WorkEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.workEntries.ListByTicket(ctx, id)
}

// AuditTrail returns the audit entries recorded for a ticket and its work entries.
func (s *TicketService) AuditTrail(ctx context.Context, id int64, limit int) ([]domain.AuditEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.ListByModel(ctx, ModelServiceTicket, ticketCode(id), limit)
}

func (s *TicketService) applyPatch(ctx context.Context, ticket *domain.ServiceTicket, input TicketUpdateInput) error {
	if input.CustomerCode != nil {
		code := s.sanitizer.Text(*input.CustomerCode)
		if code == "" {
			return apperrors.NewValidationError("customer is required", map[string]any{"field": "customer_code"})
		}
		ticket.CustomerCode = code
	}
	if input.AgentCode != nil {
		ticket.AgentCode = s.sanitizer.Text(*input.AgentCode)
	}
	if input.AssignedNick != nil {
		ticket.AssignedNick = s.sanitizer.Text(*input.AssignedNick)
	}
	if input.Nick != nil {
		ticket.Nick = s.sanitizer.Text(*input.Nick)
	}
	if input.WarehouseCode != nil {
		ticket.WarehouseCode = s.sanitizer.Text(*input.WarehouseCode)
	}
	if input.StatusID != nil && *input.StatusID != 0 {
		ticket.StatusID = *input.StatusID
	}
	if input.PriorityID != nil {
		if *input.PriorityID != 0 {
			if _, err := s.reference.Priority(ctx, *input.PriorityID); err != nil {
				return invalidReference(err, "priority", *input.PriorityID)
			}
		}
		ticket.PriorityID = *input.PriorityID
	}
	if input.Description != nil {
		ticket.Description = s.sanitizer.Text(*input.Description)
	}
	if input.Material != nil {
		ticket.Material = s.sanitizer.Text(*input.Material)
	}
	if input.Observations != nil {
		ticket.Observations = s.sanitizer.Text(*input.Observations)
	}
	if input.Solution != nil {
		ticket.Solution = s.sanitizer.Text(*input.Solution)
	}
	if input.MachineIDs != nil {
		return s.setMachines(ctx, ticket, *input.MachineIDs)
	}
	return nil
}

func (s *TicketService) setMachines(ctx context.Context, ticket *domain.ServiceTicket, ids []int64) error {
	if len(ids) > domain.MaxMachines {
		return apperrors.NewValidationError(
			fmt.Sprintf("a ticket references at most %d machines", domain.MaxMachines),
			map[string]any{"field": "machine_ids"})
	}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, err := s.reference.Machine(ctx, id); err != nil {
			return invalidReference(err, "machine", id)
		}
	}
	ticket.SetMachines(ids)
	return nil
}

func (s *TicketService) initialStatus(ctx context.Context, id *int64) (*domain.Status, error) {
	if id != nil && *id != 0 {
		status, err := s.reference.Status(ctx, *id)
		if err != nil {
			return nil, invalidReference(err, "status", *id)
		}
		return status, nil
	}
	status, err := s.reference.DefaultStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperrors.NewValidationError("no default status configured", nil)
	}
	return status, nil
}

func (s *TicketService) initialPriority(ctx context.Context, id *int64) (int64, error) {
	if id != nil && *id != 0 {
		priority, err := s.reference.Priority(ctx, *id)
		if err != nil {
			return 0, invalidReference(err, "priority", *id)
		}
		return priority.ID, nil
	}
	priority, err := s.reference.DefaultPriority(ctx)
	if err != nil {
		return 0, err
	}
	if priority == nil {
		return 0, nil
	}
	return priority.ID, nil
}

func (s *TicketService) statusName(ctx context.Context, id int64) string {
	status, err := s.reference.Status(ctx, id)
	if err != nil {
		s.logger.Debug("status name unavailable", zap.Int64("status_id", id), zap.Error(err))
		return ""
	}
	return status.Name
}

func (s *TicketService) publish(ctx context.Context, actor string, ticket domain.ServiceTicket, statusName string, transitions []events.Transition) {
	if s.dispatcher == nil {
		return
	}
	for _, transition := range transitions {
		event := events.Event{
			ID:         uuid.NewString(),
			Type:       transition.EventType(),
			TicketID:   ticket.ID,
			Actor:      actor,
			Timestamp:  s.now().UTC(),
			Ticket:     ticket,
			StatusName: statusName,
			Payload:    transition,
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish ticket event failed",
				zap.String("event_type", string(event.Type)),
				zap.Int64("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}

func notFoundOr(err error, resource string, id int64) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func invalidReference(err error, resource string, id any) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewValidationError("unknown "+resource, map[string]any{resource: id})
	}
	return err
}
