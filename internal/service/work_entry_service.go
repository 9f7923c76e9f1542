package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sanitize"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// WorkEntryService maintains work entries together with the stock they
// reserve and the net total of their ticket.
type WorkEntryService struct {
	tx            repository.Transactor
	workEntries   repository.WorkEntryRepository
	stock         *StockAdjuster
	audit         *AuditLogger
	sanitizer     *sanitize.Sanitizer
	defaultStatus domain.WorkStatus
	logger        *zap.Logger
	now           func() time.Time
}

// WorkEntryDependencies bundles collaborators for the work entry service.
type WorkEntryDependencies struct {
	Transactor    repository.Transactor
	WorkEntryRepo repository.WorkEntryRepository
	Stock         *StockAdjuster
	Audit         *AuditLogger
	Sanitizer     *sanitize.Sanitizer
	Settings      config.ServiceSettings
	Logger        *zap.Logger
}

// WorkEntryInput carries the fields of a work entry. On create nil values get
// defaults; on update nil values are left untouched.
type WorkEntryInput struct {
	Quantity     *float64
	Price        *float64
	Reference    *string
	Status       *domain.WorkStatus
	Description  *string
	Observations *string
	AgentCode    *string
	Nick         *string
	StartAt      *time.Time
	EndAt        *time.Time
}

// NewWorkEntryService constructs the service.
func NewWorkEntryService(deps WorkEntryDependencies) *WorkEntryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	return &WorkEntryService{
		tx:            deps.Transactor,
		workEntries:   deps.WorkEntryRepo,
		stock:         deps.Stock,
		audit:         deps.Audit,
		sanitizer:     sanitizer,
		defaultStatus: deps.Settings.DefaultWorkStatus,
		logger:        logger,
		now:           time.Now,
	}
}

// Create adds a work entry to a ticket, reserves its stock and refreshes the
// ticket net total.
func (s *WorkEntryService) Create(ctx context.Context, actorNick string, ticketID int64, input WorkEntryInput) (*domain.WorkEntry, error) {
	start := s.now()
	entry := &domain.WorkEntry{
		TicketID: ticketID,
		Quantity: 1,
		Price:    0,
		Status:   s.defaultStatus,
		StartAt:  &start,
	}
	s.applyInput(entry, input)
	if entry.Nick == nil && actorNick != "" {
		nick := actorNick
		entry.Nick = &nick
	}
	if !entry.Status.Valid() {
		return nil, invalidWorkStatus(entry.Status)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "service ticket", ticketID)
		}
		if err := s.fillFromProduct(ctx, repos, entry); err != nil {
			return err
		}
		if err := repos.WorkEntries.Create(ctx, entry); err != nil {
			return fmt.Errorf("create work entry: %w", err)
		}
		if err := s.stock.Reserve(ctx, repos, ticket.WarehouseCode, *entry); err != nil {
			return err
		}
		return recomputeNet(ctx, repos, ticketID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Info(ctx, AuditWorkCreated, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(ticketID),
		Data:       workEntryAuditData(*entry),
	})
	return entry, nil
}

// Update changes a work entry. When quantity, status or reference change the
// previous reservation is given back before the new one is taken.
func (s *WorkEntryService) Update(ctx context.Context, id int64, input WorkEntryInput) (*domain.WorkEntry, error) {
	var updated domain.WorkEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		ticket, current, err := lockEntry(ctx, repos, id)
		if err != nil {
			return err
		}
		before := *current

		s.applyInput(current, input)
		if !current.Status.Valid() {
			return invalidWorkStatus(current.Status)
		}
		if err := s.fillFromProduct(ctx, repos, current); err != nil {
			return err
		}
		if err := repos.WorkEntries.Update(ctx, current); err != nil {
			return fmt.Errorf("update work entry: %w", err)
		}
		if reservationChanged(before, *current) {
			if err := s.stock.Move(ctx, repos, ticket.WarehouseCode, before, *current); err != nil {
				return err
			}
		}
		updated = *current
		return recomputeNet(ctx, repos, ticket.ID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Info(ctx, AuditUpdated, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(updated.TicketID),
		Data:       workEntryAuditData(updated),
	})
	return &updated, nil
}

// Delete removes a work entry, gives back its stock and refreshes the ticket
// net total.
func (s *WorkEntryService) Delete(ctx context.Context, id int64) error {
	var deleted domain.WorkEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		ticket, entry, err := lockEntry(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := repos.WorkEntries.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete work entry: %w", err)
		}
		if err := s.stock.Release(ctx, repos, ticket.WarehouseCode, *entry); err != nil {
			return err
		}
		deleted = *entry
		return recomputeNet(ctx, repos, ticket.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Info(ctx, AuditDeleted, AuditMeta{
		ModelClass: ModelServiceTicket,
		ModelCode:  ticketCode(deleted.TicketID),
		Data:       workEntryAuditData(deleted),
	})
	return nil
}

// Get returns one work entry.
func (s *WorkEntryService) Get(ctx context.Context, id int64) (*domain.WorkEntry, error) {
	entry, err := s.workEntries.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "work entry", id)
	}
	return entry, nil
}

// List returns work entries matching filter.
func (s *WorkEntryService) List(ctx context.Context, filter repository.WorkEntryFilter) ([]domain.WorkEntry, error) {
	return s.workEntries.List(ctx, filter)
}

func (s *WorkEntryService) applyInput(entry *domain.WorkEntry, input WorkEntryInput) {
	if input.Quantity != nil {
		entry.Quantity = *input.Quantity
	}
	if input.Price != nil {
		entry.Price = *input.Price
	}
	if input.Reference != nil {
		entry.Reference = s.sanitizer.Ptr(input.Reference)
	}
	if input.Status != nil {
		entry.Status = *input.Status
	}
	if input.Description != nil {
		entry.Description = s.sanitizer.Text(*input.Description)
	}
	if input.Observations != nil {
		entry.Observations = s.sanitizer.Text(*input.Observations)
	}
	if input.AgentCode != nil {
		entry.AgentCode = s.sanitizer.Ptr(input.AgentCode)
	}
	if input.Nick != nil {
		entry.Nick = s.sanitizer.Ptr(input.Nick)
	}
	if input.StartAt != nil {
		entry.StartAt = input.StartAt
	}
	if input.EndAt != nil {
		entry.EndAt = input.EndAt
	}
}

// fillFromProduct resolves the entry's reference. An empty description or a
// zero price is taken from the product.
func (s *WorkEntryService) fillFromProduct(ctx context.Context, repos repository.TxRepositories, entry *domain.WorkEntry) error {
	reference := entry.ReferenceValue()
	if reference == "" {
		return nil
	}
	product, err := repos.Products.GetByReference(ctx, reference)
	if err != nil {
		return invalidReference(err, "product", reference)
	}
	if entry.Description == "" {
		entry.Description = product.Description
	}
	if entry.Price == 0 {
		entry.Price = product.Price
	}
	return nil
}

// lockEntry locks the owning ticket and then reads the entry, so the entry
// seen is the one every other writer of the ticket waits behind.
func lockEntry(ctx context.Context, repos repository.TxRepositories, id int64) (*domain.ServiceTicket, *domain.WorkEntry, error) {
	probe, err := repos.WorkEntries.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "work entry", id)
	}
	ticket, err := repos.Tickets.GetForUpdate(ctx, probe.TicketID)
	if err != nil {
		return nil, nil, notFoundOr(err, "service ticket", probe.TicketID)
	}
	entry, err := repos.WorkEntries.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "work entry", id)
	}
	return ticket, entry, nil
}

// recomputeNet stores the sum of price * quantity over the ticket's entries.
func recomputeNet(ctx context.Context, repos repository.TxRepositories, ticketID int64) error {
	entries, err := repos.WorkEntries.ListByTicket(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("list work entries: %w", err)
	}
	if err := repos.Tickets.UpdateNet(ctx, ticketID, domain.NetTotal(entries)); err != nil {
		return fmt.Errorf("update ticket net: %w", err)
	}
	return nil
}

func reservationChanged(before, after domain.WorkEntry) bool {
	return before.Quantity != after.Quantity ||
		before.Status != after.Status ||
		before.ReferenceValue() != after.ReferenceValue()
}

func invalidWorkStatus(status domain.WorkStatus) error {
	return apperrors.NewValidationError("invalid work status", map[string]any{"status": int(status)})
}
