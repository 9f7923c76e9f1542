package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/cache"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sanitize"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// ReferenceService serves the lookup data tickets depend on.
type ReferenceService struct {
	statuses   repository.StatusRepository
	priorities repository.PriorityRepository
	machines   repository.MachineRepository
	customers  repository.CustomerRepository
	agents     repository.AgentRepository
	users      repository.UserRepository
	products   repository.ProductRepository
	stock      repository.StockRepository
	cache      *cache.Cache
	sanitizer  *sanitize.Sanitizer
	logger     *zap.Logger
}

// ReferenceDependencies bundles repositories for the reference service.
type ReferenceDependencies struct {
	StatusRepo   repository.StatusRepository
	PriorityRepo repository.PriorityRepository
	MachineRepo  repository.MachineRepository
	CustomerRepo repository.CustomerRepository
	AgentRepo    repository.AgentRepository
	UserRepo     repository.UserRepository
	ProductRepo  repository.ProductRepository
	StockRepo    repository.StockRepository
	Cache        *cache.Cache
	Sanitizer    *sanitize.Sanitizer
	Logger       *zap.Logger
}

// StatusInput describes a new status.
type StatusInput struct {
	Name           string
	Editable       bool
	Default        bool
	Assignee       *string
	Color          *string
	NotifyAssignee bool
	NotifyAgent    bool
	NotifyCustomer bool
	NotifyUser     bool
}

// PriorityInput describes a new priority.
type PriorityInput struct {
	Name    string
	Default bool
}

// MachineInput describes a new machine.
type MachineInput struct {
	Name             string
	Reference        string
	SerialNumber     string
	ManufacturerCode *string
	CustomerCode     *string
	AgentCode        *string
	Description      string
}

// NewReferenceService constructs the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	return &ReferenceService{
		statuses:   deps.StatusRepo,
		priorities: deps.PriorityRepo,
		machines:   deps.MachineRepo,
		customers:  deps.CustomerRepo,
		agents:     deps.AgentRepo,
		users:      deps.UserRepo,
		products:   deps.ProductRepo,
		stock:      deps.StockRepo,
		cache:      deps.Cache,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// Statuses lists every status, read through the cache.
func (s *ReferenceService) Statuses(ctx context.Context) ([]domain.Status, error) {
	var statuses []domain.Status
	if s.cache.GetJSON(ctx, cache.StatusesKey, &statuses) {
		return statuses, nil
	}
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	s.cache.SetJSON(ctx, cache.StatusesKey, statuses)
	return statuses, nil
}

// Status returns one status.
func (s *ReferenceService) Status(ctx context.Context, id int64) (*domain.Status, error) {
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("status", map[string]any{"id": id})
		}
		return nil, err
	}
	return status, nil
}

// DefaultStatus returns the status new tickets start in.
func (s *ReferenceService) DefaultStatus(ctx context.Context) (*domain.Status, error) {
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	status, ok := domain.DefaultStatus(statuses)
	if !ok {
		return nil, nil
	}
	return &status, nil
}

// CreateStatus stores a status and drops the cached list.
func (s *ReferenceService) CreateStatus(ctx context.Context, input StatusInput) (*domain.Status, error) {
	name := s.sanitizer.Text(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("status name is required", nil)
	}
	status := &domain.Status{
		Name:           name,
		Editable:       input.Editable,
		Default:        input.Default,
		Assignee:       s.sanitizer.Ptr(input.Assignee),
		Color:          s.sanitizer.Ptr(input.Color),
		NotifyAssignee: input.NotifyAssignee,
		NotifyAgent:    input.NotifyAgent,
		NotifyCustomer: input.NotifyCustomer,
		NotifyUser:     input.NotifyUser,
	}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("create status: %w", err)
	}
	s.cache.Invalidate(ctx, cache.StatusesKey)
	return status, nil
}

// Priorities lists every priority, read through the cache.
func (s *ReferenceService) Priorities(ctx context.Context) ([]domain.Priority, error) {
	var priorities []domain.Priority
	if s.cache.GetJSON(ctx, cache.PrioritiesKey, &priorities) {
		return priorities, nil
	}
	priorities, err := s.priorities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	s.cache.SetJSON(ctx, cache.PrioritiesKey, priorities)
	return priorities, nil
}

// Priority returns one priority.
func (s *ReferenceService) Priority(ctx context.Context, id int64) (*domain.Priority, error) {
	priority, err := s.priorities.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("priority", map[string]any{"id": id})
		}
		return nil, err
	}
	return priority, nil
}

// DefaultPriority returns the priority new tickets get, or nil.
func (s *ReferenceService) DefaultPriority(ctx context.Context) (*domain.Priority, error) {
	priorities, err := s.Priorities(ctx)
	if err != nil {
		return nil, err
	}
	priority, ok := domain.DefaultPriority(priorities)
	if !ok {
		return nil, nil
	}
	return &priority, nil
}

// CreatePriority stores a priority and drops the cached list.
func (s *ReferenceService) CreatePriority(ctx context.Context, input PriorityInput) (*domain.Priority, error) {
	name := s.sanitizer.Text(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("priority name is required", nil)
	}
	priority := &domain.Priority{Name: name, Default: input.Default}
	if err := s.priorities.Create(ctx, priority); err != nil {
		return nil, fmt.Errorf("create priority: %w", err)
	}
	s.cache.Invalidate(ctx, cache.PrioritiesKey)
	return priority, nil
}

// Machines searches machines by name, reference, serial number or description.
func (s *ReferenceService) Machines(ctx context.Context, search string, limit, offset int) ([]domain.Machine, error) {
	return s.machines.List(ctx, search, limit, offset)
}

// Machine returns one machine.
func (s *ReferenceService) Machine(ctx context.Context, id int64) (*domain.Machine, error) {
	machine, err := s.machines.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("machine", map[string]any{"id": id})
		}
		return nil, err
	}
	return machine, nil
}

// MachinesByIDs returns the machines with the given ids in the given order.
// Ids that no longer exist are left out.
func (s *ReferenceService) MachinesByIDs(ctx context.Context, ids []int64) ([]domain.Machine, error) {
	if len(ids) == 0 {
		return []domain.Machine{}, nil
	}
	found, err := s.machines.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Machine, len(found))
	for _, machine := range found {
		byID[machine.ID] = machine
	}
	result := make([]domain.Machine, 0, len(ids))
	for _, id := range ids {
		if machine, ok := byID[id]; ok {
			result = append(result, machine)
		}
	}
	return result, nil
}

// CreateMachine stores a machine.
func (s *ReferenceService) CreateMachine(ctx context.Context, input MachineInput) (*domain.Machine, error) {
	machine := &domain.Machine{
		Name:             s.sanitizer.Text(input.Name),
		Reference:        s.sanitizer.Text(input.Reference),
		SerialNumber:     s.sanitizer.Text(input.SerialNumber),
		ManufacturerCode: s.sanitizer.Ptr(input.ManufacturerCode),
		CustomerCode:     s.sanitizer.Ptr(input.CustomerCode),
		AgentCode:        s.sanitizer.Ptr(input.AgentCode),
		Description:      s.sanitizer.Text(input.Description),
	}
	if machine.Name == "" {
		return nil, apperrors.NewValidationError("machine name is required", nil)
	}
	if err := s.machines.Create(ctx, machine); err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return machine, nil
}

// Party loads the notification recipient of the given kind. Assignee and
// user are both looked up by nick.
func (s *ReferenceService) Party(ctx context.Context, kind domain.PartyKind, code string) (domain.Party, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Party{}, apperrors.NewNotFound(string(kind), nil)
	}
	switch kind {
	case domain.PartyAssignee, domain.PartyUser:
		user, err := s.users.GetByNick(ctx, code)
		if err != nil {
			return domain.Party{}, err
		}
		return user.Party(), nil
	case domain.PartyAgent:
		agent, err := s.agents.GetByCode(ctx, code)
		if err != nil {
			return domain.Party{}, err
		}
		return agent.Party(), nil
	case domain.PartyCustomer:
		customer, err := s.customers.GetByCode(ctx, code)
		if err != nil {
			return domain.Party{}, err
		}
		return customer.Party(), nil
	default:
		return domain.Party{}, fmt.Errorf("unknown party kind %q", kind)
	}
}

// Product returns the catalogue entry for a reference.
func (s *ReferenceService) Product(ctx context.Context, reference string) (*domain.Product, error) {
	product, err := s.products.GetByReference(ctx, reference)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("product", map[string]any{"reference": reference})
		}
		return nil, err
	}
	return product, nil
}

// Stock returns the stock of a product in a warehouse. A missing row reads
// as zero.
func (s *ReferenceService) Stock(ctx context.Context, reference, warehouse string) (*domain.Stock, error) {
	stock, err := s.stock.Get(ctx, reference, warehouse)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &domain.Stock{Reference: reference, WarehouseCode: warehouse}, nil
		}
		return nil, err
	}
	return stock, nil
}
