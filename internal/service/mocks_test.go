package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/cache"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sanitize"
)

type stockKey struct {
	reference string
	warehouse string
}

type memState struct {
	tickets map[int64]domain.ServiceTicket
	entries map[int64]domain.WorkEntry
	stock   map[stockKey]float64
}

func (s memState) clone() memState {
	out := memState{
		tickets: make(map[int64]domain.ServiceTicket, len(s.tickets)),
		entries: make(map[int64]domain.WorkEntry, len(s.entries)),
		stock:   make(map[stockKey]float64, len(s.stock)),
	}
	for k, v := range s.tickets {
		out.tickets[k] = v
	}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	for k, v := range s.stock {
		out.stock[k] = v
	}
	return out
}

// memStore is an in-memory unit of work. A failing transaction restores the
// state it started from.
type memStore struct {
	memState
	products map[string]domain.Product
	nextID   int64

	productReads int
	stockReads   int
	stockWrites  int
	commits      int
	rollbacks    int

	failEntryDelete map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		memState: memState{
			tickets: map[int64]domain.ServiceTicket{},
			entries: map[int64]domain.WorkEntry{},
			stock:   map[stockKey]float64{},
		},
		products:        map[string]domain.Product{},
		failEntryDelete: map[int64]error{},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	saved := s.memState.clone()
	if err := fn(ctx, s.repos()); err != nil {
		s.memState = saved
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func (s *memStore) repos() repository.TxRepositories {
	return repository.TxRepositories{
		Tickets:     memTickets{s},
		WorkEntries: memEntries{s},
		Products:    memProducts{s},
		Stock:       memStock{s},
	}
}

func (s *memStore) stockOf(reference, warehouse string) float64 {
	return s.stock[stockKey{reference, warehouse}]
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memTickets struct{ s *memStore }

func (r memTickets) Create(_ context.Context, ticket *domain.ServiceTicket) error {
	ticket.ID = r.s.id()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Update(_ context.Context, ticket *domain.ServiceTicket) error {
	current, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Net = current.Net
	ticket.UpdatedAt = time.Now()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) UpdateNet(_ context.Context, id int64, net float64) error {
	ticket, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Net = net
	r.s.tickets[id] = ticket
	return nil
}

func (r memTickets) GetByID(_ context.Context, id int64) (*domain.ServiceTicket, error) {
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r memTickets) GetForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return r.GetByID(ctx, id)
}

func (r memTickets) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	return nil
}

func (r memTickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.ServiceTicket, error) {
	var out []domain.ServiceTicket
	for _, ticket := range r.s.tickets {
		if filter.Editable != nil && ticket.Editable != *filter.Editable {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memEntries struct{ s *memStore }

func (r memEntries) Create(_ context.Context, entry *domain.WorkEntry) error {
	entry.ID = r.s.id()
	r.s.entries[entry.ID] = *entry
	return nil
}

func (r memEntries) Update(_ context.Context, entry *domain.WorkEntry) error {
	current, ok := r.s.entries[entry.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	entry.TicketID = current.TicketID
	r.s.entries[entry.ID] = *entry
	return nil
}

func (r memEntries) Delete(_ context.Context, id int64) error {
	if err := r.s.failEntryDelete[id]; err != nil {
		return err
	}
	if _, ok := r.s.entries[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.entries, id)
	return nil
}

func (r memEntries) GetByID(_ context.Context, id int64) (*domain.WorkEntry, error) {
	entry, ok := r.s.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &entry, nil
}

func (r memEntries) ListByTicket(_ context.Context, ticketID int64) ([]domain.WorkEntry, error) {
	var out []domain.WorkEntry
	for _, entry := range r.s.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEntries) List(ctx context.Context, filter repository.WorkEntryFilter) ([]domain.WorkEntry, error) {
	if filter.TicketID != nil {
		return r.ListByTicket(ctx, *filter.TicketID)
	}
	var out []domain.WorkEntry
	for _, entry := range r.s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) GetByReference(_ context.Context, reference string) (*domain.Product, error) {
	r.s.productReads++
	product, ok := r.s.products[reference]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

type memStock struct{ s *memStore }

func (r memStock) Get(_ context.Context, reference, warehouse string) (*domain.Stock, error) {
	r.s.stockReads++
	quantity, ok := r.s.stock[stockKey{reference, warehouse}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Stock{Reference: reference, WarehouseCode: warehouse, Quantity: quantity}, nil
}

func (r memStock) AddQuantity(_ context.Context, reference, warehouse string, delta float64) error {
	r.s.stockWrites++
	r.s.stock[stockKey{reference, warehouse}] += delta
	return nil
}

// Reference data mocks follow the function-field style so single tests can
// override one call.

type statusRepoMock struct {
	statuses  []domain.Status
	listCalls int
	CreateFn  func(ctx context.Context, status *domain.Status) error
}

func (m *statusRepoMock) Create(ctx context.Context, status *domain.Status) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, status)
	}
	status.ID = int64(len(m.statuses) + 1)
	m.statuses = append(m.statuses, *status)
	return nil
}

func (m *statusRepoMock) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	for _, status := range m.statuses {
		if status.ID == id {
			s := status
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *statusRepoMock) List(context.Context) ([]domain.Status, error) {
	m.listCalls++
	return append([]domain.Status(nil), m.statuses...), nil
}

type priorityRepoMock struct {
	priorities []domain.Priority
}

func (m *priorityRepoMock) Create(_ context.Context, priority *domain.Priority) error {
	priority.ID = int64(len(m.priorities) + 1)
	m.priorities = append(m.priorities, *priority)
	return nil
}

func (m *priorityRepoMock) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	for _, priority := range m.priorities {
		if priority.ID == id {
			p := priority
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *priorityRepoMock) List(context.Context) ([]domain.Priority, error) {
	return append([]domain.Priority(nil), m.priorities...), nil
}

type machineRepoMock struct {
	machines []domain.Machine
}

func (m *machineRepoMock) Create(_ context.Context, machine *domain.Machine) error {
	machine.ID = int64(len(m.machines) + 1)
	m.machines = append(m.machines, *machine)
	return nil
}

func (m *machineRepoMock) GetByID(_ context.Context, id int64) (*domain.Machine, error) {
	for _, machine := range m.machines {
		if machine.ID == id {
			mm := machine
			return &mm, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *machineRepoMock) GetByIDs(_ context.Context, ids []int64) ([]domain.Machine, error) {
	var out []domain.Machine
	for _, machine := range m.machines {
		for _, id := range ids {
			if machine.ID == id {
				out = append(out, machine)
			}
		}
	}
	return out, nil
}

func (m *machineRepoMock) List(_ context.Context, search string, _, _ int) ([]domain.Machine, error) {
	var out []domain.Machine
	for _, machine := range m.machines {
		if search == "" || strings.Contains(strings.ToLower(machine.Name), strings.ToLower(search)) {
			out = append(out, machine)
		}
	}
	return out, nil
}

type partyRepoMock struct {
	users     map[string]domain.User
	agents    map[string]domain.Agent
	customers map[string]domain.Customer
}

func (m *partyRepoMock) GetByNick(_ context.Context, nick string) (*domain.User, error) {
	user, ok := m.users[nick]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m *partyRepoMock) Create(_ context.Context, user *domain.User) error {
	m.users[user.Nick] = *user
	return nil
}

func (m *partyRepoMock) UpdatePassword(_ context.Context, nick, hash string) error {
	user, ok := m.users[nick]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	m.users[nick] = user
	return nil
}

type agentLookup struct{ m *partyRepoMock }

func (a agentLookup) GetByCode(_ context.Context, code string) (*domain.Agent, error) {
	agent, ok := a.m.agents[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

type customerLookup struct{ m *partyRepoMock }

func (c customerLookup) GetByCode(_ context.Context, code string) (*domain.Customer, error) {
	customer, ok := c.m.customers[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &customer, nil
}

type auditRepoMock struct {
	entries  []domain.AuditEntry
	CreateFn func(ctx context.Context, entry *domain.AuditEntry) error
}

func (m *auditRepoMock) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *auditRepoMock) ListByModel(_ context.Context, class, code string, _ int) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	for _, entry := range m.entries {
		if entry.ModelClass == class && entry.ModelCode == code {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *auditRepoMock) messages() []string {
	out := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry.Message)
	}
	return out
}

type sentMessage struct {
	template string
	email    string
	name     string
	vars     map[string]any
}

type notifierMock struct {
	sent   []sentMessage
	SendFn func(ctx context.Context, template, email, name string, vars map[string]any) error
}

func (m *notifierMock) Send(ctx context.Context, template, email, name string, vars map[string]any) error {
	if m.SendFn != nil {
		if err := m.SendFn(ctx, template, email, name, vars); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMessage{template: template, email: email, name: name, vars: vars})
	return nil
}

func (m *notifierMock) templatesTo() []string {
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.template+" -> "+msg.email)
	}
	return out
}

var errBoom = errors.New("boom")

const (
	statusNew        int64 = 1
	statusInProgress int64 = 2
	statusClosed     int64 = 3
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func workStatusPtr(s domain.WorkStatus) *domain.WorkStatus { return &s }

type harness struct {
	store      *memStore
	statuses   *statusRepoMock
	priorities *priorityRepoMock
	machines   *machineRepoMock
	parties    *partyRepoMock
	audit      *auditRepoMock
	notifier   *notifierMock
	metrics    *observability.Metrics
	reference  *ReferenceService
	tickets    *TicketService
	work       *WorkEntryService
}

func defaultSettings() config.ServiceSettings {
	return config.ServiceSettings{
		DefaultWorkStatus: domain.WorkStatusNone,
		SiteURL:           "https://erp.example.com",
	}
}

func newHarness(t *testing.T, settings config.ServiceSettings) *harness {
	t.Helper()

	store := newMemStore()
	store.products["REF1"] = domain.Product{Reference: "REF1", Description: "Oil filter", Price: 10}
	store.products["REF2"] = domain.Product{Reference: "REF2", Description: "Belt", Price: 4}
	store.products["SERVICE"] = domain.Product{Reference: "SERVICE", Description: "Labour hour", Price: 30, NoStock: true}
	store.stock[stockKey{"REF1", "W1"}] = 5
	store.stock[stockKey{"REF2", "W1"}] = 8

	h := &harness{
		store: store,
		statuses: &statusRepoMock{statuses: []domain.Status{
			{ID: statusNew, Name: "New", Editable: true, Default: true},
			{ID: statusInProgress, Name: "In progress", Editable: true, Assignee: strPtr("tech2"), NotifyAssignee: true},
			{ID: statusClosed, Name: "Closed", Editable: false, NotifyCustomer: true, NotifyUser: true},
		}},
		priorities: &priorityRepoMock{priorities: []domain.Priority{
			{ID: 1, Name: "Normal", Default: true},
			{ID: 2, Name: "High"},
		}},
		machines: &machineRepoMock{machines: []domain.Machine{
			{ID: 1, Name: "Compressor"},
			{ID: 2, Name: "Boiler"},
		}},
		parties: &partyRepoMock{
			users: map[string]domain.User{
				"tech1": {Nick: "tech1", Email: "tech1@example.com", Enabled: true},
				"tech2": {Nick: "tech2", Email: "tech2@example.com", Enabled: true},
				"admin": {Nick: "admin", Email: "admin@example.com", Enabled: true, Admin: true},
			},
			agents: map[string]domain.Agent{
				"AG1": {Code: "AG1", Name: "North agent", Email: "agent@example.com"},
			},
			customers: map[string]domain.Customer{
				"C1": {Code: "C1", Name: "ACME", Email: "acme@example.com"},
				"C2": {Code: "C2", Name: "No Mail Ltd"},
			},
		},
		audit:    &auditRepoMock{},
		notifier: &notifierMock{},
		metrics:  observability.NewMetrics(),
	}

	h.reference = NewReferenceService(ReferenceDependencies{
		StatusRepo:   h.statuses,
		PriorityRepo: h.priorities,
		MachineRepo:  h.machines,
		CustomerRepo: customerLookup{h.parties},
		AgentRepo:    agentLookup{h.parties},
		UserRepo:     h.parties,
		ProductRepo:  memProducts{store},
		StockRepo:    memStock{store},
		Cache:        cache.New(nil, 0, nil),
	})

	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Notifier:   h.notifier,
		Parties:    h.reference,
		Settings:   settings,
		Metrics:    h.metrics,
	}).RegisterHandlers()

	auditLogger := NewAuditLogger(h.audit, nil)
	stock := NewStockAdjuster(settings, h.metrics, nil)
	sanitizer := sanitize.New()

	h.tickets = NewTicketService(TicketDependencies{
		Transactor:    store,
		TicketRepo:    memTickets{store},
		WorkEntryRepo: memEntries{store},
		Reference:     h.reference,
		Stock:         stock,
		Dispatcher:    dispatcher,
		Audit:         auditLogger,
		Sanitizer:     sanitizer,
	})
	h.work = NewWorkEntryService(WorkEntryDependencies{
		Transactor:    store,
		WorkEntryRepo: memEntries{store},
		Stock:         stock,
		Audit:         auditLogger,
		Sanitizer:     sanitizer,
		Settings:      settings,
	})
	return h
}

// openTicket creates a ticket for customer C1 in warehouse W1 and clears the
// side effects creation produced.
func (h *harness) openTicket(t *testing.T) *domain.ServiceTicket {
	t.Helper()
	ticket, err := h.tickets.Create(context.Background(), "admin", TicketCreateInput{
		CustomerCode:  "C1",
		WarehouseCode: "W1",
	})
	require.NoError(t, err)
	h.reset()
	return ticket
}

func (h *harness) reset() {
	h.notifier.sent = nil
	h.audit.entries = nil
}

func (h *harness) ticket(t *testing.T, id int64) domain.ServiceTicket {
	t.Helper()
	ticket, ok := h.store.tickets[id]
	require.True(t, ok, "ticket %d not stored", id)
	return ticket
}
