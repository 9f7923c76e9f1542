package repository

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CustomerRepository looks up ERP customers.
type CustomerRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Customer, error)
}

// AgentRepository looks up sales agents.
type AgentRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Agent, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository builds the repository.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByCode(ctx context.Context, code string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.QueryRow(ctx,
		`SELECT code, name, email FROM customers WHERE code=$1`, code,
	).Scan(&customer.Code, &customer.Name, &customer.Email); err != nil {
		return nil, err
	}
	return &customer, nil
}

type agentRepository struct {
	db DBTX
}

// NewAgentRepository builds the repository.
func NewAgentRepository(db DBTX) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetByCode(ctx context.Context, code string) (*domain.Agent, error) {
	var agent domain.Agent
	if err := r.db.QueryRow(ctx,
		`SELECT code, name, email FROM agents WHERE code=$1`, code,
	).Scan(&agent.Code, &agent.Name, &agent.Email); err != nil {
		return nil, err
	}
	return &agent, nil
}
