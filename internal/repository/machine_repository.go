package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// MachineRepository persists attended machines.
type MachineRepository interface {
	Create(ctx context.Context, machine *domain.Machine) error
	GetByID(ctx context.Context, id int64) (*domain.Machine, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Machine, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.Machine, error)
}

type machineRepository struct {
	db DBTX
}

// NewMachineRepository builds the repository.
func NewMachineRepository(db DBTX) MachineRepository {
	return &machineRepository{db: db}
}

const machineColumns = `id, name, reference, serial_number, manufacturer_code, customer_code,
               agent_code, description, created_at`

func (r *machineRepository) Create(ctx context.Context, machine *domain.Machine) error {
	const query = `
        INSERT INTO service_machines (name, reference, serial_number, manufacturer_code,
            customer_code, agent_code, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		machine.Name,
		machine.Reference,
		machine.SerialNumber,
		machine.ManufacturerCode,
		machine.CustomerCode,
		machine.AgentCode,
		machine.Description,
	).Scan(&machine.ID, &machine.CreatedAt)
}

func (r *machineRepository) GetByID(ctx context.Context, id int64) (*domain.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM service_machines WHERE id=$1`
	return scanMachine(r.db.QueryRow(ctx, query, id))
}

func (r *machineRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Machine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + machineColumns + ` FROM service_machines WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMachines(rows)
}

func (r *machineRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Machine, error) {
	limit, offset = normalizePage(limit, offset)
	args := []any{}
	where := "1=1"
	if term := strings.TrimSpace(search); term != "" {
		args = append(args, containsPattern(term))
		where = `(LOWER(name) LIKE $1 ESCAPE '\' OR LOWER(reference) LIKE $1 ESCAPE '\' OR ` +
			`LOWER(serial_number) LIKE $1 ESCAPE '\' OR LOWER(description) LIKE $1 ESCAPE '\')`
	}
	query := fmt.Sprintf(`SELECT %s FROM service_machines WHERE %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d`,
		machineColumns, where, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMachines(rows)
}

func scanMachines(rows pgx.Rows) ([]domain.Machine, error) {
	var result []domain.Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *machine)
	}
	return result, rows.Err()
}

func scanMachine(row pgx.Row) (*domain.Machine, error) {
	var machine domain.Machine
	if err := row.Scan(
		&machine.ID,
		&machine.Name,
		&machine.Reference,
		&machine.SerialNumber,
		&machine.ManufacturerCode,
		&machine.CustomerCode,
		&machine.AgentCode,
		&machine.Description,
		&machine.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &machine, nil
}
