package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// StatusRepository manages ticket statuses.
type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
}

// PriorityRepository manages ticket priorities.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.Priority) error
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
}

type statusRepository struct {
	db DBTX
}

// NewStatusRepository builds the repository.
func NewStatusRepository(db DBTX) StatusRepository {
	return &statusRepository{db: db}
}

const statusColumns = `id, name, editable, is_default, assignee, color,
               notify_assignee, notify_agent, notify_customer, notify_user`

// Create stores the status. Flagging it as default clears the flag on every
// other status so at most one default exists.
func (r *statusRepository) Create(ctx context.Context, status *domain.Status) error {
	if status.Default {
		if _, err := r.db.Exec(ctx, `UPDATE service_statuses SET is_default=FALSE WHERE is_default`); err != nil {
			return err
		}
	}
	const query = `
        INSERT INTO service_statuses (name, editable, is_default, assignee, color,
            notify_assignee, notify_agent, notify_customer, notify_user)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		status.Name,
		status.Editable,
		status.Default,
		status.Assignee,
		status.Color,
		status.NotifyAssignee,
		status.NotifyAgent,
		status.NotifyCustomer,
		status.NotifyUser,
	).Scan(&status.ID)
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM service_statuses WHERE id=$1`
	return scanStatus(r.db.QueryRow(ctx, query, id))
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM service_statuses ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *status)
	}
	return result, rows.Err()
}

func scanStatus(row pgx.Row) (*domain.Status, error) {
	var status domain.Status
	if err := row.Scan(
		&status.ID,
		&status.Name,
		&status.Editable,
		&status.Default,
		&status.Assignee,
		&status.Color,
		&status.NotifyAssignee,
		&status.NotifyAgent,
		&status.NotifyCustomer,
		&status.NotifyUser,
	); err != nil {
		return nil, err
	}
	return &status, nil
}

type priorityRepository struct {
	db DBTX
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(db DBTX) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	if priority.Default {
		if _, err := r.db.Exec(ctx, `UPDATE service_priorities SET is_default=FALSE WHERE is_default`); err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO service_priorities (name, is_default) VALUES ($1,$2) RETURNING id`,
		priority.Name, priority.Default,
	).Scan(&priority.ID)
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	var priority domain.Priority
	if err := r.db.QueryRow(ctx,
		`SELECT id, name, is_default FROM service_priorities WHERE id=$1`, id,
	).Scan(&priority.ID, &priority.Name, &priority.Default); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, is_default FROM service_priorities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name, &priority.Default); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}
