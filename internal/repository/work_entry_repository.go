package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// WorkEntryFilter narrows the work entry list.
type WorkEntryFilter struct {
	TicketID   *int64
	Nick       *string
	AgentCode  *string
	SearchTerm *string
	OrderByEnd bool
	Ascending  bool
	Limit      int
	Offset     int
}

// WorkEntryRepository persists work entries.
type WorkEntryRepository interface {
	Create(ctx context.Context, entry *domain.WorkEntry) error
	Update(ctx context.Context, entry *domain.WorkEntry) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.WorkEntry, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.WorkEntry, error)
	List(ctx context.Context, filter WorkEntryFilter) ([]domain.WorkEntry, error)
}

type workEntryRepository struct {
	db DBTX
}

// NewWorkEntryRepository builds the repository.
func NewWorkEntryRepository(db DBTX) WorkEntryRepository {
	return &workEntryRepository{db: db}
}

const workEntryColumns = `id, ticket_id, quantity, price, reference, status, description,
               observations, agent_code, nick, start_at, end_at`

func (r *workEntryRepository) Create(ctx context.Context, entry *domain.WorkEntry) error {
	const query = `
        INSERT INTO service_work_entries (ticket_id, quantity, price, reference, status, description,
            observations, agent_code, nick, start_at, end_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Quantity,
		entry.Price,
		entry.Reference,
		int(entry.Status),
		entry.Description,
		entry.Observations,
		entry.AgentCode,
		entry.Nick,
		entry.StartAt,
		entry.EndAt,
	).Scan(&entry.ID)
}

// Update never touches ticket_id: an entry stays with the ticket it was created on.
func (r *workEntryRepository) Update(ctx context.Context, entry *domain.WorkEntry) error {
	const query = `
        UPDATE service_work_entries SET quantity=$1, price=$2, reference=$3, status=$4,
            description=$5, observations=$6, agent_code=$7, nick=$8, start_at=$9, end_at=$10
        WHERE id=$11`
	cmd, err := r.db.Exec(ctx, query,
		entry.Quantity,
		entry.Price,
		entry.Reference,
		int(entry.Status),
		entry.Description,
		entry.Observations,
		entry.AgentCode,
		entry.Nick,
		entry.StartAt,
		entry.EndAt,
		entry.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workEntryRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM service_work_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workEntryRepository) GetByID(ctx context.Context, id int64) (*domain.WorkEntry, error) {
	query := `SELECT ` + workEntryColumns + ` FROM service_work_entries WHERE id=$1`
	return scanWorkEntry(r.db.QueryRow(ctx, query, id))
}

func (r *workEntryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.WorkEntry, error) {
	query := `SELECT ` + workEntryColumns + ` FROM service_work_entries
        WHERE ticket_id=$1 ORDER BY start_at ASC NULLS LAST, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkEntries(rows)
}

func (r *workEntryRepository) List(ctx context.Context, filter WorkEntryFilter) ([]domain.WorkEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.Nick != nil {
		args = append(args, *filter.Nick)
		clauses = append(clauses, fmt.Sprintf("nick=$%d", len(args)))
	}
	if filter.AgentCode != nil {
		args = append(args, *filter.AgentCode)
		clauses = append(clauses, fmt.Sprintf("agent_code=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(description) LIKE %[1]s ESCAPE '\\' OR LOWER(observations) LIKE %[1]s ESCAPE '\\' OR "+
				"LOWER(COALESCE(reference, '')) LIKE %[1]s ESCAPE '\\')", p))
	}

	column := "start_at"
	if filter.OrderByEnd {
		column = "end_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM service_work_entries WHERE %s ORDER BY %s %s NULLS LAST, id %s LIMIT %d OFFSET %d`,
		workEntryColumns, strings.Join(clauses, " AND "), column, direction, direction, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkEntries(rows)
}

func scanWorkEntries(rows pgx.Rows) ([]domain.WorkEntry, error) {
	var result []domain.WorkEntry
	for rows.Next() {
		entry, err := scanWorkEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func scanWorkEntry(row pgx.Row) (*domain.WorkEntry, error) {
	var (
		entry  domain.WorkEntry
		status int
	)
	if err := row.Scan(
		&entry.ID,
		&entry.TicketID,
		&entry.Quantity,
		&entry.Price,
		&entry.Reference,
		&status,
		&entry.Description,
		&entry.Observations,
		&entry.AgentCode,
		&entry.Nick,
		&entry.StartAt,
		&entry.EndAt,
	); err != nil {
		return nil, err
	}
	entry.Status = domain.WorkStatus(status)
	return &entry, nil
}
