package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// TicketFilter mirrors the filters of the open and closed ticket lists.
type TicketFilter struct {
	Editable     *bool
	StatusID     *int64
	PriorityID   *int64
	CustomerCode *string
	AgentCode    *string
	AssignedNick *string
	Nick         *string
	NetFrom      *float64
	NetTo        *float64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	SearchTerm   *string
	OrderBy      string
	Ascending    bool
	Limit        int
	Offset       int
}

var ticketOrderColumns = map[string]string{
	"date":     "created_at",
	"priority": "priority_id",
	"id":       "id",
	"net":      "net",
}

// TicketOrderKeys lists the accepted TicketFilter.OrderBy values.
func TicketOrderKeys() []string {
	return []string{"date", "priority", "id", "net"}
}

// ServiceTicketRepository encapsulates service ticket persistence.
type ServiceTicketRepository interface {
	Create(ctx context.Context, ticket *domain.ServiceTicket) error
	Update(ctx context.Context, ticket *domain.ServiceTicket) error
	UpdateNet(ctx context.Context, id int64, net float64) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error)
}

type serviceTicketRepository struct {
	db DBTX
}

// NewServiceTicketRepository instantiates repository.
func NewServiceTicketRepository(db DBTX) ServiceTicketRepository {
	return &serviceTicketRepository{db: db}
}

const ticketColumns = `id, customer_code, agent_code, assigned_nick, nick, warehouse_code,
               status_id, COALESCE(priority_id, 0), editable, net, description, material,
               observations, solution, machine_id1, machine_id2, machine_id3, machine_id4,
               created_at, updated_at`

func (r *serviceTicketRepository) Create(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        INSERT INTO service_tickets (customer_code, agent_code, assigned_nick, nick, warehouse_code,
            status_id, priority_id, editable, net, description, material, observations, solution,
            machine_id1, machine_id2, machine_id3, machine_id4)
        VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7::bigint, 0),$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.CustomerCode,
		ticket.AgentCode,
		ticket.AssignedNick,
		ticket.Nick,
		ticket.WarehouseCode,
		ticket.StatusID,
		ticket.PriorityID,
		ticket.Editable,
		ticket.Net,
		ticket.Description,
		ticket.Material,
		ticket.Observations,
		ticket.Solution,
		ticket.MachineIDs[0],
		ticket.MachineIDs[1],
		ticket.MachineIDs[2],
		ticket.MachineIDs[3],
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *serviceTicketRepository) Update(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        UPDATE service_tickets SET customer_code=$1, agent_code=$2, assigned_nick=$3, nick=$4,
            warehouse_code=$5, status_id=$6, priority_id=NULLIF($7::bigint, 0), editable=$8, description=$9,
            material=$10, observations=$11, solution=$12, machine_id1=$13, machine_id2=$14,
            machine_id3=$15, machine_id4=$16, updated_at=NOW()
        WHERE id=$17
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.CustomerCode,
		ticket.AgentCode,
		ticket.AssignedNick,
		ticket.Nick,
		ticket.WarehouseCode,
		ticket.StatusID,
		ticket.PriorityID,
		ticket.Editable,
		ticket.Description,
		ticket.Material,
		ticket.Observations,
		ticket.Solution,
		ticket.MachineIDs[0],
		ticket.MachineIDs[1],
		ticket.MachineIDs[2],
		ticket.MachineIDs[3],
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return err
}

func (r *serviceTicketRepository) UpdateNet(ctx context.Context, id int64, net float64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE service_tickets SET net=$1, updated_at=NOW() WHERE id=$2`, net, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceTicketRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM service_tickets WHERE id=$1`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

// GetForUpdate locks the ticket row until the surrounding transaction ends.
// Work-entry writes take this lock first so concurrent net recomputations
// serialize per ticket.
func (r *serviceTicketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM service_tickets WHERE id=$1 FOR UPDATE`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *serviceTicketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM service_tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if filter.Editable != nil {
		add("editable=$%d", *filter.Editable)
	}
	if filter.StatusID != nil {
		add("status_id=$%d", *filter.StatusID)
	}
	if filter.PriorityID != nil {
		add("priority_id=$%d", *filter.PriorityID)
	}
	if filter.CustomerCode != nil {
		add("customer_code=$%d", *filter.CustomerCode)
	}
	if filter.AgentCode != nil {
		add("agent_code=$%d", *filter.AgentCode)
	}
	if filter.AssignedNick != nil {
		add("assigned_nick=$%d", *filter.AssignedNick)
	}
	if filter.Nick != nil {
		add("nick=$%d", *filter.Nick)
	}
	if filter.NetFrom != nil {
		add("net >= $%d", *filter.NetFrom)
	}
	if filter.NetTo != nil {
		add("net <= $%d", *filter.NetTo)
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("created_at <= $%d", *filter.CreatedTo)
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(description) LIKE %[1]s ESCAPE '\\' OR LOWER(material) LIKE %[1]s ESCAPE '\\' OR "+
				"LOWER(observations) LIKE %[1]s ESCAPE '\\' OR LOWER(solution) LIKE %[1]s ESCAPE '\\' OR "+
				"CAST(id AS TEXT) LIKE %[1]s ESCAPE '\\')", p))
	}

	column, ok := ticketOrderColumns[filter.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM service_tickets WHERE %s ORDER BY %s %s, id %s LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), column, direction, direction, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerCode,
		&ticket.AgentCode,
		&ticket.AssignedNick,
		&ticket.Nick,
		&ticket.WarehouseCode,
		&ticket.StatusID,
		&ticket.PriorityID,
		&ticket.Editable,
		&ticket.Net,
		&ticket.Description,
		&ticket.Material,
		&ticket.Observations,
		&ticket.Solution,
		&ticket.MachineIDs[0],
		&ticket.MachineIDs[1],
		&ticket.MachineIDs[2],
		&ticket.MachineIDs[3],
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
