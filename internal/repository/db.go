package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/persistence"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every repository can
// run either standalone or inside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRepositories are the repositories bound to one transaction.
type TxRepositories struct {
	Tickets     ServiceTicketRepository
	WorkEntries WorkEntryRepository
	Products    ProductRepository
	Stock       StockRepository
}

// Transactor runs a unit of work. Everything fn does through repos commits or
// rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type pgTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a pgx-backed Transactor.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &pgTransactor{pool: pool}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return persistence.InTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(ctx, TxRepositories{
			Tickets:     NewServiceTicketRepository(tx),
			WorkEntries: NewWorkEntryRepository(tx),
			Products:    NewProductRepository(tx),
			Stock:       NewStockRepository(tx),
		})
	})
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching term anywhere.
// Wildcards typed by the user match literally; queries pair it with
// ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
