package repository

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// AuditRepository appends and reads audit trail entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByModel(ctx context.Context, modelClass, modelCode string, limit int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	db DBTX
}

// NewAuditRepository builds the repository.
func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.Data == nil {
		entry.Data = map[string]any{}
	}
	const query = `
        INSERT INTO audit_log (channel, message, model_class, model_code, data)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.Channel,
		entry.Message,
		entry.ModelClass,
		entry.ModelCode,
		entry.Data,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByModel(ctx context.Context, modelClass, modelCode string, limit int) ([]domain.AuditEntry, error) {
	limit, _ = normalizePage(limit, 0)
	const query = `
        SELECT id, channel, message, model_class, model_code, data, created_at
        FROM audit_log WHERE model_class=$1 AND model_code=$2
        ORDER BY created_at DESC, id DESC LIMIT $3`
	rows, err := r.db.Query(ctx, query, modelClass, modelCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Channel,
			&entry.Message,
			&entry.ModelClass,
			&entry.ModelCode,
			&entry.Data,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
