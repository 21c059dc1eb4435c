package repo

import (
	"context"
	"time"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo provides the append-only audit trail.
type AuditRepo interface {
	Append(ctx context.Context, e dom.AuditEntry) error
	// ListForEntity returns entries newest-first, capped at limit. Entries
	// created before notBefore are unreachable even if the purge has not
	// caught up with them yet.
	ListForEntity(ctx context.Context, entityType, entityID string, limit int, notBefore time.Time) ([]dom.AuditEntry, error)
	// DeleteOlderThan purges entries past the retention window and reports
	// how many rows went away.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGAuditRepo implements AuditRepo with Postgres.
type PGAuditRepo struct {
	db *pgxpool.Pool
}

func NewPGAuditRepo(db *pgxpool.Pool) *PGAuditRepo {
	return &PGAuditRepo{db: db}
}

func (r *PGAuditRepo) Append(ctx context.Context, e dom.AuditEntry) error {
	// A nil map would encode as SQL NULL; the columns are NOT NULL.
	if e.Changes == nil {
		e.Changes = map[string]any{}
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_entries (id, action, entity_type, entity_id, user_id, changes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Action, e.EntityType, e.EntityID, e.UserID, e.Changes, e.Metadata)
	return err
}

func (r *PGAuditRepo) ListForEntity(ctx context.Context, entityType, entityID string, limit int, notBefore time.Time) ([]dom.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, action, entity_type, entity_id, user_id, changes, metadata, created_at
		FROM audit_entries
		WHERE entity_type = $1 AND entity_id = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT $4`,
		entityType, entityID, notBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.AuditEntry
	for rows.Next() {
		var e dom.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.UserID,
			&e.Changes, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *PGAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_entries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
