package audit

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, event Event) error {
	const query = `
INSERT INTO audit_events (id, actor_id, action, resource_type, resource_id, before_hash, after_hash, ip_address, organization_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		event.ID,
		nullableString(event.ActorID),
		event.Action,
		event.ResourceType,
		event.ResourceID,
		event.BeforeHash,
		event.AfterHash,
		nullableString(event.IPAddress),
		nullableString(event.OrganizationID),
		event.CreatedAt,
	)
	return err
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Event, error) {
	const query = `
SELECT id, actor_id, action, resource_type, resource_id, before_hash, after_hash, ip_address, organization_id, created_at
FROM audit_events
ORDER BY created_at DESC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev                    Event
			actorID, ip, orgID    sql.NullString
			beforeHash, afterHash sql.NullString
		)
		if err := rows.Scan(&ev.ID, &actorID, &ev.Action, &ev.ResourceType, &ev.ResourceID, &beforeHash, &afterHash, &ip, &orgID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.ActorID = actorID.String
		ev.IPAddress = ip.String
		ev.OrganizationID = orgID.String
		if beforeHash.Valid {
			ev.BeforeHash = &beforeHash.String
		}
		if afterHash.Valid {
			ev.AfterHash = &afterHash.String
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM audit_events`).Scan(&n)
	return n, err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
