package plans

import (
	"context"
	"database/sql"
	"encoding/json"

	"visaverse-backend/internal/domain"
)

type PGRunRepo struct {
	DB *sql.DB
}

func (r *PGRunRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO plan_runs (id, mode, fallback_reason, latency_ms, risk_count, sources, organization_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	refs := run.Sources
	if refs == nil {
		refs = []domain.SourceRef{}
	}
	sources, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		run.Mode,
		nullableString(run.FallbackReason),
		run.LatencyMS,
		run.RiskCount,
		string(sources),
		nullableString(run.OrganizationID),
		run.CreatedAt,
	)
	return err
}

func (r *PGRunRepo) CountByMode(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT mode, count(*) FROM plan_runs GROUP BY mode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, err
		}
		out[mode] = n
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
