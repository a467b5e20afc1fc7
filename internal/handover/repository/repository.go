// Package repository stores handover sheets, the downstream record a won
// lead is handed over with.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DraftStatus is the status of a freshly created sheet.
const DraftStatus = "draft"

// Store is the handover persistence used by the service.
type Store interface {
	// SheetStatuses returns the stored status per lead code. Leads without a
	// sheet are absent from the map.
	SheetStatuses(ctx context.Context, leadCodes []string) (map[string]string, error)
	// EnsureDraft creates a draft sheet unless one exists and reports
	// whether it created one.
	EnsureDraft(ctx context.Context, leadCode string, at time.Time) (bool, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) SheetStatuses(ctx context.Context, leadCodes []string) (map[string]string, error) {
	out := make(map[string]string, len(leadCodes))
	if len(leadCodes) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT lead_code, status
		FROM handover_sheets
		WHERE lead_code = ANY($1::text[])`, leadCodes)
	if err != nil {
		return nil, fmt.Errorf("query handover sheets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, status string
		if err := rows.Scan(&code, &status); err != nil {
			return nil, fmt.Errorf("scan handover sheet: %w", err)
		}
		out[code] = status
	}
	return out, rows.Err()
}

func (r *Repository) EnsureDraft(ctx context.Context, leadCode string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO handover_sheets (lead_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (lead_code) DO NOTHING`, leadCode, DraftStatus, at)
	if err != nil {
		return false, fmt.Errorf("insert handover sheet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ Store = (*Repository)(nil)
