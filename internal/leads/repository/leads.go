package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bd_pipeline_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (q queries) GetLead(ctx context.Context, code string) (Lead, error) {
	lead, err := scanLead(q.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM bd_leads WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (q queries) ListLeads(ctx context.Context, params LeadListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bd_leads WHERE %s", whereClause)
	if err := q.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM bd_leads
		WHERE %s
		ORDER BY seq DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params LeadListParams) (string, []any, int) {
	whereClauses := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if stage := strings.TrimSpace(params.Stage); stage != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(current_status) = lower($%d)", argIdx))
		args = append(args, stage)
		argIdx++
	}
	if params.AssignedTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("current_assigned = $%d", argIdx))
		args = append(args, params.AssignedTo.String())
		argIdx++
	}
	if params.GroupCode != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("group_code = $%d", argIdx))
		args = append(args, *params.GroupCode)
		argIdx++
	}
	if params.Ungrouped {
		whereClauses = append(whereClauses, "group_code IS NULL")
	}
	if strings.TrimSpace(params.Search) != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR code ILIKE $%d OR array_to_string(mobiles, ' ') ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, likePattern(params.Search))
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func (q queries) FindLeadsByMobiles(ctx context.Context, mobiles []string, excludeCode string) ([]Lead, error) {
	if len(mobiles) == 0 {
		return []Lead{}, nil
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+leadColumns+`
		FROM bd_leads
		WHERE mobiles && $1::text[] AND code <> $2
		ORDER BY seq
	`, mobiles, excludeCode)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (q queries) AppendLeadStatus(ctx context.Context, code string, entry domain.StatusEntry) (Lead, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return Lead{}, err
	}
	lead, err := scanLead(q.db.QueryRow(ctx, `
		UPDATE bd_leads
		SET status_history = status_history || jsonb_build_array($2::jsonb), updated_at = $3
		WHERE code = $1
		RETURNING `+leadColumns,
		code, payload, entry.At,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (q queries) AppendAssignment(ctx context.Context, code string, userID, assignedBy uuid.UUID, at time.Time) (Lead, error) {
	at = at.UTC()
	lead, err := scanLead(q.db.QueryRow(ctx, `
		UPDATE bd_leads
		SET assigned_to = assigned_to || jsonb_build_array(jsonb_build_object(
				'userId', $2::text,
				'stageAtAssignment', COALESCE(current_status, ''),
				'assignedBy', $3::text,
				'assignedAt', $4::text
			)),
			updated_at = $5
		WHERE code = $1
		RETURNING `+leadColumns,
		code, userID.String(), assignedBy.String(), at.Format(time.RFC3339Nano), at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (t *txStore) GetLeadForUpdate(ctx context.Context, code string) (Lead, error) {
	lead, err := scanLead(t.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM bd_leads WHERE code = $1 FOR UPDATE`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// LockMobileIndex takes a transaction-scoped advisory lock so that duplicate
// checks and the writes that follow them cannot interleave.
func (t *txStore) LockMobileIndex(ctx context.Context) error {
	_, err := t.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('bd_leads.mobiles'))`)
	return err
}

func (t *txStore) InsertLead(ctx context.Context, lead Lead) error {
	statusRaw, err := json.Marshal(nonNilHistory(lead.StatusHistory))
	if err != nil {
		return err
	}
	assignedRaw, err := json.Marshal(nonNilAssignments(lead.AssignedTo))
	if err != nil {
		return err
	}

	_, err = t.db.Exec(ctx, `
		INSERT INTO bd_leads (
			code, seq, name, mobiles, email, address, capacity, source, comments,
			group_code, expected_closing_date, status_history, assigned_to, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		lead.Code, lead.Seq, lead.Name, nonEmpty(lead.Mobiles), lead.Email, lead.Address, lead.Capacity, lead.Source, lead.Comments,
		lead.GroupCode, lead.ExpectedClosingDate, statusRaw, assignedRaw, lead.CreatedBy, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (t *txStore) UpdateLead(ctx context.Context, code string, params UpdateLeadParams) (Lead, error) {
	lead, err := scanLead(t.db.QueryRow(ctx, `
		UPDATE bd_leads SET
			name = COALESCE($2, name),
			mobiles = CASE WHEN $3::boolean THEN $4::text[] ELSE mobiles END,
			email = COALESCE($5, email),
			address = COALESCE($6, address),
			capacity = COALESCE($7, capacity),
			source = COALESCE($8, source),
			comments = COALESCE($9, comments),
			expected_closing_date = COALESCE(expected_closing_date, $10::date),
			updated_at = $11
		WHERE code = $1
		RETURNING `+leadColumns,
		code, params.Name, params.MobilesSet, nonEmpty(params.Mobiles), params.Email, params.Address, params.Capacity,
		params.Source, params.Comments, params.ExpectedClosingDate, params.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (t *txStore) SetLeadGroup(ctx context.Context, leadCode, groupCode string, at time.Time) (Lead, error) {
	lead, err := scanLead(t.db.QueryRow(ctx, `
		UPDATE bd_leads SET group_code = $2, updated_at = $3
		WHERE code = $1 AND group_code IS NULL
		RETURNING `+leadColumns,
		leadCode, groupCode, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := t.GetLead(ctx, leadCode); errors.Is(getErr, ErrNotFound) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, ErrAlreadyGrouped
	}
	return lead, err
}

func (t *txStore) DeleteLead(ctx context.Context, code string) error {
	tag, err := t.db.Exec(ctx, `DELETE FROM bd_leads WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNilHistory(h domain.StatusHistory) domain.StatusHistory {
	if h == nil {
		return domain.StatusHistory{}
	}
	return h
}

func nonNilAssignments(a domain.Assignments) domain.Assignments {
	if a == nil {
		return domain.Assignments{}
	}
	return a
}
