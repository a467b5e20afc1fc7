package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bd_pipeline_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5"
)

func (q queries) GetGroup(ctx context.Context, code string) (Group, error) {
	group, err := scanGroup(q.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM bd_groups WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	return group, err
}

func (q queries) ListGroups(ctx context.Context, params GroupListParams) ([]Group, int, error) {
	whereClauses := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if stage := strings.TrimSpace(params.Stage); stage != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(current_status) = lower($%d)", argIdx))
		args = append(args, stage)
		argIdx++
	}
	if strings.TrimSpace(params.Search) != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR code ILIKE $%d OR contact_person ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, likePattern(params.Search))
		argIdx++
	}
	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM bd_groups WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)

	rows, err := q.db.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM bd_groups
		WHERE %s
		ORDER BY seq DESC
		LIMIT $%d OFFSET $%d
	`, groupColumns, whereClause, argIdx, argIdx+1), args...)
	if err != nil {
		return nil, 0, err
	}
	groups, err := collectGroups(rows)
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (q queries) MemberCapacities(ctx context.Context, groupCodes []string) (map[string][]string, error) {
	result := make(map[string][]string, len(groupCodes))
	if len(groupCodes) == 0 {
		return result, nil
	}

	rows, err := q.db.Query(ctx, `
		SELECT group_code, capacity
		FROM bd_leads
		WHERE group_code = ANY($1)
	`, groupCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var code, capacity string
		if err := rows.Scan(&code, &capacity); err != nil {
			return nil, err
		}
		result[code] = append(result[code], capacity)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return result, nil
}

func (q queries) AppendGroupStatus(ctx context.Context, code string, entry domain.StatusEntry) (Group, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return Group{}, err
	}
	group, err := scanGroup(q.db.QueryRow(ctx, `
		UPDATE bd_groups
		SET status_history = status_history || jsonb_build_array($2::jsonb), updated_at = $3
		WHERE code = $1
		RETURNING `+groupColumns,
		code, payload, entry.At,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	return group, err
}

func (t *txStore) GetGroupForUpdate(ctx context.Context, code string) (Group, error) {
	group, err := scanGroup(t.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM bd_groups WHERE code = $1 FOR UPDATE`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	return group, err
}

func (t *txStore) GroupMemberCapacities(ctx context.Context, groupCode, excludeLeadCode string) ([]string, error) {
	rows, err := t.db.Query(ctx, `
		SELECT capacity FROM bd_leads
		WHERE group_code = $1 AND code <> $2
	`, groupCode, excludeLeadCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capacities := make([]string, 0)
	for rows.Next() {
		var capacity string
		if err := rows.Scan(&capacity); err != nil {
			return nil, err
		}
		capacities = append(capacities, capacity)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return capacities, nil
}

func (t *txStore) InsertGroup(ctx context.Context, group Group) error {
	statusRaw, err := json.Marshal(nonNilHistory(group.StatusHistory))
	if err != nil {
		return err
	}
	_, err = t.db.Exec(ctx, `
		INSERT INTO bd_groups (
			code, seq, name, contact_person, mobiles, address, capacity_ceiling, comments,
			status_history, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		group.Code, group.Seq, group.Name, group.ContactPerson, nonEmpty(group.Mobiles), group.Address, group.CapacityCeiling, group.Comments,
		statusRaw, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	return err
}

func (t *txStore) UpdateGroup(ctx context.Context, code string, params UpdateGroupParams) (Group, error) {
	group, err := scanGroup(t.db.QueryRow(ctx, `
		UPDATE bd_groups SET
			name = COALESCE($2, name),
			contact_person = COALESCE($3, contact_person),
			mobiles = CASE WHEN $4::boolean THEN $5::text[] ELSE mobiles END,
			address = COALESCE($6, address),
			capacity_ceiling = COALESCE($7, capacity_ceiling),
			comments = COALESCE($8, comments),
			updated_at = $9
		WHERE code = $1
		RETURNING `+groupColumns,
		code, params.Name, params.ContactPerson, params.MobilesSet, nonEmpty(params.Mobiles), params.Address,
		params.CapacityCeiling, params.Comments, params.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	return group, err
}
