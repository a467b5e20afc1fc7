package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the PostgreSQL implementation of Store.
type Repository struct {
	queries
	pool *pgxpool.Pool
}

// New creates a repository over pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{queries: queries{db: pool}, pool: pool}
}

// InTx runs fn inside a database transaction. Row and advisory locks taken
// by fn are held until commit or rollback.
func (r *Repository) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txStore{queries: queries{db: tx}})
	})
}

// queries holds statements shared by pool and transaction scopes.
type queries struct {
	db querier
}

// txStore exposes the locking and write statements on a transaction.
type txStore struct {
	queries
}

var _ Store = (*Repository)(nil)
var _ TxStore = (*txStore)(nil)

const leadColumns = `code, seq, name, mobiles, email, address, capacity, source, comments,
	group_code, expected_closing_date, status_history, assigned_to, created_by, created_at, updated_at`

const groupColumns = `code, seq, name, contact_person, mobiles, address, capacity_ceiling, comments,
	status_history, created_by, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var (
		lead        Lead
		statusRaw   []byte
		assignedRaw []byte
	)
	if err := row.Scan(
		&lead.Code, &lead.Seq, &lead.Name, &lead.Mobiles, &lead.Email, &lead.Address, &lead.Capacity, &lead.Source, &lead.Comments,
		&lead.GroupCode, &lead.ExpectedClosingDate, &statusRaw, &assignedRaw, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return Lead{}, err
	}
	if err := json.Unmarshal(statusRaw, &lead.StatusHistory); err != nil {
		return Lead{}, fmt.Errorf("decode status_history of %s: %w", lead.Code, err)
	}
	if err := json.Unmarshal(assignedRaw, &lead.AssignedTo); err != nil {
		return Lead{}, fmt.Errorf("decode assigned_to of %s: %w", lead.Code, err)
	}
	return lead, nil
}

func scanGroup(row pgx.Row) (Group, error) {
	var (
		group     Group
		statusRaw []byte
	)
	if err := row.Scan(
		&group.Code, &group.Seq, &group.Name, &group.ContactPerson, &group.Mobiles, &group.Address, &group.CapacityCeiling, &group.Comments,
		&statusRaw, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt,
	); err != nil {
		return Group{}, err
	}
	if err := json.Unmarshal(statusRaw, &group.StatusHistory); err != nil {
		return Group{}, fmt.Errorf("decode status_history of %s: %w", group.Code, err)
	}
	return group, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func collectGroups(rows pgx.Rows) ([]Group, error) {
	defer rows.Close()

	groups := make([]Group, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return groups, nil
}

// likePattern escapes LIKE wildcards in user input and wraps it for a
// substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

func nonEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
