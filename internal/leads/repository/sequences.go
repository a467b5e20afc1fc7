package repository

import (
	"context"
	"fmt"

	"bd_pipeline_backend/internal/leads/domain"
)

// sequenceTables whitelists the table each code prefix is seeded from.
var sequenceTables = map[string]string{
	domain.LeadPrefix:  "bd_leads",
	domain.GroupPrefix: "bd_groups",
}

// NextSequence increments the counter row for prefix in one statement. The
// first call for a prefix seeds the counter from the highest stored seq so
// that imported rows are never reissued. Runs inside the caller's
// transaction; a rollback returns the number.
func (t *txStore) NextSequence(ctx context.Context, prefix string) (int64, error) {
	table, ok := sequenceTables[prefix]
	if !ok {
		return 0, fmt.Errorf("unknown sequence prefix %q", prefix)
	}

	var value int64
	err := t.db.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO bd_sequences (prefix, value)
		VALUES ($1, COALESCE((SELECT max(seq) FROM %s), 0) + 1)
		ON CONFLICT (prefix) DO UPDATE SET value = bd_sequences.value + 1
		RETURNING value
	`, table), prefix).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}
