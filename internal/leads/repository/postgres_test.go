package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/grouping"
	"bd_pipeline_backend/internal/leads/management"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/apperr"
	"bd_pipeline_backend/platform/db"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests run against a real PostgreSQL database named by
// BD_TEST_DATABASE_URL. Every table the leads store owns is truncated first.
func openTestRepository(t *testing.T) (*repository.Repository, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("BD_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BD_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.RunMigrations(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE handover_sheets, bd_leads, bd_groups, bd_sequences`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return repository.New(pool), pool
}

func services(repo *repository.Repository) (*management.Service, *grouping.Service) {
	bus := events.NewInMemoryBus(logger.Nop())
	presenter := views.New(nil)
	phones := phone.NewNormalizer("IN")
	return management.New(repo, presenter, phones, bus, logger.Nop()),
		grouping.New(repo, presenter, phones, bus, logger.Nop())
}

func TestPostgresSequenceSeedsFromStoredRowsAndRollsBack(t *testing.T) {
	repo, _ := openTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := repo.InTx(ctx, func(tx repository.TxStore) error {
		return tx.InsertLead(ctx, repository.Lead{
			Code:          domain.FormatCode(domain.LeadPrefix, 41),
			Seq:           41,
			Name:          "Imported",
			Mobiles:       []string{"+919811111111"},
			Address:       "Old records",
			Capacity:      "5",
			StatusHistory: domain.StatusHistory{{Stage: domain.StageInitial, At: now}},
			CreatedBy:     uuid.New(),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		t.Fatalf("insert imported lead: %v", err)
	}

	next := func() int64 {
		t.Helper()
		var seq int64
		if err := repo.InTx(ctx, func(tx repository.TxStore) error {
			var err error
			seq, err = tx.NextSequence(ctx, domain.LeadPrefix)
			return err
		}); err != nil {
			t.Fatalf("next sequence: %v", err)
		}
		return seq
	}

	if got := next(); got != 42 {
		t.Fatalf("expected counter seeded to 42, got %d", got)
	}

	abort := errors.New("abort")
	err = repo.InTx(ctx, func(tx repository.TxStore) error {
		if _, err := tx.NextSequence(ctx, domain.LeadPrefix); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort, got %v", err)
	}

	if got := next(); got != 43 {
		t.Fatalf("expected rolled back number to be reissued as 43, got %d", got)
	}
}

func TestPostgresGeneratedCurrentColumns(t *testing.T) {
	repo, pool := openTestRepository(t)
	leads, _ := services(repo)
	ctx := context.Background()

	lead, err := leads.Create(ctx, transport.CreateLeadRequest{
		Name:     "Asha",
		Mobiles:  []string{"9876543210"},
		Address:  "12 Solar Street",
		Capacity: "10",
	}, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, stage := range []string{domain.StageFollowUp, domain.StageWarm} {
		entry, err := domain.NewStatusEntry(stage, "", "", uuid.New(), time.Now().UTC())
		if err != nil {
			t.Fatalf("entry: %v", err)
		}
		if _, err := repo.AppendLeadStatus(ctx, lead.ID, entry); err != nil {
			t.Fatalf("append %s: %v", stage, err)
		}
	}
	assignee := uuid.New()
	stored, err := repo.AppendAssignment(ctx, lead.ID, assignee, uuid.New(), time.Now().UTC())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if last, _ := stored.AssignedTo.Last(); last.StageAtAssignment != domain.StageWarm {
		t.Fatalf("expected assignment captured at warm, got %q", last.StageAtAssignment)
	}

	var currentStatus, currentAssigned string
	err = pool.QueryRow(ctx, `SELECT current_status, current_assigned FROM bd_leads WHERE code = $1`, lead.ID).
		Scan(&currentStatus, &currentAssigned)
	if err != nil {
		t.Fatalf("read generated columns: %v", err)
	}
	if currentStatus != domain.StageWarm || currentAssigned != assignee.String() {
		t.Fatalf("expected warm/%s, got %s/%s", assignee, currentStatus, currentAssigned)
	}
	if len(stored.StatusHistory) != 3 || stored.StatusHistory[0].Stage != domain.StageInitial {
		t.Fatalf("expected initial, follow up, warm; got %+v", stored.StatusHistory)
	}
}

func TestPostgresConcurrentAttachesRespectCeiling(t *testing.T) {
	repo, _ := openTestRepository(t)
	leads, groups := services(repo)
	ctx := context.Background()

	group, err := groups.Create(ctx, transport.CreateGroupRequest{
		Name:            "Sunrise Society",
		ContactPerson:   "Meera",
		Mobiles:         []string{"9800000000"},
		Address:         "Sector 9",
		CapacityCeiling: "100",
	}, uuid.New())
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	const workers = 10
	codes := make([]string, workers)
	for i := range codes {
		lead, err := leads.Create(ctx, transport.CreateLeadRequest{
			Name:     fmt.Sprintf("Lead %d", i),
			Mobiles:  []string{fmt.Sprintf("98111%05d", i)},
			Address:  "Plot",
			Capacity: "30",
		}, uuid.New())
		if err != nil {
			t.Fatalf("create lead: %v", err)
		}
		codes[i] = lead.ID
	}

	var (
		wg   sync.WaitGroup
		errs = make(chan error, workers)
	)
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := groups.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{code}, GroupID: group.ID}, uuid.New())
			if err != nil && !apperr.HasCode(err, apperr.CodeCapacityExceeded) {
				errs <- err
			}
		}(code)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected attach error: %v", err)
	}

	capacities, err := repo.MemberCapacities(ctx, []string{group.ID})
	if err != nil {
		t.Fatalf("member capacities: %v", err)
	}
	if committed := domain.SumCapacity(capacities[group.ID]); committed != 90 {
		t.Fatalf("expected committed 90, got %v", committed)
	}
}

func TestPostgresConcurrentDuplicateCreatesAdmitOne(t *testing.T) {
	repo, _ := openTestRepository(t)
	leads, _ := services(repo)
	ctx := context.Background()

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := leads.Create(ctx, transport.CreateLeadRequest{
				Name:     fmt.Sprintf("Caller %d", i),
				Mobiles:  []string{"9876543210"},
				Address:  "Same house",
				Capacity: "5",
			}, uuid.New())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperr.HasCode(err, apperr.CodeDuplicateMobile):
				duplicates++
			default:
				t.Errorf("unexpected create error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || duplicates != workers-1 {
		t.Fatalf("expected 1 create and %d duplicates, got %d and %d", workers-1, created, duplicates)
	}
}
