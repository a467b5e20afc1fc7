package service

import (
	"context"
	"testing"

	"bd_pipeline_backend/internal/handover/repository"
	"bd_pipeline_backend/platform/logger"
)

func TestSyncWonLeadIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := New(store, logger.Nop())
	ctx := context.Background()

	if err := svc.SyncWonLead(ctx, "BD/Lead/1"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	store.SetStatus("BD/Lead/1", "submitted")
	if err := svc.SyncWonLead(ctx, " BD/Lead/1 "); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	statuses, err := svc.SheetStatuses(ctx, []string{"BD/Lead/1"})
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if statuses["BD/Lead/1"] != "submitted" {
		t.Fatalf("expected existing sheet to be kept, got %q", statuses["BD/Lead/1"])
	}
}

func TestSheetStatusesTrimsCodes(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SetStatus("BD/Lead/2", "Approved")
	svc := New(store, logger.Nop())

	statuses, err := svc.SheetStatuses(context.Background(), []string{" BD/Lead/2", "BD/Lead/3"})
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if statuses[" BD/Lead/2"] != "Approved" {
		t.Fatalf("expected lookup by trimmed code, got %v", statuses)
	}
	if _, ok := statuses["BD/Lead/3"]; ok {
		t.Fatal("expected lead without sheet to be absent")
	}
}
