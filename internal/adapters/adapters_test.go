package adapters

import (
	"context"
	"testing"

	"bd_pipeline_backend/internal/handover/repository"
	handoversvc "bd_pipeline_backend/internal/handover/service"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

func TestHandoverClassifierAdapter(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SetStatus("BD/Lead/1", "draft")
	store.SetStatus("BD/Lead/2", " APPROVED ")
	store.SetStatus("BD/Lead/3", "Rejected")
	store.SetStatus("BD/Lead/4", "archived")

	adapter := NewHandoverClassifierAdapter(handoversvc.New(store, logger.Nop()))
	got, err := adapter.ClassifyLeads(context.Background(), []string{"BD/Lead/1", "BD/Lead/2", "BD/Lead/3", "BD/Lead/4", "BD/Lead/5"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := map[string]string{
		"BD/Lead/1": domain.HandoverInProcess,
		"BD/Lead/2": domain.HandoverCompleted,
		"BD/Lead/3": domain.HandoverRejected,
		"BD/Lead/4": domain.HandoverUnknown,
		"BD/Lead/5": domain.HandoverPending,
	}
	for code, status := range want {
		if got[code] != status {
			t.Errorf("%s: expected %q, got %q", code, status, got[code])
		}
	}

	one, err := adapter.ClassifyLead(context.Background(), "BD/Lead/5")
	if err != nil || one != domain.HandoverPending {
		t.Fatalf("expected pending, got %q (%v)", one, err)
	}
}

type userSet map[uuid.UUID]bool

func (u userSet) Exists(_ context.Context, id uuid.UUID) (bool, error) { return u[id], nil }

func TestUserDirectoryAdapter(t *testing.T) {
	known := uuid.New()
	adapter := NewUserDirectoryAdapter(userSet{known: true})

	if ok, _ := adapter.UserExists(context.Background(), known); !ok {
		t.Fatal("expected known user")
	}
	if ok, _ := adapter.UserExists(context.Background(), uuid.New()); ok {
		t.Fatal("expected unknown user")
	}
}
