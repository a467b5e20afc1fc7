package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func insertLead(t *testing.T, s *Store, mobiles ...string) repository.Lead {
	t.Helper()
	var lead repository.Lead
	err := s.InTx(context.Background(), func(tx repository.TxStore) error {
		seq, err := tx.NextSequence(context.Background(), domain.LeadPrefix)
		if err != nil {
			return err
		}
		lead = repository.Lead{
			Code:     domain.FormatCode(domain.LeadPrefix, seq),
			Seq:      seq,
			Name:     "lead",
			Mobiles:  mobiles,
			Capacity: "10",
		}
		return tx.InsertLead(context.Background(), lead)
	})
	if err != nil {
		t.Fatalf("insert lead: %v", err)
	}
	return lead
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	sentinel := errors.New("boom")

	err := s.InTx(context.Background(), func(tx repository.TxStore) error {
		if _, err := tx.NextSequence(context.Background(), domain.LeadPrefix); err != nil {
			return err
		}
		if err := tx.InsertLead(context.Background(), repository.Lead{Code: "BD/Lead/1", Seq: 1}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, err := s.GetLead(context.Background(), "BD/Lead/1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected rolled back insert, got %v", err)
	}

	lead := insertLead(t, s)
	if lead.Code != "BD/Lead/1" {
		t.Fatalf("expected the rolled back number to be reused, got %s", lead.Code)
	}
}

func TestNextSequenceSeedsFromExistingRows(t *testing.T) {
	s := NewStore()
	s.state.leads["BD/Lead/41"] = repository.Lead{Code: "BD/Lead/41", Seq: 41}

	lead := insertLead(t, s)
	if lead.Code != "BD/Lead/42" {
		t.Fatalf("expected BD/Lead/42, got %s", lead.Code)
	}
}

func TestSetLeadGroupOnlyOnce(t *testing.T) {
	s := NewStore()
	lead := insertLead(t, s)
	ctx := context.Background()

	for _, code := range []string{"BD/Group/1", "BD/Group/2"} {
		if err := s.InTx(ctx, func(tx repository.TxStore) error {
			return tx.InsertGroup(ctx, repository.Group{Code: code, CapacityCeiling: "100"})
		}); err != nil {
			t.Fatalf("insert group: %v", err)
		}
	}

	if err := s.InTx(ctx, func(tx repository.TxStore) error {
		_, err := tx.SetLeadGroup(ctx, lead.Code, "BD/Group/1", time.Now())
		return err
	}); err != nil {
		t.Fatalf("first attach: %v", err)
	}

	err := s.InTx(ctx, func(tx repository.TxStore) error {
		_, err := tx.SetLeadGroup(ctx, lead.Code, "BD/Group/2", time.Now())
		return err
	})
	if !errors.Is(err, repository.ErrAlreadyGrouped) {
		t.Fatalf("expected ErrAlreadyGrouped, got %v", err)
	}

	stored, _ := s.GetLead(ctx, lead.Code)
	if stored.GroupCode == nil || *stored.GroupCode != "BD/Group/1" {
		t.Fatalf("membership changed: %v", stored.GroupCode)
	}
}

func TestAppendAssignmentCapturesStage(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lead := insertLead(t, s)

	entry, _ := domain.NewStatusEntry(domain.StageWarm, "", "", uuid.New(), time.Now())
	if _, err := s.AppendLeadStatus(ctx, lead.Code, entry); err != nil {
		t.Fatalf("append status: %v", err)
	}

	user := uuid.New()
	updated, err := s.AppendAssignment(ctx, lead.Code, user, uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("append assignment: %v", err)
	}
	last, _ := updated.AssignedTo.Last()
	if last.StageAtAssignment != domain.StageWarm || last.UserID != user {
		t.Fatalf("unexpected assignment %+v", last)
	}
	if current, _ := updated.CurrentAssigned(); current != user {
		t.Fatalf("expected current assignee %s", user)
	}
}

func TestReturnedLeadsAreCopies(t *testing.T) {
	s := NewStore()
	lead := insertLead(t, s, "+919800000001")

	got, _ := s.GetLead(context.Background(), lead.Code)
	got.Mobiles[0] = "changed"

	again, _ := s.GetLead(context.Background(), lead.Code)
	if again.Mobiles[0] != "+919800000001" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestListLeadsFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first := insertLead(t, s, "1")
	insertLead(t, s, "2")

	user := uuid.New()
	if _, err := s.AppendAssignment(ctx, first.Code, user, user, time.Now()); err != nil {
		t.Fatal(err)
	}

	leads, total, err := s.ListLeads(ctx, repository.LeadListParams{AssignedTo: &user})
	if err != nil || total != 1 || leads[0].Code != first.Code {
		t.Fatalf("unexpected filter result %v %d %v", leads, total, err)
	}

	leads, total, _ = s.ListLeads(ctx, repository.LeadListParams{Limit: 1})
	if total != 2 || len(leads) != 1 || leads[0].Code != "BD/Lead/2" {
		t.Fatalf("expected newest lead first with total 2, got %v %d", leads, total)
	}
}
