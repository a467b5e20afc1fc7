package grouping

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/repository/memory"
	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/apperr"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/phone"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *events.InMemoryBus) {
	t.Helper()
	store := memory.NewStore()
	bus := events.NewInMemoryBus(logger.Nop())
	svc := New(store, views.New(nil), phone.NewNormalizer("IN"), bus, logger.Nop())
	return svc, store, bus
}

func seedLead(t *testing.T, store *memory.Store, capacity string) string {
	t.Helper()
	ctx := context.Background()
	var code string
	err := store.InTx(ctx, func(tx repository.TxStore) error {
		seq, err := tx.NextSequence(ctx, domain.LeadPrefix)
		if err != nil {
			return err
		}
		code = domain.FormatCode(domain.LeadPrefix, seq)
		now := time.Now().UTC()
		return tx.InsertLead(ctx, repository.Lead{
			Code:          code,
			Seq:           seq,
			Name:          "Lead " + code,
			Mobiles:       []string{fmt.Sprintf("+9198765%05d", seq)},
			Address:       "Plot 4",
			Capacity:      capacity,
			StatusHistory: domain.StatusHistory{{Stage: domain.StageInitial, At: now}},
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return code
}

func createGroup(t *testing.T, svc *Service, ceiling string) transport.GroupResponse {
	t.Helper()
	group, err := svc.Create(context.Background(), transport.CreateGroupRequest{
		Name:            "Sunrise Housing Society",
		ContactPerson:   "Meera",
		Mobiles:         []string{"9800000000"},
		Address:         "Sector 9",
		CapacityCeiling: ceiling,
	}, uuid.New())
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return group
}

func TestCreateGroupStartsOpen(t *testing.T) {
	svc, _, _ := newTestService(t)
	group := createGroup(t, svc, "100")

	if group.ID != "BD/Group/1" {
		t.Fatalf("expected BD/Group/1, got %s", group.ID)
	}
	if group.CurrentStatus != domain.GroupStageOpen {
		t.Fatalf("expected open stage, got %s", group.CurrentStatus)
	}
	if group.RemainingCapacity != 100 || group.LeadCount != 0 {
		t.Fatalf("unexpected capacity view %+v", group)
	}
}

func TestAttachLeadsEnforcesCeiling(t *testing.T) {
	svc, store, bus := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "100")

	first := seedLead(t, store, "80")
	second := seedLead(t, store, "30")
	third := seedLead(t, store, "20")

	var attachedEvents atomic.Int32
	bus.Subscribe(events.LeadsAttached{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		attachedEvents.Add(1)
		return nil
	}))

	resp, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{first}, GroupID: group.ID}, uuid.New())
	if err != nil {
		t.Fatalf("attach 80: %v", err)
	}
	if resp.Group.CommittedCapacity != 80 || resp.Group.RemainingCapacity != 20 {
		t.Fatalf("unexpected group after first attach: %+v", resp.Group)
	}

	_, err = svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{second}, GroupID: group.ID}, uuid.New())
	if !apperr.HasCode(err, apperr.CodeCapacityExceeded) {
		t.Fatalf("expected capacity conflict for 30, got %v", err)
	}
	lead, err := store.GetLead(ctx, second)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if lead.GroupCode != nil {
		t.Fatal("rejected lead must stay ungrouped")
	}

	if _, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{third}, GroupID: group.ID}, uuid.New()); err != nil {
		t.Fatalf("attach 20 to reach ceiling exactly: %v", err)
	}

	bus.Wait()
	if attachedEvents.Load() != 2 {
		t.Fatalf("expected 2 attach events, got %d", attachedEvents.Load())
	}

	detail, err := svc.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if detail.LeadCount != 2 || detail.RemainingCapacity != 0 {
		t.Fatalf("expected full group with 2 leads, got %+v", detail.GroupResponse)
	}
}

func TestConcurrentAttachesNeverExceedCeiling(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "100")

	const workers = 20
	leads := make([]string, workers)
	for i := range leads {
		leads[i] = seedLead(t, store, "30")
	}

	var (
		wg        sync.WaitGroup
		attached  atomic.Int32
		conflicts atomic.Int32
		failures  = make(chan error, workers)
	)
	for _, code := range leads {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{code}, GroupID: group.ID}, uuid.New())
			switch {
			case err == nil:
				attached.Add(1)
			case apperr.HasCode(err, apperr.CodeCapacityExceeded):
				conflicts.Add(1)
			default:
				failures <- err
			}
		}(code)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Fatalf("unexpected attach error: %v", err)
	}

	if attached.Load() != 3 || conflicts.Load() != workers-3 {
		t.Fatalf("expected 3 attached and %d rejected, got %d and %d", workers-3, attached.Load(), conflicts.Load())
	}

	capacities, err := store.MemberCapacities(ctx, []string{group.ID})
	if err != nil {
		t.Fatalf("member capacities: %v", err)
	}
	if committed := domain.SumCapacity(capacities[group.ID]); committed != 90 {
		t.Fatalf("expected committed 90, got %v", committed)
	}
}

func TestGetByIDSumsEveryMember(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "5000")

	total := maxGroupMembers + 5
	err := store.InTx(ctx, func(tx repository.TxStore) error {
		now := time.Now().UTC()
		for i := 0; i < total; i++ {
			seq, err := tx.NextSequence(ctx, domain.LeadPrefix)
			if err != nil {
				return err
			}
			code := domain.FormatCode(domain.LeadPrefix, seq)
			if err := tx.InsertLead(ctx, repository.Lead{
				Code:          code,
				Seq:           seq,
				Name:          "Member",
				Mobiles:       []string{fmt.Sprintf("+9197000%05d", seq)},
				Capacity:      "2",
				StatusHistory: domain.StatusHistory{{Stage: domain.StageInitial, At: now}},
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
			if _, err := tx.SetLeadGroup(ctx, code, group.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed members: %v", err)
	}

	detail, err := svc.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if detail.CommittedCapacity != float64(2*total) || detail.LeadCount != total {
		t.Fatalf("expected committed %d over %d leads, got %+v", 2*total, total, detail.GroupResponse)
	}
	if len(detail.Leads) != maxGroupMembers {
		t.Fatalf("expected listing capped at %d, got %d", maxGroupMembers, len(detail.Leads))
	}
}

func TestAttachLeadsRejectsAlreadyGrouped(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	first := createGroup(t, svc, "100")
	second := createGroup(t, svc, "100")
	lead := seedLead(t, store, "10")

	if _, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{lead}, GroupID: first.ID}, uuid.New()); err != nil {
		t.Fatalf("first attach: %v", err)
	}

	_, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{lead}, GroupID: second.ID}, uuid.New())
	if !apperr.HasCode(err, apperr.CodeAlreadyGrouped) {
		t.Fatalf("expected already grouped conflict, got %v", err)
	}

	stored, err := store.GetLead(ctx, lead)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if stored.GroupCode == nil || *stored.GroupCode != first.ID {
		t.Fatalf("expected membership unchanged, got %v", stored.GroupCode)
	}
}

func TestAttachLeadsIsAllOrNothing(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "100")
	lead := seedLead(t, store, "10")

	_, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{lead, "BD/Lead/99"}, GroupID: group.ID}, uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for missing lead, got %v", err)
	}

	stored, err := store.GetLead(ctx, lead)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if stored.GroupCode != nil {
		t.Fatal("expected no lead attached when the batch fails")
	}
}

func TestAttachLeadsUnknownGroup(t *testing.T) {
	svc, store, _ := newTestService(t)
	lead := seedLead(t, store, "10")

	_, err := svc.AttachLeads(context.Background(), transport.AttachGroupRequest{LeadIDs: []string{lead}, GroupID: "BD/Group/7"}, uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateRejectsCeilingBelowCommitted(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "100")
	lead := seedLead(t, store, "60")

	if _, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{lead}, GroupID: group.ID}, uuid.New()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	lower := "50"
	_, err := svc.Update(ctx, group.ID, transport.UpdateGroupRequest{CapacityCeiling: &lower}, uuid.New())
	if !apperr.HasCode(err, apperr.CodeCapacityExceeded) {
		t.Fatalf("expected capacity conflict, got %v", err)
	}

	enough := "60"
	updated, err := svc.Update(ctx, group.ID, transport.UpdateGroupRequest{CapacityCeiling: &enough}, uuid.New())
	if err != nil {
		t.Fatalf("update to committed total: %v", err)
	}
	if updated.CapacityCeiling != "60" || updated.RemainingCapacity != 0 {
		t.Fatalf("unexpected group %+v", updated)
	}
}

func TestCapacityPreview(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	group := createGroup(t, svc, "100 kW")
	lead := seedLead(t, store, "80")
	if _, err := svc.AttachLeads(ctx, transport.AttachGroupRequest{LeadIDs: []string{lead}, GroupID: group.ID}, uuid.New()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	fits, err := svc.Capacity(ctx, "1", "20")
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if !fits.OK || fits.Remaining != 20 {
		t.Fatalf("expected 20 to fit, got %+v", fits)
	}

	over, err := svc.Capacity(ctx, group.ID, "30")
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if over.OK {
		t.Fatalf("expected 30 not to fit, got %+v", over)
	}
}

func TestResolveLeadCodesSortsAndDedupes(t *testing.T) {
	codes, err := resolveLeadCodes([]string{"BD/Lead/10", "2", "bd/lead/2", "BD/Lead/9"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"BD/Lead/2", "BD/Lead/9", "BD/Lead/10"}
	if len(codes) != len(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, codes)
		}
	}

	if _, err := resolveLeadCodes(nil); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
