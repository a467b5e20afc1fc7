// Package handover provides the handover bounded context module. It owns
// the handover sheets and creates one for every lead that is won.
package handover

import (
	"context"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/handover/repository"
	"bd_pipeline_backend/internal/handover/service"
	"bd_pipeline_backend/internal/scheduler"
	"bd_pipeline_backend/platform/logger"
)

// Module wires the handover service to the event bus.
type Module struct {
	svc      *service.Service
	enqueuer scheduler.HandoverEnqueuer
	delay    time.Duration
	log      *logger.Logger
}

// NewModule subscribes to LeadWon. With an enqueuer the sheet is created by
// the worker, otherwise inline in the event handler.
func NewModule(store repository.Store, eventBus events.Bus, enqueuer scheduler.HandoverEnqueuer, delay time.Duration, log *logger.Logger) *Module {
	m := &Module{
		svc:      service.New(store, log),
		enqueuer: enqueuer,
		delay:    delay,
		log:      log,
	}
	eventBus.Subscribe(events.LeadWon{}.EventName(), events.HandlerFunc(m.handleLeadWon))
	return m
}

// Service returns the handover service for external use.
func (m *Module) Service() *service.Service {
	return m.svc
}

func (m *Module) handleLeadWon(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadWon)
	if !ok {
		return nil
	}

	if m.enqueuer == nil {
		return m.svc.SyncWonLead(ctx, e.LeadID)
	}

	err := m.enqueuer.EnqueueHandoverSync(ctx, scheduler.HandoverSyncPayload{
		LeadID:  e.LeadID,
		ActorID: e.ActorID,
	}, m.delay)
	if err != nil {
		m.log.Error("failed to enqueue handover sync, running inline", "leadId", e.LeadID, "error", err)
		return m.svc.SyncWonLead(ctx, e.LeadID)
	}
	return nil
}
