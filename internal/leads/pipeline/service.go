// Package pipeline appends stage transitions to leads and groups. History
// is append-only; the current stage is always the last entry.
package pipeline

import (
	"context"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/guards"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/apperr"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the data access needed by the pipeline service.
type Repository interface {
	repository.LeadReader
	repository.GroupReader
	repository.HistoryWriter
}

// Service handles stage transitions.
type Service struct {
	repo     Repository
	views    *views.Presenter
	catalog  *domain.StageCatalog
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a pipeline service.
func New(repo Repository, presenter *views.Presenter, catalog *domain.StageCatalog, eventBus events.Bus, log *logger.Logger) *Service {
	if catalog == nil {
		catalog = domain.DefaultStageCatalog()
	}
	return &Service{
		repo:     repo,
		views:    presenter,
		catalog:  catalog,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// Stages lists the known stage labels.
func (s *Service) Stages() transport.StageCatalogResponse {
	return transport.StageCatalogResponse{
		Lead:  s.catalog.LeadStages(),
		Group: s.catalog.GroupStages(),
	}
}

// UpdateLeadStatus appends a transition to a lead. Any stage may follow any
// other. Entering "won" publishes LeadWon.
func (s *Service) UpdateLeadStatus(ctx context.Context, rawID string, req transport.UpdateStatusRequest, actorID uuid.UUID) (transport.LeadResponse, error) {
	code, err := guards.ResolveLeadID(rawID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	entry, err := s.newEntry(s.catalog.LeadStage(req.Stage), req, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.AppendLeadStatus(ctx, code, entry)
	if err != nil {
		return transport.LeadResponse{}, guards.LeadNotFound(err)
	}

	previous := previousStage(lead.StatusHistory)
	s.log.PipelineEvent("lead_stage_changed", code, actorID.String(), "from", previous, "to", entry.Stage)
	s.eventBus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewActorEvent(actorID.String()),
		LeadID:    code,
		OldStage:  previous,
		NewStage:  entry.Stage,
		SubStage:  entry.SubStage,
	})
	if entry.Stage == domain.StageWon && previous != domain.StageWon {
		s.eventBus.Publish(ctx, events.LeadWon{
			BaseEvent: events.NewActorEvent(actorID.String()),
			LeadID:    code,
		})
	}

	return s.views.Lead(ctx, lead)
}

// LeadStatusHistory returns the full transition log of a lead.
func (s *Service) LeadStatusHistory(ctx context.Context, rawID string) (transport.StatusHistoryResponse, error) {
	code, err := guards.ResolveLeadID(rawID)
	if err != nil {
		return transport.StatusHistoryResponse{}, err
	}

	lead, err := s.repo.GetLead(ctx, code)
	if err != nil {
		return transport.StatusHistoryResponse{}, guards.LeadNotFound(err)
	}

	history := []domain.StatusEntry(lead.StatusHistory.Clone())
	if history == nil {
		history = []domain.StatusEntry{}
	}
	return transport.StatusHistoryResponse{
		ID:            lead.Code,
		CurrentStatus: lead.CurrentStatus(),
		History:       history,
	}, nil
}

// UpdateGroupStatus appends a transition to a group.
func (s *Service) UpdateGroupStatus(ctx context.Context, rawID string, req transport.UpdateStatusRequest, actorID uuid.UUID) (transport.GroupResponse, error) {
	code, err := guards.ResolveGroupID(rawID)
	if err != nil {
		return transport.GroupResponse{}, err
	}

	entry, err := s.newEntry(s.catalog.GroupStage(req.Stage), req, actorID)
	if err != nil {
		return transport.GroupResponse{}, err
	}

	group, err := s.repo.AppendGroupStatus(ctx, code, entry)
	if err != nil {
		return transport.GroupResponse{}, guards.GroupNotFound(err)
	}

	capacities, err := s.repo.MemberCapacities(ctx, []string{code})
	if err != nil {
		return transport.GroupResponse{}, err
	}

	previous := previousStage(group.StatusHistory)
	s.log.PipelineEvent("group_stage_changed", code, actorID.String(), "from", previous, "to", entry.Stage)
	s.eventBus.Publish(ctx, events.GroupStageChanged{
		BaseEvent: events.NewActorEvent(actorID.String()),
		GroupID:   code,
		OldStage:  previous,
		NewStage:  entry.Stage,
	})

	return s.views.Group(group, capacities[code]), nil
}

func (s *Service) newEntry(stage string, req transport.UpdateStatusRequest, actorID uuid.UUID) (domain.StatusEntry, error) {
	entry, err := domain.NewStatusEntry(stage, sanitize.Line(req.SubStage), sanitize.Text(req.Remarks), actorID, s.now())
	if err != nil {
		return domain.StatusEntry{}, apperr.Validation(err.Error())
	}
	return entry, nil
}

// previousStage is the stage before the last entry.
func previousStage(history domain.StatusHistory) string {
	if len(history) < 2 {
		return ""
	}
	return history[len(history)-2].Stage
}
