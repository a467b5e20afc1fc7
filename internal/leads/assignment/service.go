// Package assignment assigns users to leads in bulk. Each lead is handled on
// its own; a bad or missing id is reported and never aborts the batch.
package assignment

import (
	"context"
	"errors"
	"strings"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/ports"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/apperr"
	"bd_pipeline_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds concurrent per-lead writes of one request.
const maxParallel = 8

// Repository is the data access needed by the assignment service.
type Repository interface {
	AppendAssignment(ctx context.Context, code string, userID, assignedBy uuid.UUID, at time.Time) (repository.Lead, error)
}

// Service handles lead assignment.
type Service struct {
	repo     Repository
	users    ports.UserExistenceChecker
	views    *views.Presenter
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates an assignment service.
func New(repo Repository, users ports.UserExistenceChecker, presenter *views.Presenter, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		views:    presenter,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

type outcome struct {
	code   string
	lead   repository.Lead
	ok     bool
	reason string
}

// Assign appends userID to the assignment log of every lead in LeadIDs,
// recording the stage each lead was in. The result lists every requested
// id in request order with ok or a reason (invalid_id, not_found, error).
func (s *Service) Assign(ctx context.Context, req transport.AssignLeadsRequest, actorID uuid.UUID) (transport.AssignLeadsResponse, error) {
	if len(req.LeadIDs) == 0 {
		return transport.AssignLeadsResponse{}, apperr.Validation("leadIds must not be empty")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return transport.AssignLeadsResponse{}, apperr.Validation("userId is required")
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return transport.AssignLeadsResponse{}, apperr.Validation("userId must be a valid id")
	}

	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return transport.AssignLeadsResponse{}, err
	}
	if !exists {
		return transport.AssignLeadsResponse{}, apperr.NotFound("user not found")
	}

	at := s.now().UTC()
	outcomes := make([]outcome, len(req.LeadIDs))
	firstIndex := make(map[string]int, len(req.LeadIDs))
	duplicates := make(map[int]int)

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, raw := range req.LeadIDs {
		code, err := domain.ResolveCode(domain.LeadPrefix, raw)
		if err != nil {
			outcomes[i] = outcome{code: raw, reason: transport.AssignReasonInvalidID}
			continue
		}
		if first, seen := firstIndex[code]; seen {
			duplicates[i] = first
			continue
		}
		firstIndex[code] = i

		g.Go(func() error {
			outcomes[i] = s.assignOne(ctx, code, userID, actorID, at)
			return nil
		})
	}
	_ = g.Wait()

	for i, first := range duplicates {
		outcomes[i] = outcomes[first]
	}

	return s.buildResponse(ctx, userID, actorID, outcomes)
}

func (s *Service) assignOne(ctx context.Context, code string, userID, actorID uuid.UUID, at time.Time) outcome {
	lead, err := s.repo.AppendAssignment(ctx, code, userID, actorID, at)
	switch {
	case err == nil:
		return outcome{code: code, lead: lead, ok: true}
	case errors.Is(err, repository.ErrNotFound):
		return outcome{code: code, reason: transport.AssignReasonNotFound}
	default:
		s.log.WithContext(ctx).DatabaseError("append_assignment", err)
		return outcome{code: code, reason: transport.AssignReasonError}
	}
}

func (s *Service) buildResponse(ctx context.Context, userID, actorID uuid.UUID, outcomes []outcome) (transport.AssignLeadsResponse, error) {
	updatedLeads := make([]repository.Lead, 0, len(outcomes))
	counted := make(map[string]struct{}, len(outcomes))
	for _, o := range outcomes {
		if !o.ok {
			continue
		}
		if _, dup := counted[o.code]; dup {
			continue
		}
		counted[o.code] = struct{}{}
		updatedLeads = append(updatedLeads, o.lead)
	}

	rendered, err := s.views.Leads(ctx, updatedLeads)
	if err != nil {
		return transport.AssignLeadsResponse{}, err
	}
	byCode := make(map[string]*transport.LeadResponse, len(rendered))
	for i := range rendered {
		byCode[rendered[i].ID] = &rendered[i]
	}

	resp := transport.AssignLeadsResponse{
		UserID:       userID,
		Updated:      rendered,
		Results:      make([]transport.AssignResult, 0, len(outcomes)),
		UpdatedCount: len(rendered),
	}
	for _, o := range outcomes {
		result := transport.AssignResult{LeadID: o.code, OK: o.ok, Reason: o.reason}
		if o.ok {
			result.Lead = byCode[o.code]
		} else {
			resp.SkippedCount++
		}
		resp.Results = append(resp.Results, result)
	}

	if len(rendered) > 0 {
		codes := make([]string, 0, len(rendered))
		for _, lead := range rendered {
			codes = append(codes, lead.ID)
		}
		s.log.PipelineEvent("leads_assigned", userID.String(), actorID.String(), "leads", codes)
		s.eventBus.Publish(ctx, events.LeadsAssigned{
			BaseEvent: events.NewActorEvent(actorID.String()),
			UserID:    userID,
			LeadIDs:   codes,
		})
	}
	return resp, nil
}
