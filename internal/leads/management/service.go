// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, and deleting leads.
package management

import (
	"context"
	"strings"
	"time"

	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/guards"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/apperr"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/phone"
	"bd_pipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const msgMobileRequired = "at least one mobile number is required"

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.Transactor
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     Repository
	views    *views.Presenter
	phones   *phone.Normalizer
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, presenter *views.Presenter, phones *phone.Normalizer, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		views:    presenter,
		phones:   phones,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// Create creates a new lead. Ungrouped leads must not reuse a mobile number
// stored on another lead; leads created straight into a group skip that
// check and must instead fit under the group's capacity ceiling.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, actorID uuid.UUID) (transport.LeadResponse, error) {
	mobiles := s.phones.NormalizeAll(req.Mobiles)
	if len(mobiles) == 0 {
		return transport.LeadResponse{}, apperr.Validation(msgMobileRequired)
	}

	var groupCode *string
	if req.GroupID != nil && strings.TrimSpace(*req.GroupID) != "" {
		code, err := guards.ResolveGroupID(*req.GroupID)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		groupCode = &code
	}

	now := s.now().UTC()
	initial, err := domain.NewStatusEntry(domain.StageInitial, "", "", actorID, now)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead := repository.Lead{
		Name:                sanitize.Line(req.Name),
		Mobiles:             mobiles,
		Address:             sanitize.Text(req.Address),
		Capacity:            strings.TrimSpace(req.Capacity),
		Source:              sanitize.Line(req.Source),
		Comments:            sanitize.Text(req.Comments),
		GroupCode:           groupCode,
		ExpectedClosingDate: req.ExpectedClosingDate.Value,
		StatusHistory:       domain.StatusHistory{initial},
		AssignedTo:          domain.Assignments{},
		CreatedBy:           actorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		lead.Email = &email
	}

	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		if groupCode == nil {
			if err := guards.CheckMobiles(ctx, tx, mobiles, ""); err != nil {
				return err
			}
		} else {
			if _, _, err := guards.ReserveCapacity(ctx, tx, *groupCode, domain.ParseCapacity(lead.Capacity), ""); err != nil {
				return err
			}
		}

		seq, err := tx.NextSequence(ctx, domain.LeadPrefix)
		if err != nil {
			return err
		}
		lead.Seq = seq
		lead.Code = domain.FormatCode(domain.LeadPrefix, seq)
		return tx.InsertLead(ctx, lead)
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.PipelineEvent("lead_created", lead.Code, actorID.String())
	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewActorEvent(actorID.String()),
		LeadID:    lead.Code,
		GroupID:   lead.GroupCode,
		Capacity:  lead.Capacity,
		Source:    lead.Source,
	})

	return s.views.Lead(ctx, lead)
}

// GetByID retrieves a lead by code or bare number.
func (s *Service) GetByID(ctx context.Context, rawID string) (transport.LeadResponse, error) {
	code, err := guards.ResolveLeadID(rawID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.GetLead(ctx, code)
	if err != nil {
		return transport.LeadResponse{}, guards.LeadNotFound(err)
	}
	return s.views.Lead(ctx, lead)
}

// List retrieves a filtered page of leads, newest first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.LeadListParams{
		Stage:     strings.TrimSpace(req.Stage),
		Ungrouped: req.Ungrouped,
		Search:    req.Search,
		Offset:    (req.Page - 1) * req.PageSize,
		Limit:     req.PageSize,
	}
	if req.AssignedTo != "" {
		userID, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("assignedTo must be a user id")
		}
		params.AssignedTo = &userID
	}
	if strings.TrimSpace(req.GroupID) != "" {
		code, err := guards.ResolveGroupID(req.GroupID)
		if err != nil {
			return transport.LeadListResponse{}, err
		}
		params.GroupCode = &code
	}

	leads, total, err := s.repo.ListLeads(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items, err := s.views.Leads(ctx, leads)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: views.TotalPages(total, req.PageSize),
	}, nil
}

// Update changes a lead's editable fields. Identity, group membership and
// both history logs cannot be changed here. A new mobile list on an
// ungrouped lead passes the duplicate check again, and a new capacity on a
// grouped lead must still fit under the group's ceiling.
func (s *Service) Update(ctx context.Context, rawID string, req transport.UpdateLeadRequest, actorID uuid.UUID) (transport.LeadResponse, error) {
	code, err := guards.ResolveLeadID(rawID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	params := repository.UpdateLeadParams{
		Name:      sanitize.LinePtr(req.Name),
		Address:   sanitize.TextPtr(req.Address),
		Source:    sanitize.LinePtr(req.Source),
		Comments:  sanitize.TextPtr(req.Comments),
		UpdatedAt: s.now().UTC(),
	}
	if req.Capacity != nil {
		capacity := strings.TrimSpace(*req.Capacity)
		params.Capacity = &capacity
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		params.Email = &email
	}
	if req.ExpectedClosingDate.Set && req.ExpectedClosingDate.Value != nil {
		params.ExpectedClosingDate = req.ExpectedClosingDate.Value
	}

	var mobiles []string
	if req.Mobiles != nil {
		mobiles = s.phones.NormalizeAll(req.Mobiles)
		if len(mobiles) == 0 {
			return transport.LeadResponse{}, apperr.Validation(msgMobileRequired)
		}
		params.Mobiles = mobiles
		params.MobilesSet = true
	}

	// Group membership never changes once set, so the group found here is
	// the one to lock. Locks are taken group first, lead second, the same
	// order AttachLeads uses.
	var lockGroup *string
	if params.Capacity != nil {
		existing, err := s.repo.GetLead(ctx, code)
		if err != nil {
			return transport.LeadResponse{}, guards.LeadNotFound(err)
		}
		lockGroup = existing.GroupCode
	}

	var updated repository.Lead
	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		if lockGroup != nil {
			if _, err := tx.GetGroupForUpdate(ctx, *lockGroup); err != nil {
				return guards.GroupNotFound(err)
			}
		}
		current, err := tx.GetLeadForUpdate(ctx, code)
		if err != nil {
			return guards.LeadNotFound(err)
		}

		if params.MobilesSet && current.GroupCode == nil && !domain.SameMobiles(mobiles, current.Mobiles) {
			if err := guards.CheckMobiles(ctx, tx, mobiles, code); err != nil {
				return err
			}
		}

		if params.Capacity != nil && current.GroupCode != nil && *params.Capacity != current.Capacity {
			if _, _, err := guards.ReserveCapacity(ctx, tx, *current.GroupCode, domain.ParseCapacity(*params.Capacity), code); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateLead(ctx, code, params)
		return guards.LeadNotFound(err)
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.PipelineEvent("lead_updated", code, actorID.String())
	return s.views.Lead(ctx, updated)
}

// Delete removes a lead permanently. Administrative use only.
func (s *Service) Delete(ctx context.Context, rawID string, actorID uuid.UUID) error {
	code, err := guards.ResolveLeadID(rawID)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		return guards.LeadNotFound(tx.DeleteLead(ctx, code))
	})
	if err != nil {
		return err
	}

	s.log.PipelineEvent("lead_deleted", code, actorID.String())
	return nil
}

// CheckDuplicate reports whether mobile is already stored on a lead.
func (s *Service) CheckDuplicate(ctx context.Context, mobile string) (transport.DuplicateCheckResponse, error) {
	normalized := s.phones.Normalize(mobile)
	if normalized == "" {
		return transport.DuplicateCheckResponse{}, apperr.Validation("mobile is required")
	}

	existing, err := s.repo.FindLeadsByMobiles(ctx, []string{normalized}, "")
	if err != nil {
		return transport.DuplicateCheckResponse{}, err
	}
	if len(existing) == 0 {
		return transport.DuplicateCheckResponse{IsDuplicate: false}, nil
	}

	lead, err := s.views.Lead(ctx, existing[0])
	if err != nil {
		return transport.DuplicateCheckResponse{}, err
	}
	return transport.DuplicateCheckResponse{
		IsDuplicate:  true,
		Mobile:       normalized,
		ExistingLead: &lead,
	}, nil
}

// HandoverStatus reports how far the handover of a lead has progressed.
func (s *Service) HandoverStatus(ctx context.Context, rawID string) (transport.HandoverStatusResponse, error) {
	lead, err := s.GetByID(ctx, rawID)
	if err != nil {
		return transport.HandoverStatusResponse{}, err
	}
	return transport.HandoverStatusResponse{
		LeadID:         lead.ID,
		CurrentStatus:  lead.CurrentStatus,
		HandoverStatus: lead.HandoverStatus,
	}, nil
}
