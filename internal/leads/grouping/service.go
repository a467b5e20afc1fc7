// Package grouping manages capacity-bounded lead groups: group CRUD,
// attaching leads and previewing remaining capacity.
package grouping

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

// maxGroupMembers bounds the member listing of a group detail response.
const maxGroupMembers = 1000

// Repository is the data access needed by the grouping service.
type Repository interface {
	repository.LeadReader
	repository.GroupReader
	repository.Transactor
}

// Service handles group operations.
type Service struct {
	repo     Repository
	views    *views.Presenter
	phones   *phone.Normalizer
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a grouping service.
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

// Create creates a group in the open stage.
func (s *Service) Create(ctx context.Context, req transport.CreateGroupRequest, actorID uuid.UUID) (transport.GroupResponse, error) {
	mobiles := s.phones.NormalizeAll(req.Mobiles)
	if len(mobiles) == 0 {
		return transport.GroupResponse{}, apperr.Validation("at least one mobile number is required")
	}

	now := s.now().UTC()
	open, err := domain.NewStatusEntry(domain.GroupStageOpen, "", "", actorID, now)
	if err != nil {
		return transport.GroupResponse{}, err
	}

	group := repository.Group{
		Name:            sanitize.Line(req.Name),
		ContactPerson:   sanitize.Line(req.ContactPerson),
		Mobiles:         mobiles,
		Address:         sanitize.Text(req.Address),
		CapacityCeiling: strings.TrimSpace(req.CapacityCeiling),
		Comments:        sanitize.Text(req.Comments),
		StatusHistory:   domain.StatusHistory{open},
		CreatedBy:       actorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		seq, err := tx.NextSequence(ctx, domain.GroupPrefix)
		if err != nil {
			return err
		}
		group.Seq = seq
		group.Code = domain.FormatCode(domain.GroupPrefix, seq)
		return tx.InsertGroup(ctx, group)
	})
	if err != nil {
		return transport.GroupResponse{}, err
	}

	s.log.PipelineEvent("group_created", group.Code, actorID.String())
	s.eventBus.Publish(ctx, events.GroupCreated{
		BaseEvent:       events.NewActorEvent(actorID.String()),
		GroupID:         group.Code,
		CapacityCeiling: group.CapacityCeiling,
	})

	return s.views.Group(group, nil), nil
}

// GetByID returns a group with its member leads.
func (s *Service) GetByID(ctx context.Context, rawID string) (transport.GroupDetailResponse, error) {
	code, err := guards.ResolveGroupID(rawID)
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}

	group, err := s.repo.GetGroup(ctx, code)
	if err != nil {
		return transport.GroupDetailResponse{}, guards.GroupNotFound(err)
	}

	members, _, err := s.repo.ListLeads(ctx, repository.LeadListParams{GroupCode: &code, Limit: maxGroupMembers})
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}
	leads, err := s.views.Leads(ctx, members)
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}

	// The member listing is capped; the capacity sum covers every member.
	capacities, err := s.repo.MemberCapacities(ctx, []string{code})
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}

	return transport.GroupDetailResponse{
		GroupResponse: s.views.Group(group, capacities[code]),
		Leads:         leads,
	}, nil
}

// List returns a filtered page of groups, newest first.
func (s *Service) List(ctx context.Context, req transport.ListGroupsRequest) (transport.GroupListResponse, error) {
	groups, total, err := s.repo.ListGroups(ctx, repository.GroupListParams{
		Stage:  strings.TrimSpace(req.Stage),
		Search: req.Search,
		Offset: (req.Page - 1) * req.PageSize,
		Limit:  req.PageSize,
	})
	if err != nil {
		return transport.GroupListResponse{}, err
	}

	codes := make([]string, 0, len(groups))
	for _, group := range groups {
		codes = append(codes, group.Code)
	}
	capacities, err := s.repo.MemberCapacities(ctx, codes)
	if err != nil {
		return transport.GroupListResponse{}, err
	}

	items := make([]transport.GroupResponse, 0, len(groups))
	for _, group := range groups {
		items = append(items, s.views.Group(group, capacities[group.Code]))
	}

	return transport.GroupListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: views.TotalPages(total, req.PageSize),
	}, nil
}

// Update changes a group's editable fields. Lowering the ceiling below the
// capacity already committed is rejected.
func (s *Service) Update(ctx context.Context, rawID string, req transport.UpdateGroupRequest, actorID uuid.UUID) (transport.GroupResponse, error) {
	code, err := guards.ResolveGroupID(rawID)
	if err != nil {
		return transport.GroupResponse{}, err
	}

	params := repository.UpdateGroupParams{
		Name:          sanitize.LinePtr(req.Name),
		ContactPerson: sanitize.LinePtr(req.ContactPerson),
		Address:       sanitize.TextPtr(req.Address),
		Comments:      sanitize.TextPtr(req.Comments),
		UpdatedAt:     s.now().UTC(),
	}
	if req.CapacityCeiling != nil {
		ceiling := strings.TrimSpace(*req.CapacityCeiling)
		params.CapacityCeiling = &ceiling
	}
	if req.Mobiles != nil {
		params.Mobiles = s.phones.NormalizeAll(req.Mobiles)
		if len(params.Mobiles) == 0 {
			return transport.GroupResponse{}, apperr.Validation("at least one mobile number is required")
		}
		params.MobilesSet = true
	}

	var (
		updated repository.Group
		members []string
	)
	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		if _, err := tx.GetGroupForUpdate(ctx, code); err != nil {
			return guards.GroupNotFound(err)
		}
		var err error
		members, err = tx.GroupMemberCapacities(ctx, code, "")
		if err != nil {
			return err
		}
		if params.CapacityCeiling != nil {
			check := domain.CheckCapacity(*params.CapacityCeiling, members, 0)
			if !check.OK {
				return guards.CapacityExceeded(code, check)
			}
		}
		updated, err = tx.UpdateGroup(ctx, code, params)
		return guards.GroupNotFound(err)
	})
	if err != nil {
		return transport.GroupResponse{}, err
	}

	s.log.PipelineEvent("group_updated", code, actorID.String())
	return s.views.Group(updated, members), nil
}

// AttachLeads moves ungrouped leads into a group. The batch is all or
// nothing: any missing lead, already-grouped lead or ceiling overflow
// rejects the whole request and changes no membership.
func (s *Service) AttachLeads(ctx context.Context, req transport.AttachGroupRequest, actorID uuid.UUID) (transport.AttachGroupResponse, error) {
	groupCode, err := guards.ResolveGroupID(req.GroupID)
	if err != nil {
		return transport.AttachGroupResponse{}, err
	}
	codes, err := resolveLeadCodes(req.LeadIDs)
	if err != nil {
		return transport.AttachGroupResponse{}, err
	}

	now := s.now().UTC()
	var (
		group    repository.Group
		attached []repository.Lead
		members  []string
		check    domain.CapacityCheck
	)
	err = s.repo.InTx(ctx, func(tx repository.TxStore) error {
		var err error
		group, err = tx.GetGroupForUpdate(ctx, groupCode)
		if err != nil {
			return guards.GroupNotFound(err)
		}
		members, err = tx.GroupMemberCapacities(ctx, groupCode, "")
		if err != nil {
			return err
		}

		var additional float64
		for _, code := range codes {
			lead, err := tx.GetLeadForUpdate(ctx, code)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound(fmt.Sprintf("lead %s not found", code))
			}
			if err != nil {
				return err
			}
			if lead.GroupCode != nil {
				return guards.AlreadyGrouped(code, *lead.GroupCode)
			}
			additional += domain.ParseCapacity(lead.Capacity)
		}

		check = domain.CheckCapacity(group.CapacityCeiling, members, additional)
		if !check.OK {
			return guards.CapacityExceeded(groupCode, check)
		}

		attached = make([]repository.Lead, 0, len(codes))
		for _, code := range codes {
			lead, err := tx.SetLeadGroup(ctx, code, groupCode, now)
			if err != nil {
				if errors.Is(err, repository.ErrAlreadyGrouped) {
					return guards.AlreadyGrouped(code, "")
				}
				return guards.LeadNotFound(err)
			}
			attached = append(attached, lead)
			members = append(members, lead.Capacity)
		}
		return nil
	})
	if err != nil {
		return transport.AttachGroupResponse{}, err
	}

	leadCodes := make([]string, 0, len(attached))
	for _, lead := range attached {
		leadCodes = append(leadCodes, lead.Code)
	}
	s.log.PipelineEvent("leads_attached", groupCode, actorID.String(), "leads", leadCodes)
	s.eventBus.Publish(ctx, events.LeadsAttached{
		BaseEvent: events.NewActorEvent(actorID.String()),
		GroupID:   groupCode,
		LeadIDs:   leadCodes,
		Committed: check.Committed + check.Requested,
		Ceiling:   check.Ceiling,
	})

	leads, err := s.views.Leads(ctx, attached)
	if err != nil {
		return transport.AttachGroupResponse{}, err
	}
	return transport.AttachGroupResponse{
		Group: s.views.Group(group, members),
		Leads: leads,
	}, nil
}

// Capacity reports whether additional capacity would fit, without changing anything.
func (s *Service) Capacity(ctx context.Context, rawID string, additional string) (transport.CapacityResponse, error) {
	code, err := guards.ResolveGroupID(rawID)
	if err != nil {
		return transport.CapacityResponse{}, err
	}

	group, err := s.repo.GetGroup(ctx, code)
	if err != nil {
		return transport.CapacityResponse{}, guards.GroupNotFound(err)
	}
	capacities, err := s.repo.MemberCapacities(ctx, []string{code})
	if err != nil {
		return transport.CapacityResponse{}, err
	}

	check := domain.CheckCapacity(group.CapacityCeiling, capacities[code], domain.ParseCapacity(additional))
	return transport.CapacityResponse{
		GroupID:   code,
		OK:        check.OK,
		Committed: check.Committed,
		Ceiling:   check.Ceiling,
		Requested: check.Requested,
		Remaining: check.Remaining(),
	}, nil
}

// resolveLeadCodes canonicalizes and de-duplicates ids, ordered by number so
// that concurrent batches lock rows in the same order.
func resolveLeadCodes(rawIDs []string) ([]string, error) {
	if len(rawIDs) == 0 {
		return nil, apperr.Validation("leadIds must not be empty")
	}
	seen := make(map[string]struct{}, len(rawIDs))
	codes := make([]string, 0, len(rawIDs))
	for _, raw := range rawIDs {
		code, err := guards.ResolveLeadID(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, _ := domain.ParseCodeSuffix(domain.LeadPrefix, codes[i])
		b, _ := domain.ParseCodeSuffix(domain.LeadPrefix, codes[j])
		return a < b
	})
	return codes, nil
}
