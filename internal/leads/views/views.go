// Package views builds API responses from stored leads and groups,
// computing every derived field at read time.
package views

import (
	"context"
	"time"

	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/ports"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/transport"
)

// Presenter renders lead and group responses.
type Presenter struct {
	handover ports.HandoverClassifier
	now      func() time.Time
}

// New creates a presenter. A nil classifier reports every lead as pending.
func New(handover ports.HandoverClassifier) *Presenter {
	return &Presenter{handover: handover, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (p *Presenter) WithClock(now func() time.Time) *Presenter {
	p.now = now
	return p
}

// Lead renders one lead.
func (p *Presenter) Lead(ctx context.Context, lead repository.Lead) (transport.LeadResponse, error) {
	items, err := p.Leads(ctx, []repository.Lead{lead})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return items[0], nil
}

// Leads renders many leads with a single handover lookup.
func (p *Presenter) Leads(ctx context.Context, leads []repository.Lead) ([]transport.LeadResponse, error) {
	statuses := map[string]string{}
	if p.handover != nil && len(leads) > 0 {
		codes := make([]string, 0, len(leads))
		for _, lead := range leads {
			codes = append(codes, lead.Code)
		}
		classified, err := p.handover.ClassifyLeads(ctx, codes)
		if err != nil {
			return nil, err
		}
		statuses = classified
	}

	now := p.now()
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		status, ok := statuses[lead.Code]
		if !ok {
			status = domain.HandoverPending
		}
		out = append(out, leadResponse(lead, status, now))
	}
	return out, nil
}

func leadResponse(lead repository.Lead, handoverStatus string, now time.Time) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                  lead.Code,
		Name:                lead.Name,
		Mobiles:             nonNilStrings(lead.Mobiles),
		Email:               lead.Email,
		Address:             lead.Address,
		Capacity:            lead.Capacity,
		Source:              lead.Source,
		Comments:            lead.Comments,
		GroupID:             lead.GroupCode,
		ExpectedClosingDate: transport.FormatDate(lead.ExpectedClosingDate),
		StatusHistory:       lead.StatusHistory.Clone(),
		CurrentStatus:       lead.CurrentStatus(),
		AssignedTo:          lead.AssignedTo.Clone(),
		AssignedUsers:       lead.AssignedTo.EverAssigned(),
		HandoverStatus:      handoverStatus,
		AgeDays:             domain.AgeDays(lead.CreatedAt, now),
		InactiveDays:        domain.InactiveDays(lead.StatusHistory, lead.AssignedTo, lead.UpdatedAt, now),
		CreatedBy:           lead.CreatedBy,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
	if resp.StatusHistory == nil {
		resp.StatusHistory = []domain.StatusEntry{}
	}
	if resp.AssignedTo == nil {
		resp.AssignedTo = []domain.Assignment{}
	}
	if current, ok := lead.CurrentAssigned(); ok {
		resp.CurrentAssigned = &current
	}
	return resp
}

// Group renders a group given the capacities of its members.
func (p *Presenter) Group(group repository.Group, memberCapacities []string) transport.GroupResponse {
	check := domain.CheckCapacity(group.CapacityCeiling, memberCapacities, 0)
	history := []domain.StatusEntry(group.StatusHistory.Clone())
	if history == nil {
		history = []domain.StatusEntry{}
	}
	return transport.GroupResponse{
		ID:                group.Code,
		Name:              group.Name,
		ContactPerson:     group.ContactPerson,
		Mobiles:           nonNilStrings(group.Mobiles),
		Address:           group.Address,
		CapacityCeiling:   group.CapacityCeiling,
		Comments:          group.Comments,
		StatusHistory:     history,
		CurrentStatus:     group.CurrentStatus(),
		CommittedCapacity: check.Committed,
		RemainingCapacity: check.Remaining(),
		LeadCount:         len(memberCapacities),
		CreatedBy:         group.CreatedBy,
		CreatedAt:         group.CreatedAt,
		UpdatedAt:         group.UpdatedAt,
	}
}

// TotalPages computes the page count for a listing.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
