// Package memory provides an in-process implementation of the leads store.
// Transactions run against a cloned state under a single writer lock and
// replace the live state only on success.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/repository"

	"github.com/google/uuid"
)

type memoryState struct {
	leads     map[string]repository.Lead
	groups    map[string]repository.Group
	sequences map[string]int64
}

func newMemoryState() memoryState {
	return memoryState{
		leads:     map[string]repository.Lead{},
		groups:    map[string]repository.Group{},
		sequences: map[string]int64{},
	}
}

// clone copies the maps. Stored values are replaced, never mutated in
// place, so sharing their slices between states is safe.
func (s memoryState) clone() memoryState {
	out := memoryState{
		leads:     make(map[string]repository.Lead, len(s.leads)),
		groups:    make(map[string]repository.Group, len(s.groups)),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.leads {
		out.leads[k] = v
	}
	for k, v := range s.groups {
		out.groups[k] = v
	}
	for k, v := range s.sequences {
		out.sequences[k] = v
	}
	return out
}

// Store is an in-memory repository.Store.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

var _ repository.Store = (*Store)(nil)

// InTx runs fn against a private copy of the state. Writers are serialized,
// which stands in for the row and advisory locks of the SQL store.
func (s *Store) InTx(_ context.Context, fn func(tx repository.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *Store) GetLead(_ context.Context, code string) (repository.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.state.leads[code]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead.Clone(), nil
}

func (s *Store) ListLeads(_ context.Context, params repository.LeadListParams) ([]repository.Lead, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]repository.Lead, 0)
	for _, lead := range s.state.leads {
		if leadMatches(lead, params) {
			matched = append(matched, lead)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Seq > matched[j].Seq })

	page := paginate(len(matched), params.Offset, params.Limit)
	out := make([]repository.Lead, 0, page.end-page.start)
	for _, lead := range matched[page.start:page.end] {
		out = append(out, lead.Clone())
	}
	return out, len(matched), nil
}

func leadMatches(lead repository.Lead, params repository.LeadListParams) bool {
	if stage := strings.TrimSpace(params.Stage); stage != "" && !strings.EqualFold(lead.CurrentStatus(), stage) {
		return false
	}
	if params.AssignedTo != nil {
		current, ok := lead.CurrentAssigned()
		if !ok || current != *params.AssignedTo {
			return false
		}
	}
	if params.GroupCode != nil && (lead.GroupCode == nil || *lead.GroupCode != *params.GroupCode) {
		return false
	}
	if params.Ungrouped && lead.GroupCode != nil {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" {
		haystack := strings.ToLower(lead.Name + " " + lead.Code + " " + strings.Join(lead.Mobiles, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

func (s *Store) FindLeadsByMobiles(_ context.Context, mobiles []string, excludeCode string) ([]repository.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.findByMobiles(mobiles, excludeCode), nil
}

func (s memoryState) findByMobiles(mobiles []string, excludeCode string) []repository.Lead {
	out := make([]repository.Lead, 0)
	if len(mobiles) == 0 {
		return out
	}
	for _, lead := range s.leads {
		if lead.Code == excludeCode {
			continue
		}
		if _, ok := domain.FirstOverlap(mobiles, lead.Mobiles); ok {
			out = append(out, lead.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (s *Store) GetGroup(_ context.Context, code string) (repository.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.state.groups[code]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	return group.Clone(), nil
}

func (s *Store) ListGroups(_ context.Context, params repository.GroupListParams) ([]repository.Group, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]repository.Group, 0)
	search := strings.ToLower(strings.TrimSpace(params.Search))
	for _, group := range s.state.groups {
		if stage := strings.TrimSpace(params.Stage); stage != "" && !strings.EqualFold(group.CurrentStatus(), stage) {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(group.Name + " " + group.Code + " " + group.ContactPerson)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		matched = append(matched, group)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Seq > matched[j].Seq })

	page := paginate(len(matched), params.Offset, params.Limit)
	out := make([]repository.Group, 0, page.end-page.start)
	for _, group := range matched[page.start:page.end] {
		out = append(out, group.Clone())
	}
	return out, len(matched), nil
}

func (s *Store) MemberCapacities(_ context.Context, groupCodes []string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(groupCodes))
	for _, code := range groupCodes {
		wanted[code] = struct{}{}
	}
	result := make(map[string][]string, len(groupCodes))
	for _, lead := range s.state.leads {
		if lead.GroupCode == nil {
			continue
		}
		if _, ok := wanted[*lead.GroupCode]; ok {
			result[*lead.GroupCode] = append(result[*lead.GroupCode], lead.Capacity)
		}
	}
	return result, nil
}

func (s *Store) AppendLeadStatus(_ context.Context, code string, entry domain.StatusEntry) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.state.leads[code]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.StatusHistory = lead.StatusHistory.Append(entry)
	lead.UpdatedAt = entry.At
	s.state.leads[code] = lead
	return lead.Clone(), nil
}

func (s *Store) AppendGroupStatus(_ context.Context, code string, entry domain.StatusEntry) (repository.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.state.groups[code]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	group.StatusHistory = group.StatusHistory.Append(entry)
	group.UpdatedAt = entry.At
	s.state.groups[code] = group
	return group.Clone(), nil
}

func (s *Store) AppendAssignment(_ context.Context, code string, userID, assignedBy uuid.UUID, at time.Time) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.state.leads[code]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	at = at.UTC()
	lead.AssignedTo = lead.AssignedTo.Append(domain.Assignment{
		UserID:            userID,
		StageAtAssignment: lead.CurrentStatus(),
		AssignedBy:        assignedBy,
		AssignedAt:        at,
	})
	lead.UpdatedAt = at
	s.state.leads[code] = lead
	return lead.Clone(), nil
}

type transaction struct {
	state memoryState
}

func (t *transaction) NextSequence(_ context.Context, prefix string) (int64, error) {
	current, ok := t.state.sequences[prefix]
	if !ok {
		current = t.highestSeq(prefix)
	}
	current++
	t.state.sequences[prefix] = current
	return current, nil
}

func (t *transaction) highestSeq(prefix string) int64 {
	var highest int64
	switch prefix {
	case domain.LeadPrefix:
		for _, lead := range t.state.leads {
			highest = max(highest, lead.Seq)
		}
	case domain.GroupPrefix:
		for _, group := range t.state.groups {
			highest = max(highest, group.Seq)
		}
	}
	return highest
}

func (t *transaction) LockMobileIndex(context.Context) error { return nil }

func (t *transaction) FindLeadsByMobiles(_ context.Context, mobiles []string, excludeCode string) ([]repository.Lead, error) {
	return t.state.findByMobiles(mobiles, excludeCode), nil
}

func (t *transaction) GetLeadForUpdate(_ context.Context, code string) (repository.Lead, error) {
	lead, ok := t.state.leads[code]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead.Clone(), nil
}

func (t *transaction) GetGroupForUpdate(_ context.Context, code string) (repository.Group, error) {
	group, ok := t.state.groups[code]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	return group.Clone(), nil
}

func (t *transaction) GroupMemberCapacities(_ context.Context, groupCode, excludeLeadCode string) ([]string, error) {
	capacities := make([]string, 0)
	for _, lead := range t.state.leads {
		if lead.Code == excludeLeadCode || lead.GroupCode == nil || *lead.GroupCode != groupCode {
			continue
		}
		capacities = append(capacities, lead.Capacity)
	}
	return capacities, nil
}

func (t *transaction) InsertLead(_ context.Context, lead repository.Lead) error {
	if _, exists := t.state.leads[lead.Code]; exists {
		return fmt.Errorf("lead %s already exists", lead.Code)
	}
	if lead.GroupCode != nil {
		if _, ok := t.state.groups[*lead.GroupCode]; !ok {
			return fmt.Errorf("group %s does not exist", *lead.GroupCode)
		}
	}
	t.state.leads[lead.Code] = lead.Clone()
	return nil
}

func (t *transaction) InsertGroup(_ context.Context, group repository.Group) error {
	if _, exists := t.state.groups[group.Code]; exists {
		return fmt.Errorf("group %s already exists", group.Code)
	}
	t.state.groups[group.Code] = group.Clone()
	return nil
}

func (t *transaction) UpdateLead(_ context.Context, code string, params repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := t.state.leads[code]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead = lead.Clone()
	setIf(&lead.Name, params.Name)
	setIf(&lead.Address, params.Address)
	setIf(&lead.Capacity, params.Capacity)
	setIf(&lead.Source, params.Source)
	setIf(&lead.Comments, params.Comments)
	if params.MobilesSet {
		lead.Mobiles = append([]string{}, params.Mobiles...)
	}
	if params.Email != nil {
		v := *params.Email
		lead.Email = &v
	}
	if lead.ExpectedClosingDate == nil && params.ExpectedClosingDate != nil {
		v := *params.ExpectedClosingDate
		lead.ExpectedClosingDate = &v
	}
	lead.UpdatedAt = params.UpdatedAt
	t.state.leads[code] = lead
	return lead.Clone(), nil
}

func (t *transaction) UpdateGroup(_ context.Context, code string, params repository.UpdateGroupParams) (repository.Group, error) {
	group, ok := t.state.groups[code]
	if !ok {
		return repository.Group{}, repository.ErrNotFound
	}
	group = group.Clone()
	setIf(&group.Name, params.Name)
	setIf(&group.ContactPerson, params.ContactPerson)
	setIf(&group.Address, params.Address)
	setIf(&group.CapacityCeiling, params.CapacityCeiling)
	setIf(&group.Comments, params.Comments)
	if params.MobilesSet {
		group.Mobiles = append([]string{}, params.Mobiles...)
	}
	group.UpdatedAt = params.UpdatedAt
	t.state.groups[code] = group
	return group.Clone(), nil
}

func (t *transaction) SetLeadGroup(_ context.Context, leadCode, groupCode string, at time.Time) (repository.Lead, error) {
	lead, ok := t.state.leads[leadCode]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if lead.GroupCode != nil {
		return repository.Lead{}, repository.ErrAlreadyGrouped
	}
	if _, ok := t.state.groups[groupCode]; !ok {
		return repository.Lead{}, fmt.Errorf("group %s does not exist", groupCode)
	}
	lead = lead.Clone()
	code := groupCode
	lead.GroupCode = &code
	lead.UpdatedAt = at
	t.state.leads[leadCode] = lead
	return lead.Clone(), nil
}

func (t *transaction) DeleteLead(_ context.Context, code string) error {
	if _, ok := t.state.leads[code]; !ok {
		return repository.ErrNotFound
	}
	delete(t.state.leads, code)
	return nil
}

func setIf(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

type pageBounds struct{ start, end int }

func paginate(total, offset, limit int) pageBounds {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return pageBounds{start: offset, end: end}
}
