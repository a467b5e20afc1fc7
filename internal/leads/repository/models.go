package repository

import (
	"errors"
	"time"

	"bd_pipeline_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyGrouped = errors.New("lead already belongs to a group")
)

// Lead is a stored BD lead. Current status and current assignee are derived
// from the two append-only logs and are never stored independently here.
type Lead struct {
	Code                string
	Seq                 int64
	Name                string
	Mobiles             []string
	Email               *string
	Address             string
	Capacity            string
	Source              string
	Comments            string
	GroupCode           *string
	ExpectedClosingDate *time.Time
	StatusHistory       domain.StatusHistory
	AssignedTo          domain.Assignments
	CreatedBy           uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CurrentStatus is the stage of the last history entry.
func (l Lead) CurrentStatus() string { return l.StatusHistory.Current() }

// CurrentAssigned is the most recent assignee.
func (l Lead) CurrentAssigned() (uuid.UUID, bool) { return l.AssignedTo.Current() }

// Clone returns a copy that shares no slices with l.
func (l Lead) Clone() Lead {
	out := l
	out.Mobiles = append([]string(nil), l.Mobiles...)
	out.StatusHistory = l.StatusHistory.Clone()
	out.AssignedTo = l.AssignedTo.Clone()
	if l.Email != nil {
		v := *l.Email
		out.Email = &v
	}
	if l.GroupCode != nil {
		v := *l.GroupCode
		out.GroupCode = &v
	}
	if l.ExpectedClosingDate != nil {
		v := *l.ExpectedClosingDate
		out.ExpectedClosingDate = &v
	}
	return out
}

// Group is a capacity-bounded container of leads.
type Group struct {
	Code            string
	Seq             int64
	Name            string
	ContactPerson   string
	Mobiles         []string
	Address         string
	CapacityCeiling string
	Comments        string
	StatusHistory   domain.StatusHistory
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CurrentStatus is the stage of the last history entry.
func (g Group) CurrentStatus() string { return g.StatusHistory.Current() }

// Clone returns a copy that shares no slices with g.
func (g Group) Clone() Group {
	out := g
	out.Mobiles = append([]string(nil), g.Mobiles...)
	out.StatusHistory = g.StatusHistory.Clone()
	return out
}

// LeadListParams filters and pages lead listings. Zero values disable a filter.
type LeadListParams struct {
	Stage      string
	AssignedTo *uuid.UUID
	GroupCode  *string
	Ungrouped  bool
	Search     string
	Offset     int
	Limit      int
}

// GroupListParams filters and pages group listings.
type GroupListParams struct {
	Stage  string
	Search string
	Offset int
	Limit  int
}

// UpdateLeadParams carries a partial lead update. Nil pointers leave the
// column unchanged. ExpectedClosingDate only applies while the stored value
// is still empty.
type UpdateLeadParams struct {
	Name                *string
	Mobiles             []string
	MobilesSet          bool
	Email               *string
	Address             *string
	Capacity            *string
	Source              *string
	Comments            *string
	ExpectedClosingDate *time.Time
	UpdatedAt           time.Time
}

// UpdateGroupParams carries a partial group update.
type UpdateGroupParams struct {
	Name            *string
	ContactPerson   *string
	Mobiles         []string
	MobilesSet      bool
	Address         *string
	CapacityCeiling *string
	Comments        *string
	UpdatedAt       time.Time
}
