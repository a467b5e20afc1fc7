package repository

import (
	"context"
	"time"

	"bd_pipeline_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetLead(ctx context.Context, code string) (Lead, error)
	ListLeads(ctx context.Context, params LeadListParams) ([]Lead, int, error)
	FindLeadsByMobiles(ctx context.Context, mobiles []string, excludeCode string) ([]Lead, error)
}

// GroupReader provides read-only access to group data.
type GroupReader interface {
	GetGroup(ctx context.Context, code string) (Group, error)
	ListGroups(ctx context.Context, params GroupListParams) ([]Group, int, error)
	// MemberCapacities returns the capacity strings of every lead in each
	// requested group, keyed by group code.
	MemberCapacities(ctx context.Context, groupCodes []string) (map[string][]string, error)
}

// HistoryWriter appends to the status and assignment logs. Each call is a
// single atomic statement; no read-modify-write happens in Go.
type HistoryWriter interface {
	AppendLeadStatus(ctx context.Context, code string, entry domain.StatusEntry) (Lead, error)
	AppendGroupStatus(ctx context.Context, code string, entry domain.StatusEntry) (Group, error)
	// AppendAssignment records userID on the lead, capturing the lead's
	// current stage in the same write.
	AppendAssignment(ctx context.Context, code string, userID, assignedBy uuid.UUID, at time.Time) (Lead, error)
}

// TxStore is the set of operations available inside a unit of work.
// Locks taken through it are released when the transaction ends.
type TxStore interface {
	// NextSequence atomically reserves the next number for prefix.
	NextSequence(ctx context.Context, prefix string) (int64, error)
	// LockMobileIndex serializes duplicate-mobile checks.
	LockMobileIndex(ctx context.Context) error
	FindLeadsByMobiles(ctx context.Context, mobiles []string, excludeCode string) ([]Lead, error)

	GetLeadForUpdate(ctx context.Context, code string) (Lead, error)
	GetGroupForUpdate(ctx context.Context, code string) (Group, error)
	// GroupMemberCapacities lists member capacities, skipping excludeLeadCode.
	GroupMemberCapacities(ctx context.Context, groupCode, excludeLeadCode string) ([]string, error)

	InsertLead(ctx context.Context, lead Lead) error
	InsertGroup(ctx context.Context, group Group) error
	UpdateLead(ctx context.Context, code string, params UpdateLeadParams) (Lead, error)
	UpdateGroup(ctx context.Context, code string, params UpdateGroupParams) (Group, error)
	// SetLeadGroup attaches an ungrouped lead. Returns ErrAlreadyGrouped when
	// the lead already has a group.
	SetLeadGroup(ctx context.Context, leadCode, groupCode string, at time.Time) (Lead, error)
	DeleteLead(ctx context.Context, code string) error
}

// Transactor runs fn as one atomic unit of work. If fn returns an error
// nothing it did is kept.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// Store is everything the leads module needs from persistence.
type Store interface {
	LeadReader
	GroupReader
	HistoryWriter
	Transactor
}
