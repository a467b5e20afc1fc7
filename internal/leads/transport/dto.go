package transport

import (
	"time"

	"bd_pipeline_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name                string       `json:"name" validate:"required,notblank,max=200"`
	Mobiles             []string     `json:"mobiles" validate:"required,min=1,max=10,dive,notblank,max=20"`
	Email               string       `json:"email,omitempty" validate:"omitempty,email"`
	Address             string       `json:"address" validate:"required,notblank,max=500"`
	Capacity            string       `json:"capacity" validate:"required,capacity,max=50"`
	Source              string       `json:"source" validate:"max=100"`
	Comments            string       `json:"comments" validate:"max=2000"`
	GroupID             *string      `json:"groupId,omitempty" validate:"omitempty,max=40"`
	ExpectedClosingDate OptionalDate `json:"expectedClosingDate,omitempty" validate:"-"`
}

type UpdateLeadRequest struct {
	Name                *string      `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Mobiles             []string     `json:"mobiles,omitempty" validate:"omitempty,min=1,max=10,dive,notblank,max=20"`
	Email               *string      `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string      `json:"address,omitempty" validate:"omitempty,notblank,max=500"`
	Capacity            *string      `json:"capacity,omitempty" validate:"omitempty,capacity,max=50"`
	Source              *string      `json:"source,omitempty" validate:"omitempty,max=100"`
	Comments            *string      `json:"comments,omitempty" validate:"omitempty,max=2000"`
	ExpectedClosingDate OptionalDate `json:"expectedClosingDate,omitempty" validate:"-"`
}

type UpdateStatusRequest struct {
	Stage    string `json:"stage" validate:"required,notblank,max=50"`
	SubStage string `json:"subStage,omitempty" validate:"max=100"`
	Remarks  string `json:"remarks,omitempty" validate:"max=2000"`
}

type AssignLeadsRequest struct {
	LeadIDs []string `json:"leadIds" validate:"required,min=1,max=500"`
	UserID  string   `json:"userId" validate:"required,uuid"`
}

type AttachGroupRequest struct {
	LeadIDs []string `json:"leadIds" validate:"required,min=1,max=500"`
	GroupID string   `json:"groupId" validate:"required,notblank,max=40"`
}

type CreateGroupRequest struct {
	Name            string   `json:"name" validate:"required,notblank,max=200"`
	ContactPerson   string   `json:"contactPerson" validate:"required,notblank,max=200"`
	Mobiles         []string `json:"mobiles" validate:"required,min=1,max=10,dive,notblank,max=20"`
	Address         string   `json:"address" validate:"required,notblank,max=500"`
	CapacityCeiling string   `json:"capacityCeiling" validate:"required,capacity,max=50"`
	Comments        string   `json:"comments" validate:"max=2000"`
}

type UpdateGroupRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	ContactPerson   *string  `json:"contactPerson,omitempty" validate:"omitempty,notblank,max=200"`
	Mobiles         []string `json:"mobiles,omitempty" validate:"omitempty,min=1,max=10,dive,notblank,max=20"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,notblank,max=500"`
	CapacityCeiling *string  `json:"capacityCeiling,omitempty" validate:"omitempty,capacity,max=50"`
	Comments        *string  `json:"comments,omitempty" validate:"omitempty,max=2000"`
}

type ListLeadsRequest struct {
	Stage      string `form:"stage" validate:"max=50"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	GroupID    string `form:"groupId" validate:"max=40"`
	Ungrouped  bool   `form:"ungrouped"`
	Search     string `form:"search" validate:"max=100"`
	Page       int    `form:"page" validate:"min=1"`
	PageSize   int    `form:"pageSize" validate:"min=1,max=100"`
}

type ListGroupsRequest struct {
	Stage    string `form:"stage" validate:"max=50"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"min=1"`
	PageSize int    `form:"pageSize" validate:"min=1,max=100"`
}

// Response DTOs
type LeadResponse struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Mobiles             []string             `json:"mobiles"`
	Email               *string              `json:"email,omitempty"`
	Address             string               `json:"address"`
	Capacity            string               `json:"capacity"`
	Source              string               `json:"source"`
	Comments            string               `json:"comments"`
	GroupID             *string              `json:"groupId,omitempty"`
	ExpectedClosingDate *string              `json:"expectedClosingDate,omitempty"`
	StatusHistory       []domain.StatusEntry `json:"statusHistory"`
	CurrentStatus       string               `json:"currentStatus"`
	AssignedTo          []domain.Assignment  `json:"assignedTo"`
	CurrentAssigned     *uuid.UUID           `json:"currentAssigned,omitempty"`
	AssignedUsers       []uuid.UUID          `json:"assignedUsers"`
	HandoverStatus      string               `json:"handoverStatus"`
	AgeDays             int                  `json:"ageDays"`
	InactiveDays        int                  `json:"inactiveDays"`
	CreatedBy           uuid.UUID            `json:"createdBy"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type GroupResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	ContactPerson     string               `json:"contactPerson"`
	Mobiles           []string             `json:"mobiles"`
	Address           string               `json:"address"`
	CapacityCeiling   string               `json:"capacityCeiling"`
	Comments          string               `json:"comments"`
	StatusHistory     []domain.StatusEntry `json:"statusHistory"`
	CurrentStatus     string               `json:"currentStatus"`
	CommittedCapacity float64              `json:"committedCapacity"`
	RemainingCapacity float64              `json:"remainingCapacity"`
	LeadCount         int                  `json:"leadCount"`
	CreatedBy         uuid.UUID            `json:"createdBy"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type GroupDetailResponse struct {
	GroupResponse
	Leads []LeadResponse `json:"leads"`
}

type GroupListResponse struct {
	Items      []GroupResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type DuplicateCheckResponse struct {
	IsDuplicate  bool          `json:"isDuplicate"`
	Mobile       string        `json:"mobile,omitempty"`
	ExistingLead *LeadResponse `json:"existingLead,omitempty"`
}

type StatusHistoryResponse struct {
	ID            string               `json:"id"`
	CurrentStatus string               `json:"currentStatus"`
	History       []domain.StatusEntry `json:"history"`
}

// Per-lead outcome reasons of a bulk assignment.
const (
	AssignReasonInvalidID = "invalid_id"
	AssignReasonNotFound  = "not_found"
	AssignReasonError     = "error"
)

type AssignResult struct {
	LeadID string        `json:"leadId"`
	OK     bool          `json:"ok"`
	Reason string        `json:"reason,omitempty"`
	Lead   *LeadResponse `json:"lead,omitempty"`
}

type AssignLeadsResponse struct {
	UserID       uuid.UUID      `json:"userId"`
	Updated      []LeadResponse `json:"updated"`
	Results      []AssignResult `json:"results"`
	UpdatedCount int            `json:"updatedCount"`
	SkippedCount int            `json:"skippedCount"`
}

type AttachGroupResponse struct {
	Group GroupResponse  `json:"group"`
	Leads []LeadResponse `json:"leads"`
}

type CapacityResponse struct {
	GroupID   string  `json:"groupId"`
	OK        bool    `json:"ok"`
	Committed float64 `json:"committed"`
	Ceiling   float64 `json:"ceiling"`
	Requested float64 `json:"requested"`
	Remaining float64 `json:"remaining"`
}

type StageCatalogResponse struct {
	Lead  []string `json:"lead"`
	Group []string `json:"group"`
}

type HandoverStatusResponse struct {
	LeadID         string `json:"leadId"`
	CurrentStatus  string `json:"currentStatus"`
	HandoverStatus string `json:"handoverStatus"`
}
