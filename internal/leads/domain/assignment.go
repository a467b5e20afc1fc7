package domain

import (
	"time"

	"github.com/google/uuid"
)

// Assignment records that a user was put on a lead, and at which stage.
type Assignment struct {
	UserID            uuid.UUID `json:"userId"`
	StageAtAssignment string    `json:"stageAtAssignment"`
	AssignedBy        uuid.UUID `json:"assignedBy"`
	AssignedAt        time.Time `json:"assignedAt"`
}

// Assignments is the append-only assignment log of a lead.
type Assignments []Assignment

// Current is the most recent assignee.
func (a Assignments) Current() (uuid.UUID, bool) {
	if len(a) == 0 {
		return uuid.Nil, false
	}
	return a[len(a)-1].UserID, true
}

// Last returns the most recent assignment.
func (a Assignments) Last() (Assignment, bool) {
	if len(a) == 0 {
		return Assignment{}, false
	}
	return a[len(a)-1], true
}

// Append returns a new log with next added.
func (a Assignments) Append(next Assignment) Assignments {
	out := make(Assignments, len(a), len(a)+1)
	copy(out, a)
	return append(out, next)
}

// EverAssigned lists distinct users in first-assignment order.
func (a Assignments) EverAssigned() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(a))
	seen := make(map[uuid.UUID]struct{}, len(a))
	for _, item := range a {
		if _, ok := seen[item.UserID]; ok {
			continue
		}
		seen[item.UserID] = struct{}{}
		out = append(out, item.UserID)
	}
	return out
}

// Clone returns an independent copy.
func (a Assignments) Clone() Assignments {
	if a == nil {
		return nil
	}
	out := make(Assignments, len(a))
	copy(out, a)
	return out
}
