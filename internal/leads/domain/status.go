package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead stages.
const (
	StageInitial  = "initial"
	StageFollowUp = "follow up"
	StageWarm     = "warm"
	StageWon      = "won"
	StageDead     = "dead"
)

// Group stages.
const (
	GroupStageOpen   = "open"
	GroupStageClosed = "closed"
)

// ErrStageRequired is returned when a transition carries no stage label.
var ErrStageRequired = errors.New("stage is required")

// StatusEntry is one transition in a lead or group history.
type StatusEntry struct {
	Stage    string    `json:"stage"`
	SubStage string    `json:"subStage,omitempty"`
	Remarks  string    `json:"remarks,omitempty"`
	ActorID  uuid.UUID `json:"actorId"`
	At       time.Time `json:"at"`
}

// NewStatusEntry builds a transition. Any stage may follow any other; only an
// empty stage is rejected.
func NewStatusEntry(stage, subStage, remarks string, actorID uuid.UUID, at time.Time) (StatusEntry, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return StatusEntry{}, ErrStageRequired
	}
	return StatusEntry{
		Stage:    stage,
		SubStage: strings.TrimSpace(subStage),
		Remarks:  strings.TrimSpace(remarks),
		ActorID:  actorID,
		At:       at.UTC(),
	}, nil
}

// StatusHistory is append-only and ordered by insertion.
type StatusHistory []StatusEntry

// Current is the stage of the last entry, or "" for an empty history.
func (h StatusHistory) Current() string {
	if last, ok := h.Last(); ok {
		return last.Stage
	}
	return ""
}

// Last returns the most recent entry.
func (h StatusHistory) Last() (StatusEntry, bool) {
	if len(h) == 0 {
		return StatusEntry{}, false
	}
	return h[len(h)-1], true
}

// Append returns a new history with e added. The receiver is never modified
// and the result never shares its backing array.
func (h StatusHistory) Append(e StatusEntry) StatusHistory {
	out := make(StatusHistory, len(h), len(h)+1)
	copy(out, h)
	return append(out, e)
}

// Clone returns an independent copy.
func (h StatusHistory) Clone() StatusHistory {
	if h == nil {
		return nil
	}
	out := make(StatusHistory, len(h))
	copy(out, h)
	return out
}
