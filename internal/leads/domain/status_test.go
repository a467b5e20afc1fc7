package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStatusHistoryAppendKeepsEarlierEntries(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var history StatusHistory
	for i, stage := range []string{StageInitial, StageFollowUp, StageWarm} {
		entry, err := NewStatusEntry(stage, "", "", actor, now.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("NewStatusEntry(%q): %v", stage, err)
		}
		history = history.Append(entry)
	}

	if history.Current() != StageWarm {
		t.Fatalf("expected current stage warm, got %q", history.Current())
	}

	won, _ := NewStatusEntry(StageWon, "signed", "PO received", actor, now.Add(4*time.Hour))
	next := history.Append(won)

	if next.Current() != StageWon {
		t.Fatalf("expected current stage won, got %q", next.Current())
	}
	if history.Current() != StageWarm || len(history) != 3 {
		t.Fatal("append must not modify the original history")
	}
	for i, stage := range []string{StageInitial, StageFollowUp, StageWarm} {
		if next[i].Stage != stage {
			t.Fatalf("entry %d changed: got %q want %q", i, next[i].Stage, stage)
		}
	}
}

func TestNewStatusEntryRequiresStage(t *testing.T) {
	if _, err := NewStatusEntry("   ", "", "", uuid.New(), time.Now()); err != ErrStageRequired {
		t.Fatalf("expected ErrStageRequired, got %v", err)
	}
}

func TestStatusHistoryEmpty(t *testing.T) {
	var history StatusHistory
	if history.Current() != "" {
		t.Fatal("empty history has no current stage")
	}
}

func TestAssignmentsCurrentAndEverAssigned(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	var log Assignments
	log = log.Append(Assignment{UserID: a, StageAtAssignment: StageInitial})
	log = log.Append(Assignment{UserID: b, StageAtAssignment: StageWarm})
	log = log.Append(Assignment{UserID: a, StageAtAssignment: StageWarm})

	current, ok := log.Current()
	if !ok || current != a {
		t.Fatalf("expected current assignee %s, got %s", a, current)
	}
	ever := log.EverAssigned()
	if len(ever) != 2 || ever[0] != a || ever[1] != b {
		t.Fatalf("unexpected ever-assigned list %v", ever)
	}
}
