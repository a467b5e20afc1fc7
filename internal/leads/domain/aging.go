package domain

import "time"

const day = 24 * time.Hour

// AgeDays is the number of whole days since createdAt.
func AgeDays(createdAt, now time.Time) int {
	return wholeDays(createdAt, now)
}

// InactiveDays counts whole days since the most recent activity among the
// last status change, the last assignment and updatedAt.
func InactiveDays(history StatusHistory, assignments Assignments, updatedAt, now time.Time) int {
	latest := updatedAt
	if last, ok := history.Last(); ok && last.At.After(latest) {
		latest = last.At
	}
	if last, ok := assignments.Last(); ok && last.AssignedAt.After(latest) {
		latest = last.AssignedAt
	}
	return wholeDays(latest, now)
}

func wholeDays(from, now time.Time) int {
	if from.IsZero() || now.Before(from) {
		return 0
	}
	return int(now.Sub(from) / day)
}
