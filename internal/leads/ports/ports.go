// Package ports declares what the leads context needs from other contexts.
// Implementations live in internal/adapters.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// HandoverClassifier reports the lead-facing handover status
// ("pending", "in process", "completed", "rejected" or "unknown").
// Leads without a handover sheet are "pending".
type HandoverClassifier interface {
	ClassifyLead(ctx context.Context, leadCode string) (string, error)
	// ClassifyLeads classifies many leads in one lookup. Every requested
	// code is present in the result.
	ClassifyLeads(ctx context.Context, leadCodes []string) (map[string]string, error)
}

// UserExistenceChecker lets assignment reject unknown assignees.
type UserExistenceChecker interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}
