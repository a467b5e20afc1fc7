package adapters

import (
	"context"

	"bd_pipeline_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// UserLookup is satisfied by the users repository.
type UserLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserDirectoryAdapter implements ports.UserExistenceChecker for the leads domain.
type UserDirectoryAdapter struct {
	users UserLookup
}

func NewUserDirectoryAdapter(users UserLookup) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{users: users}
}

func (a *UserDirectoryAdapter) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return a.users.Exists(ctx, userID)
}

var _ ports.UserExistenceChecker = (*UserDirectoryAdapter)(nil)
