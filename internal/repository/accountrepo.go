// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/openclass/member-service/internal/model"
)

// AccountRepository provides CRUD access for member accounts.
// Duplicate real mobiles must surface as errs.ErrMobileTaken; the uniqueness
// check lives in the store, never as a read-then-write in callers.
type AccountRepository interface {
	// Create inserts a new account.
	Create(ctx context.Context, a *model.Account) error
	// GetByID loads an account by id.
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	// GetByMobile loads an account by mobile number.
	GetByMobile(ctx context.Context, mobile string) (*model.Account, error)
	// ListByIDs returns the subset of accounts whose ids exist.
	ListByIDs(ctx context.Context, ids []int64) ([]model.Account, error)
	// UpdateSecret overwrites the stored secret digest.
	UpdateSecret(ctx context.Context, id int64, secretHash string) error
	// BindMobile attaches a real mobile and marks the account registered.
	BindMobile(ctx context.Context, id int64, mobile string) error
	// UpdateAvatar sets the avatar; updating a missing id is a silent no-op.
	UpdateAvatar(ctx context.Context, id int64, avatar string) error
}
