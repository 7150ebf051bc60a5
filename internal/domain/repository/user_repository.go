package repository

import (
	"context"
	"errors"

	"github.com/mksolution/account-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a user lookup misses.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an insert violates the unique
	// email constraint.
	ErrDuplicate = errors.New("email already registered")
)

// ProfilePatch is the allow-list of user columns that may be changed
// through the profile-update endpoint. A nil field is left untouched,
// so unknown or forbidden fields simply cannot be expressed.
type ProfilePatch struct {
	Name       *string
	Phone      *string
	ProfileURL *string
	Address    *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.ProfileURL == nil && p.Address == nil
}

// UserRepository defines the persistence operations the account service
// depends on. Save writes every mutable column of the aggregate, which
// is how lifecycle transitions (verification, onboarding, review) reach
// the database.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Save(ctx context.Context, u *entity.User) error
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*entity.User, error)
	ListOnboardedClients(ctx context.Context) ([]*entity.User, error)
}
