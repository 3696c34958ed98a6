package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "smsguard/internal/errors"
	"smsguard/internal/model"
)

// UserRepository defines credential persistence operations.
type UserRepository interface {
	// Create inserts the user. A taken email yields errors.ErrDuplicateIdentity.
	Create(ctx context.Context, user *model.User) error
	// FindByEmail returns the full record, password hash included, or nil when absent.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID returns the record without its password hash, or nil when absent.
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create relies on the unique index on email instead of a pre-check, so two
// concurrent registrations cannot both succeed.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateIdentity
		}
		return apperrors.Persistence("create user", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("find user by email", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Omit("password_hash").Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("find user by id", err)
	}
	return &user, nil
}
