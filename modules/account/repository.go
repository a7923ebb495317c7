package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"gorm.io/gorm"
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. A username collision yields ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// FindByUsername finds a user by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// UsernameExists reports whether username is taken by a user other than exceptID.
func (r *UserRepository) UsernameExists(ctx context.Context, username, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&user.User{}).Where("username = ?", username)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// List returns every user ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListWithTasks returns every user with their tasks in the canonical order. Tasks
// are loaded in a single extra query.
func (r *UserRepository) ListWithTasks(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order(task.DefaultOrder)
		}).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	return users, nil
}

// UpdateProfile writes username and email only.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *user.User) error {
	result := r.db.WithContext(ctx).Model(u).Select("username", "email", "updated_at").Updates(map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"updated_at": u.UpdatedAt,
	})
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user; tasks follow through the ON DELETE CASCADE foreign key.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&user.User{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EnsureSuperuser creates u unless its username exists, and promotes an existing
// account with that username. created reports whether a row was inserted.
func (r *UserRepository) EnsureSuperuser(ctx context.Context, u *user.User) (created bool, err error) {
	existing, err := r.FindByUsername(ctx, u.Username)
	switch {
	case err == nil:
		if existing.IsSuperuser {
			return false, nil
		}
		if err := r.db.WithContext(ctx).Model(existing).Update("is_superuser", true).Error; err != nil {
			return false, fmt.Errorf("failed to promote user: %w", err)
		}
		return false, nil
	case errors.Is(err, ErrUserNotFound):
		u.IsSuperuser = true
		return true, r.Create(ctx, u)
	default:
		return false, err
	}
}
