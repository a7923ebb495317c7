package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/task-tracker/domain/access"
	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/gorm"
)

// Repository persists tasks. Every read and write except Create goes through
// domain.Scoped, so a task outside the requester's scope behaves as missing.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scoped(ctx context.Context, requester access.Requester) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Scopes(domain.Scoped(requester))
}

// List returns the requester's visible tasks matching filter, in the canonical order.
func (r *Repository) List(ctx context.Context, requester access.Requester, filter domain.Filter) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.scoped(ctx, requester).Scopes(filter.Apply()).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByOwner returns the visible tasks owned by ownerID.
func (r *Repository) ListByOwner(ctx context.Context, requester access.Requester, ownerID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.scoped(ctx, requester).Where("tasks.owner_id = ?", ownerID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns task id if it is visible to requester.
func (r *Repository) Get(ctx context.Context, requester access.Requester, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.scoped(ctx, requester).Where("tasks.id = ?", id).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update writes the editable fields of t. Owner and creation time are never written.
func (r *Repository) Update(ctx context.Context, requester access.Requester, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	result := r.scoped(ctx, requester).
		Where("tasks.id = ?", t.ID).
		Select("title", "description", "priority", "status", "due_date", "updated_at").
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"priority":    t.Priority,
			"status":      t.Status,
			"due_date":    t.DueDate,
			"updated_at":  t.UpdatedAt,
		})
	return rowsOrNotFound(result, "update")
}

// Complete sets status to done and refreshes updated_at, leaving every other column untouched.
func (r *Repository) Complete(ctx context.Context, requester access.Requester, id string, at time.Time) error {
	result := r.scoped(ctx, requester).
		Where("tasks.id = ?", id).
		Select("status", "updated_at").
		Updates(map[string]any{
			"status":     domain.StatusDone,
			"updated_at": at,
		})
	return rowsOrNotFound(result, "complete")
}

// Delete permanently removes task id.
func (r *Repository) Delete(ctx context.Context, requester access.Requester, id string) error {
	result := r.db.WithContext(ctx).Scopes(domain.Scoped(requester)).Where("tasks.id = ?", id).Delete(&domain.Task{})
	return rowsOrNotFound(result, "delete")
}

func rowsOrNotFound(result *gorm.DB, op string) error {
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to %s task: %w", op, err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
