package task

import (
	"context"
	"log"
	"time"

	"github.com/example/task-tracker/domain/access"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// Service implements the task lifecycle. Every operation is evaluated against the
// requester's scope.
type Service struct {
	repo     *Repository
	eventBus mono.EventBus
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetEventBus enables event publishing. A nil bus disables it.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// timestamp returns the current time at the microsecond precision every supported database stores.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// List returns the visible tasks matching filter.
func (s *Service) List(ctx context.Context, requester access.Requester, filter domain.Filter) ([]domain.Task, error) {
	if requester.Anonymous() {
		return nil, ErrAnonymous
	}
	return s.repo.List(ctx, requester, filter)
}

// ListByOwner returns the visible tasks of one owner.
func (s *Service) ListByOwner(ctx context.Context, requester access.Requester, ownerID string) ([]domain.Task, error) {
	if requester.Anonymous() {
		return nil, ErrAnonymous
	}
	return s.repo.ListByOwner(ctx, requester, ownerID)
}

// Get returns a visible task.
func (s *Service) Get(ctx context.Context, requester access.Requester, id string) (*domain.Task, error) {
	if requester.Anonymous() {
		return nil, ErrAnonymous
	}
	return s.repo.Get(ctx, requester, id)
}

// Create stores a new task owned by the requester.
func (s *Service) Create(ctx context.Context, requester access.Requester, form Form) (*domain.Task, error) {
	if requester.Anonymous() {
		return nil, ErrAnonymous
	}
	cleaned, err := form.WithDefaults().Clean()
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	t := &domain.Task{
		ID:          uuid.New().String(),
		OwnerID:     requester.UserID,
		Title:       cleaned.Title,
		Description: cleaned.Description,
		Priority:    cleaned.Priority,
		Status:      cleaned.Status,
		DueDate:     cleaned.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			OwnerID:   t.OwnerID,
			Title:     t.Title,
			Priority:  string(t.Priority),
			Status:    string(t.Status),
			CreatedAt: t.CreatedAt,
		}, nil)
	}, "TaskCreated", t.ID)

	return t, nil
}

// Update replaces the editable fields of a visible task.
func (s *Service) Update(ctx context.Context, requester access.Requester, id string, form Form) (*domain.Task, error) {
	t, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	cleaned, err := form.Clean()
	if err != nil {
		return nil, err
	}

	t.Title = cleaned.Title
	t.Description = cleaned.Description
	t.Priority = cleaned.Priority
	t.Status = cleaned.Status
	t.DueDate = cleaned.DueDate
	t.UpdatedAt = s.after(t.UpdatedAt)

	if err := s.repo.Update(ctx, requester, t); err != nil {
		return nil, err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			OwnerID:   t.OwnerID,
			ActorID:   requester.UserID,
			Title:     t.Title,
			Status:    string(t.Status),
			UpdatedAt: t.UpdatedAt,
		}, nil)
	}, "TaskUpdated", t.ID)

	return t, nil
}

// Complete marks a visible task done. Only status and updated_at are written.
func (s *Service) Complete(ctx context.Context, requester access.Requester, id string) (*domain.Task, error) {
	t, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	at := s.after(t.UpdatedAt)
	if err := s.repo.Complete(ctx, requester, id, at); err != nil {
		return nil, err
	}
	t.Status = domain.StatusDone
	t.UpdatedAt = at

	s.publish(func(bus mono.EventBus) error {
		return events.TaskCompletedV1.Publish(bus, events.TaskCompletedEvent{
			TaskID:      t.ID,
			OwnerID:     t.OwnerID,
			ActorID:     requester.UserID,
			CompletedAt: at,
		}, nil)
	}, "TaskCompleted", t.ID)

	return t, nil
}

// Delete permanently removes a visible task.
func (s *Service) Delete(ctx context.Context, requester access.Requester, id string) error {
	t, err := s.Get(ctx, requester, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, requester, id); err != nil {
		return err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    t.ID,
			OwnerID:   t.OwnerID,
			ActorID:   requester.UserID,
			DeletedAt: s.timestamp(),
		}, nil)
	}, "TaskDeleted", t.ID)

	return nil
}

// after returns the current time, or just past prev if the clock has not moved
// beyond it. updated_at therefore always advances.
func (s *Service) after(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func (s *Service) publish(send func(mono.EventBus) error, name, taskID string) {
	if s.eventBus == nil {
		return
	}
	if err := send(s.eventBus); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for task %s: %v", name, taskID, err)
	}
}
