package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/access"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Adapter wraps ServiceContainer for type-safe cross-module communication.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// List lists visible tasks via the list-tasks service.
func (a *Adapter) List(ctx context.Context, requester access.Requester, filter domain.Filter) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", &ListTasksRequest{Requester: requester, Filter: filter}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ListByOwner lists one owner's visible tasks via the list-owner-tasks service.
func (a *Adapter) ListByOwner(ctx context.Context, requester access.Requester, ownerID string) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list-owner-tasks", &ListOwnerTasksRequest{Requester: requester, OwnerID: ownerID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// Get retrieves a task via the get-task service.
func (a *Adapter) Get(ctx context.Context, requester access.Requester, id string) (*domain.Task, error) {
	return a.single(ctx, "get-task", &TaskRequest{Requester: requester, TaskID: id})
}

// Create creates a task via the create-task service.
func (a *Adapter) Create(ctx context.Context, requester access.Requester, form Form) (*domain.Task, error) {
	return a.single(ctx, "create-task", &CreateTaskRequest{Requester: requester, Form: form})
}

// Update edits a task via the update-task service.
func (a *Adapter) Update(ctx context.Context, requester access.Requester, id string, form Form) (*domain.Task, error) {
	return a.single(ctx, "update-task", &UpdateTaskRequest{Requester: requester, TaskID: id, Form: form})
}

// Complete marks a task done via the complete-task service.
func (a *Adapter) Complete(ctx context.Context, requester access.Requester, id string) (*domain.Task, error) {
	return a.single(ctx, "complete-task", &TaskRequest{Requester: requester, TaskID: id})
}

// Delete deletes a task via the delete-task service.
func (a *Adapter) Delete(ctx context.Context, requester access.Requester, id string) error {
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete-task", &TaskRequest{Requester: requester, TaskID: id}, &resp); err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", id)
	}
	return nil
}

func (a *Adapter) single(ctx context.Context, service string, req any) (*domain.Task, error) {
	var resp TaskResponse
	if err := a.call(ctx, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}
