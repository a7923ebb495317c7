package task

import (
	"context"

	"github.com/example/task-tracker/domain/access"
	domain "github.com/example/task-tracker/domain/task"
)

// Port is the task API used by the web module. Both the in-process Service and
// the service-container Adapter implement it.
type Port interface {
	List(ctx context.Context, requester access.Requester, filter domain.Filter) ([]domain.Task, error)
	ListByOwner(ctx context.Context, requester access.Requester, ownerID string) ([]domain.Task, error)
	Get(ctx context.Context, requester access.Requester, id string) (*domain.Task, error)
	Create(ctx context.Context, requester access.Requester, form Form) (*domain.Task, error)
	Update(ctx context.Context, requester access.Requester, id string, form Form) (*domain.Task, error)
	Complete(ctx context.Context, requester access.Requester, id string) (*domain.Task, error)
	Delete(ctx context.Context, requester access.Requester, id string) error
}

var (
	_ Port = (*Service)(nil)
	_ Port = (*Adapter)(nil)
)

// ListTasksRequest is the request for the list-tasks service.
type ListTasksRequest struct {
	Requester access.Requester `json:"requester"`
	Filter    domain.Filter    `json:"filter"`
}

// ListOwnerTasksRequest is the request for the list-owner-tasks service.
type ListOwnerTasksRequest struct {
	Requester access.Requester `json:"requester"`
	OwnerID   string           `json:"owner_id"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Failure
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// TaskRequest addresses a single task: get-task, complete-task and delete-task.
type TaskRequest struct {
	Requester access.Requester `json:"requester"`
	TaskID    string           `json:"task_id"`
}

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	Requester access.Requester `json:"requester"`
	Form      Form             `json:"form"`
}

// UpdateTaskRequest is the request for the update-task service.
type UpdateTaskRequest struct {
	Requester access.Requester `json:"requester"`
	TaskID    string           `json:"task_id"`
	Form      Form             `json:"form"`
}

// TaskResponse carries a single task.
type TaskResponse struct {
	Failure
	Task *domain.Task `json:"task,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Failure
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}
