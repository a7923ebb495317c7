package task

import (
	"context"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
)

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.Requester, req.Filter)
	return listResponse(tasks, err)
}

func (m *TaskModule) listOwnerTasks(ctx context.Context, req ListOwnerTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListByOwner(ctx, req.Requester, req.OwnerID)
	return listResponse(tasks, err)
}

func (m *TaskModule) getTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.Requester, req.TaskID)
	return taskResponse(t, err)
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.Requester, req.Form)
	return taskResponse(t, err)
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.Requester, req.TaskID, req.Form)
	return taskResponse(t, err)
}

func (m *TaskModule) completeTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Complete(ctx, req.Requester, req.TaskID)
	return taskResponse(t, err)
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.Requester, req.TaskID); err != nil {
		if f, ok := failureFrom(err); ok {
			return DeleteTaskResponse{Failure: f, TaskID: req.TaskID}, nil
		}
		return DeleteTaskResponse{TaskID: req.TaskID}, err
	}
	return DeleteTaskResponse{Deleted: true, TaskID: req.TaskID}, nil
}

func taskResponse(t *domain.Task, err error) (TaskResponse, error) {
	if err != nil {
		if f, ok := failureFrom(err); ok {
			return TaskResponse{Failure: f}, nil
		}
		return TaskResponse{}, err
	}
	return TaskResponse{Task: t}, nil
}

func listResponse(tasks []domain.Task, err error) (ListTasksResponse, error) {
	if err != nil {
		if f, ok := failureFrom(err); ok {
			return ListTasksResponse{Failure: f}, nil
		}
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}
