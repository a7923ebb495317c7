package web

import (
	"errors"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

// taskFormData holds what the create and edit pages render.
func taskFormData(form task.Form, errs map[string]string, t *domain.Task) fiber.Map {
	return fiber.Map{
		"Form":       form,
		"Errors":     errs,
		"Task":       t,
		"Priorities": domain.Priorities(),
		"Statuses":   domain.Statuses(),
	}
}

// parseFilter reads ?status=&priority=&q=. Unknown values are dropped and reported.
func parseFilter(c *fiber.Ctx) (domain.Filter, map[string]string) {
	var f domain.Filter
	problems := map[string]string{}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			problems["status"] = err.Error()
		} else {
			f.Status = s
		}
	}
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			problems["priority"] = err.Error()
		} else {
			f.Priority = p
		}
	}
	f.Query = strings.TrimSpace(c.Query("q"))

	if len(problems) == 0 {
		problems = nil
	}
	return f, problems
}

func (h *handlers) listTasks(c *fiber.Ctx) error {
	filter, problems := parseFilter(c)

	tasks, err := h.deps.Tasks.List(c.UserContext(), requester(c), filter)
	if err != nil {
		return err
	}
	return c.Render("tasks/list", page(c, "Tasks", fiber.Map{
		"Tasks":        tasks,
		"Filter":       filter,
		"FilterErrors": problems,
		"Priorities":   domain.Priorities(),
		"Statuses":     domain.Statuses(),
	}))
}

func (h *handlers) createTaskPage(c *fiber.Ctx) error {
	form := task.Form{
		Priority: string(domain.DefaultPriority),
		Status:   string(domain.DefaultStatus),
	}
	return c.Render("tasks/form", page(c, "New task", taskFormData(form, nil, nil)))
}

func (h *handlers) createTask(c *fiber.Ctx) error {
	var form task.Form
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	if _, err := h.deps.Tasks.Create(c.UserContext(), requester(c), form); err != nil {
		var verr *task.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		c.Status(fiber.StatusBadRequest)
		return c.Render("tasks/form", page(c, "New task", taskFormData(form, verr.Fields, nil)))
	}
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

func (h *handlers) editTaskPage(c *fiber.Ctx) error {
	t, err := h.deps.Tasks.Get(c.UserContext(), requester(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Render("tasks/form", page(c, "Edit task", taskFormData(task.FormFrom(t), nil, t)))
}

func (h *handlers) updateTask(c *fiber.Ctx) error {
	var form task.Form
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	id := c.Params("id")
	if _, err := h.deps.Tasks.Update(c.UserContext(), requester(c), id, form); err != nil {
		var verr *task.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		c.Status(fiber.StatusBadRequest)
		return c.Render("tasks/form", page(c, "Edit task", taskFormData(form, verr.Fields, &domain.Task{ID: id})))
	}
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

func (h *handlers) deleteTaskPage(c *fiber.Ctx) error {
	t, err := h.deps.Tasks.Get(c.UserContext(), requester(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Render("tasks/confirm_delete", page(c, "Delete task", fiber.Map{"Task": t}))
}

func (h *handlers) deleteTask(c *fiber.Ctx) error {
	if err := h.deps.Tasks.Delete(c.UserContext(), requester(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

func (h *handlers) completeTask(c *fiber.Ctx) error {
	if _, err := h.deps.Tasks.Complete(c.UserContext(), requester(c), c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}
