package web

import (
	"errors"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/account"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// userDetail loads the profile and its tasks concurrently. The profile read
// enforces access; the task read is scoped on its own.
func (h *handlers) userDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	req := requester(c)

	var (
		profile *user.User
		tasks   []domain.Task
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		u, err := h.deps.Accounts.GetUser(ctx, req, id)
		profile = u
		return err
	})
	g.Go(func() error {
		list, err := h.deps.Tasks.ListByOwner(ctx, req, id)
		tasks = list
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.Render("users/detail", page(c, profile.Username, fiber.Map{
		"Profile": profile,
		"Tasks":   tasks,
	}))
}

func (h *handlers) editUserPage(c *fiber.Ctx) error {
	u, err := h.deps.Accounts.GetUser(c.UserContext(), requester(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Render("users/form", page(c, "Edit profile", fiber.Map{
		"Profile": u,
		"Form":    account.ProfileForm{Username: u.Username, Email: u.Email},
	}))
}

func (h *handlers) updateUser(c *fiber.Ctx) error {
	var form account.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	id := c.Params("id")
	u, err := h.deps.Accounts.UpdateProfile(c.UserContext(), requester(c), id, form)
	if err != nil {
		var verr *account.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		c.Status(fiber.StatusBadRequest)
		return c.Render("users/form", page(c, "Edit profile", fiber.Map{
			"Profile": &user.User{ID: id},
			"Form":    form,
			"Errors":  verr.Fields,
		}))
	}
	return c.Redirect("/users/"+u.ID+"/", fiber.StatusSeeOther)
}

func (h *handlers) deleteUserPage(c *fiber.Ctx) error {
	u, err := h.deps.Accounts.GetUser(c.UserContext(), requester(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Render("users/confirm_delete", page(c, "Delete profile", fiber.Map{"Profile": u}))
}

func (h *handlers) deleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	req := requester(c)
	if err := h.deps.Accounts.DeleteUser(c.UserContext(), req, id); err != nil {
		return err
	}
	if req.UserID == id {
		h.clearSession(c)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
