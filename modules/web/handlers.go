package web

import (
	"errors"
	"sort"

	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/account"
	"github.com/example/task-tracker/modules/cache"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const loginRedirect = "/tasks/"

const invalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type handlers struct {
	deps Deps
}

// page merges data with the values every template needs.
func page(c *fiber.Ctx, title string, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["User"] = currentUser(c)
	return data
}

func (h *handlers) health(c *fiber.Ctx) error {
	healthy := true
	modules := make(fiber.Map, len(h.deps.Health))
	for _, m := range h.deps.Health {
		status := m.Health(c.UserContext())
		if !status.Healthy {
			healthy = false
		}
		modules[m.Name()] = status
	}

	code := fiber.StatusOK
	state := "healthy"
	if !healthy {
		code = fiber.StatusServiceUnavailable
		state = "degraded"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  state,
		"modules": modules,
	})
}

// home lists every user with their tasks. The directory is read through the
// cache when one is configured.
func (h *handlers) home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	var users []user.User
	if h.deps.Cache != nil {
		hit, err := h.deps.Cache.Get(ctx, cache.DirectoryKey, &users)
		if err != nil {
			log.Warn("home cache read failed", "error", err)
		}
		if hit {
			return c.Render("home", page(c, "Home", fiber.Map{"Users": users}))
		}
	}

	users, err := h.deps.Accounts.Directory(ctx)
	if err != nil {
		return err
	}
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(ctx, cache.DirectoryKey, users); err != nil {
			log.Warn("home cache write failed", "error", err)
		}
	}
	return c.Render("home", page(c, "Home", fiber.Map{"Users": users}))
}

func (h *handlers) signUpPage(c *fiber.Ctx) error {
	return c.Render("auth/signup", page(c, "Sign up", fiber.Map{"Form": account.SignUpForm{}}))
}

func (h *handlers) signUp(c *fiber.Ctx) error {
	var form account.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	if _, err := h.deps.Accounts.SignUp(c.UserContext(), form); err != nil {
		var verr *account.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		form.Password1, form.Password2 = "", ""
		c.Status(fiber.StatusBadRequest)
		return c.Render("auth/signup", page(c, "Sign up", fiber.Map{"Form": form, "Errors": verr.Fields}))
	}
	return c.Redirect("/login/", fiber.StatusSeeOther)
}

func (h *handlers) loginPage(c *fiber.Ctx) error {
	return c.Render("auth/login", page(c, "Log in", fiber.Map{
		"Form": account.LoginForm{},
		"Next": c.Query("next"),
	}))
}

func (h *handlers) login(c *fiber.Ctx) error {
	var form account.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	next := c.FormValue("next", c.Query("next"))

	session, err := h.deps.Accounts.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, account.ErrInvalidCredentials) {
			return err
		}
		form.Password = ""
		c.Status(fiber.StatusBadRequest)
		return c.Render("auth/login", page(c, "Log in", fiber.Map{
			"Form":  form,
			"Next":  next,
			"Error": invalidLoginMessage,
		}))
	}

	h.setSession(c, session)
	return c.Redirect(safeNext(next, loginRedirect), fiber.StatusSeeOther)
}

func (h *handlers) logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handlers) listUsers(c *fiber.Ctx) error {
	users, err := h.deps.Accounts.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return c.Render("users/list", page(c, "Users", fiber.Map{"Users": users}))
}
