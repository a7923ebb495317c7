package web

import (
	"github.com/gofiber/fiber/v2"
)

func registerRoutes(app *fiber.App, h *handlers) {
	app.Get("/health", h.health)

	app.Get("/", h.home)

	throttle := h.deps.Throttle
	if throttle == nil {
		throttle = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/signup/", h.signUpPage)
	app.Post("/signup/", throttle, h.signUp)
	app.Get("/login/", h.loginPage)
	app.Post("/login/", throttle, h.login)
	app.Post("/logout/", h.logout)

	tasks := app.Group("/tasks", requireLogin)
	tasks.Get("/", h.listTasks)
	tasks.Get("/create/", h.createTaskPage)
	tasks.Post("/create/", h.createTask)
	tasks.Get("/:id/edit/", h.editTaskPage)
	tasks.Post("/:id/edit/", h.updateTask)
	tasks.Get("/:id/delete/", h.deleteTaskPage)
	tasks.Post("/:id/delete/", h.deleteTask)
	tasks.Post("/:id/complete/", h.completeTask)
	tasks.Get("/:id/complete/", methodNotAllowed(fiber.MethodPost))

	users := app.Group("/users", requireLogin)
	users.Get("/", h.listUsers)
	users.Get("/:id/", h.userDetail)
	users.Get("/:id/edit/", h.editUserPage)
	users.Post("/:id/edit/", h.updateUser)
	users.Get("/:id/delete/", h.deleteUserPage)
	users.Post("/:id/delete/", h.deleteUser)
}

func methodNotAllowed(allow ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, m := range allow {
			c.Append(fiber.HeaderAllow, m)
		}
		return fiber.ErrMethodNotAllowed
	}
}
