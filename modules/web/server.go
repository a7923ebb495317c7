package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/account"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
)

// DirectoryCache stores the home page directory. *cache.Cache satisfies it.
type DirectoryCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// HealthChecker is a module whose health is reported on /health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Deps are the collaborators of the HTTP layer. Cache, Throttle and Health are optional.
type Deps struct {
	Accounts account.Port
	Tasks    task.Port
	Cache    DirectoryCache
	Throttle fiber.Handler
	Health   []HealthChecker
	Auth     config.AuthConfig
	AppName  string
}

// NewApp builds the fiber application with every route registered.
func NewApp(deps Deps) (*fiber.App, error) {
	if deps.Accounts == nil || deps.Tasks == nil {
		return nil, errors.New("web: account and task ports are required")
	}
	if deps.Auth.CookieName == "" {
		deps.Auth.CookieName = "tracker_session"
	}

	views, err := newEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               deps.AppName,
		DisableStartupMessage: true,
		Views:                 views,
		ViewsLayout:           "layouts/base",
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))
		}
		return c.Next()
	})
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	h := &handlers{deps: deps}
	app.Use(h.loadSession)
	registerRoutes(app, h)

	return app, nil
}

func newEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(templateFuncs)
	return engine, nil
}

var errorTitles = map[int]string{
	fiber.StatusBadRequest:          "Bad request",
	fiber.StatusForbidden:           "Forbidden",
	fiber.StatusNotFound:            "Not found",
	fiber.StatusMethodNotAllowed:    "Method not allowed",
	fiber.StatusTooManyRequests:     "Too many requests",
	fiber.StatusInternalServerError: "Server error",
}

// errorHandler renders the error page for err. Form validation never reaches it;
// handlers re-render their own forms with status 400.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong on our side."

	var fe *fiber.Error
	switch {
	case errors.Is(err, account.ErrForbidden):
		code = fiber.StatusForbidden
		message = "Insufficient permissions."
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, account.ErrUserNotFound):
		code = fiber.StatusNotFound
		message = "The page you requested does not exist."
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.FromContext(c.UserContext()).Error("request failed",
			"error", err, "method", c.Method(), "path", c.Path())
		message = "Something went wrong on our side."
	}

	title, ok := errorTitles[code]
	if !ok {
		title = http.StatusText(code)
	}

	c.Status(code)
	if rerr := c.Render("errors/error", fiber.Map{
		"Title":   title,
		"Code":    code,
		"Message": message,
		"User":    currentUser(c),
	}); rerr != nil {
		return c.Status(code).SendString(message)
	}
	return nil
}
