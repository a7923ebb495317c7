package web

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/account"
	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// loadSession resolves the session cookie to the current user. An invalid or stale
// cookie is cleared and the request continues anonymously.
func (h *handlers) loadSession(c *fiber.Ctx) error {
	token := c.Cookies(h.deps.Auth.CookieName)
	if token == "" {
		return c.Next()
	}

	u, err := h.deps.Accounts.Authenticate(c.UserContext(), token)
	if err != nil {
		if !errors.Is(err, account.ErrUnauthenticated) {
			return err
		}
		h.clearSession(c)
		return c.Next()
	}

	c.Locals(userLocalsKey, u)
	return c.Next()
}

// requireLogin redirects anonymous requests to the login page.
func requireLogin(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return c.Redirect("/login/?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(userLocalsKey).(*user.User)
	return u
}

func requester(c *fiber.Ctx) access.Requester {
	if u := currentUser(c); u != nil {
		return u.Requester()
	}
	return access.Requester{}
}

func (h *handlers) setSession(c *fiber.Ctx, s *account.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.deps.Auth.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.deps.Auth.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *handlers) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.deps.Auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.deps.Auth.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeNext accepts only local absolute paths, so ?next= cannot leave the site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
