package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/account"
	"github.com/example/task-tracker/modules/store"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testCookie = "sid"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	accounts *account.Service
	tasks    *task.Service
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]any
	gets  int
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.items[key]
	if !ok {
		return false, nil
	}
	*(dest.(*[]user.User)) = v.([]user.User)
	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return nil
}

type staticHealth struct {
	name   string
	status mono.HealthStatus
}

func (s staticHealth) Name() string { return s.name }

func (s staticHealth) Health(context.Context) mono.HealthStatus { return s.status }

func setupEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()

	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	sessions := account.NewSessionManager(account.SessionConfig{
		SecretKey: "test-secret-key",
		TTL:       time.Hour,
		Issuer:    "task-tracker-test",
	})
	env := &testEnv{
		db:       db,
		accounts: account.NewService(account.NewUserRepository(db), account.NewPasswordHasher(bcrypt.MinCost), sessions),
		tasks:    task.NewService(task.NewRepository(db)),
	}

	deps := Deps{
		Accounts: env.accounts,
		Tasks:    env.tasks,
		Auth:     config.AuthConfig{CookieName: testCookie},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.app, err = NewApp(deps)
	require.NoError(t, err)
	return env
}

// register creates a user and returns it with a valid session token.
func (e *testEnv) register(t *testing.T, username string, superuser bool) (*user.User, string) {
	t.Helper()
	ctx := context.Background()

	u, err := e.accounts.SignUp(ctx, account.SignUpForm{
		Username:  username,
		Email:     username + "@example.com",
		Password1: "s3cure-pass",
		Password2: "s3cure-pass",
	})
	require.NoError(t, err)

	if superuser {
		require.NoError(t, e.db.Model(&user.User{}).Where("id = ?", u.ID).Update("is_superuser", true).Error)
		u.IsSuperuser = true
	}

	session, err := e.accounts.Login(ctx, username, "s3cure-pass")
	require.NoError(t, err)
	return u, session.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(data)
}

func (e *testEnv) createTask(t *testing.T, u *user.User, title string) *domain.Task {
	t.Helper()
	created, err := e.tasks.Create(context.Background(), u.Requester(), task.Form{Title: title})
	require.NoError(t, err)
	return created
}

func (e *testEnv) loadTask(t *testing.T, id string) (*domain.Task, bool) {
	t.Helper()
	var got domain.Task
	err := e.db.Where("id = ?", id).Take(&got).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false
	}
	require.NoError(t, err)
	return &got, true
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	env := setupEnv(t)

	paths := []string{"/tasks/", "/tasks/create/", "/users/", "/users/abc/", "/users/abc/edit/"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			resp, _ := env.do(t, fiber.MethodGet, p, "", nil)
			assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/login/?next="+url.QueryEscape(p), resp.Header.Get(fiber.HeaderLocation))
		})
	}
}

func TestSignUpAndLogin(t *testing.T) {
	env := setupEnv(t)

	resp, _ := env.do(t, fiber.MethodPost, "/signup/", "", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password1": {"s3cure-pass"},
		"password2": {"s3cure-pass"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/", resp.Header.Get(fiber.HeaderLocation))
	assert.Empty(t, resp.Cookies(), "sign-up must not log the user in")

	resp, body := env.do(t, fiber.MethodPost, "/login/", "", url.Values{"username": {"alice"}, "password": {"wrong-pass"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please enter a correct username and password")

	resp, _ = env.do(t, fiber.MethodPost, "/login/", "", url.Values{
		"username": {"alice"},
		"password": {"s3cure-pass"},
		"next":     {"/users/"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/", resp.Header.Get(fiber.HeaderLocation))

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	resp, body = env.do(t, fiber.MethodGet, "/tasks/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "alice")
}

func TestLogin_RejectsOffsiteNext(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "alice", false)

	resp, _ := env.do(t, fiber.MethodPost, "/login/", "", url.Values{
		"username": {"alice"},
		"password": {"s3cure-pass"},
		"next":     {"//evil.example.com/"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, loginRedirect, resp.Header.Get(fiber.HeaderLocation))
}

func TestSignUp_InvalidPersistsNothing(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "taken", false)

	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{
			name:  "mismatched confirmation",
			form:  url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password1": {"s3cure-pass"}, "password2": {"other-pass"}},
			field: "The two password fields didn",
		},
		{
			name:  "duplicate username",
			form:  url.Values{"username": {"taken"}, "email": {"t2@example.com"}, "password1": {"s3cure-pass"}, "password2": {"s3cure-pass"}},
			field: "A user with that username already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, fiber.MethodPost, "/signup/", "", tt.form)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, tt.field)

			var n int64
			require.NoError(t, env.db.Model(&user.User{}).Count(&n).Error)
			assert.Equal(t, int64(1), n)
		})
	}
}

// A creates and completes a task; B cannot see it; a superuser can.
func TestTaskLifecycle_EndToEnd(t *testing.T) {
	env := setupEnv(t)
	a, tokenA := env.register(t, "alice", false)
	_, tokenB := env.register(t, "bob", false)
	_, tokenAdmin := env.register(t, "admin", true)

	resp, _ := env.do(t, fiber.MethodPost, "/tasks/create/", tokenA, url.Values{
		"title":    {"Ship report"},
		"priority": {"medium"},
		"status":   {"open"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/tasks/", resp.Header.Get(fiber.HeaderLocation))

	list, err := env.tasks.List(context.Background(), a.Requester(), domain.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	created := list[0]

	resp, _ = env.do(t, fiber.MethodPost, "/tasks/"+created.ID+"/complete/", tokenA, url.Values{})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	stored, ok := env.loadTask(t, created.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDone, stored.Status)

	_, body := env.do(t, fiber.MethodGet, "/tasks/", tokenA, nil)
	assert.Contains(t, body, "Ship report")

	_, body = env.do(t, fiber.MethodGet, "/tasks/", tokenB, nil)
	assert.NotContains(t, body, "Ship report")

	_, body = env.do(t, fiber.MethodGet, "/tasks/", tokenAdmin, nil)
	assert.Contains(t, body, "Ship report")
}

func TestTaskScope_OtherUsersTasksAreNotFound(t *testing.T) {
	env := setupEnv(t)
	a, _ := env.register(t, "alice", false)
	_, tokenB := env.register(t, "bob", false)
	owned := env.createTask(t, a, "Private")

	tests := []struct {
		method string
		path   string
		form   url.Values
	}{
		{fiber.MethodGet, "/tasks/" + owned.ID + "/edit/", nil},
		{fiber.MethodPost, "/tasks/" + owned.ID + "/edit/", url.Values{"title": {"Hijacked"}}},
		{fiber.MethodGet, "/tasks/" + owned.ID + "/delete/", nil},
		{fiber.MethodPost, "/tasks/" + owned.ID + "/delete/", url.Values{}},
		{fiber.MethodPost, "/tasks/" + owned.ID + "/complete/", url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, _ := env.do(t, tt.method, tt.path, tokenB, tt.form)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		})
	}

	stored, ok := env.loadTask(t, owned.ID)
	require.True(t, ok)
	assert.Equal(t, "Private", stored.Title)
	assert.Equal(t, domain.StatusOpen, stored.Status)
}

func TestTaskCreate_IgnoresSubmittedOwner(t *testing.T) {
	env := setupEnv(t)
	a, tokenA := env.register(t, "alice", false)
	b, _ := env.register(t, "bob", false)

	resp, _ := env.do(t, fiber.MethodPost, "/tasks/create/", tokenA, url.Values{
		"title":    {"Mine"},
		"owner":    {b.ID},
		"owner_id": {b.ID},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var stored domain.Task
	require.NoError(t, env.db.Where("title = ?", "Mine").Take(&stored).Error)
	assert.Equal(t, a.ID, stored.OwnerID)
}

func TestTaskCreate_ValidationRerendersForm(t *testing.T) {
	env := setupEnv(t)
	_, token := env.register(t, "alice", false)

	resp, body := env.do(t, fiber.MethodPost, "/tasks/create/", token, url.Values{
		"title":       {"   "},
		"description": {"keep me"},
		"priority":    {"urgent"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "keep me")

	var n int64
	require.NoError(t, env.db.Model(&domain.Task{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTaskEdit_OmittedStatusKeepsTaskDone(t *testing.T) {
	env := setupEnv(t)
	a, token := env.register(t, "alice", false)
	owned := env.createTask(t, a, "Ship report")

	resp, _ := env.do(t, fiber.MethodPost, "/tasks/"+owned.ID+"/complete/", token, url.Values{})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp, _ = env.do(t, fiber.MethodPost, "/tasks/"+owned.ID+"/edit/", token, url.Values{"title": {"Ship report v2"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	stored, ok := env.loadTask(t, owned.ID)
	require.True(t, ok)
	assert.Equal(t, "Ship report", stored.Title)
	assert.Equal(t, domain.StatusDone, stored.Status)
}

func TestTaskComplete_GetNotAllowed(t *testing.T) {
	env := setupEnv(t)
	a, token := env.register(t, "alice", false)
	owned := env.createTask(t, a, "Chore")

	resp, _ := env.do(t, fiber.MethodGet, "/tasks/"+owned.ID+"/complete/", token, nil)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)

	stored, _ := env.loadTask(t, owned.ID)
	assert.Equal(t, domain.StatusOpen, stored.Status)
}

func TestTaskList_Filter(t *testing.T) {
	env := setupEnv(t)
	a, token := env.register(t, "alice", false)
	env.createTask(t, a, "Buy milk")
	env.createTask(t, a, "Write report")

	_, body := env.do(t, fiber.MethodGet, "/tasks/", token, nil)
	assert.NotContains(t, body, "Clear filters")

	_, body = env.do(t, fiber.MethodGet, "/tasks/?q=MILK", token, nil)
	assert.Contains(t, body, "Buy milk")
	assert.NotContains(t, body, "Write report")
	assert.Contains(t, body, "Clear filters")

	_, body = env.do(t, fiber.MethodGet, "/tasks/?q=nothing-like-this", token, nil)
	assert.Contains(t, body, "No tasks match these filters.")

	resp, body := env.do(t, fiber.MethodGet, "/tasks/?status=bogus", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Buy milk")
	assert.Contains(t, body, "Write report")
}

func TestUserProfileAccess(t *testing.T) {
	env := setupEnv(t)
	a, tokenA := env.register(t, "alice", false)
	b, _ := env.register(t, "bob", false)
	_, tokenAdmin := env.register(t, "admin", true)
	env.createTask(t, b, "Bob's errand")

	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"self detail", tokenA, "/users/" + a.ID + "/", fiber.StatusOK},
		{"other detail", tokenA, "/users/" + b.ID + "/", fiber.StatusForbidden},
		{"other edit", tokenA, "/users/" + b.ID + "/edit/", fiber.StatusForbidden},
		{"other delete page", tokenA, "/users/" + b.ID + "/delete/", fiber.StatusForbidden},
		{"missing id as user", tokenA, "/users/missing/", fiber.StatusForbidden},
		{"admin detail", tokenAdmin, "/users/" + b.ID + "/", fiber.StatusOK},
		{"missing id as admin", tokenAdmin, "/users/missing/", fiber.StatusNotFound},
		{"user list", tokenA, "/users/", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, fiber.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	_, body := env.do(t, fiber.MethodGet, "/users/"+b.ID+"/", tokenAdmin, nil)
	assert.Contains(t, body, "Bob&#39;s errand")
}

func TestUserUpdate(t *testing.T) {
	env := setupEnv(t)
	a, token := env.register(t, "alice", false)
	env.register(t, "bob", false)

	resp, body := env.do(t, fiber.MethodPost, "/users/"+a.ID+"/edit/", token, url.Values{
		"username": {"bob"},
		"email":    {"alice@example.com"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "A user with that username already exists.")

	resp, _ = env.do(t, fiber.MethodPost, "/users/"+a.ID+"/edit/", token, url.Values{
		"username": {"alice2"},
		"email":    {"alice2@example.com"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users/"+a.ID+"/", resp.Header.Get(fiber.HeaderLocation))

	var stored user.User
	require.NoError(t, env.db.Where("id = ?", a.ID).Take(&stored).Error)
	assert.Equal(t, "alice2", stored.Username)
}

func TestUserDelete_CascadesTasks(t *testing.T) {
	env := setupEnv(t)
	a, tokenA := env.register(t, "alice", false)
	_, tokenAdmin := env.register(t, "admin", true)
	owned := env.createTask(t, a, "Gone soon")

	resp, _ := env.do(t, fiber.MethodPost, "/users/"+a.ID+"/delete/", tokenA, url.Values{})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	_, ok := env.loadTask(t, owned.ID)
	assert.False(t, ok)

	resp, _ = env.do(t, fiber.MethodGet, "/tasks/"+owned.ID+"/edit/", tokenAdmin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// the deleted user's session no longer authenticates
	resp, _ = env.do(t, fiber.MethodGet, "/tasks/", tokenA, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}

func TestHome_ListsUsersThroughCache(t *testing.T) {
	fc := &fakeCache{items: map[string]any{}}
	env := setupEnv(t, func(d *Deps) { d.Cache = fc })
	a, _ := env.register(t, "alice", false)
	env.createTask(t, a, "Visible on home")

	resp, body := env.do(t, fiber.MethodGet, "/", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "Visible on home")

	// served from the cache: a task written behind its back stays invisible
	env.createTask(t, a, "Not yet cached")
	_, body = env.do(t, fiber.MethodGet, "/", "", nil)
	assert.NotContains(t, body, "Not yet cached")
	assert.Equal(t, 2, fc.gets)
}

func TestLogout(t *testing.T) {
	env := setupEnv(t)
	_, token := env.register(t, "alice", false)

	resp, _ := env.do(t, fiber.MethodPost, "/logout/", token, url.Values{})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == testCookie && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestHealth(t *testing.T) {
	env := setupEnv(t, func(d *Deps) {
		d.Health = []HealthChecker{
			staticHealth{name: "store", status: mono.HealthStatus{Healthy: true}},
			staticHealth{name: "cache", status: mono.HealthStatus{Healthy: false, Message: "down"}},
		}
	})

	resp, body := env.do(t, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"status":"degraded"`)
	assert.Contains(t, body, `"store"`)
}
