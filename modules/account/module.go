// Package account manages users: sign-up, login sessions and profile operations
// gated by the access policy.
package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// DBProvider hands out the shared database connection once it is open.
type DBProvider interface {
	DB() *gorm.DB
}

// AccountModule exposes account services through the service container.
type AccountModule struct {
	store     DBProvider
	auth      config.AuthConfig
	bootstrap config.BootstrapConfig
	eventBus  mono.EventBus
	service   *Service
}

// Compile-time interface checks.
var _ mono.Module = (*AccountModule)(nil)
var _ mono.ServiceProviderModule = (*AccountModule)(nil)
var _ mono.EventEmitterModule = (*AccountModule)(nil)
var _ mono.DependentModule = (*AccountModule)(nil)

// NewModule creates a new AccountModule. store must be started before this module.
func NewModule(store DBProvider, auth config.AuthConfig, bootstrap config.BootstrapConfig) *AccountModule {
	return &AccountModule{
		store:     store,
		auth:      auth,
		bootstrap: bootstrap,
	}
}

// Name returns the module name.
func (m *AccountModule) Name() string {
	return "account"
}

// Dependencies returns the list of module dependencies.
func (m *AccountModule) Dependencies() []string {
	return []string{"store"}
}

// SetDependencyServiceContainer is a no-op: the connection comes from the
// DBProvider handed to NewModule.
func (m *AccountModule) SetDependencyServiceContainer(_ string, _ mono.ServiceContainer) {}

// SetEventBus is called by the framework before Start.
func (m *AccountModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *AccountModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserRegisteredV1.ToBase(),
		events.UserUpdatedV1.ToBase(),
		events.UserDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AccountModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "signup", json.Unmarshal, json.Marshal, m.handleSignUp,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "authenticate", json.Unmarshal, json.Marshal, m.handleAuthenticate,
	); err != nil {
		return fmt.Errorf("failed to register authenticate service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers,
	); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "directory", json.Unmarshal, json.Marshal, m.handleDirectory,
	); err != nil {
		return fmt.Errorf("failed to register directory service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile,
	); err != nil {
		return fmt.Errorf("failed to register update-profile service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser,
	); err != nil {
		return fmt.Errorf("failed to register delete-user service: %w", err)
	}

	log.Printf("[account] Registered services: signup, login, authenticate, list-users, directory, get-user, update-profile, delete-user")
	return nil
}

// Start builds the service on top of the store's connection and creates the
// bootstrap superuser when configured.
func (m *AccountModule) Start(ctx context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store module not started")
	}

	sessions := NewSessionManager(SessionConfig{
		SecretKey: m.auth.SessionSecret,
		TTL:       m.auth.SessionTTL,
		Issuer:    m.auth.Issuer,
	})
	m.service = NewService(NewUserRepository(db), NewPasswordHasher(m.auth.BcryptCost), sessions)
	if m.eventBus != nil {
		m.service.SetEventBus(m.eventBus)
	} else {
		log.Println("[account] Warning: eventBus not set, events will not be published")
	}

	if m.bootstrap.Enabled() {
		if err := m.service.EnsureSuperuser(ctx, m.bootstrap.AdminUsername, m.bootstrap.AdminEmail, m.bootstrap.AdminPassword); err != nil {
			return fmt.Errorf("failed to bootstrap superuser: %w", err)
		}
	}

	log.Println("[account] Module started")
	return nil
}

// Stop shuts down the module.
func (m *AccountModule) Stop(_ context.Context) error {
	log.Println("[account] Module stopped")
	return nil
}
