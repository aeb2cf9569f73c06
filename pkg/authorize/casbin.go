package authorize

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "Is role allowed to act on object inside domain?"
	Enforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) (bool, error)

	// MustEnforce returns ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) error

	// AddPermission adds a p rule: role, domain, object, action, eft
	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)

	// Reload re-reads policies from the policy file, if one is configured.
	Reload() error

	// Healthy is false after a failed Reload until the next successful one.
	Healthy() bool
}

// Authorization is a thin typed wrapper around casbin.SyncedEnforcer.
type Authorization struct {
	enforcer *casbin.SyncedEnforcer
	healthy  atomic.Bool
}

// NewEnforcer builds an enforcer from cfg. Without a policy file the
// enforcer starts empty and policies are added with SeedDefaultPolicies.
func NewEnforcer(cfg Config) (*casbin.SyncedEnforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	if cfg.PolicyPath == "" {
		return casbin.NewSyncedEnforcer(m)
	}
	return casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
}

// NewAuthorization wraps an already-configured enforcer.
func NewAuthorization(e *casbin.SyncedEnforcer) (*Authorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	a := &Authorization{enforcer: e}
	a.healthy.Store(true)
	return a, nil
}

func (a *Authorization) Enforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) (bool, error) {
	_ = ctx // reserved for tracing/logging later

	if subject == "" {
		return false, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	if !IsValidDomain(domain) {
		return false, fmt.Errorf("%w: invalid domain: %q", ErrInvalidArgs, domain)
	}
	if _, ok := KnownResources[object]; !ok {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}

	return a.enforcer.Enforce(string(subject), string(domain), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *Authorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	_ = ctx
	if p.Subject == "" || p.Domain == "" || p.Object == "" || p.Action == "" {
		return false, fmt.Errorf("%w: empty permission fields", ErrInvalidArgs)
	}
	if !IsValidDomain(p.Domain) {
		return false, fmt.Errorf("%w: invalid domain: %q", ErrInvalidArgs, p.Domain)
	}
	if _, ok := KnownResources[p.Object]; !ok && p.Object != WildcardResource {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Object)
	}
	if _, ok := KnownActions[p.Action]; !ok && p.Action != WildcardAction {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	}
	if p.Effect != EffectAllow && p.Effect != EffectDeny {
		return false, fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}

	return a.enforcer.AddPolicy(string(p.Subject), string(p.Domain), string(p.Object), string(p.Action), string(p.Effect))
}

func (a *Authorization) Reload() error {
	if a.enforcer.GetAdapter() == nil {
		return nil
	}
	if err := a.enforcer.LoadPolicy(); err != nil {
		a.healthy.Store(false)
		return fmt.Errorf("reload casbin policy: %w", err)
	}
	a.healthy.Store(true)
	return nil
}

func (a *Authorization) Healthy() bool {
	return a.healthy.Load()
}
