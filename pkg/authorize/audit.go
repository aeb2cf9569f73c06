package authorize

import (
	"context"
	"log/slog"
	"time"
)

type auditLog struct {
	next   IAuthorization
	logger *slog.Logger
}

// NewAuditedAuthorization logs every decision and policy change made through
// next. Denials are logged at warn level so they survive an info threshold.
func NewAuditedAuthorization(next IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &auditLog{next: next, logger: logger.With("component", "authz")}
}

func (a *auditLog) Enforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) (bool, error) {
	began := time.Now()
	allowed, err := a.next.Enforce(ctx, subject, domain, object, action)

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("role", string(subject)),
		slog.String("lab", string(domain)),
		slog.String("resource", string(object)),
		slog.String("action", string(action)),
		slog.Bool("allowed", allowed),
		slog.Duration("took", time.Since(began)),
	}
	switch {
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", err.Error()))
	case !allowed:
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "authz_decision", attrs...)

	return allowed, err
}

func (a *auditLog) MustEnforce(ctx context.Context, subject Role, domain Domain, object Resource, action Action) error {
	allowed, err := a.Enforce(ctx, subject, domain, object, action)
	switch {
	case err != nil:
		return err
	case !allowed:
		return ErrForbidden
	}
	return nil
}

func (a *auditLog) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	added, err := a.next.AddPermission(ctx, p)

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.Any("policy", p),
		slog.Bool("added", added),
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	a.logger.LogAttrs(ctx, level, "authz_permission_change", attrs...)

	return added, err
}

func (a *auditLog) Reload() error {
	if err := a.next.Reload(); err != nil {
		a.logger.Error("authz_policy_reload failed", "error", err)
		return err
	}
	a.logger.Info("authz_policy_reload")
	return nil
}

func (a *auditLog) Healthy() bool { return a.next.Healthy() }
