package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies lets every lab member do everything inside their own lab.
// Tenant isolation is enforced by the case store, not by these rules.
var DefaultPolicies = []PermissionPolicy{
	{WildcardRole, WildcardDomain, WildcardResource, WildcardAction, EffectAllow},
}

// SeedDefaultPolicies installs DefaultPolicies when the enforcer holds no
// policy at all, i.e. when no policy file was configured.
func SeedDefaultPolicies(ctx context.Context, a *Authorization, logger *slog.Logger) error {
	policies := a.enforcer.GetPolicy()
	if len(policies) > 0 {
		logger.Info("casbin policies loaded from file", "count", len(policies))
		return nil
	}

	for _, p := range DefaultPolicies {
		if _, err := a.AddPermission(ctx, p); err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(DefaultPolicies))
	return nil
}
