package authorize

import "github.com/Alijeyrad/caseservice/config"

// Config holds configuration for the authorization system
type Config struct {
	// ModelPath is the path to a Casbin model file. Empty means the built-in model.
	ModelPath string

	// PolicyPath is a CSV policy file. Empty means DefaultPolicies.
	PolicyPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool
}

// DefaultConfig returns sensible defaults for authorization configuration
func DefaultConfig() Config {
	return Config{EnableAudit: false}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		ModelPath:   c.CasbinModelPath,
		PolicyPath:  c.CasbinPolicyPath,
		EnableAudit: c.EnableAudit,
	}
}
