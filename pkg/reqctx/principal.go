package reqctx

import "context"

// Principal is the verified caller of a request. Token is the raw bearer
// token, forwarded to upstream services on the caller's behalf. LabID and
// Role are empty until a tenant scope has been resolved.
type Principal struct {
	UserID string
	Email  string
	Token  string
	LabID  string
	Role   string
}

// HasScope reports whether a tenant scope has been attached.
func (p *Principal) HasScope() bool {
	return p != nil && p.LabID != ""
}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil, false for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(keyPrincipal).(*Principal)
	return p, ok && p != nil
}

// TokenFromContext returns the caller's bearer token, or "" if unauthenticated.
func TokenFromContext(ctx context.Context) string {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return ""
	}
	return p.Token
}
