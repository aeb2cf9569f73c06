package authorize

import (
	"context"
	"errors"

	"github.com/Alijeyrad/caseservice/pkg/reqctx"
)

var ErrNoSubjectInContext = errors.New("no scoped principal found in context")

// SubjectFromContext returns the policy subject and domain of the scoped
// principal attached by the HTTP middleware.
func SubjectFromContext(ctx context.Context) (Role, Domain, error) {
	p, ok := reqctx.PrincipalFromContext(ctx)
	if !ok || !p.HasScope() {
		return "", "", ErrNoSubjectInContext
	}
	return LabRole(p.Role), LabDomain(p.LabID), nil
}

// EnforceContext checks the scoped principal in ctx against the policy.
func EnforceContext(ctx context.Context, auth IAuthorization, object Resource, action Action) error {
	subject, domain, err := SubjectFromContext(ctx)
	if err != nil {
		return err
	}
	return auth.MustEnforce(ctx, subject, domain, object, action)
}
