package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// IdentityClient is the subset of the identity service used here.
type IdentityClient interface {
	VerifyToken(ctx context.Context, token string) (*ums.Identity, error)
	GetLabInfo(ctx context.Context, labID, token string) (ums.Lab, error)
}

// Scope is the lab a request acts in. Role is empty when the lab came from
// the identity's direct lab_id rather than a membership.
type Scope struct {
	LabID string
	Role  string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Verify resolves a bearer token to an identity. Every failure is
	// reported as ErrUnauthenticated.
	Verify(ctx context.Context, token string) (*ums.Identity, error)

	// ResolveScope picks the first active membership, then the first
	// membership, then the direct lab_id.
	ResolveScope(id *ums.Identity) (Scope, bool)

	// SelectScope honours an explicitly requested lab when the identity
	// belongs to it, and falls back to ResolveScope when requested is empty.
	SelectScope(id *ums.Identity, requested string) (Scope, error)

	LabInfo(ctx context.Context, labID, token string) (ums.Lab, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	ums    IdentityClient
	logger *slog.Logger
}

func New(client IdentityClient, logger *slog.Logger) Service {
	return &authService{
		ums:    client,
		logger: logger.With("service", "auth"),
	}
}

func (s *authService) Verify(ctx context.Context, token string) (*ums.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}

	id, err := s.ums.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, httpclient.ErrUnauthorized) {
			s.logger.DebugContext(ctx, "token rejected", "error", err)
		} else {
			s.logger.WarnContext(ctx, "token verification failed", "error", err)
		}
		return nil, ErrUnauthenticated
	}
	return id, nil
}

func (s *authService) ResolveScope(id *ums.Identity) (Scope, bool) {
	if id == nil {
		return Scope{}, false
	}

	for _, m := range id.Labs {
		if m.Active() && m.LabID != "" {
			return Scope{LabID: m.LabID.String(), Role: m.Role}, true
		}
	}
	if len(id.Labs) > 0 && id.Labs[0].LabID != "" {
		m := id.Labs[0]
		return Scope{LabID: m.LabID.String(), Role: m.Role}, true
	}
	if id.LabID != "" {
		return Scope{LabID: id.LabID.String()}, true
	}
	return Scope{}, false
}

func (s *authService) SelectScope(id *ums.Identity, requested string) (Scope, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		scope, ok := s.ResolveScope(id)
		if !ok {
			return Scope{}, ErrNoLabScope
		}
		return scope, nil
	}

	if id == nil {
		return Scope{}, ErrLabNotAllowed
	}
	for _, m := range id.Labs {
		if m.LabID.String() == requested {
			return Scope{LabID: requested, Role: m.Role}, nil
		}
	}
	if id.LabID.String() == requested {
		return Scope{LabID: requested}, nil
	}
	return Scope{}, ErrLabNotAllowed
}

func (s *authService) LabInfo(ctx context.Context, labID, token string) (ums.Lab, error) {
	lab, err := s.ums.GetLabInfo(ctx, labID, token)
	switch {
	case err == nil:
		return lab, nil
	case errors.Is(err, httpclient.ErrNotFound):
		return nil, ErrLabNotFound
	case errors.Is(err, httpclient.ErrUnauthorized):
		return nil, ErrUnauthenticated
	default:
		s.logger.WarnContext(ctx, "lab lookup failed", "lab_id", labID, "error", err)
		return nil, ErrUpstream
	}
}
