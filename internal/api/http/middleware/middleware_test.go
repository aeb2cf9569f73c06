package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/pkg/authorize"
	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/logs"
	"github.com/Alijeyrad/caseservice/pkg/reqctx"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

// tokenDirectory answers VerifyToken from a fixed token table.
type tokenDirectory map[string]*ums.Identity

func (d tokenDirectory) VerifyToken(_ context.Context, token string) (*ums.Identity, error) {
	id, found := d[token]
	if !found {
		return nil, httpclient.ErrUnauthorized
	}
	return id, nil
}

func (d tokenDirectory) GetLabInfo(context.Context, string, string) (ums.Lab, error) {
	return nil, httpclient.ErrNotFound
}

func newAuthService() auth.Service {
	return auth.New(tokenDirectory{
		"member": {ID: "u1", Email: "tech@lab.test", Labs: []ums.Membership{
			{LabID: "7", Role: "technician", MembershipStatus: ums.MembershipActive},
			{LabID: "9", Role: "manager", MembershipStatus: "pending"},
		}},
		"orphan": {ID: "u2"},
	}, logs.Discard())
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthRequired(newAuthService()), func(c fiber.Ctx) error {
		p, found := reqctx.PrincipalFromContext(c.Context())
		if !found {
			return fiber.ErrInternalServerError
		}
		return c.SendString(p.UserID + " " + p.Token)
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", 401, "Authorization header is required"},
		{"wrong scheme", "Token member", 401, "Invalid authorization header format"},
		{"empty token", "Bearer   ", 401, "Invalid authorization header format"},
		{"unknown token", "Bearer nope", 401, "Invalid or expired token"},
		{"valid", "Bearer member", 200, "u1 member"},
		{"scheme is case insensitive", "bearer member", 200, "u1 member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			status, body := do(t, app, req)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body)
		})
	}
}

func TestLabScope(t *testing.T) {
	svc := newAuthService()
	app := fiber.New()
	app.Get("/", AuthRequired(svc), LabScope(svc), func(c fiber.Ctx) error {
		lab, _ := LabIDFromFiber(c)
		p, _ := reqctx.PrincipalFromContext(c.Context())
		return c.SendString(lab + " " + p.Role)
	})

	status, body := do(t, app, bearer("member"))
	assert.Equal(t, 200, status)
	assert.Equal(t, "7 technician", body)

	req := bearer("member")
	req.Header.Set(HeaderLabID, "9")
	status, body = do(t, app, req)
	assert.Equal(t, 200, status)
	assert.Equal(t, "9 manager", body)

	req = bearer("member")
	req.Header.Set(HeaderLabID, "12")
	status, body = do(t, app, req)
	assert.Equal(t, 403, status)
	assert.Equal(t, "Not a member of the requested lab", body)

	status, body = do(t, app, bearer("orphan"))
	assert.Equal(t, 403, status)
	assert.Equal(t, "User lab information not available", body)
}

func TestLabScopeWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", LabScope(newAuthService()), func(c fiber.Ctx) error { return c.SendString("ok") })

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 401, status)
}

func newAuthorization(t *testing.T, seed bool) authorize.IAuthorization {
	t.Helper()
	e, err := authorize.NewEnforcer(authorize.Config{})
	require.NoError(t, err)
	a, err := authorize.NewAuthorization(e)
	require.NoError(t, err)
	if seed {
		require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), a, logs.Discard()))
	}
	return a
}

func TestRequirePermission(t *testing.T) {
	svc := newAuthService()
	handler := func(c fiber.Ctx) error { return c.SendString("ok") }

	allowAll := fiber.New()
	allowAll.Get("/", AuthRequired(svc), LabScope(svc),
		RequirePermission(newAuthorization(t, true), authorize.ResourceCase, authorize.ActionRead), handler)
	status, _ := do(t, allowAll, bearer("member"))
	assert.Equal(t, 200, status)

	denyAll := fiber.New()
	denyAll.Get("/", AuthRequired(svc), LabScope(svc),
		RequirePermission(newAuthorization(t, false), authorize.ResourceCase, authorize.ActionRead), handler)
	status, _ = do(t, denyAll, bearer("member"))
	assert.Equal(t, 403, status)

	// no LabScope in front: there is no subject to check
	unscoped := fiber.New()
	unscoped.Get("/", AuthRequired(svc),
		RequirePermission(newAuthorization(t, true), authorize.ResourceCase, authorize.ActionRead), handler)
	status, body := do(t, unscoped, bearer("member"))
	assert.Equal(t, 403, status)
	assert.Equal(t, "User lab information not available", body)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		rid, _ := RequestIDFromFiber(c)
		if reqctx.RequestIDFromContext(c.Context()) != rid {
			return fiber.ErrInternalServerError
		}
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(HeaderRequestID))

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 200, status)
	assert.Len(t, body, 36)
}

func TestLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	for name, client := range map[string]*redis.Client{"memory": nil, "redis": rdb} {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Use(NewLimiter(config.RateLimitConfig{Max: 2, ExpirationSeconds: 60}, client))
			app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

			for i := 0; i < 2; i++ {
				status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, 200, status)
			}
			status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, 429, status)
		})
	}
}
