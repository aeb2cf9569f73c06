package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/api/http/handler"
	"github.com/Alijeyrad/caseservice/internal/api/http/router"
	"github.com/Alijeyrad/caseservice/internal/repo"
	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/internal/service/cases"
	"github.com/Alijeyrad/caseservice/internal/service/catalog"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
	"github.com/Alijeyrad/caseservice/pkg/authorize"
	"github.com/Alijeyrad/caseservice/pkg/events"
	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/linkshub"
	"github.com/Alijeyrad/caseservice/pkg/logs"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

type fakeUMS map[string]*ums.Identity

func (f fakeUMS) VerifyToken(_ context.Context, token string) (*ums.Identity, error) {
	if id, found := f[token]; found {
		return id, nil
	}
	return nil, httpclient.ErrUnauthorized
}

func (f fakeUMS) GetLabInfo(_ context.Context, labID, _ string) (ums.Lab, error) {
	if labID == "9" {
		return nil, httpclient.ErrUnavailable
	}
	return ums.Lab{"id": labID, "name": "Lab " + labID}, nil
}

// fakeDirectory knows doc-1 (lab 7), doc-2 (lab 9) and prod-1. doc-down
// simulates an outage.
type fakeDirectory struct{}

func (fakeDirectory) GetDoctor(_ context.Context, id, _ string) (linkshub.Doctor, error) {
	if id == "doc-1" || id == "doc-2" {
		return linkshub.Doctor{"id": id}, nil
	}
	if id == "doc-down" {
		return nil, httpclient.ErrUnavailable
	}
	return nil, httpclient.ErrNotFound
}

func (fakeDirectory) GetProduct(_ context.Context, id, _ string) (linkshub.Product, error) {
	if id == "prod-1" {
		return linkshub.Product{"id": id}, nil
	}
	return nil, httpclient.ErrNotFound
}

func (fakeDirectory) GetRelation(_ context.Context, doctorID, labID, _ string) (*linkshub.Relation, error) {
	active := (doctorID == "doc-1" && labID == "7") || (doctorID == "doc-2" && labID == "9")
	return &linkshub.Relation{IsActive: active}, nil
}

func (fakeDirectory) GetLabProducts(context.Context, string, string) ([]linkshub.Product, error) {
	return []linkshub.Product{{"id": "prod-1"}}, nil
}

func member(lab string) *ums.Identity {
	return &ums.Identity{ID: ums.ID("user-" + lab), Labs: []ums.Membership{
		{LabID: ums.ID(lab), Role: "technician", MembershipStatus: ums.MembershipActive},
	}}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := logs.Discard()
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: 5001, BasePath: "/api/v1", Environment: "test"},
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}

	e, err := authorize.NewEnforcer(authorize.Config{})
	require.NoError(t, err)
	authz, err := authorize.NewAuthorization(e)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), authz, logger))

	catalogSvc, err := catalog.New()
	require.NoError(t, err)

	store := repo.NewMemoryStore()
	authSvc := auth.New(fakeUMS{
		"lab7":   member("7"),
		"lab9":   member("9"),
		"orphan": {ID: "user-x"},
	}, logger)
	refs := reference.New(fakeDirectory{}, logger)

	app := NewApp(cfg, logger, nil, false)
	router.NewRouter(router.Params{
		Cfg:        cfg,
		Logger:     logger,
		Auth:       authz,
		Store:      store,
		AuthSvc:    authSvc,
		CaseSvc:    cases.New(store, refs, events.Nop{}, cfg.Pagination, logger),
		RefSvc:     refs,
		CatalogSvc: catalogSvc,
	}).Register(app)
	return app
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Error *handler.ErrorBody `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func createCase(t *testing.T, app *fiber.App, token, doctor string) repo.Case {
	t.Helper()
	status, env := call(t, app, nethttp.MethodPost, "/api/v1/cases/", token,
		`{"doctor_id":"`+doctor+`","product_id":"prod-1","case_name":"Crown 14","status":"completed"}`)
	require.Equal(t, 201, status, "%+v", env.Error)

	var c repo.Case
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"status": "healthy", "service": "case_service", "version": "1.0.0"}, body)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCaseRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/", "", "")
	assert.Equal(t, 401, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, handler.KindUnauthenticated, env.Error.Kind)
	assert.Equal(t, "Authorization header is required", env.Error.Message)
	assert.Equal(t, 401, env.Error.Status)

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/", "expired", "")
	assert.Equal(t, 401, status)
	assert.Equal(t, "Invalid or expired token", env.Error.Message)
}

func TestCaseRoutesRequireLab(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/", "orphan", "")
	assert.Equal(t, 403, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, handler.KindForbidden, env.Error.Kind)
	assert.Equal(t, "User lab information not available", env.Error.Message)
}

func TestCreateCase(t *testing.T) {
	app := newTestApp(t)

	c := createCase(t, app, "lab7", "doc-1")
	assert.Equal(t, repo.StatusPending, c.Status)
	assert.Equal(t, "7", c.LabID)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, "user-7", *c.CreatedBy)

	status, env := call(t, app, nethttp.MethodPost, "/api/v1/cases/", "lab7",
		`{"doctor_id":"doc-2","product_id":"prod-1"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, handler.KindInvalidInput, env.Error.Kind)
	assert.Equal(t, "Doctor is not associated with your lab", env.Error.Message)

	status, env = call(t, app, nethttp.MethodPost, "/api/v1/cases/", "lab7",
		`{"doctor_id":"doc-1","product_id":"prod-9"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Product not found", env.Error.Message)

	status, env = call(t, app, nethttp.MethodPost, "/api/v1/cases/", "lab7", `{"product_id":"prod-1"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "field `doctor_id` is required", env.Error.Message)

	status, env = call(t, app, nethttp.MethodPost, "/api/v1/cases/", "lab7", `{"doctor_id":`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid JSON body", env.Error.Message)
}

func TestCasesAreIsolatedPerLab(t *testing.T) {
	app := newTestApp(t)

	foreign := createCase(t, app, "lab9", "doc-2")
	own := createCase(t, app, "lab7", "doc-1")
	foreignPath := "/api/v1/cases/" + strconv.FormatInt(foreign.ID, 10)

	status, env := call(t, app, nethttp.MethodGet, foreignPath, "lab7", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, handler.KindNotFound, env.Error.Kind)

	status, _ = call(t, app, nethttp.MethodPut, foreignPath, "lab7", `{"case_name":"mine now"}`)
	assert.Equal(t, 404, status)

	status, env = call(t, app, nethttp.MethodDelete, foreignPath, "lab7", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "Case not found", env.Error.Message)

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/", "lab7", "")
	require.Equal(t, 200, status)
	var list cases.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Cases, 1)
	assert.Equal(t, own.ID, list.Cases[0].ID)

	// still there for its owner
	status, _ = call(t, app, nethttp.MethodGet, foreignPath, "lab9", "")
	assert.Equal(t, 200, status)
}

func TestUpdateAndStatus(t *testing.T) {
	app := newTestApp(t)
	c := createCase(t, app, "lab7", "doc-1")
	path := "/api/v1/cases/" + strconv.FormatInt(c.ID, 10)

	status, env := call(t, app, nethttp.MethodPut, path, "lab7",
		`{"case_name":"Bridge","due_date":"soon","fixed_prosthetic":{"teeth":[14,15]}}`)
	require.Equal(t, 200, status)
	var updated repo.Case
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Bridge", *updated.CaseName)
	assert.Nil(t, updated.DueDate)
	assert.JSONEq(t, `{"teeth":[14,15]}`, string(updated.FixedProsthetic))

	status, env = call(t, app, nethttp.MethodPatch, path+"/status", "lab7", `{"status":"bogus"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid status: bogus", env.Error.Message)

	status, env = call(t, app, nethttp.MethodPatch, path+"/status", "lab7", `{"status":"in_progress"}`)
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, repo.StatusInProgress, updated.Status)

	status, _ = call(t, app, nethttp.MethodDelete, path, "lab7", "")
	assert.Equal(t, 204, status)

	status, _ = call(t, app, nethttp.MethodGet, path, "lab7", "")
	assert.Equal(t, 404, status)

	status, _ = call(t, app, nethttp.MethodGet, "/api/v1/cases/abc", "lab7", "")
	assert.Equal(t, 404, status)
}

func TestListClampsPageSize(t *testing.T) {
	app := newTestApp(t)
	createCase(t, app, "lab7", "doc-1")

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/?per_page=500&page=x", "lab7", "")
	require.Equal(t, 200, status)
	var list cases.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 100, list.Pagination.PerPage)
	assert.Equal(t, 1, list.Pagination.Page)
	assert.Equal(t, 1, list.Pagination.Total)

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/?status=lost", "lab7", "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid status: lost", env.Error.Message)
}

func TestListPastLastPageIsEmpty(t *testing.T) {
	app := newTestApp(t)
	createCase(t, app, "lab7", "doc-1")

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/?page=9223372036854775807&per_page=20", "lab7", "")
	require.Equal(t, 200, status)
	var list cases.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.Cases)
	assert.Equal(t, 1, list.Pagination.Total)
	assert.False(t, list.Pagination.HasNext)
}

func TestCatalogsArePublic(t *testing.T) {
	app := newTestApp(t)

	for _, kind := range []string{"types", "shades", "materials"} {
		status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/"+kind, "", "")
		assert.Equal(t, 200, status, kind)
		assert.NotEmpty(t, env.Data, kind)
	}
}

func TestDirectoryPassthroughs(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/cases/doctor-info/doc-1", "orphan", "")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"id":"doc-1"}`, string(env.Data))

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/doctor-info/doc-404", "lab7", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "Doctor not found", env.Error.Message)

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/lab-info", "lab7", "")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"id":"7","name":"Lab 7"}`, string(env.Data))

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/cases/lab-products", "lab9", "")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `[{"id":"prod-1"}]`, string(env.Data))
}

func TestUpstreamOutageIsInternal(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/cases/doctor-info/doc-down", "/api/v1/cases/lab-info"} {
		status, env := call(t, app, nethttp.MethodGet, path, "lab9", "")
		assert.Equal(t, 500, status, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, handler.KindInternal, env.Error.Kind, path)
		assert.Equal(t, "Internal server error", env.Error.Message, path)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, nethttp.MethodGet, "/api/v2/nothing", "", "")
	assert.Equal(t, 404, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, handler.KindNotFound, env.Error.Kind)
}

func TestContainerLoggerFollowsLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logging.Level = "info"
	assert.Equal(t, fxevent.NopLogger, containerLogger(cfg, logs.Discard()))

	cfg.Logging.Level = "DEBUG"
	assert.IsType(t, &fxevent.SlogLogger{}, containerLogger(cfg, logs.Discard()))
}
