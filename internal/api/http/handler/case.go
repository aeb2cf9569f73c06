package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/api/http/middleware"
	"github.com/Alijeyrad/caseservice/internal/service/cases"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
)

type CaseHandler struct {
	svc    cases.Service
	logger *slog.Logger
}

func NewCaseHandler(svc cases.Service, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{svc: svc, logger: logger.With("handler", "cases")}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// callerFromLocals needs both AuthRequired and LabScope to have run.
func callerFromLocals(c fiber.Ctx) (cases.Caller, bool) {
	p, found := middleware.PrincipalFromFiber(c)
	if !found || p.LabID == "" {
		return cases.Caller{}, false
	}
	return cases.Caller{UserID: p.UserID, LabID: p.LabID, Token: p.Token}, true
}

func caseIDParam(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryInt falls back to def when the parameter is missing or not a number.
func queryInt(c fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func (h *CaseHandler) mapCaseError(c fiber.Ctx, err error) error {
	var inputErr *cases.InputError
	switch {
	case errors.Is(err, cases.ErrCaseNotFound):
		return notFound(c, "Case not found")
	case errors.As(err, &inputErr):
		return badRequest(c, inputErr.Message)
	case reference.IsInvalidReference(err):
		return badRequest(c, err.Error())
	default:
		h.logger.ErrorContext(c.Context(), "case request failed", "path", c.Path(), "error", err)
		return internalError(c)
	}
}

// ---------------------------------------------------------------------------
// Case CRUD
// ---------------------------------------------------------------------------

// GET /cases/
func (h *CaseHandler) List(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}

	req := cases.ListCasesRequest{
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "per_page", 0),
		Status:    c.Query("status"),
		DoctorID:  c.Query("doctor_id"),
		ProductID: c.Query("product_id"),
		CaseType:  c.Query("case_type"),
		Priority:  c.Query("priority"),
	}
	if raw := c.Query("rush_order"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			req.RushOrder = &v
		}
	}

	res, err := h.svc.List(c.Context(), caller.LabID, req)
	if err != nil {
		return h.mapCaseError(c, err)
	}
	return ok(c, res)
}

// POST /cases/
func (h *CaseHandler) Create(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}

	var req cases.CreateCaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	cs, err := h.svc.Create(c.Context(), caller, req)
	if err != nil {
		return h.mapCaseError(c, err)
	}
	return created(c, cs)
}

// GET /cases/:id
func (h *CaseHandler) Get(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}
	id, valid := caseIDParam(c)
	if !valid {
		return notFound(c, "Case not found")
	}

	cs, err := h.svc.Get(c.Context(), caller.LabID, id)
	if err != nil {
		return h.mapCaseError(c, err)
	}
	return ok(c, cs)
}

// PUT /cases/:id
func (h *CaseHandler) Update(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}
	id, valid := caseIDParam(c)
	if !valid {
		return notFound(c, "Case not found")
	}

	var req cases.UpdateCaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	cs, err := h.svc.Update(c.Context(), caller.LabID, id, req)
	if err != nil {
		return h.mapCaseError(c, err)
	}
	return ok(c, cs)
}

// DELETE /cases/:id
func (h *CaseHandler) Delete(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}
	id, valid := caseIDParam(c)
	if !valid {
		return notFound(c, "Case not found")
	}

	if err := h.svc.Delete(c.Context(), caller.LabID, id); err != nil {
		return h.mapCaseError(c, err)
	}
	return noContent(c)
}

// PATCH /cases/:id/status
func (h *CaseHandler) SetStatus(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}
	id, valid := caseIDParam(c)
	if !valid {
		return notFound(c, "Case not found")
	}

	var req cases.SetStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	cs, err := h.svc.SetStatus(c.Context(), caller.LabID, id, req)
	if err != nil {
		return h.mapCaseError(c, err)
	}
	return ok(c, cs)
}
