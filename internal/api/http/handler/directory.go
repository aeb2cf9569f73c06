package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/api/http/middleware"
	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
)

// DirectoryHandler passes doctor, lab and product records through from the
// identity and directory services using the caller's token.
type DirectoryHandler struct {
	refs   reference.Service
	auth   auth.Service
	logger *slog.Logger
}

func NewDirectoryHandler(refs reference.Service, authSvc auth.Service, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{refs: refs, auth: authSvc, logger: logger.With("handler", "directory")}
}

// GET /cases/doctor-info/:id
func (h *DirectoryHandler) DoctorInfo(c fiber.Ctx) error {
	p, found := middleware.PrincipalFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	d, err := h.refs.Doctor(c.Context(), c.Params("id"), p.Token)
	switch {
	case err == nil:
		return ok(c, d)
	case errors.Is(err, reference.ErrDoctorNotFound):
		return notFound(c, "Doctor not found")
	default:
		h.logger.WarnContext(c.Context(), "doctor lookup failed", "doctor_id", c.Params("id"), "error", err)
		return internalError(c)
	}
}

// GET /cases/lab-info
func (h *DirectoryHandler) LabInfo(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}

	lab, err := h.auth.LabInfo(c.Context(), caller.LabID, caller.Token)
	switch {
	case err == nil:
		return ok(c, lab)
	case errors.Is(err, auth.ErrLabNotFound):
		return notFound(c, "Lab not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		return unauthorized(c)
	default:
		h.logger.WarnContext(c.Context(), "lab lookup failed", "lab_id", caller.LabID, "error", err)
		return internalError(c)
	}
}

// GET /cases/lab-products
func (h *DirectoryHandler) LabProducts(c fiber.Ctx) error {
	caller, found := callerFromLocals(c)
	if !found {
		return forbidden(c, "User lab information not available")
	}

	products, err := h.refs.LabProducts(c.Context(), caller.LabID, caller.Token)
	if err != nil {
		h.logger.WarnContext(c.Context(), "lab products lookup failed", "lab_id", caller.LabID, "error", err)
		return internalError(c)
	}
	return ok(c, products)
}
