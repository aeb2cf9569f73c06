package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/service/catalog"
)

type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) serve(kind catalog.Kind) fiber.Handler {
	return func(c fiber.Ctx) error {
		doc, err := h.svc.Get(kind)
		if err != nil {
			return internalError(c)
		}
		return ok(c, doc)
	}
}

// GET /cases/types
func (h *CatalogHandler) Types() fiber.Handler { return h.serve(catalog.Types) }

// GET /cases/shades
func (h *CatalogHandler) Shades() fiber.Handler { return h.serve(catalog.Shades) }

// GET /cases/materials
func (h *CatalogHandler) Materials() fiber.Handler { return h.serve(catalog.Materials) }
