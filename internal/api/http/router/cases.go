package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/caseservice/internal/api/http/handler"
	"github.com/Alijeyrad/caseservice/pkg/authorize"
)

func (r *Router) registerCaseRoutes(
	api fiber.Router,
	ch *handler.CaseHandler,
	cat *handler.CatalogHandler,
	dh *handler.DirectoryHandler,
	authRequired fiber.Handler,
	labScope fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	g := api.Group("/cases")

	// Catalogs (public)
	g.Get("/types", cat.Types())
	g.Get("/shades", cat.Shades())
	g.Get("/materials", cat.Materials())

	// Directory passthroughs
	g.Get("/doctor-info/:id", authRequired, dh.DoctorInfo)
	g.Get("/lab-info", authRequired, labScope, requirePerm(authorize.ResourceLab, authorize.ActionRead), dh.LabInfo)
	g.Get("/lab-products", authRequired, labScope, requirePerm(authorize.ResourceProduct, authorize.ActionList), dh.LabProducts)

	// Case CRUD
	g.Get("/", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionList), ch.List)
	g.Post("/", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionCreate), ch.Create)

	g.Get("/:id", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionRead), ch.Get)
	g.Put("/:id", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionUpdate), ch.Update)
	g.Delete("/:id", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionDelete), ch.Delete)
	g.Patch("/:id/status", authRequired, labScope, requirePerm(authorize.ResourceCase, authorize.ActionUpdate), ch.SetStatus)
}
