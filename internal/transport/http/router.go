package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mafirs/campus-reserve/internal/domain"
)

// Services bundles the application services the router exposes.
type Services struct {
	Booking BookingService
	Catalog CatalogService
}

// BookingService is everything the reservation routes need.
type BookingService interface {
	ApplicationCreator
	ApplicationReader
	ApplicationLister
	ApplicationReviewer
	PendingLister
	VenueAvailabilityQuerier
}

// CatalogService is everything the catalog routes need.
type CatalogService interface {
	VenueCatalog
	MaterialCatalog
}

// NewRouter wires all routes. Catalog mutations sit behind an admin guard;
// everything else under /api only needs an authenticated identity.
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(Identity)

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", HandleCreateApplication(svc.Booking))
			r.Get("/", HandleListApplications(svc.Booking))
			r.Get("/{id}", HandleGetApplication(svc.Booking))
			r.Put("/{id}/approve", HandleApproveApplication(svc.Booking))
			r.Put("/{id}/reject", HandleRejectApplication(svc.Booking))
			r.Put("/{id}/cancel", HandleCancelApplication(svc.Booking))
		})

		r.Get("/approvals/pending", HandlePendingApprovals(svc.Booking))

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", HandleListVenues(svc.Catalog))
			r.Get("/available", HandleAvailableVenues(svc.Booking))
			r.Get("/{id}", HandleGetVenue(svc.Catalog))

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))
				r.Post("/", HandleCreateVenue(svc.Catalog))
				r.Put("/{id}", HandleUpdateVenue(svc.Catalog))
				r.Put("/{id}/status", HandleSetVenueStatus(svc.Catalog))
			})
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", HandleListMaterials(svc.Catalog))
			r.Get("/{id}", HandleGetMaterial(svc.Catalog))

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))
				r.Post("/", HandleCreateMaterial(svc.Catalog))
				r.Put("/{id}", HandleUpdateMaterial(svc.Catalog))
				r.Put("/{id}/status", HandleSetMaterialStatus(svc.Catalog))
				r.Put("/{id}/quantity", HandleAdjustMaterialQuantity(svc.Catalog))
			})
		})
	})

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
