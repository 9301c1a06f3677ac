package api

import (
	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/identity"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the dashboard routes on r. The server mounts r under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	staff := identity.RequireRole(domain.RoleAdmin, domain.RoleEmployee)
	admin := identity.RequireRole(domain.RoleAdmin)

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(identity.RequireRole())

		r.Get("/me", h.GetMe)

		r.Get("/products", h.ListProducts)
		r.With(staff).Post("/products", h.AddProduct)
		r.With(staff).Patch("/products/{id}/stock", h.UpdateStock)
		r.With(admin).Delete("/products/{id}", h.DeleteProduct)

		r.With(staff).Get("/dashboard/metrics", h.Metrics)
		r.Get("/dashboard/sales", h.MonthlySales)
		r.Get("/dashboard/categories", h.Categories)
		r.Get("/dashboard/top-products", h.TopProducts)

		r.Post("/purchases", h.Purchase)
		r.Get("/purchases/mine", h.MyPurchases)
		r.With(staff).Get("/purchases", h.AllPurchases)

		r.Get("/favorites", h.ListFavorites)
		r.Post("/favorites", h.AddFavorite)
		r.Delete("/favorites/{productID}", h.RemoveFavorite)

		r.Post("/feedback", h.SubmitFeedback)
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.PostMessage)
		r.With(admin).Delete("/messages", h.ClearMessages)

		r.With(admin).Get("/users", h.ListUsers)
		r.With(admin).Delete("/users/{id}", h.DeleteUser)
	})
}
