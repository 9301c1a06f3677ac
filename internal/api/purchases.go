package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/events"
	"github.com/ashureev/stockflow/internal/identity"
)

// Purchase buys a quantity of a product for the current user.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := DecodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		Error(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.repo.PurchaseProduct(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		StoreError(w, err, "purchase")
		return
	}

	slog.Info("Purchase recorded", "user_id", userID, "product_id", p.ProductID, "quantity", p.Quantity)
	h.publish(r, events.ForPurchase(*p)...)
	JSON(w, http.StatusCreated, map[string]interface{}{
		"purchase": p,
		"total":    p.LineTotal(),
	})
}

// MyPurchases returns the current user's purchase history.
func (h *Handler) MyPurchases(w http.ResponseWriter, r *http.Request) {
	history, err := h.repo.PurchaseHistory(r.Context(), identity.UserIDFromContext(r.Context()))
	if err != nil {
		StoreError(w, err, "purchase history")
		return
	}
	writePurchases(w, history)
}

// AllPurchases returns every purchase.
func (h *Handler) AllPurchases(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.AllPurchases(r.Context())
	if err != nil {
		StoreError(w, err, "all purchases")
		return
	}
	writePurchases(w, all)
}

func writePurchases(w http.ResponseWriter, purchases []domain.Purchase) {
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	var total int64
	for _, p := range purchases {
		total += p.LineTotal()
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"purchases": purchases,
		"total":     total,
	})
}

// ListFavorites returns the current user's favorite products.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.repo.ListFavorites(r.Context(), identity.UserIDFromContext(r.Context()))
	if err != nil {
		StoreError(w, err, "list favorites")
		return
	}
	if favs == nil {
		favs = []domain.Favorite{}
	}
	JSON(w, http.StatusOK, favs)
}

// AddFavorite marks a product as a favorite.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := DecodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		Error(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if err := h.repo.AddFavorite(r.Context(), identity.UserIDFromContext(r.Context()), req.ProductID); err != nil {
		StoreError(w, err, "add favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavorite unmarks a favorite product.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "productID")
	if !ok {
		Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.repo.RemoveFavorite(r.Context(), identity.UserIDFromContext(r.Context()), id); err != nil {
		StoreError(w, err, "remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
