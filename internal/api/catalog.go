package api

import (
	"net/http"
	"strings"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/events"
)

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		StoreError(w, err, "list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	JSON(w, http.StatusOK, products)
}

// AddProduct inserts a product into the catalog.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.NewProduct
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid product")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Category = strings.TrimSpace(req.Category)

	p, err := h.repo.AddProduct(r.Context(), req)
	if err != nil {
		StoreError(w, err, "add product")
		return
	}
	h.publish(r, events.ForStock(events.TypeProductAdded, p.ID, p.Name, p.Stock))
	JSON(w, http.StatusCreated, p)
}

// UpdateStock sets a product's stock quantity.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req struct {
		Stock *int `json:"stock"`
	}
	if err := DecodeJSON(r, &req); err != nil || req.Stock == nil {
		Error(w, http.StatusBadRequest, "stock is required")
		return
	}

	if err := h.repo.UpdateStock(r.Context(), id, *req.Stock); err != nil {
		StoreError(w, err, "update stock")
		return
	}
	h.publish(r, events.ForStock(events.TypeStockUpdated, id, "", *req.Stock))
	JSON(w, http.StatusOK, map[string]interface{}{"id": id, "stock": *req.Stock})
}

// DeleteProduct removes a product from the catalog.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		StoreError(w, err, "delete product")
		return
	}
	h.publish(r, events.New(events.TypeProductDeleted, events.StockData{ProductID: id, Level: domain.OutOfStock}))
	w.WriteHeader(http.StatusNoContent)
}

// Metrics returns the headline dashboard numbers.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.repo.DashboardMetrics(r.Context())
	if err != nil {
		StoreError(w, err, "dashboard metrics")
		return
	}
	JSON(w, http.StatusOK, m)
}

// MonthlySales returns revenue per month.
func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.repo.MonthlySales(r.Context(), queryInt(r, "months", 12, 60))
	if err != nil {
		StoreError(w, err, "monthly sales")
		return
	}
	if sales == nil {
		sales = []domain.MonthlySales{}
	}
	JSON(w, http.StatusOK, sales)
}

// Categories returns product counts per category.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CategoryCounts(r.Context())
	if err != nil {
		StoreError(w, err, "category counts")
		return
	}
	if counts == nil {
		counts = []domain.CategoryCount{}
	}
	JSON(w, http.StatusOK, counts)
}

// TopProducts returns the most expensive products.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.TopProducts(r.Context(), queryInt(r, "limit", 5, 50))
	if err != nil {
		StoreError(w, err, "top products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	JSON(w, http.StatusOK, products)
}
