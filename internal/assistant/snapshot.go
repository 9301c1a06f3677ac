package assistant

import (
	"context"
	"strings"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/dustin/go-humanize"
)

// Snapshot is the read-only data an answer is rendered from.
type Snapshot struct {
	Catalog []domain.Product
	Metrics domain.Metrics
	Role    domain.Role
	// UserID identifies the caller for purchase history. Zero means anonymous.
	UserID int64
	// Purchases is the caller's history, newest first.
	Purchases []domain.Purchase
}

// SnapshotLoader fetches a fresh snapshot for one exchange.
type SnapshotLoader func(ctx context.Context) (Snapshot, error)

type stockTotals struct {
	products   int
	units      int
	inStock    int
	outOfStock int
}

func totals(catalog []domain.Product) stockTotals {
	var t stockTotals
	t.products = len(catalog)
	for _, p := range catalog {
		t.units += p.Stock
		if p.Stock == 0 {
			t.outOfStock++
		} else {
			t.inStock++
		}
	}
	return t
}

func lowStock(catalog []domain.Product) []domain.Product {
	var low []domain.Product
	for _, p := range catalog {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low
}

// findProduct returns the first catalog entry the hint refers to.
func findProduct(catalog []domain.Product, hint *Hint) (domain.Product, bool) {
	if hint == nil {
		return domain.Product{}, false
	}
	for _, p := range catalog {
		if hint.Matches(p.Name) {
			return p, true
		}
	}
	return domain.Product{}, false
}

func totalSpent(purchases []domain.Purchase) int64 {
	var sum int64
	for _, p := range purchases {
		sum += p.LineTotal()
	}
	return sum
}

func rupees(amount int64) string {
	return "₹" + humanize.Comma(amount)
}

func names(products []domain.Product) string {
	parts := make([]string, 0, len(products))
	for _, p := range products {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, ", ")
}
