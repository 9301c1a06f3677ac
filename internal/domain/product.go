package domain

// Stock thresholds used by the two status labels below.
const (
	LowStockThreshold     = 10
	AvailabilityThreshold = 10
)

// StockLevel is the derived stock label used by inventory summaries.
type StockLevel string

const (
	OutOfStock StockLevel = "OutOfStock"
	LowStock   StockLevel = "LowStock"
	InStock    StockLevel = "InStock"
)

// Product is a single catalog entry joined with its brand.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
}

// StockLevel returns OutOfStock for 0, LowStock below LowStockThreshold, InStock otherwise.
func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 0:
		return OutOfStock
	case p.Stock < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// IsLowStock reports whether the product counts towards low-stock alerts.
// Out-of-stock products are included.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// Availability is the label shown on product listings and detail answers.
// Unlike StockLevel, a quantity of exactly AvailabilityThreshold is still low.
func (p Product) Availability() StockLevel {
	switch {
	case p.Stock > AvailabilityThreshold:
		return InStock
	case p.Stock > 0:
		return LowStock
	default:
		return OutOfStock
	}
}

// NewProduct carries the fields needed to add a product to the catalog.
type NewProduct struct {
	Brand      string `json:"brand"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Price      int64  `json:"price"`
	Stock      int    `json:"stock"`
	SupplierID int64  `json:"supplier_id,omitempty"`
}

// Metrics holds aggregate dashboard totals.
type Metrics struct {
	ProductCount    int   `json:"total_products"`
	OrderCount      int   `json:"total_orders"`
	ActiveCustomers int   `json:"active_customers"`
	Revenue         int64 `json:"revenue"`
}

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlySales is the revenue booked in a calendar month.
type MonthlySales struct {
	Month string `json:"month"`
	Sales int64  `json:"sales"`
}
