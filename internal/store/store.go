// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/stockflow/internal/domain"
)

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound          = errors.New("not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInvalidLogin      = errors.New("invalid username or password")
	ErrProtectedUser     = errors.New("demo users cannot be deleted")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
)

// CatalogReader exposes the current product catalog.
type CatalogReader interface {
	// ListProducts returns all products ordered by id.
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// MetricsReader exposes aggregate dashboard figures.
type MetricsReader interface {
	DashboardMetrics(ctx context.Context) (domain.Metrics, error)
}

// PurchaseReader exposes per-user purchase history.
type PurchaseReader interface {
	// PurchaseHistory returns the user's purchases, newest first.
	PurchaseHistory(ctx context.Context, userID int64) ([]domain.Purchase, error)
}

// Repository defines the interface for persisting dashboard data.
type Repository interface {
	CatalogReader
	MetricsReader
	PurchaseReader

	// CreateUser registers a new account. Returns ErrUsernameTaken on conflict.
	CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)

	// VerifyUser checks credentials. Returns ErrInvalidLogin on mismatch.
	VerifyUser(ctx context.Context, username, password string) (*domain.User, error)

	// GetUser retrieves a user by id. Returns ErrNotFound when absent.
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// ListUsers returns all non-admin users.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// DeleteUser removes a user. Seeded demo accounts are protected.
	DeleteUser(ctx context.Context, id int64) error

	// AddProduct inserts a product, creating its brand if needed.
	AddProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error)

	// UpdateStock sets the stock quantity of a product.
	UpdateStock(ctx context.Context, productID int64, qty int) error

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, productID int64) error

	// TopProducts returns the most expensive products.
	TopProducts(ctx context.Context, limit int) ([]domain.Product, error)

	// CategoryCounts returns the number of products per category.
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)

	// MonthlySales returns revenue per month, oldest first.
	MonthlySales(ctx context.Context, limit int) ([]domain.MonthlySales, error)

	// PurchaseProduct records a purchase and decrements stock in one transaction.
	PurchaseProduct(ctx context.Context, userID, productID int64, qty int) (*domain.Purchase, error)

	// AllPurchases returns every purchase, newest first.
	AllPurchases(ctx context.Context) ([]domain.Purchase, error)

	ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, userID, productID int64) error
	RemoveFavorite(ctx context.Context, userID, productID int64) error
	IsFavorite(ctx context.Context, userID, productID int64) (bool, error)

	SaveFeedback(ctx context.Context, userID int64, rating int, text string) error

	SendMessage(ctx context.Context, sender, body string) error
	// ListMessages returns messages, newest first.
	ListMessages(ctx context.Context) ([]domain.Message, error)
	ClearMessages(ctx context.Context) error

	// Seed inserts demo users and a demo catalog into an empty database.
	Seed(ctx context.Context) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
