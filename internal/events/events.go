// Package events publishes inventory events (purchases, stock changes) to a
// message broker so warehouse and reporting services can react to them.
package events

import (
	"context"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/google/uuid"
)

// Event types double as broker routing keys.
const (
	TypePurchaseCompleted = "purchase.completed"
	TypeStockLow          = "stock.low"
	TypeStockUpdated      = "stock.updated"
	TypeProductAdded      = "product.added"
	TypeProductDeleted    = "product.deleted"
)

// Event is one message on the inventory exchange.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// PurchaseData is the payload of purchase.completed.
type PurchaseData struct {
	PurchaseID  int64  `json:"purchase_id"`
	UserID      int64  `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Total       int64  `json:"total"`
}

// StockData is the payload of the stock.* and product.* events.
type StockData struct {
	ProductID   int64             `json:"product_id"`
	ProductName string            `json:"product_name,omitempty"`
	Stock       int               `json:"stock"`
	Level       domain.StockLevel `json:"level"`
}

// ForPurchase returns purchase.completed, followed by stock.low when the
// purchase moved the product into a lower stock level.
func ForPurchase(p domain.Purchase) []Event {
	out := []Event{New(TypePurchaseCompleted, PurchaseData{
		PurchaseID:  p.ID,
		UserID:      p.UserID,
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Total:       p.LineTotal(),
	})}

	if p.RemainingStock == nil {
		return out
	}
	after := domain.Product{Stock: *p.RemainingStock}
	before := domain.Product{Stock: *p.RemainingStock + p.Quantity}
	if after.StockLevel() != before.StockLevel() && after.StockLevel() != domain.InStock {
		out = append(out, New(TypeStockLow, StockData{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Stock:       after.Stock,
			Level:       after.StockLevel(),
		}))
	}
	return out
}

// ForStock returns the event for a product whose stock was set directly.
func ForStock(eventType string, productID int64, name string, stock int) Event {
	return New(eventType, StockData{
		ProductID:   productID,
		ProductName: name,
		Stock:       stock,
		Level:       domain.Product{Stock: stock}.StockLevel(),
	})
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
