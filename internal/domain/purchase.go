package domain

import "time"

// Purchase is one line in a customer's purchase history.
type Purchase struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	PurchasedAt time.Time `json:"purchase_date"`
	// RemainingStock is only set on a freshly recorded purchase.
	RemainingStock *int `json:"remaining_stock,omitempty"`
}

// LineTotal returns price multiplied by quantity.
func (p Purchase) LineTotal() int64 {
	return p.Price * int64(p.Quantity)
}

// Favorite is a product bookmarked by a user.
type Favorite struct {
	UserID      int64  `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
}

// Feedback is a rated comment left by a user.
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is an entry on the shared team message board.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}
