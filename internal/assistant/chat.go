package assistant

import (
	"fmt"
	"strings"

	"github.com/ashureev/stockflow/internal/domain"
)

const (
	chatLowStockLimit = 5
	chatListLimit     = 5
)

const (
	chatNoLowStock   = "✅ All products are sufficiently stocked! No low stock items."
	chatNoProducts   = "There are no products available right now. Please check back later!"
	chatNoPurchases  = "You haven't made any purchases yet. Browse our products to get started!"
	chatGreeting     = "Hello! 👋 I'm your StockFlow Assistant. I can help you with stock information, product prices, sales data, and more. How can I assist you today?"
	chatThanks       = "You're welcome! 😊 Is there anything else I can help you with?"
	chatFarewell     = "Goodbye! 👋 Feel free to reach out if you need any more assistance."
	chatUnknown      = "I'm not sure I understand. I can help you with stock information, product prices, sales data, and more. Try asking about our products or say **help** to see what I can do!"
	chatHistoryClear = "Conversation history cleared!"
)

const chatHelp = `**I can help you with:**

• **Stock Information** - Ask about current stock levels, low stock items
• **Product Prices** - Inquire about specific product prices and details
• **Sales Data** - Get sales statistics and revenue information
• **Purchase History** - View your order history (customers)
• **General Assistance** - Ask questions about the system

*Try asking:*
- *"Show me low stock items"*
- *"What's the price of iPhone?"*
- *"How are our sales?"*
- *"My purchase history"*`

// chatRenderer produces markdown-style answers for the chat panel.
type chatRenderer struct{}

func (r chatRenderer) Render(intent Intent, snap Snapshot) string {
	switch intent.Kind {
	case IntentStock:
		if intent.Scope == ScopeLow {
			return r.lowStock(snap.Catalog)
		}
		t := totals(snap.Catalog)
		return fmt.Sprintf("**Inventory Summary:**\n\n• **Total Products:** %d\n• **Total Stock Quantity:** %d\n• **In Stock Products:** %d\n• **Out of Stock Products:** %d",
			t.products, t.units, t.inStock, t.outOfStock)

	case IntentPrice:
		if p, ok := findProduct(snap.Catalog, intent.Hint); ok {
			return r.productDetail(p)
		}
		return r.productList(snap.Catalog)

	case IntentSales:
		return r.sales(snap)

	case IntentHelp:
		return chatHelp
	case IntentGreeting:
		return chatGreeting
	case IntentThanks:
		return chatThanks
	case IntentFarewell:
		return chatFarewell
	default:
		return chatUnknown
	}
}

func (chatRenderer) lowStock(catalog []domain.Product) string {
	low := lowStock(catalog)
	if len(low) == 0 {
		return chatNoLowStock
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Low Stock Alert!**\n\nYou have %d products with low stock:\n\n", len(low))
	for i, p := range low {
		if i == chatLowStockLimit {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s (%d left)", p.Name, p.Stock)
	}
	if len(low) > chatLowStockLimit {
		fmt.Fprintf(&b, "\n\n... and %d more products.", len(low)-chatLowStockLimit)
	}
	return b.String()
}

func (chatRenderer) productDetail(p domain.Product) string {
	return fmt.Sprintf("**%s**\n\n• **Brand:** %s\n• **Category:** %s\n• **Price:** %s\n• **Stock:** %d units\n• **Status:** %s",
		p.Name, p.Brand, p.Category, rupees(p.Price), p.Stock, availabilityLabel(p.Availability()))
}

func (chatRenderer) productList(catalog []domain.Product) string {
	if len(catalog) == 0 {
		return chatNoProducts
	}

	lines := make([]string, 0, chatListLimit)
	for i, p := range catalog {
		if i == chatListLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s - %s", p.Name, rupees(p.Price)))
	}
	return "**Available Products:**\n\n" + strings.Join(lines, "\n") + "\n\n*Ask about a specific product for more details!*"
}

func (chatRenderer) sales(snap Snapshot) string {
	if snap.Role.Privileged() {
		m := snap.Metrics
		return fmt.Sprintf("**Sales Dashboard:**\n\n• **Total Revenue:** %s\n• **Total Orders:** %d\n• **Active Customers:** %d\n• **Total Products:** %d",
			rupees(m.Revenue), m.OrderCount, m.ActiveCustomers, m.ProductCount)
	}
	if snap.UserID == 0 {
		return salesDenied
	}
	if len(snap.Purchases) == 0 {
		return chatNoPurchases
	}

	lines := make([]string, 0, chatListLimit)
	for i, p := range snap.Purchases {
		if i == chatListLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s - %s x %d = %s", p.ProductName, rupees(p.Price), p.Quantity, rupees(p.LineTotal())))
	}
	// The total covers the whole history, not only the lines shown above.
	return fmt.Sprintf("**Your Purchase History:**\n\n%s\n\n**Total Spent:** %s",
		strings.Join(lines, "\n"), rupees(totalSpent(snap.Purchases)))
}

func availabilityLabel(level domain.StockLevel) string {
	switch level {
	case domain.InStock:
		return "✅ In Stock"
	case domain.LowStock:
		return "⚠️ Low Stock"
	default:
		return "❌ Out of Stock"
	}
}
