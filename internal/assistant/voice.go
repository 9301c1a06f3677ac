package assistant

import (
	"fmt"
)

const voiceLowStockLimit = 3

const (
	voiceHelp          = "I can help you check stock levels, product prices, sales information, and more. Try asking me about stock, prices, orders, or sales data!"
	voiceGreeting      = "Hello! I'm your StockFlow assistant. How can I help you today?"
	voiceUnknown       = "I'm not sure I understand. Try asking me about stock levels, product prices, or sales information. Say 'help' for more options."
	voiceAskForProduct = "Please specify which product price you want to know. For example: 'What is the price of iPhone?'"
	voiceNoLowStock    = "No products are low on stock. All items are sufficiently stocked."
	salesDenied        = "Sales information is available for administrators and employees only."
)

// voiceRenderer produces short answers suitable for speech output.
type voiceRenderer struct{}

func (voiceRenderer) Render(intent Intent, snap Snapshot) string {
	switch intent.Kind {
	case IntentStock:
		if intent.Scope == ScopeLow {
			low := lowStock(snap.Catalog)
			if len(low) == 0 {
				return voiceNoLowStock
			}
			shown := low
			if len(shown) > voiceLowStockLimit {
				shown = shown[:voiceLowStockLimit]
			}
			text := fmt.Sprintf("You have %d products with low stock. Including: %s", len(low), names(shown))
			if rest := len(low) - len(shown); rest > 0 {
				text += fmt.Sprintf(", and %d more", rest)
			}
			return text + "."
		}
		t := totals(snap.Catalog)
		return fmt.Sprintf("You have %d products with total %d items in stock. %d products are out of stock.",
			t.products, t.units, t.outOfStock)

	case IntentPrice:
		p, ok := findProduct(snap.Catalog, intent.Hint)
		if !ok {
			return voiceAskForProduct
		}
		return fmt.Sprintf("%s costs %s. There are %d units in stock.", p.Name, rupees(p.Price), p.Stock)

	case IntentSales:
		if !snap.Role.Privileged() {
			return salesDenied
		}
		m := snap.Metrics
		return fmt.Sprintf("Total revenue is %s from %d orders. You have %d active customers.",
			rupees(m.Revenue), m.OrderCount, m.ActiveCustomers)

	case IntentHelp:
		return voiceHelp
	case IntentGreeting:
		return voiceGreeting
	default:
		return voiceUnknown
	}
}
