package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
)

func sampleCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "iPhone 15 Pro", Brand: "Apple", Category: "Mobile", Price: 129999, Stock: 12},
		{ID: 2, Name: "Galaxy S24 Ultra", Brand: "Samsung", Category: "Mobile", Price: 89999, Stock: 0},
		{ID: 3, Name: "MacBook Pro", Brand: "Apple", Category: "Laptop", Price: 199999, Stock: 5},
		{ID: 4, Name: "Sony Bravia", Brand: "Sony", Category: "TV", Price: 149999, Stock: 9},
		{ID: 5, Name: "Canon R5", Brand: "Canon", Category: "Camera", Price: 329999, Stock: 10},
		{ID: 6, Name: "ThinkPad X1", Brand: "Lenovo", Category: "Laptop", Price: 134999, Stock: 50},
	}
}

func TestLowStockFilterIsExact(t *testing.T) {
	t.Parallel()

	catalog := []domain.Product{
		{Name: "A", Stock: 0}, {Name: "B", Stock: 5}, {Name: "C", Stock: 9}, {Name: "D", Stock: 10}, {Name: "E", Stock: 50},
	}
	low := lowStock(catalog)
	if len(low) != 3 {
		t.Fatalf("expected 3 low stock products, got %d", len(low))
	}
	for i, want := range []string{"A", "B", "C"} {
		if low[i].Name != want {
			t.Errorf("low[%d] = %s, want %s", i, low[i].Name, want)
		}
	}
}

func TestStockSummary(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Catalog: []domain.Product{{Name: "A", Stock: 0}, {Name: "B", Stock: 5}, {Name: "C", Stock: 20}}}
	intent := Intent{Kind: IntentStock, Scope: ScopeAll}

	voice := voiceRenderer{}.Render(intent, snap)
	want := "You have 3 products with total 25 items in stock. 1 products are out of stock."
	if voice != want {
		t.Fatalf("voice summary = %q, want %q", voice, want)
	}

	chat := chatRenderer{}.Render(intent, snap)
	for _, s := range []string{"**Total Products:** 3", "**Total Stock Quantity:** 25", "**In Stock Products:** 2", "**Out of Stock Products:** 1"} {
		if !strings.Contains(chat, s) {
			t.Errorf("chat summary missing %q:\n%s", s, chat)
		}
	}
}

func TestLowStockTruncation(t *testing.T) {
	t.Parallel()

	var catalog []domain.Product
	for i := 0; i < 7; i++ {
		catalog = append(catalog, domain.Product{Name: "P" + string(rune('1'+i)), Stock: i})
	}
	snap := Snapshot{Catalog: catalog}
	intent := Intent{Kind: IntentStock, Scope: ScopeLow}

	voice := voiceRenderer{}.Render(intent, snap)
	if !strings.Contains(voice, "You have 7 products with low stock. Including: P1, P2, P3, and 4 more") {
		t.Fatalf("unexpected voice answer: %q", voice)
	}

	chat := chatRenderer{}.Render(intent, snap)
	if !strings.Contains(chat, "• P5 (4 left)") || strings.Contains(chat, "• P6") {
		t.Fatalf("chat answer should list exactly five products:\n%s", chat)
	}
	if !strings.Contains(chat, "... and 2 more products.") {
		t.Fatalf("chat answer missing remainder:\n%s", chat)
	}

	none := Snapshot{Catalog: []domain.Product{{Name: "X", Stock: 40}}}
	if got := (voiceRenderer{}).Render(intent, none); got != voiceNoLowStock {
		t.Errorf("voice with no low stock = %q", got)
	}
	if got := (chatRenderer{}).Render(intent, none); got != chatNoLowStock {
		t.Errorf("chat with no low stock = %q", got)
	}
}

func TestPriceLookup(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Catalog: sampleCatalog()}

	voice := NewVoiceSession(DefaultConfig(), nil).Respond("how much is the iphone", snap)
	for _, s := range []string{"iPhone 15 Pro", "129,999", "12 units"} {
		if !strings.Contains(voice.Text, s) {
			t.Errorf("voice answer %q missing %q", voice.Text, s)
		}
	}

	chat := NewChatSession(DefaultConfig()).Respond("What's the price of the Canon?", snap)
	for _, s := range []string{"**Canon R5**", "**Brand:** Canon", "**Category:** Camera", "₹329,999", "10 units", "⚠️ Low Stock"} {
		if !strings.Contains(chat.Text, s) {
			t.Errorf("chat answer missing %q:\n%s", s, chat.Text)
		}
	}
}

func TestPriceWithoutMatch(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Catalog: sampleCatalog()}

	voice := NewVoiceSession(DefaultConfig(), nil).Respond("price of the camera", Snapshot{Catalog: snap.Catalog[:2]})
	if voice.Text != voiceAskForProduct {
		t.Fatalf("expected product prompt, got %q", voice.Text)
	}

	chat := NewChatSession(DefaultConfig()).Respond("what does it cost", snap)
	if !strings.HasPrefix(chat.Text, "**Available Products:**") {
		t.Fatalf("expected product list, got:\n%s", chat.Text)
	}
	if strings.Contains(chat.Text, "ThinkPad X1") {
		t.Fatalf("fallback list should stop after five products:\n%s", chat.Text)
	}

	empty := NewChatSession(DefaultConfig()).Respond("price please", Snapshot{})
	if empty.Text != chatNoProducts {
		t.Fatalf("expected no-products message, got %q", empty.Text)
	}
}

func TestSalesRoleGating(t *testing.T) {
	t.Parallel()

	metrics := domain.Metrics{ProductCount: 15, OrderCount: 42, ActiveCustomers: 12, Revenue: 1250000}
	intent := Intent{Kind: IntentSales}

	admin := voiceRenderer{}.Render(intent, Snapshot{Metrics: metrics, Role: domain.RoleAdmin})
	if !strings.Contains(admin, "₹1,250,000") || !strings.Contains(admin, "42 orders") {
		t.Fatalf("unexpected admin answer: %q", admin)
	}

	customer := voiceRenderer{}.Render(intent, Snapshot{Metrics: metrics, Role: domain.RoleCustomer, UserID: 7})
	if customer != salesDenied {
		t.Fatalf("customer voice answer leaked data: %q", customer)
	}

	employee := chatRenderer{}.Render(intent, Snapshot{Metrics: metrics, Role: domain.RoleEmployee})
	if !strings.Contains(employee, "**Total Products:** 15") {
		t.Fatalf("employee chat answer missing product count:\n%s", employee)
	}

	anon := chatRenderer{}.Render(intent, Snapshot{Metrics: metrics, Role: domain.ParseRole("superuser")})
	if anon != salesDenied {
		t.Fatalf("unknown role without user should be denied, got %q", anon)
	}
}

func TestCustomerPurchaseHistory(t *testing.T) {
	t.Parallel()

	now := time.Now()
	var purchases []domain.Purchase
	for i := 0; i < 6; i++ {
		purchases = append(purchases, domain.Purchase{
			ProductName: "Item" + string(rune('A'+i)),
			Price:       1000,
			Quantity:    i + 1,
			PurchasedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	snap := Snapshot{
		Role:      domain.RoleCustomer,
		UserID:    4,
		Metrics:   domain.Metrics{Revenue: 999999, OrderCount: 77},
		Purchases: purchases,
	}

	got := chatRenderer{}.Render(Intent{Kind: IntentSales}, snap)
	if strings.Contains(got, "999,999") || strings.Contains(got, "77") {
		t.Fatalf("customer answer leaked aggregate metrics:\n%s", got)
	}
	if strings.Contains(got, "ItemF") {
		t.Fatalf("only five purchases should be listed:\n%s", got)
	}
	if !strings.Contains(got, "• ItemB - ₹1,000 x 2 = ₹2,000") {
		t.Fatalf("missing line total:\n%s", got)
	}
	// 1000 * (1+2+3+4+5+6) over the full history.
	if !strings.Contains(got, "**Total Spent:** ₹21,000") {
		t.Fatalf("total should cover the full history:\n%s", got)
	}

	snap.Purchases = nil
	if got := (chatRenderer{}).Render(Intent{Kind: IntentSales}, snap); got != chatNoPurchases {
		t.Fatalf("expected empty history prompt, got %q", got)
	}
}

func TestCannedAnswers(t *testing.T) {
	t.Parallel()

	snap := Snapshot{}
	chat := chatRenderer{}
	voice := voiceRenderer{}

	if chat.Render(Intent{Kind: IntentThanks}, snap) != chatThanks {
		t.Error("unexpected chat thanks answer")
	}
	if chat.Render(Intent{Kind: IntentFarewell}, snap) != chatFarewell {
		t.Error("unexpected chat farewell answer")
	}
	if voice.Render(Intent{Kind: IntentThanks}, snap) != voiceUnknown {
		t.Error("voice has no thanks answer")
	}
	if voice.Render(Intent{Kind: IntentHelp}, snap) != voiceHelp {
		t.Error("unexpected voice help answer")
	}
	if !strings.Contains(chat.Render(Intent{Kind: IntentHelp}, snap), "Purchase History") {
		t.Error("chat help should mention purchase history")
	}
}
