// Package assistant implements the rule-based stock assistant shared by the
// voice and chat features of the dashboard.
package assistant

// IntentKind is the classified purpose of a user's message.
type IntentKind string

const (
	IntentStock    IntentKind = "stock_inquiry"
	IntentPrice    IntentKind = "price_inquiry"
	IntentSales    IntentKind = "sales_inquiry"
	IntentHelp     IntentKind = "help"
	IntentGreeting IntentKind = "greeting"
	IntentThanks   IntentKind = "thanks"
	IntentFarewell IntentKind = "farewell"
	IntentUnknown  IntentKind = "unknown"
)

// StockScope narrows a stock inquiry.
type StockScope string

const (
	ScopeAll StockScope = "all"
	ScopeLow StockScope = "low"
)

// Intent is the result of classifying a message.
// Scope is only set for IntentStock and Hint only for IntentPrice.
type Intent struct {
	Kind  IntentKind
	Scope StockScope
	Hint  *Hint
}

// ProductHint returns the matched vocabulary keyword, or "" when absent.
func (i Intent) ProductHint() string {
	if i.Hint == nil {
		return ""
	}
	return i.Hint.Keyword
}

// Mode is a presentation mode of the assistant.
type Mode string

const (
	ModeVoice Mode = "voice"
	ModeChat  Mode = "chat"
)
