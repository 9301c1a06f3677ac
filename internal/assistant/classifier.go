package assistant

import "strings"

type rule struct {
	kind     IntentKind
	keywords []string
	chatOnly bool
}

// rules are evaluated in order and the first match wins.
var rules = []rule{
	{kind: IntentStock, keywords: []string{"stock", "inventory", "available"}},
	{kind: IntentPrice, keywords: []string{"price", "cost", "how much"}},
	{kind: IntentSales, keywords: []string{"order", "sales", "revenue", "purchase"}},
	{kind: IntentHelp, keywords: []string{"help", "what can you do", "commands", "assistant"}},
	{kind: IntentGreeting, keywords: []string{"hello", "hi", "hey", "greetings"}},
	{kind: IntentThanks, keywords: []string{"thank", "thanks"}, chatOnly: true},
	{kind: IntentFarewell, keywords: []string{"bye", "goodbye", "exit"}, chatOnly: true},
}

// Classifier resolves free text into an Intent by keyword containment.
type Classifier struct {
	mode       Mode
	vocabulary Vocabulary
}

// NewClassifier creates a classifier for the given presentation mode.
func NewClassifier(mode Mode, vocabulary Vocabulary) *Classifier {
	return &Classifier{mode: mode, vocabulary: vocabulary}
}

// Classify returns exactly one intent for any input. Blank input is IntentUnknown.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Intent{Kind: IntentUnknown}
	}

	for _, r := range rules {
		if r.chatOnly && c.mode != ModeChat {
			continue
		}
		if !containsAny(lower, r.keywords) {
			continue
		}

		intent := Intent{Kind: r.kind}
		switch r.kind {
		case IntentStock:
			intent.Scope = ScopeAll
			if strings.Contains(lower, "low") {
				intent.Scope = ScopeLow
			}
		case IntentPrice:
			intent.Hint = c.vocabulary.Find(lower)
		}
		return intent
	}

	return Intent{Kind: IntentUnknown}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
