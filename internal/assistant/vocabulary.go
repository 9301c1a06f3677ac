package assistant

import "strings"

// Hint maps a keyword found in a price question onto the catalog entries it refers to.
type Hint struct {
	Keyword string
	// Match reports whether a product name is what the keyword refers to.
	// When nil, a case-insensitive substring match on Keyword is used.
	Match func(productName string) bool
}

// Matches reports whether the product name satisfies the hint.
func (h Hint) Matches(productName string) bool {
	if h.Match != nil {
		return h.Match(productName)
	}
	return strings.Contains(strings.ToLower(productName), strings.ToLower(h.Keyword))
}

// Vocabulary is an ordered list of product hints. Earlier entries win.
type Vocabulary []Hint

// NewVocabulary builds a vocabulary of substring hints from keywords.
func NewVocabulary(keywords ...string) Vocabulary {
	v := make(Vocabulary, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		v = append(v, Hint{Keyword: k})
	}
	return v
}

// With returns a copy of the vocabulary with extra hints appended.
func (v Vocabulary) With(hints ...Hint) Vocabulary {
	out := make(Vocabulary, 0, len(v)+len(hints))
	out = append(out, v...)
	return append(out, hints...)
}

// Find returns the first hint whose keyword occurs in the lowercased text.
func (v Vocabulary) Find(lowerText string) *Hint {
	for i := range v {
		if strings.Contains(lowerText, strings.ToLower(v[i].Keyword)) {
			h := v[i]
			return &h
		}
	}
	return nil
}

// DefaultVoiceVocabulary returns the product keywords understood by voice commands.
func DefaultVoiceVocabulary() Vocabulary {
	return NewVocabulary("iphone", "samsung", "macbook", "tv", "camera", "laptop")
}

// DefaultChatVocabulary returns the product keywords understood by the chat assistant.
func DefaultChatVocabulary() Vocabulary {
	return DefaultVoiceVocabulary().With(NewVocabulary("galaxy", "thinkpad", "rog", "sony", "canon")...)
}
