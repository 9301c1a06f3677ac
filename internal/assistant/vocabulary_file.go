package assistant

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// vocabularyFile is the on-disk form of the voice and chat vocabularies:
//
//	voice:
//	  - keyword: iphone
//	  - keyword: tv
//	    matches: [bravia, tv]
//	chat:
//	  - keyword: galaxy
type vocabularyFile struct {
	Voice []hintEntry `yaml:"voice"`
	Chat  []hintEntry `yaml:"chat"`
}

type hintEntry struct {
	Keyword string `yaml:"keyword"`
	// Matches lists product-name substrings the keyword refers to.
	// Empty means the keyword itself.
	Matches []string `yaml:"matches"`
}

// ParseVocabularies decodes a YAML vocabulary document. A section that is
// absent yields nil so callers keep their defaults.
func ParseVocabularies(data []byte) (voice, chat Vocabulary, err error) {
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if voice, err = f.build("voice", f.Voice); err != nil {
		return nil, nil, err
	}
	if chat, err = f.build("chat", f.Chat); err != nil {
		return nil, nil, err
	}
	return voice, chat, nil
}

// LoadVocabularyFile reads and parses a vocabulary file.
func LoadVocabularyFile(path string) (voice, chat Vocabulary, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabularies(data)
}

func (vocabularyFile) build(section string, entries []hintEntry) (Vocabulary, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	v := make(Vocabulary, 0, len(entries))
	for i, e := range entries {
		keyword := strings.ToLower(strings.TrimSpace(e.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("vocabulary %s[%d]: keyword is required", section, i)
		}
		h := Hint{Keyword: keyword}
		if matches := lowerAll(e.Matches); len(matches) > 0 {
			h.Match = func(name string) bool {
				return containsAny(strings.ToLower(name), matches)
			}
		}
		v = append(v, h)
	}
	return v, nil
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
