package assistant

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleVocabulary = `
voice:
  - keyword: iPhone
  - keyword: tv
    matches: [bravia, " Television "]
chat:
  - keyword: galaxy
`

func TestParseVocabularies(t *testing.T) {
	voice, chat, err := ParseVocabularies([]byte(sampleVocabulary))
	if err != nil {
		t.Fatalf("ParseVocabularies: %v", err)
	}
	if len(voice) != 2 || voice[0].Keyword != "iphone" {
		t.Fatalf("unexpected voice vocabulary: %+v", voice)
	}
	if !voice[1].Matches("Sony Bravia 55") || !voice[1].Matches("LG TELEVISION") || voice[1].Matches("LG TV Stand") {
		t.Error("tv hint should match only its listed names")
	}
	if !voice[0].Matches("iPhone 15 Pro") {
		t.Error("hint without matches should fall back to its keyword")
	}
	if len(chat) != 1 || chat.Find("price of the galaxy s24") == nil {
		t.Fatalf("unexpected chat vocabulary: %+v", chat)
	}
}

func TestParseVocabulariesKeepsMissingSections(t *testing.T) {
	voice, chat, err := ParseVocabularies([]byte("chat:\n  - keyword: rog\n"))
	if err != nil {
		t.Fatalf("ParseVocabularies: %v", err)
	}
	if voice != nil || len(chat) != 1 {
		t.Fatalf("voice = %v, chat = %v", voice, chat)
	}
}

func TestParseVocabulariesErrors(t *testing.T) {
	for _, doc := range []string{"voice: [", "voice:\n  - matches: [x]\n"} {
		if _, _, err := ParseVocabularies([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestLoadVocabularyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	if err := os.WriteFile(path, []byte(sampleVocabulary), 0o600); err != nil {
		t.Fatal(err)
	}
	voice, _, err := LoadVocabularyFile(path)
	if err != nil || len(voice) != 2 {
		t.Fatalf("LoadVocabularyFile = %v, %v", voice, err)
	}
	if _, _, err := LoadVocabularyFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
