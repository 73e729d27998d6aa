package signaling

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIDGenerator(t *testing.T) {
	for _, format := range []string{"", IDFormatUUID, IDFormatWords} {
		if _, err := NewIDGenerator(format); err != nil {
			t.Errorf("NewIDGenerator(%q): %v", format, err)
		}
	}
	if _, err := NewIDGenerator("base64"); err == nil {
		t.Errorf("NewIDGenerator accepted an unknown format")
	}
}

func TestUUIDGenerator(t *testing.T) {
	id, err := UUIDGenerator()
	if err != nil {
		t.Fatalf("UUIDGenerator: %v", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("%q is not a uuid: %v", id, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("version = %d, want 4", parsed.Version())
	}
}

func TestWordsGenerator(t *testing.T) {
	owner := make(map[string]int)
	for li, list := range wordLists {
		for _, w := range list {
			owner[w] = li
		}
	}

	for i := 0; i < 50; i++ {
		id, err := WordsGenerator()
		if err != nil {
			t.Fatalf("WordsGenerator: %v", err)
		}

		words := strings.Split(id, "-")
		if len(words) != 4 {
			t.Fatalf("%q has %d words, want 4", id, len(words))
		}

		seen := make(map[int]bool)
		for _, w := range words {
			li, ok := owner[w]
			if !ok {
				t.Fatalf("%q: unknown word %q", id, w)
			}
			if seen[li] {
				t.Fatalf("%q: two words from list %d", id, li)
			}
			seen[li] = true
		}
	}
}
