package status

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeMetadataKeepsUTF8(t *testing.T) {
	tests := []string{
		"Song A",
		"Motörhead - Ace of Spades",
		"Любэ - Конь",
		"N/A",
	}

	for _, in := range tests {
		if got := normalizeMetadata(in); got != in {
			t.Errorf("normalizeMetadata(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestNormalizeMetadataDecodesLatin1(t *testing.T) {
	// "Café del Mar - Música del Sol" encoded as latin-1.
	in := string([]byte{
		'C', 'a', 'f', 0xE9, ' ', 'd', 'e', 'l', ' ', 'M', 'a', 'r', ' ', '-', ' ',
		'M', 0xFA, 's', 'i', 'c', 'a', ' ', 'd', 'e', 'l', ' ', 'S', 'o', 'l',
	})

	got := normalizeMetadata(in)
	if !utf8.ValidString(got) {
		t.Fatalf("normalizeMetadata(%q) = %q, not valid UTF-8", in, got)
	}
	if strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("normalizeMetadata(%q) = %q, contains replacement runes", in, got)
	}
	if !strings.HasPrefix(got, "Caf") || !strings.Contains(got, "del Mar") {
		t.Errorf("normalizeMetadata(%q) = %q, ASCII content mangled", in, got)
	}
}

func TestNormalizeMetadataAlwaysValid(t *testing.T) {
	// Bytes no detector can make sense of must still come back printable.
	in := string([]byte{0xFF, 0xFE, 0xFD})
	if got := normalizeMetadata(in); !utf8.ValidString(got) {
		t.Fatalf("normalizeMetadata(%q) = %q, not valid UTF-8", in, got)
	}
}
