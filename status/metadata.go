package status

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
)

// Icecast sources regularly tag their metadata as latin-1 or a Windows
// codepage even though the status document itself is served as UTF-8.
// normalizeMetadata detects the charset of non-UTF-8 text and decodes it,
// so now-playing labels render correctly in the UIs.
func normalizeMetadata(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	det := chardet.NewTextDetector()
	guess, err := det.DetectBest([]byte(s))
	if err != nil {
		return strings.ToValidUTF8(s, "")
	}

	cm := charmapFor(guess.Charset)
	if cm == nil {
		return strings.ToValidUTF8(s, "")
	}

	decoded, err := cm.NewDecoder().String(s)
	if err != nil {
		return strings.ToValidUTF8(s, "")
	}

	return decoded
}

func charmapFor(charset string) *charmap.Charmap {
	switch charset {
	case "ISO-8859-1":
		return charmap.ISO8859_1
	case "ISO-8859-2":
		return charmap.ISO8859_2
	case "ISO-8859-5":
		return charmap.ISO8859_5
	case "ISO-8859-7":
		return charmap.ISO8859_7
	case "ISO-8859-9":
		return charmap.ISO8859_9
	case "windows-1251":
		return charmap.Windows1251
	case "windows-1252":
		return charmap.Windows1252
	case "windows-1253":
		return charmap.Windows1253
	case "KOI8-R":
		return charmap.KOI8R
	default:
		return nil
	}
}
