package knowledge

import (
	"strings"
	"unicode/utf8"
)

// chunkSeparators are tried in order when looking for a natural break:
// paragraph, line, sentence, word. Splitting at them is best-effort; the
// hard size bound always wins.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into ordered pieces of at most size characters,
// with consecutive pieces from the same text overlapping by overlap
// characters. It prefers breaking at paragraph, sentence and word
// boundaries before falling back to hard character cuts, and never returns
// an empty piece.
//
// Sizes are counted in runes so multi-byte scripts are not cut mid
// character.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			if piece := string(runes[start:]); strings.TrimSpace(piece) != "" {
				pieces = append(pieces, piece)
			}
			break
		}

		// Look for the latest natural break inside the window. A candidate
		// must leave the piece longer than the overlap, otherwise the next
		// piece would not advance past this one.
		cut := end
		window := string(runes[start:end])
		for _, sep := range chunkSeparators {
			i := strings.LastIndex(window, sep)
			if i < 0 {
				continue
			}
			cand := start + utf8.RuneCountInString(window[:i+len(sep)])
			if cand-start > overlap {
				cut = cand
				break
			}
		}

		if piece := string(runes[start:cut]); strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}
		start = cut - overlap
	}

	return pieces
}
