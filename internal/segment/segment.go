// Package segment splits long text into size-bounded chunks, preferring to
// cut at paragraph, sentence and word boundaries.
package segment

import (
	"strings"
	"unicode"
)

// DefaultCeiling is the maximum chunk length in characters. It matches the
// per rich-text limit of the Notion API.
const DefaultCeiling = 2000

var sentenceEnds = []string{". ", "! ", "? "}

// Splitter cuts text into chunks of at most Ceiling characters.
// Lengths are counted in Unicode code points.
type Splitter struct {
	Ceiling int
}

// New returns a Splitter with the given ceiling; non-positive means DefaultCeiling.
func New(ceiling int) Splitter {
	return Splitter{Ceiling: ceiling}
}

func (s Splitter) ceiling() int {
	if s.Ceiling <= 0 {
		return DefaultCeiling
	}
	return s.Ceiling
}

// Split returns text as an ordered sequence of chunks. Text no longer than
// the ceiling is returned unchanged as a single chunk. Whitespace at each
// cut point is dropped from the start of the following chunk.
func (s Splitter) Split(text string) []string {
	c := s.ceiling()
	rest := []rune(text)
	var chunks []string

	for len(rest) > 0 {
		if len(rest) <= c {
			chunks = append(chunks, string(rest))
			break
		}
		cut := cutPoint(rest, c)
		chunks = append(chunks, string(rest[:cut]))
		rest = trimLeftSpace(rest[cut:])
	}
	return chunks
}

// cutPoint picks where to end the next chunk of r, which is longer than c.
func cutPoint(r []rune, c int) int {
	window := string(r[:c])
	half := c / 2

	// Paragraph break in the second half of the window.
	if nl := lastIndexRune(r[:c], '\n'); nl >= half && nl > 0 {
		return nl
	}

	// Right-most sentence terminator in the second half; keep the punctuation.
	best := -1
	for _, end := range sentenceEnds {
		if i := strings.LastIndex(window, end); i >= 0 {
			if ri := runeOffset(window, i); ri > best {
				best = ri
			}
		}
	}
	if best >= half {
		return best + 1
	}

	// Word boundary near the end.
	if sp := lastIndexRune(r[:c], ' '); sp > 0 && sp*5 >= c*4 {
		return sp
	}
	return c
}

func lastIndexRune(r []rune, target rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == target {
			return i
		}
	}
	return -1
}

// runeOffset converts a byte offset in s to a rune offset.
func runeOffset(s string, byteOff int) int {
	return len([]rune(s[:byteOff]))
}

func trimLeftSpace(r []rune) []rune {
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return r[i:]
}
