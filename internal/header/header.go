// Package header turns raw header cells into database-safe column labels.
package header

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/nconklindev/tidysheet/internal/types"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackPrefix starts every label generated for a blank header cell.
const FallbackPrefix = "col_"

const tokenLength = 6

// combiningMarks is the Combining Diacritical Marks block, U+0300..U+036F.
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	underscore = regexp.MustCompile(`_+`)
)

// TokenSource produces the random part of fallback labels. Tokens must be
// non-empty and contain only lowercase ASCII letters and digits.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// RandomTokens returns a TokenSource backed by random UUIDs.
func RandomTokens() TokenSource {
	return TokenFunc(func() string {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		return id[:tokenLength]
	})
}

// Normalizer maps header cells to labels.
type Normalizer struct {
	tokens TokenSource
}

// New creates a Normalizer. A nil TokenSource falls back to RandomTokens.
func New(tokens TokenSource) *Normalizer {
	if tokens == nil {
		tokens = RandomTokens()
	}
	return &Normalizer{tokens: tokens}
}

var defaultNormalizer = New(nil)

// Normalize is Normalizer.Normalize with random fallback tokens.
func Normalize(cell types.Cell) string {
	return defaultNormalizer.Normalize(cell)
}

// Normalize converts a header cell to lowercase snake_case with accents
// removed. Blank cells, and cells with no letters or digits at all, get a
// col_<token> label instead.
func (n *Normalizer) Normalize(cell types.Cell) string {
	if cell.IsEmpty() {
		return n.fallback()
	}

	s := stripDiacritics(cell.String())
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "_")
	s = underscore.ReplaceAllString(s, "_")
	s = strings.TrimPrefix(s, "_")
	s = strings.TrimSuffix(s, "_")

	if s == "" {
		return n.fallback()
	}
	return s
}

// NormalizeRow normalizes each cell of a header row in column order.
func (n *Normalizer) NormalizeRow(cells types.Row) []string {
	labels := make([]string, len(cells))
	for i, c := range cells {
		labels[i] = n.Normalize(c)
	}
	return labels
}

func (n *Normalizer) fallback() string {
	return FallbackPrefix + n.tokens.Token()
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Uniquify renames repeated labels by appending _2, _3 and so on, skipping
// any suffix that is already taken. It returns the new labels and the number
// of labels it renamed. The input slice is not modified.
func Uniquify(labels []string) ([]string, int) {
	out := make([]string, len(labels))
	used := make(map[string]bool, len(labels))
	renamed := 0

	for i, label := range labels {
		if !used[label] {
			used[label] = true
			out[i] = label
			continue
		}

		candidate := label
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", label, n)
		}
		used[candidate] = true
		out[i] = candidate
		renamed++
	}

	return out, renamed
}
