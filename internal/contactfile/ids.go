package contactfile

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExternalID derives a correlation id from a name: "first_last", lowercased,
// with spaces replaced by underscores and diacritics folded.
func ExternalID(first, last string) string {
	id := strings.ToLower(strings.TrimSpace(first) + "_" + strings.TrimSpace(last))
	id = strings.ReplaceAll(id, " ", "_")
	return foldDiacritics(id)
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// idAllocator hands out unique ids, suffixing repeats with _2, _3, ...
type idAllocator struct {
	seen map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{seen: make(map[string]int)}
}

func (a *idAllocator) next(base string) string {
	a.seen[base]++
	n := a.seen[base]
	if n == 1 {
		return base
	}
	id := fmt.Sprintf("%s_%d", base, n)
	for a.seen[id] > 0 {
		n++
		a.seen[base] = n
		id = fmt.Sprintf("%s_%d", base, n)
	}
	a.seen[id]++
	return id
}
