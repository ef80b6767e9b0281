package runner

import (
	"math/rand/v2"
	"strings"
)

// DefaultTerms is the fixed query vocabulary.
var DefaultTerms = FixedTerms{
	"sample", "document", "test", "example", "author",
	"category", "tag", "content", "purpose", "functionality",
}

// TermSource picks the query term for one request. The generator is owned
// by the calling worker, so implementations need no locking of their own.
type TermSource interface {
	Pick(r *rand.Rand) string
}

// FixedTerms chooses uniformly from a fixed list.
type FixedTerms []string

func (t FixedTerms) Pick(r *rand.Rand) string {
	if len(t) == 0 {
		return ""
	}
	return t[r.IntN(len(t))]
}

// StaticTerm always returns the same term.
type StaticTerm string

func (t StaticTerm) Pick(*rand.Rand) string {
	return string(t)
}

// NewTermSource picks from terms, falling back to DefaultTerms when terms
// is empty. Blank entries are dropped.
func NewTermSource(terms []string) TermSource {
	var clean FixedTerms
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}

	switch len(clean) {
	case 0:
		return DefaultTerms
	case 1:
		return StaticTerm(clean[0])
	default:
		return clean
	}
}

// newRand returns the generator of pool worker id.
func newRand(seed uint64, id int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, uint64(id)))
}
