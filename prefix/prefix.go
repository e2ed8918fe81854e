// Package prefix wraps the ahocorasick multi-string matcher as the literal
// prefix matcher the core's prefix analysis installs onto a Program. The
// automaton's internals are an external collaborator; this package's job is
// only to adapt it to the New/Find/PreservesPriority/Len contract.
package prefix

import "github.com/coregx/ahocorasick"

// Matcher is a literal multi-string matcher over a bounded set of literal
// prefixes extracted from a compiled program.
type Matcher struct {
	automaton         *ahocorasick.Automaton
	preservesPriority bool
	length            int
}

// Empty returns the empty-sentinel matcher: it matches nothing.
func Empty() *Matcher {
	return &Matcher{}
}

// New builds a Matcher over literals. If literals is empty, it returns the
// empty sentinel.
//
// preservesPriority reports whether finding the first occurrence of any
// literal in this set unambiguously identifies which alternative of the
// original regex it came from, in the same priority order the regex itself
// would have used. A single literal trivially preserves priority. For a
// larger set, it only holds when no literal is a prefix of another: an
// Aho-Corasick automaton walking the input left to right can report the
// shorter of two nested literals first even when the longer one belongs to
// a higher-priority alternative, so that case is excluded rather than
// risking a wrong engine choice.
func New(literals []string) *Matcher {
	if len(literals) == 0 {
		return Empty()
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern([]byte(lit))
	}
	automaton, err := builder.Build()
	if err != nil {
		return Empty()
	}

	return &Matcher{
		automaton:         automaton,
		preservesPriority: noLiteralIsAPrefixOfAnother(literals),
		length:            len(literals),
	}
}

func noLiteralIsAPrefixOfAnother(literals []string) bool {
	for i, a := range literals {
		for j, b := range literals {
			if i == j {
				continue
			}
			if len(a) <= len(b) && b[:len(a)] == a {
				return false
			}
		}
	}
	return true
}

// Find returns the start/end byte offsets of the first occurrence of any
// literal in haystack, or ok=false if none occurs.
func (m *Matcher) Find(haystack []byte) (start, end int, ok bool) {
	if m.automaton == nil {
		return 0, 0, false
	}
	match := m.automaton.Find(haystack, 0)
	if match == nil {
		return 0, 0, false
	}
	return match.Start, match.End, true
}

// PreservesPriority reports whether this matcher's match selection agrees
// with the originating regex's alternative priority order.
func (m *Matcher) PreservesPriority() bool { return m.preservesPriority }

// Len returns the number of literals installed, or 0 for the empty sentinel.
func (m *Matcher) Len() int { return m.length }

// IsEmpty reports whether this is the empty sentinel (no literals installed).
func (m *Matcher) IsEmpty() bool { return m.automaton == nil }
