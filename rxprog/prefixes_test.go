package rxprog

import "testing"

func TestAlternationPrefixesExtracted(t *testing.T) {
	p := mustCompile(t, "a|bc|def")
	if !p.prefixesComplete {
		t.Fatal("expected prefixesComplete = true")
	}
	if p.prefixes.Len() != 3 {
		t.Fatalf("prefix count = %d, want 3", p.prefixes.Len())
	}
}

func TestEveryMatchBeginsWithAnExtractedPrefix(t *testing.T) {
	p := mustCompile(t, "a|bc|def")
	for _, text := range []string{"a", "bc", "def", "xxdefyy"} {
		start, end, ok := p.prefixes.Find([]byte(text))
		if !ok {
			t.Fatalf("expected a prefix hit in %q", text)
		}
		if start >= end {
			t.Fatalf("invalid hit range [%d,%d) in %q", start, end, text)
		}
	}
}

func TestCaseInsensitivePatternYieldsNoPrefixes(t *testing.T) {
	// Case-insensitive Char/Ranges terminate extraction immediately
	// (open question in the design: never produces incorrect prefixes,
	// only potentially fewer).
	p := mustCompile(t, "(?i)abc")
	if p.prefixes.Len() != 0 {
		t.Fatalf("expected no prefixes extracted from a case-insensitive literal, got %d", p.prefixes.Len())
	}
}

func TestWideAlternationAbortsPrefixExtraction(t *testing.T) {
	// More alternatives than NumPrefixLimit: extraction must abort to the
	// empty sentinel rather than silently truncating to a subset (which
	// would violate "every match begins with an extracted prefix").
	// Each alternative is two characters long so that regexp/syntax keeps
	// them as an alternation instead of merging them into one class.
	pattern := ""
	for i := 0; i < NumPrefixLimit+5; i++ {
		if i > 0 {
			pattern += "|"
		}
		pattern += string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	p := mustCompile(t, pattern)
	if p.prefixesComplete {
		t.Fatal("expected prefixesComplete = false when extraction aborts")
	}
}

func TestLeadsToMatchIsConservative(t *testing.T) {
	// A repeated group ("a(b)*") does not trivially walk Save/Jump into
	// Match, so leadsToMatch must report false even though the pattern
	// can match an empty continuation. insts[2] is the star's Split.
	p := mustCompile(t, "a(b)*")
	if p.leadsToMatch(2) {
		t.Fatal("expected leadsToMatch to be conservative about Split")
	}
}
