package rxsyntax

import "testing"

func TestParseLiteral(t *testing.T) {
	e, err := Parse("abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindLiteral {
		t.Fatalf("kind = %v, want Literal (regexp/syntax merges runs of literals)", e.Kind)
	}
	if len(e.Chars) != 3 {
		t.Fatalf("chars = %d, want 3", len(e.Chars))
	}
	if string(e.Chars) != "abc" {
		t.Fatalf("chars = %q, want abc", string(e.Chars))
	}
}

func TestParseCaseInsensitiveLiteral(t *testing.T) {
	e, err := Parse("(?i)abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindLiteral {
		t.Fatalf("kind = %v, want Literal (regexp/syntax merges runs of literals)", e.Kind)
	}
	if !e.CaseInsensitive {
		t.Fatal("expected CaseInsensitive = true")
	}
	// Under (?i) regexp/syntax stores each literal rune as the smallest rune
	// of its case-fold orbit, which for ASCII letters is the upper case.
	if string(e.Chars) != "ABC" {
		t.Fatalf("chars = %q, want ABC", string(e.Chars))
	}
}

func TestParseCapturingGroup(t *testing.T) {
	e, err := Parse("a(b+)c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindConcat || len(e.Subs) != 3 {
		t.Fatalf("unexpected shape: %+v", e)
	}
	grp := e.Subs[1]
	if grp.Kind != KindGroup {
		t.Fatalf("middle node kind = %v, want Group", grp.Kind)
	}
	if grp.Index == nil || *grp.Index != 1 {
		t.Fatalf("group index = %v, want 1", grp.Index)
	}
	if grp.Body.Kind != KindRepeat || grp.Body.RepKind != RepeatOneOrMore {
		t.Fatalf("group body = %+v, want OneOrMore repeat", grp.Body)
	}
}

func TestParseAlternate(t *testing.T) {
	e, err := Parse("a|bc|def")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindAlternate {
		t.Fatalf("kind = %v, want Alternate", e.Kind)
	}
	if len(e.Subs) != 3 {
		t.Fatalf("subs = %d, want 3", len(e.Subs))
	}
}

func TestParseClassRange(t *testing.T) {
	e, err := Parse("[A-C]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindClass {
		t.Fatalf("kind = %v, want Class", e.Kind)
	}
	if len(e.Ranges) != 1 || e.Ranges[0].Lo != 'A' || e.Ranges[0].Hi != 'C' {
		t.Fatalf("ranges = %+v, want [A-C]", e.Ranges)
	}
}

func TestParseNonGreedyRepeat(t *testing.T) {
	e, err := Parse("a*?")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindRepeat || e.RepKind != RepeatZeroOrMore {
		t.Fatalf("kind = %+v, want ZeroOrMore repeat", e)
	}
	if e.Greedy {
		t.Fatal("expected non-greedy")
	}
}

func TestParseBoundedRepeat(t *testing.T) {
	e, err := Parse("(?:a|b){0,3}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindRepeat || e.RepKind != RepeatRange {
		t.Fatalf("kind = %+v, want Range repeat", e)
	}
	if e.Min != 0 || e.Max == nil || *e.Max != 3 {
		t.Fatalf("min/max = %d/%v, want 0/3", e.Min, e.Max)
	}
}

func TestParseWordBoundary(t *testing.T) {
	e, err := Parse(`\ba\b`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Kind != KindConcat || len(e.Subs) != 3 {
		t.Fatalf("unexpected shape: %+v", e)
	}
	if e.Subs[0].Kind != KindWordBoundary || e.Subs[2].Kind != KindWordBoundary {
		t.Fatalf("expected word boundaries at both ends: %+v", e)
	}
}

func TestParseInvalidSyntax(t *testing.T) {
	_, err := Parse("a(b")
	if err == nil {
		t.Fatal("expected error for unbalanced group")
	}
	var synErr *SyntaxError
	if !asSyntaxError(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}

func asSyntaxError(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if !ok {
		return false
	}
	*target = se
	return true
}
