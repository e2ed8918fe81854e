package compile

import (
	"testing"

	"github.com/coregx/rxcore/inst"
	"github.com/coregx/rxcore/rxsyntax"
)

func mustParse(t *testing.T, pattern string) *rxsyntax.Expr {
	t.Helper()
	e, err := rxsyntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return e
}

func TestWellFormedBookends(t *testing.T) {
	patterns := []string{"abc", "a(b+)c", "a|bc|def", "[A-C]x", "(?i)abc", `\ba\b`, "a*", "a*?", "(a|b){0,3}"}
	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			insts, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, p))
			if err != nil {
				t.Fatalf("Compile(%q): %v", p, err)
			}
			if insts[0].Op != inst.OpSave || insts[0].Slot != 0 {
				t.Fatalf("insts[0] = %+v, want Save(0)", insts[0])
			}
			n := len(insts)
			if insts[n-2].Op != inst.OpSave || insts[n-2].Slot != 1 {
				t.Fatalf("insts[len-2] = %+v, want Save(1)", insts[n-2])
			}
			if insts[n-1].Op != inst.OpMatch {
				t.Fatalf("insts[len-1] = %+v, want Match", insts[n-1])
			}
			matches := 0
			for _, in := range insts {
				if in.Op == inst.OpMatch {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("found %d Match instructions, want exactly 1", matches)
			}
			for i, in := range insts {
				switch in.Op {
				case inst.OpJump:
					if int(in.To) >= n {
						t.Fatalf("insts[%d] Jump target %d out of bounds", i, in.To)
					}
				case inst.OpSplit:
					if int(in.A) >= n || int(in.B) >= n {
						t.Fatalf("insts[%d] Split targets (%d,%d) out of bounds", i, in.A, in.B)
					}
				}
			}
		})
	}
}

func TestCaptureGroupWiring(t *testing.T) {
	insts, names, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "a(b+)c"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("cap_names = %v, want 2 entries", names)
	}
	var saves []uint32
	for _, in := range insts {
		if in.Op == inst.OpSave {
			saves = append(saves, in.Slot)
		}
	}
	want := []uint32{0, 2, 3, 1}
	if len(saves) != len(want) {
		t.Fatalf("saves = %v, want %v", saves, want)
	}
	for i := range want {
		if saves[i] != want[i] {
			t.Fatalf("saves = %v, want %v", saves, want)
		}
	}
}

func TestAlternationPriorityOrder(t *testing.T) {
	insts, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "a|bc|def"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// insts[1] must be the first Split, trying the 'a' branch first.
	if insts[1].Op != inst.OpSplit {
		t.Fatalf("insts[1] = %+v, want Split", insts[1])
	}
	first := insts[insts[1].A]
	if first.Op != inst.OpChar || first.C != 'a' {
		t.Fatalf("first alternative = %+v, want Char('a')", first)
	}
}

func TestGreedyVsNonGreedySplitOrder(t *testing.T) {
	greedy, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "a*"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	lazy, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "a*?"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	findSplit := func(insts []inst.Inst) inst.Inst {
		for _, in := range insts {
			if in.Op == inst.OpSplit {
				return in
			}
		}
		t.Fatal("no Split found")
		return inst.Inst{}
	}
	gs := findSplit(greedy)
	ls := findSplit(lazy)
	if greedy[gs.A].Op != inst.OpChar {
		t.Fatalf("greedy split should prefer the body branch first, got %+v", greedy[gs.A])
	}
	if lazy[ls.A].Op == inst.OpChar {
		t.Fatalf("non-greedy split should prefer the skip branch first, got %+v", lazy[ls.A])
	}
}

func TestBoundedRepeatAdmitsUpToMax(t *testing.T) {
	insts, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "(?:a|b){0,3}"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	splits := 0
	for _, in := range insts {
		if in.Op == inst.OpSplit {
			splits++
		}
	}
	// regexp/syntax turns the single-character alternation a|b into the
	// class [a-b], so only the 3 ZeroOrOne wrappers contribute a Split.
	if splits != 3 {
		t.Fatalf("splits = %d, want 3 (3 ZeroOrOne wrappers around the class [a-b])", splits)
	}
}

func TestSizeLimitZeroRejectsNonEmptyPattern(t *testing.T) {
	_, _, err := NewCompiler(Config{SizeLimit: 0}).Compile(mustParse(t, "a"))
	if err == nil {
		t.Fatal("expected SizeError")
	}
	sizeErr, ok := err.(*SizeError)
	if !ok {
		t.Fatalf("err = %T, want *SizeError", err)
	}
	if sizeErr.SizeLimit != 0 {
		t.Fatalf("SizeLimit = %d, want 0", sizeErr.SizeLimit)
	}
}

func TestNonCapturingGroupCompilesTransparently(t *testing.T) {
	// regexp/syntax never emits a non-capturing Group node (it inlines
	// them at parse time), so this path is exercised directly against a
	// hand-built Expr the way a non-parser caller might construct one.
	body := rxsyntax.Literal([]rune{'x'}, false)
	group := rxsyntax.Group(body, nil, "")
	insts, _, err := NewCompiler(DefaultConfig()).Compile(group)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// Save(0), Char('x'), Save(1), Match -- no extra Save pair for the group.
	if len(insts) != 4 || insts[1].Op != inst.OpChar {
		t.Fatalf("insts = %+v, want [Save(0) Char('x') Save(1) Match]", insts)
	}
}

func TestEmptyAlternationCompilesToNothing(t *testing.T) {
	insts, _, err := NewCompiler(DefaultConfig()).Compile(rxsyntax.Alternate(nil))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("insts = %+v, want [Save(0) Save(1) Match]", insts)
	}
}

func TestUnboundedRangeRepeatUsesZeroOrMoreTail(t *testing.T) {
	insts, _, err := NewCompiler(DefaultConfig()).Compile(mustParse(t, "a{2,}"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	chars := 0
	splits := 0
	for _, in := range insts {
		switch in.Op {
		case inst.OpChar:
			chars++
		case inst.OpSplit:
			splits++
		}
	}
	if chars != 3 { // 2 mandatory + 1 inside the trailing ZeroOrMore
		t.Fatalf("chars = %d, want 3", chars)
	}
	if splits != 1 {
		t.Fatalf("splits = %d, want 1", splits)
	}
}
