// Package rxsyntax defines the parsed-regex tree the compiler consumes and
// adapts it from Go's own regexp/syntax parser. Regex syntax parsing itself
// is an external concern (see spec Non-goals); this package's job is solely
// to translate regexp/syntax's AST into the Expr shape the compiler was
// written against.
package rxsyntax

// Kind discriminates the variants of Expr.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindLiteral
	KindAnyChar
	KindAnyCharNoNL
	KindClass
	KindStartLine
	KindEndLine
	KindStartText
	KindEndText
	KindWordBoundary
	KindNotWordBoundary
	KindGroup
	KindConcat
	KindAlternate
	KindRepeat
)

// RepeatKind discriminates the four repetition shapes.
type RepeatKind uint8

const (
	RepeatZeroOrOne RepeatKind = iota
	RepeatZeroOrMore
	RepeatOneOrMore
	RepeatRange
)

// ClassRange is an inclusive code-point range inside a Class node.
type ClassRange struct {
	Lo, Hi rune
}

// Expr is a node in the parsed regex tree. Like inst.Inst, it is a tagged
// variant: only the fields relevant to Kind are populated.
type Expr struct {
	Kind Kind

	// KindLiteral
	Chars           []rune
	CaseInsensitive bool

	// KindClass (CaseInsensitive shared with KindLiteral above)
	Ranges []ClassRange

	// KindGroup
	Body  *Expr
	Index *int // nil => non-capturing
	Name  string

	// KindConcat, KindAlternate
	Subs []*Expr

	// KindRepeat
	RepBody    *Expr
	RepKind    RepeatKind
	Min        int
	Max        *int // nil => unbounded
	Greedy     bool
}

// Empty returns the Empty node.
func Empty() *Expr { return &Expr{Kind: KindEmpty} }

// Literal returns a Literal node.
func Literal(chars []rune, ci bool) *Expr {
	return &Expr{Kind: KindLiteral, Chars: chars, CaseInsensitive: ci}
}

// AnyChar returns the AnyChar node.
func AnyChar() *Expr { return &Expr{Kind: KindAnyChar} }

// AnyCharNoNL returns the AnyCharNoNL node.
func AnyCharNoNL() *Expr { return &Expr{Kind: KindAnyCharNoNL} }

// Class returns a Class node. For a single-rune range with ci=true the
// compiler folds the rune at compile time, same as Literal. For any other
// class the compiler copies the ranges unchanged and ci makes the Ranges
// instruction fold each input rune before the range test, so such ranges
// must already hold the folded form of every rune they should match. Parse
// never produces ci=true for a Class, since regexp/syntax expands (?i)
// inside a class into explicit case-folded ranges at parse time.
func Class(ranges []ClassRange, ci bool) *Expr {
	return &Expr{Kind: KindClass, Ranges: ranges, CaseInsensitive: ci}
}

// Group returns a Group node. index is nil for a non-capturing group.
func Group(body *Expr, index *int, name string) *Expr {
	return &Expr{Kind: KindGroup, Body: body, Index: index, Name: name}
}

// Concat returns a Concat node.
func Concat(subs []*Expr) *Expr { return &Expr{Kind: KindConcat, Subs: subs} }

// Alternate returns an Alternate node.
func Alternate(subs []*Expr) *Expr { return &Expr{Kind: KindAlternate, Subs: subs} }

// Repeat returns a Repeat node.
func Repeat(body *Expr, kind RepeatKind, min int, max *int, greedy bool) *Expr {
	return &Expr{Kind: KindRepeat, RepBody: body, RepKind: kind, Min: min, Max: max, Greedy: greedy}
}
