package rxsyntax

import "regexp/syntax"

// SyntaxError wraps a parser-originated failure. It is an opaque pass-through:
// the core does not interpret it beyond reporting it to the caller.
type SyntaxError struct {
	Pattern string
	err     error
}

func (e *SyntaxError) Error() string { return e.err.Error() }
func (e *SyntaxError) Unwrap() error { return e.err }

// Parse parses pattern and adapts the result into the Expr shape the
// compiler consumes. Regex syntax itself is out of scope here: all of the
// actual grammar work is delegated to regexp/syntax, the standard library's
// own regex parser.
func Parse(pattern string) (*Expr, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &SyntaxError{Pattern: pattern, err: err}
	}
	return fromSyntax(re), nil
}

// FromSyntax adapts an already-parsed regexp/syntax tree into Expr. It
// exists for callers that parse the pattern themselves (e.g. to inspect
// or transform the syntax.Regexp before compiling) and so only need the
// adaptation step Parse otherwise does internally.
func FromSyntax(re *syntax.Regexp) *Expr {
	return fromSyntax(re)
}

func fromSyntax(re *syntax.Regexp) *Expr {
	ci := re.Flags&syntax.FoldCase != 0
	switch re.Op {
	case syntax.OpNoMatch, syntax.OpEmptyMatch:
		return Empty()
	case syntax.OpLiteral:
		chars := make([]rune, len(re.Rune))
		copy(chars, re.Rune)
		return Literal(chars, ci)
	case syntax.OpAnyCharNotNL:
		return AnyCharNoNL()
	case syntax.OpAnyChar:
		return AnyChar()
	case syntax.OpCharClass:
		// regexp/syntax expands (?i) inside a class into explicit
		// case-folded ranges at parse time (e.g. [a-c] under (?i)
		// becomes two range pairs, a-c and A-C), so the ranges
		// re.Rune carries are already case-complete: folding them
		// again at match time would be wrong, not just redundant,
		// since Fold(x) can land outside an already-expanded range.
		return Class(classRangesFrom(re.Rune), false)
	case syntax.OpBeginLine:
		return &Expr{Kind: KindStartLine}
	case syntax.OpEndLine:
		return &Expr{Kind: KindEndLine}
	case syntax.OpBeginText:
		return &Expr{Kind: KindStartText}
	case syntax.OpEndText:
		return &Expr{Kind: KindEndText}
	case syntax.OpWordBoundary:
		return &Expr{Kind: KindWordBoundary}
	case syntax.OpNoWordBoundary:
		return &Expr{Kind: KindNotWordBoundary}
	case syntax.OpCapture:
		idx := re.Cap
		var body *Expr
		if len(re.Sub) > 0 {
			body = fromSyntax(re.Sub[0])
		} else {
			body = Empty()
		}
		return Group(body, &idx, re.Name)
	case syntax.OpConcat:
		return Concat(fromSyntaxList(re.Sub))
	case syntax.OpAlternate:
		return Alternate(fromSyntaxList(re.Sub))
	case syntax.OpStar:
		return Repeat(fromSyntax(re.Sub[0]), RepeatZeroOrMore, 0, nil, !nonGreedy(re))
	case syntax.OpPlus:
		return Repeat(fromSyntax(re.Sub[0]), RepeatOneOrMore, 0, nil, !nonGreedy(re))
	case syntax.OpQuest:
		return Repeat(fromSyntax(re.Sub[0]), RepeatZeroOrOne, 0, nil, !nonGreedy(re))
	case syntax.OpRepeat:
		var max *int
		if re.Max >= 0 {
			m := re.Max
			max = &m
		}
		return Repeat(fromSyntax(re.Sub[0]), RepeatRange, re.Min, max, !nonGreedy(re))
	default:
		// Any op not listed above is lowered to Empty, which matches the
		// empty string, rather than panicking on unknown user input.
		return Empty()
	}
}

func nonGreedy(re *syntax.Regexp) bool {
	return re.Flags&syntax.NonGreedy != 0
}

func fromSyntaxList(subs []*syntax.Regexp) []*Expr {
	out := make([]*Expr, len(subs))
	for i, s := range subs {
		out[i] = fromSyntax(s)
	}
	return out
}

func classRangesFrom(runes []rune) []ClassRange {
	out := make([]ClassRange, 0, len(runes)/2)
	for i := 0; i+1 < len(runes); i += 2 {
		out = append(out, ClassRange{Lo: runes[i], Hi: runes[i+1]})
	}
	return out
}
