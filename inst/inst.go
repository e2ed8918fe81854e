// Package inst defines the virtual-machine instruction set shared by the
// compiler, the program representation, and every matching engine.
//
// An Inst is a tagged variant: exactly one of its payload fields is
// meaningful, selected by Op. This mirrors the fixed-size-record layout a
// bytecode interpreter wants, while staying a plain Go struct so engines can
// switch on Op without a type assertion.
package inst

import "github.com/coregx/rxcore/casefold"

// Op identifies which variant an Inst holds.
type Op uint8

const (
	// OpMatch accepts. Exactly one instance exists in a well-formed
	// program, and it is always last.
	OpMatch Op = iota
	// OpSave records the current input position into capture slot Slot.
	OpSave
	// OpJump transfers control to To unconditionally.
	OpJump
	// OpSplit tries A first, then B. Branch order is priority order.
	OpSplit
	// OpEmptyLook consumes no input; succeeds if Look holds at the
	// current position.
	OpEmptyLook
	// OpChar matches exactly one code point, C (folding if CaseInsensitive).
	OpChar
	// OpRanges matches if the input code point lies in any of Ranges.
	OpRanges
)

func (op Op) String() string {
	switch op {
	case OpMatch:
		return "Match"
	case OpSave:
		return "Save"
	case OpJump:
		return "Jump"
	case OpSplit:
		return "Split"
	case OpEmptyLook:
		return "EmptyLook"
	case OpChar:
		return "Char"
	case OpRanges:
		return "Ranges"
	default:
		return "Unknown"
	}
}

// Look identifies a zero-width look-around predicate.
type Look uint8

const (
	LookStartLine Look = iota
	LookEndLine
	LookStartText
	LookEndText
	LookWordBoundary
	LookNotWordBoundary
)

func (l Look) String() string {
	switch l {
	case LookStartLine:
		return "StartLine"
	case LookEndLine:
		return "EndLine"
	case LookStartText:
		return "StartText"
	case LookEndText:
		return "EndText"
	case LookWordBoundary:
		return "WordBoundary"
	case LookNotWordBoundary:
		return "NotWordBoundary"
	default:
		return "Unknown"
	}
}

// NoRune marks an absent neighbouring character (start/end of input) in the
// pair passed to Look.Matches.
const NoRune rune = -1

// Matches evaluates the predicate against a pair of neighbouring
// characters, either of which may be NoRune (absent).
func (l Look) Matches(c1, c2 rune) bool {
	switch l {
	case LookStartLine:
		return c1 == NoRune || c1 == '\n'
	case LookEndLine:
		return c2 == NoRune || c2 == '\n'
	case LookStartText:
		return c1 == NoRune
	case LookEndText:
		return c2 == NoRune
	case LookWordBoundary:
		return isWordRune(c1) != isWordRune(c2)
	case LookNotWordBoundary:
		return isWordRune(c1) == isWordRune(c2)
	default:
		panic("inst: unknown Look variant")
	}
}

// isWordRune treats an absent character as non-word.
func isWordRune(c rune) bool {
	if c == NoRune {
		return false
	}
	return casefold.IsWordChar(c)
}

// Range is an inclusive code-point range.
type Range struct {
	Lo, Hi rune
}

// Inst is one VM instruction. Only the fields relevant to Op are populated;
// the rest are left at their zero value.
type Inst struct {
	Op Op

	// OpSave
	Slot uint32

	// OpJump
	To uint32

	// OpSplit
	A, B uint32

	// OpEmptyLook
	Look Look

	// OpChar
	C               rune
	CaseInsensitive bool

	// OpRanges (CaseInsensitive shared with OpChar above)
	Ranges []Range
}

// Match returns a Match instruction.
func Match() Inst { return Inst{Op: OpMatch} }

// Save returns a Save(slot) instruction.
func Save(slot uint32) Inst { return Inst{Op: OpSave, Slot: slot} }

// Jump returns a Jump(to) instruction. A zero target is only meaningful
// once patched; compilers emit placeholders with To left at 0.
func Jump(to uint32) Inst { return Inst{Op: OpJump, To: to} }

// SplitInst returns a Split(a,b) instruction.
func SplitInst(a, b uint32) Inst { return Inst{Op: OpSplit, A: a, B: b} }

// EmptyLook returns an EmptyLook(look) instruction.
func EmptyLook(look Look) Inst { return Inst{Op: OpEmptyLook, Look: look} }

// Char returns a Char(c,ci) instruction.
func Char(c rune, ci bool) Inst { return Inst{Op: OpChar, C: c, CaseInsensitive: ci} }

// RangesInst returns a Ranges(r,ci) instruction. Ranges must already be
// sorted and non-overlapping.
func RangesInst(r []Range, ci bool) Inst { return Inst{Op: OpRanges, Ranges: r, CaseInsensitive: ci} }

// matchScanLimit bounds the linear-scan fast path before falling back to
// binary search, per the ASCII-heavy common case.
const matchScanLimit = 4

// MatchesChar reports whether x is matched by a Char instruction.
func (i Inst) MatchesChar(x rune) bool {
	if i.C == x {
		return true
	}
	return i.CaseInsensitive && i.C == casefold.Fold(x)
}

// MatchesRanges reports whether x is matched by a Ranges instruction and,
// if so, the index of the matching range (useful to engines that want to
// know which alternative fired).
func (i Inst) MatchesRanges(x rune) (int, bool) {
	if i.CaseInsensitive {
		x = casefold.Fold(x)
	}
	n := len(i.Ranges)
	lim := n
	if lim > matchScanLimit {
		lim = matchScanLimit
	}
	for idx := 0; idx < lim; idx++ {
		r := i.Ranges[idx]
		if x < r.Lo {
			return -1, false
		}
		if x <= r.Hi {
			return idx, true
		}
	}
	lo, hi := lim, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := i.Ranges[mid]
		switch {
		case x < r.Lo:
			hi = mid - 1
		case x > r.Hi:
			lo = mid + 1
		default:
			return mid, true
		}
	}
	return -1, false
}
