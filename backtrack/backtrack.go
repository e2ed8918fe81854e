// Package backtrack implements a bounded recursive backtracking engine over
// a compiled instruction vector. Unlike a textbook backtracker it tracks
// full capture-group positions, not just overall match/no-match: every
// Save instruction records the position it passed through and restores it
// on backtrack, so a caller gets the same capture vector the Nfa engine
// would produce for the same input.
//
// The engine is bounded: CanHandle gates entry based on the (instruction
// count) x (input length + 1) envelope, below which the visited-state table
// this package keeps to avoid exponential blowup stays a reasonable size.
// The Nfa engine is the safety net for anything bigger.
package backtrack

import (
	"unicode/utf8"

	"github.com/coregx/rxcore/inst"
)

// MaxVisitedStates bounds the (numInsts * (textLen+1)) envelope CanHandle
// accepts. Beyond this the visited-state tracking this engine relies on to
// avoid re-exploring the same (instruction, position) pair would grow large
// enough that the Nfa engine is the better choice anyway.
const MaxVisitedStates = 256 * 1024 * 8

// CanHandle reports whether the bounded backtracker's size envelope can
// accommodate a program of numInsts instructions searching a text of
// textLen bytes.
func CanHandle(numInsts, textLen int) bool {
	return numInsts*(textLen+1) <= MaxVisitedStates
}

// Machine is reusable per-search scratch state for the bounded backtracker.
// It is not safe for concurrent use; lease one per search from a
// rxpool.Pool[*Machine].
type Machine struct {
	gen    []uint32
	curGen uint32
}

// NewMachine returns an empty Machine.
func NewMachine() *Machine {
	return &Machine{}
}

// reset prepares m to track visited (instruction, position) pairs for a
// program of numInsts instructions against a text of textLen bytes.
// Bumping the generation counter rather than clearing the backing array
// makes repeated searches against the same (or a smaller) envelope free of
// per-call allocation and zeroing.
func (m *Machine) reset(numInsts, textLen int) {
	need := numInsts * (textLen + 1)
	if cap(m.gen) < need {
		m.gen = make([]uint32, need)
		m.curGen = 0
	}
	m.gen = m.gen[:need]
	m.curGen++
}

func (m *Machine) shouldVisit(pc, pos, textLen int) bool {
	idx := pc*(textLen+1) + pos
	if m.gen[idx] == m.curGen {
		return false
	}
	m.gen[idx] = m.curGen
	return true
}

// Exec attempts to find a match beginning at or after start. On success it
// populates caps (absolute positions into text) and returns true; on
// failure caps is left unspecified.
func Exec(m *Machine, insts []inst.Inst, caps []int, text []byte, start int) bool {
	m.reset(len(insts), len(text))
	for sp := start; sp <= len(text); sp++ {
		for i := range caps {
			caps[i] = -1
		}
		if step(m, insts, 0, caps, text, sp) {
			return true
		}
		// Each start position is an independent attempt: bump the
		// generation so the next attempt can revisit states the
		// previous attempt already marked, without clearing the array.
		m.curGen++
	}
	return false
}

func step(m *Machine, insts []inst.Inst, pc int, caps []int, text []byte, pos int) bool {
	if !m.shouldVisit(pc, pos, len(text)) {
		return false
	}
	in := insts[pc]
	switch in.Op {
	case inst.OpMatch:
		return true

	case inst.OpSave:
		slot := int(in.Slot)
		if slot >= len(caps) {
			return step(m, insts, pc+1, caps, text, pos)
		}
		old := caps[slot]
		caps[slot] = pos
		if step(m, insts, pc+1, caps, text, pos) {
			return true
		}
		caps[slot] = old
		return false

	case inst.OpJump:
		return step(m, insts, int(in.To), caps, text, pos)

	case inst.OpSplit:
		if step(m, insts, int(in.A), caps, text, pos) {
			return true
		}
		return step(m, insts, int(in.B), caps, text, pos)

	case inst.OpEmptyLook:
		c1, c2 := neighbors(text, pos)
		if !in.Look.Matches(c1, c2) {
			return false
		}
		return step(m, insts, pc+1, caps, text, pos)

	case inst.OpChar:
		r, width := decodeRune(text, pos)
		if width == 0 || !in.MatchesChar(r) {
			return false
		}
		return step(m, insts, pc+1, caps, text, pos+width)

	case inst.OpRanges:
		r, width := decodeRune(text, pos)
		if width == 0 {
			return false
		}
		if _, ok := in.MatchesRanges(r); !ok {
			return false
		}
		return step(m, insts, pc+1, caps, text, pos+width)

	default:
		panic("backtrack: unknown instruction op")
	}
}

// decodeRune decodes the rune starting at pos, reporting its width in
// bytes, or width 0 if pos is at the end of text.
func decodeRune(text []byte, pos int) (rune, int) {
	if pos >= len(text) {
		return utf8.RuneError, 0
	}
	r, width := utf8.DecodeRune(text[pos:])
	return r, width
}

// neighbors returns the rune immediately before and at pos, either of which
// is inst.NoRune if pos is at the start/end of text.
func neighbors(text []byte, pos int) (before, after rune) {
	before = inst.NoRune
	if pos > 0 {
		before, _ = utf8.DecodeLastRune(text[:pos])
	}
	after = inst.NoRune
	if pos < len(text) {
		after, _ = utf8.DecodeRune(text[pos:])
	}
	return before, after
}
