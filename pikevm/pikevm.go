// Package pikevm implements a Thompson-style parallel NFA simulation (a
// "Pike VM") over a compiled instruction vector. Unlike the bounded
// backtracker, it is always safe: its cost is linear in program size times
// input length, regardless of how pathological the pattern is, which is
// why the core falls back to it whenever the backtracker's size envelope
// would be exceeded.
//
// Thread priority order mirrors the compiler's Split branch order, so the
// engine implements the same leftmost-first (not leftmost-longest)
// semantics the backtracker does: among all threads that can reach Match
// at a given position, the one the compiler would have tried first wins.
package pikevm

import (
	"unicode/utf8"

	"github.com/coregx/rxcore/inst"
	"github.com/coregx/rxcore/internal/sparse"
)

// cow is a copy-on-write capture vector shared across threads spawned from
// a common ancestor by Split. Cloning a thread bumps the reference count
// instead of copying; a write only copies once more than one thread holds
// the same backing slice.
type cow struct {
	data []int
	refs *int
}

func newCow(n int) cow {
	data := make([]int, n)
	for i := range data {
		data[i] = -1
	}
	refs := 1
	return cow{data: data, refs: &refs}
}

func (c cow) clone() cow {
	*c.refs++
	return c
}

func (c cow) set(i, v int) cow {
	if i < 0 || i >= len(c.data) {
		return c
	}
	if *c.refs > 1 {
		nd := make([]int, len(c.data))
		copy(nd, c.data)
		nd[i] = v
		*c.refs--
		one := 1
		return cow{data: nd, refs: &one}
	}
	c.data[i] = v
	return c
}

func (c cow) copyData() []int {
	out := make([]int, len(c.data))
	copy(out, c.data)
	return out
}

type thread struct {
	pc   int
	caps cow
}

// Threads is reusable per-search scratch state for the Pike VM. It is not
// safe for concurrent use; lease one per search from a
// rxpool.Pool[*Threads].
type Threads struct {
	clist, nlist         []thread
	visited, visitedNext *sparse.SparseSet
}

// NewThreads returns scratch state sized for a program of numInsts
// instructions.
func NewThreads(numInsts int) *Threads {
	capHint := numInsts
	if capHint < 16 {
		capHint = 16
	}
	return &Threads{
		clist:       make([]thread, 0, capHint),
		nlist:       make([]thread, 0, capHint),
		visited:     sparse.NewSparseSet(uint32(numInsts)),
		visitedNext: sparse.NewSparseSet(uint32(numInsts)),
	}
}

// Exec attempts to find a match beginning at or after start. On success it
// populates caps (absolute positions into text) and returns true; on
// failure caps is left unspecified.
func Exec(t *Threads, insts []inst.Inst, numCaptures int, caps []int, text []byte, start int) bool {
	numSlots := 2 * numCaptures
	t.clist = t.clist[:0]
	t.visited.Clear()
	var matched []int

	pos := start
	for {
		hasNext := pos < len(text)
		var r rune
		width := 0
		if hasNext {
			r, width = utf8.DecodeRune(text[pos:])
		}

		if matched == nil {
			t.clist = addThread(t.clist, t.visited, insts, thread{pc: 0, caps: newCow(numSlots)}, text, pos)
		}
		if len(t.clist) == 0 && matched != nil {
			break
		}

		t.nlist = t.nlist[:0]
		t.visitedNext.Clear()
		for _, th := range t.clist {
			op := insts[th.pc].Op
			if op == inst.OpMatch {
				matched = th.caps.copyData()
				break
			}
			if !hasNext {
				continue
			}
			switch op {
			case inst.OpChar:
				if insts[th.pc].MatchesChar(r) {
					t.nlist = addThread(t.nlist, t.visitedNext, insts, thread{pc: th.pc + 1, caps: th.caps}, text, pos+width)
				}
			case inst.OpRanges:
				if _, ok := insts[th.pc].MatchesRanges(r); ok {
					t.nlist = addThread(t.nlist, t.visitedNext, insts, thread{pc: th.pc + 1, caps: th.caps}, text, pos+width)
				}
			}
		}

		t.clist, t.nlist = t.nlist, t.clist[:0]
		t.visited, t.visitedNext = t.visitedNext, t.visited

		if !hasNext {
			break
		}
		pos += width
	}

	if matched == nil {
		return false
	}
	n := len(matched)
	if n > len(caps) {
		n = len(caps)
	}
	copy(caps, matched[:n])
	return true
}

// addThread performs the epsilon-closure of th, appending every
// Match/Char/Ranges instruction it reaches to list in priority order
// (Split tries A before B). visited deduplicates states already reached at
// this position so lower-priority paths to an already-claimed state are
// dropped, which is exactly what gives the engine its leftmost-first
// semantics.
func addThread(list []thread, visited *sparse.SparseSet, insts []inst.Inst, th thread, text []byte, pos int) []thread {
	pc := uint32(th.pc)
	if visited.Contains(pc) {
		return list
	}
	visited.Insert(pc)

	in := insts[th.pc]
	switch in.Op {
	case inst.OpJump:
		return addThread(list, visited, insts, thread{pc: int(in.To), caps: th.caps}, text, pos)

	case inst.OpSplit:
		list = addThread(list, visited, insts, thread{pc: int(in.A), caps: th.caps.clone()}, text, pos)
		return addThread(list, visited, insts, thread{pc: int(in.B), caps: th.caps}, text, pos)

	case inst.OpSave:
		caps := th.caps.set(int(in.Slot), pos)
		return addThread(list, visited, insts, thread{pc: th.pc + 1, caps: caps}, text, pos)

	case inst.OpEmptyLook:
		c1, c2 := neighbors(text, pos)
		if !in.Look.Matches(c1, c2) {
			return list
		}
		return addThread(list, visited, insts, thread{pc: th.pc + 1, caps: th.caps}, text, pos)

	default: // Match, Char, Ranges: this thread is ready, not advanced further here.
		return append(list, th)
	}
}

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
