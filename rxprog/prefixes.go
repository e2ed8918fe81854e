package rxprog

import (
	"unicode/utf8"

	"github.com/coregx/rxcore/inst"
	"github.com/coregx/rxcore/prefix"
)

// NumPrefixLimit bounds the number of distinct literal prefixes extracted
// from a program.
const NumPrefixLimit = 30

// PrefixLengthLimit bounds the code-point length of any single extracted
// prefix.
const PrefixLengthLimit = 15

// findPrefixes runs the static prefix/anchor analysis over p.insts and
// installs p.prefixes and p.prefixesComplete. It always leaves p.prefixes
// non-nil: on any abort path it is the empty sentinel.
func (p *Program) findPrefixes() {
	p.prefixes = prefix.Empty()
	p.prefixesComplete = false

	if ps, complete := p.prefixesFromInsts(1); len(ps) > 0 {
		p.prefixes = prefix.New(ps)
		p.prefixesComplete = complete
		return
	}

	pc := 1
	var prefixes []string
	pcomplete := true
	for {
		in := p.insts[pc]
		if in.Op != inst.OpSplit {
			return
		}
		x, y := int(in.A), int(in.B)
		xps, xcomplete := p.prefixesFromInsts(x)
		yps, ycomplete := p.prefixesFromInsts(y)
		xIsSplit := p.insts[x].Op == inst.OpSplit
		yIsSplit := p.insts[y].Op == inst.OpSplit

		done := false
		switch {
		case xIsSplit && yIsSplit:
			return
		case yIsSplit && len(xps) == 0:
			return
		case yIsSplit:
			pcomplete = pcomplete && xcomplete
			prefixes = append(prefixes, xps...)
			pc = y
		case xIsSplit && len(yps) == 0:
			return
		case xIsSplit:
			pcomplete = pcomplete && ycomplete
			prefixes = append(prefixes, yps...)
			pc = x
		case len(xps) == 0 || len(yps) == 0:
			return
		default:
			// Base case: both sides led to a match, neither was a
			// further Split.
			pcomplete = pcomplete && xcomplete && ycomplete
			prefixes = append(prefixes, xps...)
			prefixes = append(prefixes, yps...)
			done = true
		}

		if len(prefixes) > NumPrefixLimit {
			return
		}
		if done {
			break
		}
	}

	p.prefixes = prefix.New(prefixes)
	p.prefixesComplete = pcomplete && len(prefixes) > 0
}

// prefixesFromInsts collects up to NumPrefixLimit literal-prefix
// alternatives starting at pc, stepping through Save (transparent) and
// Jump (followed) instructions, and expanding Char/Ranges instructions
// (case-sensitive only) into the Cartesian product of alternatives. It
// stops at the first instruction it cannot account for, reporting whether
// that instruction trivially leads to Match.
func (p *Program) prefixesFromInsts(pc int) ([]string, bool) {
	complete := true
	alts := []string{""}

scan:
	for pc < len(p.insts) {
		if utf8.RuneCountInString(alts[0]) >= PrefixLengthLimit {
			complete = p.leadsToMatch(pc)
			break
		}
		in := p.insts[pc]
		switch in.Op {
		case inst.OpSave:
			pc++
			continue

		case inst.OpChar:
			if in.CaseInsensitive {
				complete = p.leadsToMatch(pc)
				break scan
			}
			for i := range alts {
				alts[i] += string(in.C)
			}
			pc++

		case inst.OpRanges:
			if in.CaseInsensitive {
				complete = p.leadsToMatch(pc)
				break scan
			}
			n := numCharsInRanges(in.Ranges)
			if len(alts)*n > NumPrefixLimit {
				complete = false
				break scan
			}
			orig := alts
			alts = make([]string, 0, len(orig)*n)
			for _, r := range in.Ranges {
				for c := r.Lo; c <= r.Hi; c++ {
					for _, a := range orig {
						alts = append(alts, a+string(c))
					}
				}
			}
			pc++

		case inst.OpJump:
			pc = int(in.To)

		default:
			complete = p.leadsToMatch(pc)
			break scan
		}
	}

	if len(alts[0]) == 0 {
		return nil, false
	}
	return alts, complete
}

// leadsToMatch is a deliberately conservative test: walking Save/Jump only,
// does pc reach Match? It may report false negatives (never false
// positives), which is the property prefixesComplete's contract relies on.
func (p *Program) leadsToMatch(pc int) bool {
	for {
		in := p.insts[pc]
		switch in.Op {
		case inst.OpMatch:
			return true
		case inst.OpSave:
			pc++
		case inst.OpJump:
			pc = int(in.To)
		default:
			return false
		}
	}
}

func numCharsInRanges(ranges []inst.Range) int {
	total := 0
	for _, r := range ranges {
		total += int(r.Hi-r.Lo) + 1
	}
	return total
}
