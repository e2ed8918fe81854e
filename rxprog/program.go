// Package rxprog owns the compiled program representation: the instruction
// vector produced by the compile package, the capture-name table, the
// derived anchoring flags, the literal-prefix matcher, and the reusable
// per-engine scratch pools. It is also where per-search engine dispatch
// lives: Program.Exec picks one of the literal short-circuit, the bounded
// backtracker, or the Pike VM, and runs it.
package rxprog

import (
	"fmt"
	"regexp/syntax"
	"strings"

	"github.com/coregx/rxcore/backtrack"
	"github.com/coregx/rxcore/compile"
	"github.com/coregx/rxcore/inst"
	"github.com/coregx/rxcore/pikevm"
	"github.com/coregx/rxcore/prefix"
	"github.com/coregx/rxcore/rxpool"
	"github.com/coregx/rxcore/rxsyntax"
)

// Engine identifies a matching strategy. The zero value, EngineAuto, means
// "let Program choose"; the other values force a specific engine and are
// mostly useful for testing the engines against each other.
type Engine uint8

const (
	EngineAuto Engine = iota
	EngineBacktrack
	EngineNfa
	EngineLiterals
)

func (e Engine) String() string {
	switch e {
	case EngineAuto:
		return "Auto"
	case EngineBacktrack:
		return "Backtrack"
	case EngineNfa:
		return "Nfa"
	case EngineLiterals:
		return "Literals"
	default:
		return "Unknown"
	}
}

// Program is a compiled regular expression. It is immutable after
// construction except for its internal reusable scratch pools, and may be
// freely shared for concurrent read; concurrent searches against the same
// Program must each use their own capture vector.
type Program struct {
	source   string
	insts    []inst.Inst
	capNames []string

	prefixes         *prefix.Matcher
	prefixesComplete bool

	anchoredBegin bool
	anchoredEnd   bool

	engineOverride Engine

	threadScratch    *rxpool.Pool[*pikevm.Threads]
	backtrackScratch *rxpool.Pool[*backtrack.Machine]
}

// Compile parses pattern, compiles it, and runs prefix/anchor analysis to
// produce a ready-to-search Program.
func Compile(pattern string, sizeLimit int, override Engine) (*Program, error) {
	expr, err := rxsyntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	return CompileExpr(pattern, expr, sizeLimit, override)
}

// CompileRegexp compiles an already-parsed regexp/syntax tree. It exists for
// callers that parse (or build) the syntax tree themselves, so a pattern
// string never needs to round-trip through Parse a second time.
func CompileRegexp(re *syntax.Regexp, sizeLimit int, override Engine) (*Program, error) {
	return CompileExpr(re.String(), rxsyntax.FromSyntax(re), sizeLimit, override)
}

// CompileExpr compiles an already-parsed expression tree. It exists for
// callers that construct an Expr directly rather than going through the
// regex-syntax parser.
func CompileExpr(source string, expr *rxsyntax.Expr, sizeLimit int, override Engine) (*Program, error) {
	insts, capNames, err := compile.NewCompiler(compile.Config{SizeLimit: sizeLimit}).Compile(expr)
	if err != nil {
		return nil, err
	}

	p := &Program{
		source:         source,
		insts:          insts,
		capNames:       capNames,
		engineOverride: override,
	}
	p.findPrefixes()
	p.anchoredBegin = isEmptyLook(insts[1], inst.LookStartText)
	p.anchoredEnd = isEmptyLook(insts[len(insts)-3], inst.LookEndText)
	p.initPools()
	return p, nil
}

func isEmptyLook(in inst.Inst, look inst.Look) bool {
	return in.Op == inst.OpEmptyLook && in.Look == look
}

// initPools sets up the scratch pools at construction time, and is also what
// Clone calls to give the copy its own independent scratch rather than
// sharing the original's. Pike VM scratch is sized by the instruction count
// only; the capture count is not part of it. Backtrack scratch starts empty
// and grows on first use.
func (p *Program) initPools() {
	numInsts := len(p.insts)
	p.threadScratch = rxpool.New(func() *pikevm.Threads {
		return pikevm.NewThreads(numInsts)
	})
	p.backtrackScratch = rxpool.New(func() *backtrack.Machine {
		return backtrack.NewMachine()
	})
}

// Exec attempts to find a match beginning at or after start. On success it
// populates caps (absolute byte offsets into text) and returns true.
func (p *Program) Exec(caps []int, text []byte, start int) bool {
	switch p.chooseEngine(len(caps), text) {
	case EngineLiterals:
		s, e, ok := p.prefixes.Find(text[start:])
		if !ok {
			return false
		}
		if len(caps) == 2 {
			caps[0] = start + s
			caps[1] = start + e
		}
		return true

	case EngineBacktrack:
		m := p.backtrackScratch.Get()
		defer p.backtrackScratch.Put(m)
		return backtrack.Exec(m, p.insts, caps, text, start)

	default: // EngineNfa
		t := p.threadScratch.Get()
		defer p.threadScratch.Put(t)
		return pikevm.Exec(t, p.insts, p.NumCaptures(), caps, text, start)
	}
}

func (p *Program) chooseEngine(capLen int, text []byte) Engine {
	if p.engineOverride != EngineAuto {
		return p.engineOverride
	}
	if capLen <= 2 && p.prefixes.PreservesPriority() && p.prefixesComplete {
		return EngineLiterals
	}
	if backtrack.CanHandle(len(p.insts), len(text)) {
		return EngineBacktrack
	}
	return EngineNfa
}

// NumCaptures returns the total number of capture groups, including the
// implicit whole-match group.
func (p *Program) NumCaptures() int {
	return numCaptures(p.insts)
}

func numCaptures(insts []inst.Inst) int {
	maxSlot := -1
	for _, in := range insts {
		if in.Op == inst.OpSave && int(in.Slot) > maxSlot {
			maxSlot = int(in.Slot)
		}
	}
	return (maxSlot + 1) / 2
}

// AllocCaptures returns a fresh capture vector sized 2*NumCaptures, with
// every slot marked absent (-1).
func (p *Program) AllocCaptures() []int {
	caps := make([]int, 2*p.NumCaptures())
	for i := range caps {
		caps[i] = -1
	}
	return caps
}

// CaptureNames returns the capture-group name table: index 0 is always the
// unnamed implicit whole-match group; other entries are "" if unnamed.
func (p *Program) CaptureNames() []string {
	return append([]string(nil), p.capNames...)
}

// SubexpNames is an alias for CaptureNames matching stdlib regexp's naming.
func (p *Program) SubexpNames() []string {
	return p.CaptureNames()
}

// AnchoredBegin reports whether every match of this program begins at the
// start of the text.
func (p *Program) AnchoredBegin() bool { return p.anchoredBegin }

// AnchoredEnd reports whether every match of this program ends at the end
// of the text.
func (p *Program) AnchoredEnd() bool { return p.anchoredEnd }

// Source returns the original pattern string, kept for diagnostics.
func (p *Program) Source() string { return p.source }

// Insts returns the compiled instruction vector. Callers must not mutate it.
func (p *Program) Insts() []inst.Inst { return p.insts }

// Clone duplicates the program's instructions, capture names, prefixes, and
// flags, and constructs fresh (empty) scratch pools: the two Programs share
// no mutable state.
func (p *Program) Clone() *Program {
	q := &Program{
		source:           p.source,
		insts:            append([]inst.Inst(nil), p.insts...),
		capNames:         append([]string(nil), p.capNames...),
		prefixes:         p.prefixes,
		prefixesComplete: p.prefixesComplete,
		anchoredBegin:    p.anchoredBegin,
		anchoredEnd:      p.anchoredEnd,
		engineOverride:   p.engineOverride,
	}
	q.initPools()
	return q
}

// String renders the program's instructions for debugging.
func (p *Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Program(%q)\n", p.source)
	for i, in := range p.insts {
		fmt.Fprintf(&b, "%4d: %s\n", i, instString(in))
	}
	return b.String()
}

func instString(in inst.Inst) string {
	switch in.Op {
	case inst.OpMatch:
		return "Match"
	case inst.OpSave:
		return fmt.Sprintf("Save(%d)", in.Slot)
	case inst.OpJump:
		return fmt.Sprintf("Jump(%d)", in.To)
	case inst.OpSplit:
		return fmt.Sprintf("Split(%d, %d)", in.A, in.B)
	case inst.OpEmptyLook:
		return fmt.Sprintf("EmptyLook(%s)", in.Look)
	case inst.OpChar:
		return fmt.Sprintf("Char(%q, ci=%v)", in.C, in.CaseInsensitive)
	case inst.OpRanges:
		return fmt.Sprintf("Ranges(%v, ci=%v)", in.Ranges, in.CaseInsensitive)
	default:
		return "?"
	}
}
