// Package compile lowers a parsed regex tree (rxsyntax.Expr) into the
// linear instruction vector (inst.Inst) that every matching engine shares.
package compile

import (
	"unsafe"

	"github.com/coregx/rxcore/casefold"
	"github.com/coregx/rxcore/inst"
	"github.com/coregx/rxcore/internal/conv"
	"github.com/coregx/rxcore/rxsyntax"
)

var instSize = int(unsafe.Sizeof(inst.Inst{}))

// Compiler lowers an Expr tree into instructions. A Compiler is single-use:
// construct one per call to Compile.
type Compiler struct {
	config   Config
	insts    []inst.Inst
	capNames []string
}

// NewCompiler returns a Compiler configured with cfg.
func NewCompiler(cfg Config) *Compiler {
	return &Compiler{config: cfg}
}

// Compile lowers e, returning the instruction vector and the parallel
// capture-group name list (index 0 is the implicit whole-match group,
// always unnamed; an empty string at any other index means the group was
// not named).
func (c *Compiler) Compile(e *rxsyntax.Expr) ([]inst.Inst, []string, error) {
	c.insts = nil
	c.capNames = []string{""}

	c.emit(inst.Save(0))
	if err := c.compileNode(e); err != nil {
		return nil, nil, err
	}
	c.emit(inst.Save(1))
	c.emit(inst.Match())
	if err := c.checkSize(); err != nil {
		return nil, nil, err
	}
	return c.insts, c.capNames, nil
}

func (c *Compiler) emit(i inst.Inst) int {
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *Compiler) pc() uint32 { return conv.IntToUint32(len(c.insts)) }

func (c *Compiler) checkSize() error {
	if len(c.insts)*instSize > c.config.SizeLimit {
		return &SizeError{SizeLimit: c.config.SizeLimit}
	}
	return nil
}

func (c *Compiler) emitSplitPlaceholder() int { return c.emit(inst.SplitInst(0, 0)) }

func (c *Compiler) patchSplit(i int, a, b uint32) {
	if c.insts[i].Op != inst.OpSplit {
		panic("compile: patchSplit target is not a Split placeholder")
	}
	c.insts[i].A, c.insts[i].B = a, b
}

func (c *Compiler) emitJumpPlaceholder() int { return c.emit(inst.Jump(0)) }

func (c *Compiler) patchJump(i int, t uint32) {
	if c.insts[i].Op != inst.OpJump {
		panic("compile: patchJump target is not a Jump placeholder")
	}
	c.insts[i].To = t
}

func (c *Compiler) growCapNames(idx int) {
	for len(c.capNames) <= idx {
		c.capNames = append(c.capNames, "")
	}
}

func (c *Compiler) compileNode(e *rxsyntax.Expr) error {
	switch e.Kind {
	case rxsyntax.KindEmpty:
		// nothing emitted

	case rxsyntax.KindLiteral:
		for _, ch := range e.Chars {
			if e.CaseInsensitive {
				c.emit(inst.Char(casefold.Fold(ch), true))
			} else {
				c.emit(inst.Char(ch, false))
			}
		}

	case rxsyntax.KindAnyChar:
		c.emit(inst.RangesInst([]inst.Range{{Lo: 0, Hi: 0x10FFFF}}, false))

	case rxsyntax.KindAnyCharNoNL:
		c.emit(inst.RangesInst([]inst.Range{{Lo: 0, Hi: 0x09}, {Lo: 0x0B, Hi: 0x10FFFF}}, false))

	case rxsyntax.KindClass:
		if len(e.Ranges) == 1 && e.Ranges[0].Lo == e.Ranges[0].Hi {
			ch := e.Ranges[0].Lo
			if e.CaseInsensitive {
				ch = casefold.Fold(ch)
			}
			c.emit(inst.Char(ch, e.CaseInsensitive))
		} else {
			rs := make([]inst.Range, len(e.Ranges))
			for i, r := range e.Ranges {
				rs[i] = inst.Range{Lo: r.Lo, Hi: r.Hi}
			}
			c.emit(inst.RangesInst(rs, e.CaseInsensitive))
		}

	case rxsyntax.KindStartLine:
		c.emit(inst.EmptyLook(inst.LookStartLine))
	case rxsyntax.KindEndLine:
		c.emit(inst.EmptyLook(inst.LookEndLine))
	case rxsyntax.KindStartText:
		c.emit(inst.EmptyLook(inst.LookStartText))
	case rxsyntax.KindEndText:
		c.emit(inst.EmptyLook(inst.LookEndText))
	case rxsyntax.KindWordBoundary:
		c.emit(inst.EmptyLook(inst.LookWordBoundary))
	case rxsyntax.KindNotWordBoundary:
		c.emit(inst.EmptyLook(inst.LookNotWordBoundary))

	case rxsyntax.KindGroup:
		if e.Index == nil {
			if err := c.compileNode(e.Body); err != nil {
				return err
			}
		} else {
			idx := *e.Index
			c.growCapNames(idx)
			c.capNames[idx] = e.Name
			c.emit(inst.Save(conv.IntToUint32(2 * idx)))
			if err := c.compileNode(e.Body); err != nil {
				return err
			}
			c.emit(inst.Save(conv.IntToUint32(2*idx + 1)))
		}

	case rxsyntax.KindConcat:
		for _, sub := range e.Subs {
			if err := c.compileNode(sub); err != nil {
				return err
			}
		}

	case rxsyntax.KindAlternate:
		if err := c.compileAlternate(e.Subs); err != nil {
			return err
		}

	case rxsyntax.KindRepeat:
		if err := c.compileRepeat(e); err != nil {
			return err
		}

	default:
		panic("compile: unknown Expr kind")
	}
	return c.checkSize()
}

// compileAlternate lowers Alternate([e1, e2, ...]) iteratively rather than
// by recursing on Alternate(rest): a wide alternation must not blow the
// compiler's own call stack. The resulting Split/Jump wiring is identical
// to the recursive definition — every branch but the last gets a leading
// Split and a trailing Jump to the end, and the first alternative is always
// tried first.
func (c *Compiler) compileAlternate(es []*rxsyntax.Expr) error {
	switch len(es) {
	case 0:
		return nil
	case 1:
		return c.compileNode(es[0])
	}

	jumps := make([]int, 0, len(es)-1)
	for i := 0; i < len(es)-1; i++ {
		split := c.emitSplitPlaceholder()
		j1 := c.pc()
		if err := c.compileNode(es[i]); err != nil {
			return err
		}
		jmp := c.emitJumpPlaceholder()
		jumps = append(jumps, jmp)
		j2 := c.pc()
		c.patchSplit(split, j1, j2)
	}
	if err := c.compileNode(es[len(es)-1]); err != nil {
		return err
	}
	end := c.pc()
	for _, j := range jumps {
		c.patchJump(j, end)
	}
	return nil
}

func (c *Compiler) compileRepeat(e *rxsyntax.Expr) error {
	switch e.RepKind {
	case rxsyntax.RepeatZeroOrOne:
		return c.compileZeroOrOne(e.RepBody, e.Greedy)
	case rxsyntax.RepeatZeroOrMore:
		return c.compileZeroOrMore(e.RepBody, e.Greedy)
	case rxsyntax.RepeatOneOrMore:
		return c.compileOneOrMore(e.RepBody, e.Greedy)
	case rxsyntax.RepeatRange:
		return c.compileRangeRepeat(e.RepBody, e.Min, e.Max, e.Greedy)
	default:
		panic("compile: unknown repeat kind")
	}
}

func (c *Compiler) compileZeroOrOne(body *rxsyntax.Expr, greedy bool) error {
	split := c.emitSplitPlaceholder()
	j1 := c.pc()
	if err := c.compileNode(body); err != nil {
		return err
	}
	j2 := c.pc()
	if greedy {
		c.patchSplit(split, j1, j2)
	} else {
		c.patchSplit(split, j2, j1)
	}
	return nil
}

func (c *Compiler) compileZeroOrMore(body *rxsyntax.Expr, greedy bool) error {
	j1 := c.pc()
	split := c.emitSplitPlaceholder()
	j2 := c.pc()
	if err := c.compileNode(body); err != nil {
		return err
	}
	jmp := c.emitJumpPlaceholder()
	j3 := c.pc()
	c.patchJump(jmp, j1)
	if greedy {
		c.patchSplit(split, j2, j3)
	} else {
		c.patchSplit(split, j3, j2)
	}
	return nil
}

func (c *Compiler) compileOneOrMore(body *rxsyntax.Expr, greedy bool) error {
	j1 := c.pc()
	if err := c.compileNode(body); err != nil {
		return err
	}
	split := c.emitSplitPlaceholder()
	j2 := c.pc()
	if greedy {
		c.patchSplit(split, j1, j2)
	} else {
		c.patchSplit(split, j2, j1)
	}
	return nil
}

func (c *Compiler) compileRangeRepeat(body *rxsyntax.Expr, min int, max *int, greedy bool) error {
	for i := 0; i < min; i++ {
		if err := c.compileNode(body); err != nil {
			return err
		}
	}
	if max == nil {
		return c.compileZeroOrMore(body, greedy)
	}
	for i := 0; i < *max-min; i++ {
		if err := c.compileZeroOrOne(body, greedy); err != nil {
			return err
		}
	}
	return nil
}
