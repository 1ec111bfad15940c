package importer

import (
	"strconv"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// checkKind selects which checker cell an assertion root produces.
type checkKind int

const (
	checkAssert checkKind = iota
	checkAssume
	checkCover
)

// astDriver returns the temporal-primitive instance driving a net, nil
// when the net is multiply driven, driverless, or driven by ordinary
// logic. The past operator is deliberately opaque here: its output is a
// plain signal by the time the sequence compiler sees it.
func astDriver(n *netlist.Net) *netlist.Instance {
	if n == nil || n.MultipleDriven() {
		return nil
	}
	inst := n.Driver()
	if inst == nil || !inst.Kind.IsTemporal() {
		return nil
	}
	if inst.Kind == netlist.KindSvaPast {
		return nil
	}
	return inst
}

// sequence is the accumulator threaded through sequence compilation.
// active is "the sequence matched ending at the current cycle"; enabled
// is "the property is still being evaluated".
type sequence struct {
	length  int
	active  design.Bit
	enabled design.Bit
}

// skipRoot unwinds compilation of one assertion root in keep mode when an
// unsupported temporal operator is found. No checker cell is emitted.
type skipRoot struct{}

type svaCompiler struct {
	imp  *Importer
	m    *design.Module
	root *netlist.Instance
	kind checkKind

	clock      design.Bit
	posedge    bool
	disableIff design.Bit
}

// compileAssertion compiles one assertion root into a trigger circuit and
// a checker cell.
func (imp *Importer) compileAssertion(root *netlist.Instance, kind checkKind) {
	c := &svaCompiler{
		imp:        imp,
		m:          imp.module,
		root:       root,
		kind:       kind,
		disableIff: design.Lo,
	}
	c.run()
}

func (c *svaCompiler) attrRange(inst *netlist.Instance) (int, int) {
	low, _ := strconv.Atoi(inst.Attr("sva:low"))
	high, _ := strconv.Atoi(inst.Attr("sva:high"))
	return low, high
}

func (c *svaCompiler) sequenceCond(seq *sequence, cond design.Bit) {
	seq.active = c.m.And(c.m.NewID(), seq.active, cond)
}

// sequenceFF advances the accumulator one clock cycle. Both state bits go
// through fresh zero-initialized registers; an active disable condition
// forces enabled low before the register.
func (c *svaCompiler) sequenceFF(seq *sequence) {
	m := c.m

	if c.disableIff != design.Lo {
		seq.enabled = m.Mux(m.NewID(), seq.enabled, design.Lo, c.disableIff)
	}

	activeQ := m.AddSignal(m.NewID())
	activeQ.SetInitBit(0, design.S0)
	enabledQ := m.AddSignal(m.NewID())
	enabledQ.SetInitBit(0, design.S0)

	m.AddDff(m.NewID(), c.clock, design.Sig{seq.active}, activeQ.Sig(), c.posedge)
	m.AddDff(m.NewID(), c.clock, design.Sig{seq.enabled}, enabledQ.Sig(), c.posedge)

	seq.length++
	seq.active = activeQ.Bit(0)
	seq.enabled = enabledQ.Bit(0)
}

func (c *svaCompiler) parseSequence(seq *sequence, n *netlist.Net) {
	inst := astDriver(n)

	// A plain expression narrows the match combinationally.
	if inst == nil {
		c.sequenceCond(seq, c.imp.netMapAt(n))
		return
	}

	switch inst.Kind {
	case netlist.KindSvaOverlappedImpl, netlist.KindPslImpl:
		c.parseSequence(seq, inst.Input1())
		seq.enabled = c.m.And(c.m.NewID(), seq.enabled, seq.active)
		c.parseSequence(seq, inst.Input2())
		return

	case netlist.KindSvaNonOverlappedImpl, netlist.KindPslSuffixImpl:
		c.parseSequence(seq, inst.Input1())
		seq.enabled = c.m.And(c.m.NewID(), seq.enabled, seq.active)
		c.sequenceFF(seq)
		c.parseSequence(seq, inst.Input2())
		return

	case netlist.KindSvaSeqConcat:
		low, high := c.attrRange(inst)
		if low != high {
			c.imp.fail(&UnsupportedTemporalFeatureError{
				Inst: inst.Name, Kind: inst.Kind,
				Reason: "ranges on sequence concatenation are not supported",
			})
		}
		c.parseSequence(seq, inst.Input1())
		for i := 0; i < low; i++ {
			c.sequenceFF(seq)
		}
		c.parseSequence(seq, inst.Input2())
		return

	case netlist.KindSvaConsecutiveRepeat:
		low, high := c.attrRange(inst)
		if low != high {
			c.imp.fail(&UnsupportedTemporalFeatureError{
				Inst: inst.Name, Kind: inst.Kind,
				Reason: "ranges on consecutive repetition are not supported",
			})
		}
		c.parseSequence(seq, inst.Input())
		for i := 1; i < low; i++ {
			c.sequenceFF(seq)
			c.parseSequence(seq, inst.Input())
		}
		return

	case netlist.KindSvaAlways, netlist.KindPslAlways:
		// "always"/"globally" is transparent for the trigger circuit.
		c.parseSequence(seq, inst.Input())
		return
	}

	if !c.imp.ModeKeep {
		c.imp.fail(&UnsupportedTemporalFeatureError{
			Inst: inst.Name, Kind: inst.Kind,
			Reason: "unsupported temporal operator",
		})
	}
	c.imp.warnf("unsupported temporal operator %v on instance %q, dropping assertion root %q",
		inst.Kind, inst.Name, c.root.Name)
	panic(skipRoot{})
}

func (c *svaCompiler) run() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(skipRoot); ok {
				return
			}
			panic(r)
		}
	}()

	imp := c.imp

	// Resolve the clocking wrapper.
	atNode := astDriver(c.root.Input())
	if atNode == nil || (atNode.Kind != netlist.KindSvaAt && atNode.Kind != netlist.KindPslAt) {
		imp.fail(&InternalConsistencyError{
			Reason: "assertion root " + c.root.Name + " has no clocking wrapper",
		})
	}

	var clockInst *netlist.Instance
	var sequenceNet *netlist.Net
	if atNode.Kind == netlist.KindSvaAt {
		clockInst = astDriver(atNode.Input1())
		sequenceNet = atNode.Input2()
	} else {
		clockInst = driverOf(atNode.Input2())
		sequenceNet = atNode.Input1()
	}

	edge := imp.resolveClockEdge(clockInst)
	c.clock = edge.clock
	c.posedge = edge.posedge

	// An optional disable wrapper sits directly inside the clocking
	// wrapper. The abort form carries its condition on the second
	// operand, the disable-iff form on the first.
	if seqNode := astDriver(sequenceNet); seqNode != nil {
		switch seqNode.Kind {
		case netlist.KindSvaDisableIff:
			c.disableIff = imp.netMapAt(seqNode.Input1())
			sequenceNet = seqNode.Input2()
		case netlist.KindPslAbort:
			c.disableIff = imp.netMapAt(seqNode.Input2())
			sequenceNet = seqNode.Input1()
		}
	}

	seq := &sequence{active: design.Hi, enabled: design.Hi}
	c.parseSequence(seq, sequenceNet)
	c.sequenceFF(seq)

	name := c.m.Uniquify(imp.signalName(c.root.Name, c.root.UserDeclared))
	switch c.kind {
	case checkAssert:
		c.m.AddAssert(name, seq.active, seq.enabled)
	case checkAssume:
		c.m.AddAssume(name, seq.active, seq.enabled)
	case checkCover:
		c.m.AddCover(name, seq.active, seq.enabled)
	}
}
