package importer

import (
	"errors"
	"strconv"
	"testing"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// svaHarness holds the shared nets of an assertion fixture: a clock and
// two sampled expressions.
type svaHarness struct {
	s   *netlist.Scope
	clk *netlist.Net
	a   *netlist.Net
	b   *netlist.Net
}

func newSvaHarness() *svaHarness {
	s := netlist.NewScope("top")
	return &svaHarness{s: s, clk: userNet(s, "clk"), a: userNet(s, "a"), b: userNet(s, "b")}
}

// property wraps a sequence net in the posedge clocking tree, an optional
// disable condition and an assertion root.
func (h *svaHarness) property(name string, seqNet, disable *netlist.Net) {
	s := h.s
	e := s.AddNet("edge")
	s.AddInstance(netlist.KindSvaPosedge, "edge0").
		Connect(netlist.RoleIn, h.clk).
		Connect(netlist.RoleOut, e)

	if disable != nil {
		seqNet = s.SvaBinary(netlist.KindSvaDisableIff, disable, seqNet, "")
	}
	at := s.SvaBinary(netlist.KindSvaAt, e, seqNet, "")

	root := s.AddInstance(netlist.KindSvaAssert, name)
	root.UserDeclared = true
	root.Connect(netlist.RoleIn, at)
}

// unary builds a one-operand temporal instance carrying a repetition or
// concatenation range.
func (h *svaHarness) unary(kind netlist.Kind, in *netlist.Net, low, high int) *netlist.Net {
	out := h.s.AddNet(kind.String() + "$out")
	inst := h.s.AddInstance(kind, kind.String()+"$i").
		Connect(netlist.RoleIn, in).
		Connect(netlist.RoleOut, out)
	inst.Attrs["sva:low"] = strconv.Itoa(low)
	inst.Attrs["sva:high"] = strconv.Itoa(high)
	return out
}

func checkerBits(t *testing.T, m *design.Module, name string) (design.Bit, design.Bit) {
	t.Helper()
	c := m.CellByName(name)
	if c == nil || c.Type != design.TypeAssert {
		t.Fatalf("missing assert cell %q, cells: %v", name, m.Cells())
	}
	return c.Port("A")[0], c.Port("EN")[0]
}

// svaStep is one clock cycle of a trigger-circuit trace: input values
// applied before the edge, checker values expected after it.
type svaStep struct {
	a, b   design.State
	wantEN design.State
	wantA  design.State
}

func runTrace(t *testing.T, h *svaHarness, name string, steps []svaStep) {
	t.Helper()

	d, _ := runImport(t, h.s, nil)
	m := d.Module("top")
	aBit, enBit := checkerBits(t, m, name)

	sim := design.NewSim(m)
	clk := m.SignalByName("clk").Bit(0)
	av := m.SignalByName("a").Bit(0)
	bv := m.SignalByName("b").Bit(0)

	sim.Set(clk, design.S0)
	sim.Settle()

	for i, st := range steps {
		sim.Set(av, st.a)
		sim.Set(bv, st.b)
		sim.Posedge(clk)

		if got := sim.Get(enBit); got != st.wantEN {
			t.Errorf("step %d: EN = %v, want %v", i, got, st.wantEN)
		}
		if got := sim.Get(aBit); got != st.wantA {
			t.Errorf("step %d: A = %v, want %v", i, got, st.wantA)
		}
	}
}

// a |-> b: antecedent and consequent are sampled on the same edge, and an
// unmatched antecedent disables the check.
func TestOverlappedImplicationTrigger(t *testing.T) {
	h := newSvaHarness()
	h.property("check_impl", h.s.SvaBinary(netlist.KindSvaOverlappedImpl, h.a, h.b, ""), nil)

	runTrace(t, h, "check_impl", []svaStep{
		{design.S1, design.S1, design.S1, design.S1},
		{design.S1, design.S0, design.S1, design.S0},
		{design.S0, design.S1, design.S0, design.S0},
	})
}

// a |=> b: the consequent is sampled one edge after the antecedent.
func TestNonOverlappedImplicationDelaysConsequent(t *testing.T) {
	h := newSvaHarness()
	h.property("check_next", h.s.SvaBinary(netlist.KindSvaNonOverlappedImpl, h.a, h.b, ""), nil)

	runTrace(t, h, "check_next", []svaStep{
		{design.S1, design.S0, design.S0, design.S0},
		{design.S0, design.S1, design.S1, design.S1},
		{design.S1, design.S0, design.S0, design.S0},
		{design.S0, design.S0, design.S1, design.S0},
	})
}

// An active disable condition forces the enable register low, so the
// cycle that would have reported a failure stays vacuous.
func TestDisableIffForcesEnableLow(t *testing.T) {
	h := newSvaHarness()
	dis := userNet(h.s, "dis")
	h.property("check_dis", h.s.SvaBinary(netlist.KindSvaOverlappedImpl, h.a, h.b, ""), dis)

	d, _ := runImport(t, h.s, nil)
	m := d.Module("top")
	aBit, enBit := checkerBits(t, m, "check_dis")

	sim := design.NewSim(m)
	clk := m.SignalByName("clk").Bit(0)
	av := m.SignalByName("a").Bit(0)
	bv := m.SignalByName("b").Bit(0)
	dv := m.SignalByName("dis").Bit(0)

	sim.Set(clk, design.S0)
	sim.Set(dv, design.S0)
	sim.Set(av, design.S1)
	sim.Set(bv, design.S1)
	sim.Posedge(clk)
	if sim.Get(enBit) != design.S1 || sim.Get(aBit) != design.S1 {
		t.Fatalf("enabled pass: EN=%v A=%v, want 1/1", sim.Get(enBit), sim.Get(aBit))
	}

	// A failing cycle under disable must not arm the checker.
	sim.Set(dv, design.S1)
	sim.Set(bv, design.S0)
	sim.Posedge(clk)
	if got := sim.Get(enBit); got != design.S0 {
		t.Fatalf("EN under disable = %v, want 0", got)
	}
}

// a[*3]: the match register chain only fills after three consecutive
// matching edges.
func TestConsecutiveRepeatCounts(t *testing.T) {
	h := newSvaHarness()
	h.property("check_rep", h.unary(netlist.KindSvaConsecutiveRepeat, h.a, 3, 3), nil)

	runTrace(t, h, "check_rep", []svaStep{
		{design.S1, design.S0, design.S0, design.S0},
		{design.S1, design.S0, design.S0, design.S0},
		{design.S1, design.S0, design.S1, design.S1},
		{design.S0, design.S0, design.S1, design.S0},
	})
}

func TestSequenceRangesRejected(t *testing.T) {
	h := newSvaHarness()
	seq := h.s.SvaBinary(netlist.KindSvaSeqConcat, h.a, h.b, "")
	seq.Driver().Attrs["sva:low"] = "1"
	seq.Driver().Attrs["sva:high"] = "2"
	h.property("check_range", seq, nil)

	var featErr *UnsupportedTemporalFeatureError
	if err := importErr(h.s, nil); !errors.As(err, &featErr) {
		t.Fatalf("expected UnsupportedTemporalFeatureError, got %v", err)
	}
	if featErr.Kind != netlist.KindSvaSeqConcat {
		t.Errorf("error kind = %v, want sva_seq_concat", featErr.Kind)
	}
}

func TestUnsupportedTemporalOperator(t *testing.T) {
	build := func() *svaHarness {
		h := newSvaHarness()
		h.property("check_until", h.s.SvaBinary(netlist.KindSvaUntil, h.a, h.b, ""), nil)
		return h
	}

	var featErr *UnsupportedTemporalFeatureError
	if err := importErr(build().s, nil); !errors.As(err, &featErr) {
		t.Fatalf("expected UnsupportedTemporalFeatureError, got %v", err)
	}

	// Keep mode drops the assertion root with a warning instead.
	d, imp := runImport(t, build().s, func(i *Importer) { i.ModeKeep = true })
	if len(imp.Warnings) == 0 {
		t.Errorf("expected a warning for the dropped assertion root")
	}
	if n := len(d.Module("top").CellsOfType(design.TypeAssert)); n != 0 {
		t.Errorf("assert cells = %d, want 0 after dropping the root", n)
	}
}
