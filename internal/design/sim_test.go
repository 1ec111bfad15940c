package design

import "testing"

func TestSimSettlesConnectionChains(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignal("a")
	b := m.AddSignal("b")
	c := m.AddSignal("c")
	m.ConnectBit(b.Bit(0), a.Bit(0))
	m.ConnectBit(c.Bit(0), b.Bit(0))

	sim := NewSim(m)
	sim.Set(a.Bit(0), S1)
	sim.Settle()
	if sim.Get(c.Bit(0)) != S1 {
		t.Errorf("value did not propagate through chained connections")
	}
}

func TestSimSignedArithmetic(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignalWidth("a", 4)
	b := m.AddSignalWidth("b", 4)
	y := m.AddSignalWidth("y", 4)
	m.AddAdd("add0", a.Sig(), b.Sig(), y.Sig(), true)

	sim := NewSim(m)
	sim.SetUint(a.Sig(), 0b1111) // -1
	sim.SetUint(b.Sig(), 3)
	sim.Settle()
	if v, ok := sim.Uint(y.Sig()); !ok || v != 2 {
		t.Errorf("-1 + 3 = %d (defined=%v), want 2", v, ok)
	}
}

func TestSimArithmeticShiftRight(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignalWidth("a", 4)
	b := m.AddSignalWidth("b", 2)
	y := m.AddSignalWidth("y", 4)
	m.AddSshr("shr0", a.Sig(), b.Sig(), y.Sig(), true)

	sim := NewSim(m)
	sim.SetUint(a.Sig(), 0b1000) // -8
	sim.SetUint(b.Sig(), 2)
	sim.Settle()
	if v, ok := sim.Uint(y.Sig()); !ok || v != 0b1110 {
		t.Errorf("-8 >>> 2 = %04b (defined=%v), want 1110", v, ok)
	}
}

func TestSimMuxUnknownSelect(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignal("a")
	b := m.AddSignal("b")
	sel := m.AddSignal("sel")
	y := m.AddSignal("y")
	m.AddMux("mux0", a.Sig(), b.Sig(), sel.Bit(0), y.Sig())

	sim := NewSim(m)
	sim.Set(a.Bit(0), S1)
	sim.Set(b.Bit(0), S0)
	sim.Settle()
	if sim.Get(y.Bit(0)) != Sx {
		t.Errorf("mux with unknown select and differing inputs must be unknown")
	}

	// Equal inputs are defined regardless of the select.
	sim.Set(b.Bit(0), S1)
	sim.Settle()
	if sim.Get(y.Bit(0)) != S1 {
		t.Errorf("mux with equal inputs must ignore the unknown select")
	}
}

func TestSimDominantLogicWithUnknowns(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignal("a")
	b := m.AddSignal("b")
	y0 := m.AddSignal("y0")
	y1 := m.AddSignal("y1")
	m.AddAndGate("and0", a.Bit(0), b.Bit(0), y0.Bit(0))
	m.AddOrGate("or0", a.Bit(0), b.Bit(0), y1.Bit(0))

	sim := NewSim(m)
	sim.Set(a.Bit(0), S0)
	sim.Settle()
	if sim.Get(y0.Bit(0)) != S0 {
		t.Errorf("0 and x must be 0")
	}
	if sim.Get(y1.Bit(0)) != Sx {
		t.Errorf("0 or x must be x")
	}

	sim.Set(a.Bit(0), S1)
	sim.Settle()
	if sim.Get(y0.Bit(0)) != Sx {
		t.Errorf("1 and x must be x")
	}
	if sim.Get(y1.Bit(0)) != S1 {
		t.Errorf("1 or x must be 1")
	}
}

func TestSimSetResetRegisterPriority(t *testing.T) {
	m := NewModule("m")
	clk := m.AddSignal("clk")
	d := m.AddSignal("d")
	q := m.AddSignal("q")
	set := m.AddSignal("set")
	clr := m.AddSignal("clr")
	m.AddDffsr("ff0", clk.Bit(0), set.Sig(), clr.Sig(), d.Sig(), q.Sig(), true)

	sim := NewSim(m)
	sim.Set(clk.Bit(0), S0)
	sim.Set(set.Bit(0), S0)
	sim.Set(clr.Bit(0), S0)
	sim.Set(d.Bit(0), S0)
	sim.Posedge(clk.Bit(0))
	if sim.Get(q.Bit(0)) != S0 {
		t.Fatalf("loaded q = %v, want 0", sim.Get(q.Bit(0)))
	}

	// Asynchronous set wins without a clock edge.
	sim.Set(set.Bit(0), S1)
	sim.Settle()
	if sim.Get(q.Bit(0)) != S1 {
		t.Errorf("q under set = %v, want 1", sim.Get(q.Bit(0)))
	}

	// Set dominates clear.
	sim.Set(clr.Bit(0), S1)
	sim.Settle()
	if sim.Get(q.Bit(0)) != S1 {
		t.Errorf("q under set+clear = %v, want 1 (set dominant)", sim.Get(q.Bit(0)))
	}

	sim.Set(set.Bit(0), S0)
	sim.Settle()
	if sim.Get(q.Bit(0)) != S0 {
		t.Errorf("q under clear = %v, want 0", sim.Get(q.Bit(0)))
	}
}

func TestSimReductions(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignalWidth("a", 3)
	yAnd := m.AddSignal("y_and")
	yOr := m.AddSignal("y_or")
	yXor := m.AddSignal("y_xor")
	m.AddReduceAnd("r0", a.Sig(), yAnd.Bit(0), false)
	m.AddReduceOr("r1", a.Sig(), yOr.Bit(0), false)
	m.AddReduceXor("r2", a.Sig(), yXor.Bit(0), false)

	sim := NewSim(m)
	sim.SetUint(a.Sig(), 0b110)
	sim.Settle()
	if sim.Get(yAnd.Bit(0)) != S0 || sim.Get(yOr.Bit(0)) != S1 || sim.Get(yXor.Bit(0)) != S0 {
		t.Errorf("reductions of 110 = and:%v or:%v xor:%v, want 0/1/0",
			sim.Get(yAnd.Bit(0)), sim.Get(yOr.Bit(0)), sim.Get(yXor.Bit(0)))
	}
}

func TestSimZeroExtensionOnWideOps(t *testing.T) {
	m := NewModule("m")
	a := m.AddSignalWidth("a", 2)
	b := m.AddSignalWidth("b", 4)
	y := m.AddSignalWidth("y", 4)
	m.AddAnd("and0", a.Sig(), b.Sig(), y.Sig(), false)

	sim := NewSim(m)
	sim.SetUint(a.Sig(), 0b11)
	sim.SetUint(b.Sig(), 0b1111)
	sim.Settle()
	if v, ok := sim.Uint(y.Sig()); !ok || v != 0b0011 {
		t.Errorf("zero-extended and = %04b, want 0011", v)
	}
}
