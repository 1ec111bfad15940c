package importer

import (
	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// lowerGates decomposes a primitive instance into single-bit gate cells
// only. Reports false when the kind is not in the table so the caller can
// fall through to structural handling.
func (imp *Importer) lowerGates(inst *netlist.Instance, instName string) bool {
	m := imp.module

	switch inst.Kind {
	case netlist.KindAnd:
		m.AddAndGate(instName, imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindNand:
		tmp := m.AddSignal(m.NewID()).Bit(0)
		m.AddAndGate(m.NewID(), imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), tmp)
		m.AddNotGate(instName, tmp, imp.netMapAt(inst.Output()))
		return true

	case netlist.KindOr:
		m.AddOrGate(instName, imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindNor:
		tmp := m.AddSignal(m.NewID()).Bit(0)
		m.AddOrGate(m.NewID(), imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), tmp)
		m.AddNotGate(instName, tmp, imp.netMapAt(inst.Output()))
		return true

	case netlist.KindXor:
		m.AddXorGate(instName, imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindXnor:
		m.AddXnorGate(instName, imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindInv:
		m.AddNotGate(instName, imp.netMapAt(inst.Input()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindMux:
		m.AddMuxGate(instName, imp.netMapAt(inst.Input1()), imp.netMapAt(inst.Input2()),
			imp.netMapAt(inst.Control()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindTri:
		m.AddMuxGate(instName, design.HiZ, imp.netMapAt(inst.Input()),
			imp.netMapAt(inst.Control()), imp.netMapAt(inst.Output()))
		return true

	case netlist.KindFadd:
		// Two half-adder stages: y = a^b^cin, cout = (a^b)&cin | a&b.
		a := imp.netMapAt(inst.Input1())
		b := imp.netMapAt(inst.Input2())
		cin := imp.netMapAt(inst.Cin())
		x := imp.optionalBit(inst.Cout())
		y := imp.optionalBit(inst.Output())
		tmp1 := m.AddSignal(m.NewID()).Bit(0)
		tmp2 := m.AddSignal(m.NewID()).Bit(0)
		tmp3 := m.AddSignal(m.NewID()).Bit(0)
		m.AddXorGate(m.NewID(), a, b, tmp1)
		m.AddXorGate(instName, tmp1, cin, y)
		m.AddAndGate(m.NewID(), tmp1, cin, tmp2)
		m.AddAndGate(m.NewID(), a, b, tmp3)
		m.AddOrGate(m.NewID(), tmp2, tmp3, x)
		return true

	case netlist.KindDffrs:
		clk := imp.netMapAt(inst.Clock())
		d := imp.netMapAt(inst.Input())
		q := imp.netMapAt(inst.Output())
		switch {
		case inst.Set().IsGnd() && inst.Reset().IsGnd():
			m.AddDffGate(instName, clk, d, q, true)
		case inst.Set().IsGnd():
			m.AddAdffGate(instName, clk, imp.netMapAt(inst.Reset()), d, q, false)
		case inst.Reset().IsGnd():
			m.AddAdffGate(instName, clk, imp.netMapAt(inst.Set()), d, q, true)
		default:
			m.AddDffsrGate(instName, clk, imp.netMapAt(inst.Set()), imp.netMapAt(inst.Reset()), d, q)
		}
		return true
	}

	return false
}

// optionalBit resolves a possibly-unconnected scalar output, allocating a
// dangling signal when absent.
func (imp *Importer) optionalBit(n *netlist.Net) design.Bit {
	if n == nil {
		return imp.module.AddSignal(imp.module.NewID()).Bit(0)
	}
	return imp.netMapAt(n)
}
