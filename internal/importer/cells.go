package importer

import (
	"fmt"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// lowerCells maps a primitive or wide-operator instance to target-native
// cells, preferring width-parameterized operators over gate decomposition.
// Reports false when the kind is not in the table.
func (imp *Importer) lowerCells(inst *netlist.Instance, instName string) bool {
	m := imp.module

	bit := func(n *netlist.Net) design.Sig { return design.Sig{imp.netMapAt(n)} }

	switch inst.Kind {
	case netlist.KindAnd:
		m.AddAnd(instName, bit(inst.Input1()), bit(inst.Input2()), bit(inst.Output()), false)
		return true

	case netlist.KindNand:
		tmp := design.Sig{m.AddSignal(m.NewID()).Bit(0)}
		m.AddAnd(m.NewID(), bit(inst.Input1()), bit(inst.Input2()), tmp, false)
		m.AddNot(instName, tmp, bit(inst.Output()), false)
		return true

	case netlist.KindOr:
		m.AddOr(instName, bit(inst.Input1()), bit(inst.Input2()), bit(inst.Output()), false)
		return true

	case netlist.KindNor:
		tmp := design.Sig{m.AddSignal(m.NewID()).Bit(0)}
		m.AddOr(m.NewID(), bit(inst.Input1()), bit(inst.Input2()), tmp, false)
		m.AddNot(instName, tmp, bit(inst.Output()), false)
		return true

	case netlist.KindXor:
		m.AddXor(instName, bit(inst.Input1()), bit(inst.Input2()), bit(inst.Output()), false)
		return true

	case netlist.KindXnor:
		m.AddXnor(instName, bit(inst.Input1()), bit(inst.Input2()), bit(inst.Output()), false)
		return true

	case netlist.KindInv:
		m.AddNot(instName, bit(inst.Input()), bit(inst.Output()), false)
		return true

	case netlist.KindMux:
		m.AddMux(instName, bit(inst.Input1()), bit(inst.Input2()),
			imp.netMapAt(inst.Control()), bit(inst.Output()))
		return true

	case netlist.KindTri:
		m.AddMux(instName, design.Sig{design.HiZ}, bit(inst.Input()),
			imp.netMapAt(inst.Control()), bit(inst.Output()))
		return true

	case netlist.KindFadd:
		// Pre-add a+b into two bits, then add the carry-in. Numerically
		// equal to the gate decomposition for all input combinations.
		aPlusB := m.AddSignalWidth(m.NewID(), 2).Sig()
		y := design.Sig{imp.optionalBit(inst.Output())}
		if inst.Cout() != nil {
			y = append(y, imp.netMapAt(inst.Cout()))
		}
		m.AddAdd(m.NewID(), bit(inst.Input1()), bit(inst.Input2()), aPlusB, false)
		m.AddAdd(instName, aPlusB, bit(inst.Cin()), y, false)
		return true

	case netlist.KindDffrs:
		clk := imp.netMapAt(inst.Clock())
		d, q := bit(inst.Input()), bit(inst.Output())
		switch {
		case inst.Set().IsGnd() && inst.Reset().IsGnd():
			m.AddDff(instName, clk, d, q, true)
		case inst.Set().IsGnd():
			m.AddAdff(instName, clk, imp.netMapAt(inst.Reset()), d, q, design.S0)
		case inst.Reset().IsGnd():
			m.AddAdff(instName, clk, imp.netMapAt(inst.Set()), d, q, design.S1)
		default:
			m.AddDffsr(instName, clk, bit(inst.Set()), bit(inst.Reset()), d, q, true)
		}
		return true

	case netlist.KindDlatchrs:
		en := imp.netMapAt(inst.Control())
		d, q := bit(inst.Input()), bit(inst.Output())
		if inst.Set().IsGnd() && inst.Reset().IsGnd() {
			m.AddDlatch(instName, en, d, q)
		} else {
			m.AddDlatchsr(instName, en, bit(inst.Set()), bit(inst.Reset()), d, q)
		}
		return true
	}

	if !inst.Kind.IsOperator() {
		return false
	}

	in := func() design.Sig { return imp.operatorInput(inst) }
	in1 := func() design.Sig { return imp.operatorInput1(inst) }
	in2 := func() design.Sig { return imp.operatorInput2(inst) }
	out := func() design.Sig { return imp.operatorOutput(inst) }
	signed := inst.Signed

	switch inst.Kind {
	case netlist.KindAdder:
		o := out()
		if inst.Cout() != nil {
			o = append(o, imp.netMapAt(inst.Cout()))
		}
		if inst.Cin().IsGnd() {
			m.AddAdd(instName, in1(), in2(), o, signed)
		} else {
			tmp := m.AddSignalWidth(m.NewID(), len(o)).Sig()
			m.AddAdd(m.NewID(), in1(), in2(), tmp, signed)
			m.AddAdd(instName, tmp, design.Sig{imp.netMapAt(inst.Cin())}, o, false)
		}
		return true

	case netlist.KindMultiplier:
		m.AddMul(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindDivider:
		m.AddDiv(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindModulo, netlist.KindRemainder:
		m.AddMod(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindShiftLeft:
		m.AddShl(instName, in1(), in2(), out(), false)
		return true

	case netlist.KindShiftRight:
		cin := inst.Cin()
		switch {
		case cin.IsGnd():
			m.AddShr(instName, in1(), in2(), out(), false)
		case cin == inst.Input1Bit(0):
			m.AddSshr(instName, in1(), in2(), out(), true)
		default:
			imp.fail(&UnsupportedConfigurationError{
				Inst: inst.Name, Kind: inst.Kind,
				Reason: "carry-in is neither constant 0 nor the sign bit of the left input",
			})
		}
		return true

	case netlist.KindDecoder:
		vec := design.ConstUint(1, inst.OutputSize())
		m.AddShl(instName, vec, in(), out(), false)
		return true

	case netlist.KindEnabledDecoder:
		vec := append(design.Sig{imp.netMapAt(inst.Control())},
			design.Repeat(design.Lo, inst.OutputSize()-1)...)
		m.AddShl(instName, vec, in(), out(), false)
		return true

	case netlist.KindReduceAnd:
		m.AddReduceAnd(instName, in(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindReduceOr:
		m.AddReduceOr(instName, in(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindReduceXor:
		m.AddReduceXor(instName, in(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindReduceXnor:
		m.AddReduceXnor(instName, in(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindLessThan:
		cin := inst.Cin()
		switch {
		case cin.IsGnd():
			m.AddLt(instName, in1(), in2(), imp.netMapAt(inst.Output()), signed)
		case cin.IsPwr():
			m.AddLe(instName, in1(), in2(), imp.netMapAt(inst.Output()), signed)
		default:
			imp.fail(&UnsupportedConfigurationError{
				Inst: inst.Name, Kind: inst.Kind,
				Reason: "carry-in is neither constant 0 nor constant 1",
			})
		}
		return true

	case netlist.KindWideAnd:
		m.AddAnd(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindWideOr:
		m.AddOr(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindWideXor:
		m.AddXor(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindWideXnor:
		m.AddXnor(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindWideBuf:
		m.AddPos(instName, in(), out(), signed)
		return true

	case netlist.KindWideInv:
		m.AddNot(instName, in(), out(), signed)
		return true

	case netlist.KindMinus:
		m.AddSub(instName, in1(), in2(), out(), signed)
		return true

	case netlist.KindUminus:
		m.AddNeg(instName, in(), out(), signed)
		return true

	case netlist.KindEqual:
		m.AddEq(instName, in1(), in2(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindNequal:
		m.AddNe(instName, in1(), in2(), imp.netMapAt(inst.Output()), signed)
		return true

	case netlist.KindWideMux:
		m.AddMux(instName, in1(), in2(), imp.netMapAt(inst.Control()), out())
		return true

	case netlist.KindWideTri:
		m.AddMux(instName, design.Repeat(design.HiZ, inst.OutputSize()), in(),
			imp.netMapAt(inst.Control()), out())
		return true

	case netlist.KindWideDffrs:
		sigSet := imp.operatorInport(inst, "set")
		sigReset := imp.operatorInport(inst, "reset")
		if len(sigSet) == 0 {
			sigSet = design.Repeat(design.Lo, inst.OutputSize())
		}
		if len(sigReset) == 0 {
			sigReset = design.Repeat(design.Lo, inst.OutputSize())
		}
		if len(sigSet) != inst.OutputSize() || len(sigReset) != inst.OutputSize() {
			imp.fail(&InternalConsistencyError{
				Reason: fmt.Sprintf("wide register %q: set/reset width does not match output", inst.Name),
			})
		}
		if isAllConstLow(sigSet) && isAllConstLow(sigReset) {
			m.AddDff(instName, imp.netMapAt(inst.Clock()), in(), out(), true)
		} else {
			m.AddDffsr(instName, imp.netMapAt(inst.Clock()), sigSet, sigReset, in(), out(), true)
		}
		return true
	}

	return false
}
