package importer

import (
	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// clockEdge is the (clock, polarity) pair a clocking context resolves to.
// A value type with no identity, produced fresh on every resolution.
type clockEdge struct {
	clockNet *netlist.Net
	clock    design.Bit
	posedge  bool
}

// followInv returns the operand of a single-driver inverter, nil when the
// net is not one.
func followInv(n *netlist.Net) *netlist.Net {
	if n == nil || n.MultipleDriven() {
		return nil
	}
	d := n.Driver()
	if d == nil || d.Kind != netlist.KindInv {
		return nil
	}
	return d.Input()
}

// followPrev returns the operand of a single-bit, single-driver one-cycle
// delay operator, nil when the net is not one.
func followPrev(n *netlist.Net) *netlist.Net {
	if n == nil || n.MultipleDriven() {
		return nil
	}
	d := n.Driver()
	if d == nil || d.Kind != netlist.KindPrev || d.InputSize() != 1 {
		return nil
	}
	return d.InputBit(0)
}

func followInvPrev(n *netlist.Net) *netlist.Net {
	return followPrev(followInv(n))
}

// resolveClockEdge matches the two structural clock patterns: the explicit
// posedge primitive (with one inverter pushed through), and the AND of a
// signal with an inverted delayed copy of itself. The caller guarantees a
// clocking context was identified upstream, so a failed match is a defect.
func (imp *Importer) resolveClockEdge(inst *netlist.Instance) clockEdge {
	if inst == nil {
		imp.fail(&InternalConsistencyError{Reason: "clock edge resolution on a driverless net"})
	}

	if inst.Kind == netlist.KindSvaPosedge {
		edge := clockEdge{clockNet: inst.Input(), posedge: true}

		d := edge.clockNet.Driver()
		if !edge.clockNet.MultipleDriven() && d != nil && d.Kind == netlist.KindInv {
			edge.clockNet = d.Input()
			edge.posedge = false
		}

		edge.clock = imp.netMapAt(edge.clockNet)
		return edge
	}

	if inst.Kind == netlist.KindAnd {
		w1, w2 := inst.Input1(), inst.Input2()

		if n := followInvPrev(w1); n != nil && n == w2 {
			return clockEdge{clockNet: n, clock: imp.netMapAt(n), posedge: true}
		}
		if n := followInvPrev(w2); n != nil && n == w1 {
			return clockEdge{clockNet: n, clock: imp.netMapAt(n), posedge: true}
		}
		if n := followPrev(w1); n != nil && n == followInv(w2) {
			return clockEdge{clockNet: n, clock: imp.netMapAt(n), posedge: false}
		}
		if n := followPrev(w2); n != nil && n == followInv(w1) {
			return clockEdge{clockNet: n, clock: imp.netMapAt(n), posedge: false}
		}
	}

	imp.fail(&InternalConsistencyError{
		Reason: "no clock edge pattern matched instance " + inst.Name,
	})
	return clockEdge{}
}
