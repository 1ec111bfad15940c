package importer

import (
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// Assertion pre-processing: rewrites non-overlapped implications under
// cover roots into sequence concatenations, directly on the source
// netlist, before the sequence compiler runs. The rewrite is currently
// not applied; see preprocess below.

type svaPreprocessor struct {
	imp   *Importer
	scope *netlist.Scope
	root  *netlist.Instance
	kind  checkKind
}

// preprocessAssertion runs the pre-processing worker for one root.
func preprocessAssertion(imp *Importer, root *netlist.Instance, kind checkKind) {
	pp := &svaPreprocessor{
		imp:   imp,
		scope: root.Owner(),
		root:  root,
		kind:  kind,
	}
	pp.preprocess()
}

// rewireScalar repoints a scalar connection of an instance, adding it when
// absent.
func rewireScalar(inst *netlist.Instance, role netlist.Role, n *netlist.Net) {
	for _, c := range inst.Conns() {
		if c.Role == role {
			inst.Rewire(c, n)
			return
		}
	}
	inst.Connect(role, n)
}

// implToSeq walks the expression tree below a root and returns the
// replacement net for a rewritten subtree, nil when the subtree is kept.
func (pp *svaPreprocessor) implToSeq(inst *netlist.Instance) *netlist.Net {
	if inst == nil {
		return nil
	}

	switch inst.Kind {
	case netlist.KindSvaAssert, netlist.KindSvaAssume, netlist.KindSvaCover:
		if newNet := pp.implToSeq(astDriver(inst.Input())); newNet != nil {
			rewireScalar(inst, netlist.RoleIn, newNet)
		}
		return nil

	case netlist.KindSvaAt:
		if newNet := pp.implToSeq(astDriver(inst.Input2())); newNet != nil {
			rewireScalar(inst, netlist.RoleIn2, newNet)
		}
		return nil

	case netlist.KindSvaNonOverlappedImpl:
		if pp.kind == checkCover {
			newIn1 := pp.implToSeq(astDriver(inst.Input1()))
			newIn2 := pp.implToSeq(astDriver(inst.Input2()))
			if newIn1 == nil {
				newIn1 = inst.Input1()
			}
			if newIn2 == nil {
				newIn2 = inst.Input2()
			}
			return pp.scope.SvaBinary(netlist.KindSvaSeqConcat, newIn1, newIn2, inst.Src)
		}
	}

	return nil
}

func (pp *svaPreprocessor) preprocess() {
	// The rewrite changes cover semantics for properties mixing
	// implication and concatenation operands; disabled until that is
	// resolved.

	// pp.implToSeq(pp.root)
}
