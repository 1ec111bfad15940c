package importer

import (
	"fmt"
	"os"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// Importer translates a hierarchical source netlist into flat per-scope
// modules of a design container. One scope is translated at a time; user
// instances of not-yet-seen scopes push their sub-scope onto the worklist.
type Importer struct {
	Design *design.Design

	ModeGates   bool // decompose everything into single-bit gates
	ModeKeep    bool // tolerate unsupported primitives, keep them as opaque cells
	ModeNoSva   bool // ignore temporal assertions, no checker logic
	ModeNoSvaPP bool // skip the assertion pre-processing transform
	ModeNames   bool // preserve all source names, not just user-declared ones
	Verbose     bool

	// Warnings raised while demoting errors in keep mode.
	Warnings []string

	scope  *netlist.Scope
	module *design.Module
	netMap map[*netlist.Net]design.Bit
}

// New creates an importer populating the given design.
func New(d *design.Design) *Importer {
	return &Importer{Design: d}
}

func (imp *Importer) logf(format string, args ...any) {
	if imp.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func (imp *Importer) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	imp.Warnings = append(imp.Warnings, msg)
	fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
}

// Run translates the top scope and every scope reachable from it.
func (imp *Importer) Run(top *netlist.Scope) error {
	todo := mapset.NewThreadUnsafeSet(top)
	for todo.Cardinality() > 0 {
		s, _ := todo.Pop()
		if err := imp.ImportScope(s, todo); err != nil {
			return err
		}
	}
	return nil
}

// moduleName returns the target module name of a scope. Operator-expansion
// scopes are synthesized by the front-end and get a reserved prefix.
func moduleName(s *netlist.Scope) string {
	if s.Operator {
		return "$op$" + s.Name
	}
	return s.Name
}

// ImportScope translates one scope into a new module. Instances of scopes
// not yet translated are added to todo.
func (imp *Importer) ImportScope(s *netlist.Scope, todo mapset.Set[*netlist.Scope]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(importFault)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("importing scope %q: %w", s.Name, f.err)
		}
	}()

	name := moduleName(s)
	if imp.Design.Has(name) {
		if !s.Operator {
			return fmt.Errorf("re-definition of module %q", s.Name)
		}
		return nil
	}

	imp.scope = s
	imp.module = imp.Design.AddModule(name)
	imp.netMap = map[*netlist.Net]design.Bit{}

	if s.BlackBox {
		imp.logf("Importing blackbox module %s.", name)
		imp.module.BlackBox = true
		imp.module.Attrs["blackbox"] = "1"
	} else {
		imp.logf("Importing module %s.", name)
	}
	for k, v := range s.Attrs {
		imp.module.Attrs[k] = v
	}

	imp.importPorts()
	initNets, anyconstNets, anyseqNets := imp.importNets()
	imp.importNetBuses(initNets, anyconstNets, anyseqNets)
	imp.importInstances(todo)
	return nil
}

// netMapAt resolves the target bit of a source net. External references
// are fatal here; the promotion pre-pass repairs them when requested.
func (imp *Importer) netMapAt(n *netlist.Net) design.Bit {
	if n.ExternalTo(imp.scope) {
		imp.fail(&UnresolvedExternalReferenceError{
			Net:   n.Name,
			Owner: n.Owner().FullName(),
			Scope: imp.scope.FullName(),
		})
	}
	b, ok := imp.netMap[n]
	if !ok {
		imp.fail(&InternalConsistencyError{
			Reason: fmt.Sprintf("net %q has no target signal", n.Name),
		})
	}
	return b
}

func importAttrs(dst map[string]string, attrs map[string]string, src string) {
	if src != "" {
		dst["src"] = src
	}
	for k, v := range attrs {
		dst[k] = v
	}
}

func (imp *Importer) importPorts() {
	s, m := imp.scope, imp.module

	for _, p := range s.Ports {
		if p.Bus != nil {
			continue
		}
		imp.logf("  importing port %s.", p.Name)

		w := m.AddSignal(p.Name)
		importAttrs(w.Attrs, p.Attrs, p.Src)
		w.PortID = s.IndexOf(p) + 1
		if p.Dir == netlist.DirIn || p.Dir == netlist.DirInout {
			w.PortInput = true
		}
		if p.Dir == netlist.DirOut || p.Dir == netlist.DirInout {
			w.PortOutput = true
		}

		if p.Net == nil {
			continue
		}
		if _, ok := imp.netMap[p.Net]; !ok {
			imp.netMap[p.Net] = w.Bit(0)
		} else if w.PortInput {
			m.ConnectBit(imp.netMapAt(p.Net), w.Bit(0))
		} else {
			m.ConnectBit(w.Bit(0), imp.netMapAt(p.Net))
		}
	}

	for _, b := range s.PortBuses {
		imp.logf("  importing portbus %s.", b.Name)

		w := m.AddSignalWidth(b.Name, b.Size())
		w.Offset = min(b.Left, b.Right)
		importAttrs(w.Attrs, b.Attrs, b.Src)
		if b.Dir == netlist.DirIn || b.Dir == netlist.DirInout {
			w.PortInput = true
		}
		if b.Dir == netlist.DirOut || b.Dir == netlist.DirInout {
			w.PortOutput = true
		}

		for _, i := range b.IndexOrder() {
			p := b.ElementAt(i)
			if p == nil || p.Net == nil {
				continue
			}
			bit := w.Bit(i - w.Offset)
			if _, ok := imp.netMap[p.Net]; !ok {
				imp.netMap[p.Net] = bit
			} else if w.PortInput {
				m.ConnectBit(imp.netMapAt(p.Net), bit)
			} else {
				m.ConnectBit(bit, imp.netMapAt(p.Net))
			}
		}
	}
}

// importNets resolves freestanding nets, lowers RAM-shaped nets into
// memories, and collects init values and random-marker nets for the
// net-bus pass.
func (imp *Importer) importNets() (map[*netlist.Net]byte, mapset.Set[*netlist.Net], mapset.Set[*netlist.Net]) {
	s, m := imp.scope, imp.module

	initNets := map[*netlist.Net]byte{}
	anyconstNets := mapset.NewThreadUnsafeSet[*netlist.Net]()
	anyseqNets := mapset.NewThreadUnsafeSet[*netlist.Net]()

	for _, n := range s.Nets {
		if n.Ram {
			imp.importMemory(n)
			continue
		}

		if n.Init != 0 {
			initNets[n] = n.Init
		}
		if n.RandConst {
			anyconstNets.Add(n)
		} else if n.Rand {
			anyseqNets.Add(n)
		}

		if _, ok := imp.netMap[n]; ok {
			imp.logf("  skipping net %s.", n.Name)
			continue
		}
		if n.Bus != nil {
			continue
		}

		name := m.Uniquify(imp.signalName(n.Name, n.UserDeclared))
		imp.logf("  importing net %s as %s.", n.Name, name)

		w := m.AddSignal(name)
		importAttrs(w.Attrs, n.Attrs, n.Src)
		imp.netMap[n] = w.Bit(0)
	}

	return initNets, anyconstNets, anyseqNets
}

func (imp *Importer) signalName(name string, userDeclared bool) string {
	if imp.ModeNames || userDeclared {
		return name
	}
	return imp.module.NewID()
}

func (imp *Importer) importNetBuses(initNets map[*netlist.Net]byte,
	anyconstNets, anyseqNets mapset.Set[*netlist.Net]) {

	s, m := imp.scope, imp.module

	for _, b := range s.NetBuses {
		foundNewNet := false
		for _, i := range b.IndexOrder() {
			if _, ok := imp.netMap[b.ElementAt(i)]; !ok {
				foundNewNet = true
			}
		}

		if foundNewNet {
			name := m.Uniquify(imp.signalName(b.Name, b.UserDeclared))
			imp.logf("  importing netbus %s as %s.", b.Name, name)

			w := m.AddSignalWidth(name, b.Size())
			w.Offset = min(b.Left, b.Right)
			importAttrs(w.Attrs, b.Attrs, b.Src)

			for _, i := range b.IndexOrder() {
				n := b.ElementAt(i)
				if n == nil {
					continue
				}
				bitIdx := i - w.Offset
				bit := w.Bit(bitIdx)

				if v, ok := initNets[n]; ok {
					switch v {
					case '0':
						w.SetInitBit(bitIdx, design.S0)
					case '1':
						w.SetInitBit(bitIdx, design.S1)
					default:
						w.SetInitBit(bitIdx, design.Sx)
					}
					delete(initNets, n)
				}

				if _, ok := imp.netMap[n]; !ok {
					imp.netMap[n] = bit
				} else {
					m.ConnectBit(bit, imp.netMapAt(n))
				}
			}
		} else {
			imp.logf("  skipping netbus %s.", b.Name)
		}

		// Random-marked bus elements group into one generator per bus,
		// least significant bit first.
		var anyconstSig, anyseqSig design.Sig
		order := b.IndexOrder()
		for i := len(order) - 1; i >= 0; i-- {
			n := b.ElementAt(order[i])
			if n == nil {
				continue
			}
			if anyconstNets.Contains(n) {
				anyconstSig = append(anyconstSig, imp.netMapAt(n))
				anyconstNets.Remove(n)
			}
			if anyseqNets.Contains(n) {
				anyseqSig = append(anyseqSig, imp.netMapAt(n))
				anyseqNets.Remove(n)
			}
		}
		if len(anyconstSig) > 0 {
			m.Connect(anyconstSig, m.AnyConst(m.NewID(), len(anyconstSig)))
		}
		if len(anyseqSig) > 0 {
			m.Connect(anyseqSig, m.AnySeq(m.NewID(), len(anyseqSig)))
		}
	}

	// Leftover init values on freestanding nets.
	for n, v := range initNets {
		bit := imp.netMapAt(n)
		if bit.Sig == nil {
			imp.fail(&InternalConsistencyError{
				Reason: fmt.Sprintf("init value on constant bit for net %q", n.Name),
			})
		}
		switch v {
		case '0':
			bit.Sig.SetInitBit(bit.Off, design.S0)
		case '1':
			bit.Sig.SetInitBit(bit.Off, design.S1)
		default:
			bit.Sig.SetInitBit(bit.Off, design.Sx)
		}
	}

	// Leftover random-marked freestanding nets each get their own
	// single-bit generator.
	for n := range anyconstNets.Iter() {
		m.Connect(design.Sig{imp.netMapAt(n)}, m.AnyConst(m.NewID(), 1))
	}
	for n := range anyseqNets.Iter() {
		m.Connect(design.Sig{imp.netMapAt(n)}, m.AnySeq(m.NewID(), 1))
	}
}

// importMemory lowers a RAM-shaped net into a memory object plus per-word
// init cells. The read/write port instances referencing the net lower
// later, in the instance loop.
func (imp *Importer) importMemory(n *netlist.Net) {
	m := imp.module

	totalBits := n.Size
	bitsInWord := totalBits
	for _, c := range n.Refs() {
		switch c.Inst.Kind {
		case netlist.KindReadPort:
			bitsInWord = min(bitsInWord, c.Inst.OutputSize())
		case netlist.KindWritePort, netlist.KindClockedWritePort:
			bitsInWord = min(bitsInWord, c.Inst.Input2Size())
		default:
			imp.fail(&UnsupportedConfigurationError{
				Inst: c.Inst.Name, Kind: c.Inst.Kind,
				Reason: fmt.Sprintf("RAM net %q connected to non-memory-port instance", n.Name),
			})
		}
	}

	mem := m.AddMemory(n.Name, bitsInWord, totalBits/bitsInWord)
	importAttrs(mem.Attrs, n.Attrs, n.Src)

	imp.importMemoryInit(n, mem)
}

// importMemoryInit parses the packed initial-value string: an optional
// size/radix prefix up to an apostrophe, then binary digits, most
// significant bit of the first word first. Words without a single defined
// bit get no init cell. The word index follows the net's declared range
// direction.
func (imp *Importer) importMemoryInit(n *netlist.Net, mem *design.Memory) {
	data := n.WideInit
	if data == "" {
		return
	}

	pos := 0
	for pos < len(data) && data[pos] != '\'' {
		pos++
	}
	if pos < len(data) && data[pos] == '\'' {
		pos++
	}
	if pos < len(data) {
		if data[pos] != 'b' {
			imp.fail(&InternalConsistencyError{
				Reason: fmt.Sprintf("RAM net %q: initial value is not binary", n.Name),
			})
		}
		pos++
	}

	for wordIdx := 0; wordIdx < mem.Size; wordIdx++ {
		initval := make([]design.State, mem.Width)
		for i := range initval {
			initval[i] = design.Sx
		}
		valid := false
		for bitIdx := mem.Width - 1; bitIdx >= 0; bitIdx-- {
			if pos >= len(data) {
				break
			}
			switch data[pos] {
			case '0':
				initval[bitIdx] = design.S0
				valid = true
			case '1':
				initval[bitIdx] = design.S1
				valid = true
			}
			pos++
		}
		if !valid {
			continue
		}

		addr := wordIdx
		if n.Left >= n.Right {
			addr = mem.Size - wordIdx - 1
		}

		cell := imp.module.AddCell(imp.module.NewID(), design.TypeMemInit)
		cell.Params["memid"] = mem.Name
		cell.Params["addr"] = addr
		cell.Params["words"] = 1
		cell.Params["width"] = mem.Width
		cell.SetPort("DATA", design.FromStates(initval))
	}
}

// Wide operator ports arrive bit-sliced with index 0 holding the most
// significant bit; target Sigs are least significant first. Unconnected
// input bits read as high impedance, unconnected output bits get filler
// signals.

func (imp *Importer) wideInput(bits []*netlist.Net) design.Sig {
	sig := make(design.Sig, 0, len(bits))
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] != nil {
			sig = append(sig, imp.netMapAt(bits[i]))
		} else {
			sig = append(sig, design.HiZ)
		}
	}
	return sig
}

func (imp *Importer) operatorInput(inst *netlist.Instance) design.Sig {
	return imp.wideInput(inst.InputBits())
}

func (imp *Importer) operatorInput1(inst *netlist.Instance) design.Sig {
	return imp.wideInput(inst.Input1Bits())
}

func (imp *Importer) operatorInput2(inst *netlist.Instance) design.Sig {
	return imp.wideInput(inst.Input2Bits())
}

func (imp *Importer) operatorOutput(inst *netlist.Instance) design.Sig {
	bits := inst.OutputBits()
	sig := make(design.Sig, 0, len(bits))
	var filler *design.Signal
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] != nil {
			sig = append(sig, imp.netMapAt(bits[i]))
			filler = nil
		} else {
			if filler == nil {
				filler = imp.module.AddSignal(imp.module.NewID())
			} else {
				filler.Width++
			}
			sig = append(sig, filler.Bit(filler.Width-1))
		}
	}
	return sig
}

// operatorInport gathers a named port-bus connection of an operator
// instance, least significant bit first. Constant rails become constant
// bits so callers can test for all-zero wiring.
func (imp *Importer) operatorInport(inst *netlist.Instance, port string) design.Sig {
	var width int
	for _, c := range inst.Conns() {
		if c.Role == netlist.RolePort && c.Port == port && c.Index+1 > width {
			width = c.Index + 1
		}
	}
	sig := make(design.Sig, width)
	for i := range sig {
		sig[i] = design.HiZ
	}
	for _, c := range inst.Conns() {
		if c.Role != netlist.RolePort || c.Port != port {
			continue
		}
		var b design.Bit
		switch {
		case c.Net.IsGnd():
			b = design.Lo
		case c.Net.IsPwr():
			b = design.Hi
		default:
			b = imp.netMapAt(c.Net)
		}
		sig[width-1-c.Index] = b
	}
	return sig
}

func isAllConstLow(sig design.Sig) bool {
	for _, b := range sig {
		if b.Sig != nil || b.K == design.S1 {
			return false
		}
	}
	return true
}

// importInstances lowers every instance of the current scope, collects
// temporal-assertion roots, compiles them, and merges the delay registers
// the compilation produced.
func (imp *Importer) importInstances(todo mapset.Set[*netlist.Scope]) {
	m := imp.module

	svaAsserts := mapset.NewThreadUnsafeSet[*netlist.Instance]()
	svaAssumes := mapset.NewThreadUnsafeSet[*netlist.Instance]()
	svaCovers := mapset.NewThreadUnsafeSet[*netlist.Instance]()
	pastFFs := mapset.NewThreadUnsafeSet[*design.Cell]()

	for _, inst := range imp.scope.Instances {
		instName := m.Uniquify(imp.signalName(inst.Name, inst.UserDeclared))
		imp.logf("  importing cell %s (%v) as %s.", inst.Name, inst.Kind, instName)

		switch inst.Kind {
		case netlist.KindImmediateAssert:
			m.AddAssert(m.NewID(), imp.netMapAt(inst.Input()), design.Hi)
			continue
		case netlist.KindImmediateAssume:
			m.AddAssume(m.NewID(), imp.netMapAt(inst.Input()), design.Hi)
			continue
		case netlist.KindImmediateCover:
			m.AddCover(m.NewID(), imp.netMapAt(inst.Input()), design.Hi)
			continue
		case netlist.KindPwr:
			m.ConnectBit(imp.netMapAt(inst.Output()), design.Hi)
			continue
		case netlist.KindGnd:
			m.ConnectBit(imp.netMapAt(inst.Output()), design.Lo)
			continue
		case netlist.KindX:
			m.ConnectBit(imp.netMapAt(inst.Output()), design.Unk)
			continue
		case netlist.KindZ:
			m.ConnectBit(imp.netMapAt(inst.Output()), design.HiZ)
			continue
		case netlist.KindBuf:
			c := m.AddBufGate(instName, imp.netMapAt(inst.Input()), imp.netMapAt(inst.Output()))
			importAttrs(c.Attrs, inst.Attrs, inst.Src)
			continue
		case netlist.KindReadPort:
			imp.lowerReadPort(inst, instName)
			continue
		case netlist.KindWritePort, netlist.KindClockedWritePort:
			imp.lowerWritePort(inst, instName)
			continue
		}

		if !imp.ModeGates {
			if imp.lowerCells(inst, instName) {
				continue
			}
			if inst.Kind.IsOperator() && !inst.Kind.IsTemporal() {
				imp.warnf("unsupported operator %v, falling back to structural instance", inst.Kind)
			}
		} else {
			if imp.lowerGates(inst, instName) {
				continue
			}
		}

		switch inst.Kind {
		case netlist.KindSvaAssert, netlist.KindPslAssert:
			svaAsserts.Add(inst)
		case netlist.KindSvaAssume, netlist.KindPslAssume:
			svaAssumes.Add(inst)
		case netlist.KindSvaCover, netlist.KindPslCover:
			svaCovers.Add(inst)
		}

		if inst.Kind == netlist.KindSvaPast && !imp.ModeNoSva {
			edge := imp.resolveClockEdge(driverOf(inst.Input2()))

			sigD := imp.netMapAt(inst.Input1())
			sigQ := imp.netMapAt(inst.Output())
			imp.logf("    %sedge FF with D=%v, Q=%v, C=%v.", edgeName(edge.posedge), sigD, sigQ, edge.clock)

			pastFFs.Add(m.AddDff(m.NewID(), edge.clock, design.Sig{sigD}, design.Sig{sigQ}, edge.posedge))
			if !imp.ModeKeep {
				continue
			}
		}

		if inst.Kind == netlist.KindPrev && !imp.ModeNoSva {
			clock := inst.Clock()
			if clock != nil && !clock.IsConstant() {
				edge := imp.resolveClockEdge(driverOf(clock))

				sigD := imp.wideInput(inst.InputBits())
				sigQ := imp.wideInput(inst.OutputBits())
				imp.logf("    %sedge FF with D=%v, Q=%v, C=%v.", edgeName(edge.posedge), sigD, sigQ, edge.clock)

				ff := m.AddDff(m.NewID(), edge.clock, sigD, sigQ, edge.posedge)
				if inst.InputSize() == 1 {
					pastFFs.Add(ff)
				}
				if !imp.ModeKeep {
					continue
				}
			}
		}

		if !imp.ModeKeep && inst.Kind.IsTemporal() {
			imp.logf("    skipping temporal cell outside keep mode.")
			continue
		}

		if inst.Kind.IsPrimitive() {
			if inst.Kind == netlist.KindHdlAssertion {
				continue
			}
			if !imp.ModeKeep {
				imp.fail(&UnsupportedPrimitiveError{Inst: inst.Name, Kind: inst.Kind})
			}
			if !inst.Kind.IsTemporal() {
				imp.warnf("unsupported primitive %q of kind %v", inst.Name, inst.Kind)
			}
		}

		imp.importStructural(inst, instName, todo)
	}

	if !imp.ModeNoSvaPP {
		for inst := range svaAsserts.Iter() {
			preprocessAssertion(imp, inst, checkAssert)
		}
		for inst := range svaAssumes.Iter() {
			preprocessAssertion(imp, inst, checkAssume)
		}
		for inst := range svaCovers.Iter() {
			preprocessAssertion(imp, inst, checkCover)
		}
	}

	if !imp.ModeNoSva {
		for inst := range svaAsserts.Iter() {
			imp.compileAssertion(inst, checkAssert)
		}
		for inst := range svaAssumes.Iter() {
			imp.compileAssertion(inst, checkAssume)
		}
		for inst := range svaCovers.Iter() {
			imp.compileAssertion(inst, checkCover)
		}
		imp.mergePastFFs(pastFFs)
	}
}

func edgeName(posedge bool) string {
	if posedge {
		return "pos"
	}
	return "neg"
}

func driverOf(n *netlist.Net) *netlist.Instance {
	if n == nil {
		return nil
	}
	return n.Driver()
}

func (imp *Importer) lowerReadPort(inst *netlist.Instance, instName string) {
	mem := imp.module.MemoryByName(inst.Input().Name)
	if mem == nil {
		imp.fail(&InternalConsistencyError{
			Reason: fmt.Sprintf("read port %q references unknown memory %q", inst.Name, inst.Input().Name),
		})
	}
	if mem.Width != inst.OutputSize() {
		imp.fail(&UnsupportedConfigurationError{
			Inst: inst.Name, Kind: inst.Kind,
			Reason: fmt.Sprintf("asymmetric memory %q: port width %d, memory width %d",
				mem.Name, inst.OutputSize(), mem.Width),
		})
	}

	addr := imp.operatorInput1(inst)
	data := imp.operatorOutput(inst)

	cell := imp.module.AddCell(instName, design.TypeMemRd)
	cell.Params["memid"] = mem.Name
	cell.Params["clk_enable"] = false
	cell.Params["clk_polarity"] = true
	cell.Params["transparent"] = false
	cell.Params["abits"] = len(addr)
	cell.Params["width"] = len(data)
	cell.SetPort("CLK", design.Sig{design.Unk})
	cell.SetPort("EN", design.Sig{design.Unk})
	cell.SetPort("ADDR", addr)
	cell.SetPort("DATA", data)
}

func (imp *Importer) lowerWritePort(inst *netlist.Instance, instName string) {
	mem := imp.module.MemoryByName(inst.Output().Name)
	if mem == nil {
		imp.fail(&InternalConsistencyError{
			Reason: fmt.Sprintf("write port %q references unknown memory %q", inst.Name, inst.Output().Name),
		})
	}
	if mem.Width != inst.Input2Size() {
		imp.fail(&UnsupportedConfigurationError{
			Inst: inst.Name, Kind: inst.Kind,
			Reason: fmt.Sprintf("asymmetric memory %q: port width %d, memory width %d",
				mem.Name, inst.Input2Size(), mem.Width),
		})
	}

	addr := imp.operatorInput1(inst)
	data := imp.operatorInput2(inst)

	cell := imp.module.AddCell(instName, design.TypeMemWr)
	cell.Params["memid"] = mem.Name
	cell.Params["clk_enable"] = false
	cell.Params["clk_polarity"] = true
	cell.Params["priority"] = 0
	cell.Params["abits"] = len(addr)
	cell.Params["width"] = len(data)
	cell.SetPort("EN", design.Repeat(imp.netMapAt(inst.Control()), len(data)))
	cell.SetPort("CLK", design.Sig{design.Lo})
	cell.SetPort("ADDR", addr)
	cell.SetPort("DATA", data)

	if inst.Kind == netlist.KindClockedWritePort {
		cell.Params["clk_enable"] = true
		cell.SetPort("CLK", design.Sig{imp.netMapAt(inst.Clock())})
	}
}

// importStructural keeps an instance as a hierarchical (or, in keep mode,
// opaque) cell with per-port-bit connections, and queues its sub-scope.
func (imp *Importer) importStructural(inst *netlist.Instance, instName string, todo mapset.Set[*netlist.Scope]) {
	m := imp.module

	var cellType string
	if inst.View != nil {
		cellType = moduleName(inst.View)
		if !imp.Design.Has(cellType) {
			todo.Add(inst.View)
		}
	} else {
		cellType = "$prim$" + inst.Kind.String()
	}

	cell := m.AddCell(instName, cellType)
	importAttrs(cell.Attrs, inst.Attrs, inst.Src)
	if inst.Kind.IsPrimitive() && imp.ModeKeep {
		cell.Attrs["keep"] = "1"
	}

	// Role-based connections on kept primitives turn into ports named
	// after the role, so nothing is lost in the opaque cell.
	conns := map[string]design.Sig{}
	for _, c := range inst.Conns() {
		port := c.Port
		if c.Role != netlist.RolePort {
			port = c.Role.String()
		}
		sig := conns[port]
		for len(sig) <= c.Index {
			sig = append(sig, m.AddSignal(m.NewID()).Bit(0))
		}
		sig[c.Index] = imp.netMapAt(c.Net)
		conns[port] = sig
	}
	for port, sig := range conns {
		cell.SetPort(port, sig)
	}
}
