package importer

import (
	"errors"
	"testing"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

func runImport(t *testing.T, s *netlist.Scope, setup func(*Importer)) (*design.Design, *Importer) {
	t.Helper()
	d := design.NewDesign()
	imp := New(d)
	if setup != nil {
		setup(imp)
	}
	if err := imp.Run(s); err != nil {
		t.Fatalf("import: %v", err)
	}
	return d, imp
}

func importErr(s *netlist.Scope, setup func(*Importer)) error {
	d := design.NewDesign()
	imp := New(d)
	if setup != nil {
		setup(imp)
	}
	return imp.Run(s)
}

func userNet(s *netlist.Scope, name string) *netlist.Net {
	n := s.AddNet(name)
	n.UserDeclared = true
	return n
}

func gndNet(s *netlist.Scope, name string) *netlist.Net {
	n := s.AddNet(name)
	n.Const = netlist.ConstGnd
	return n
}

func pwrNet(s *netlist.Scope, name string) *netlist.Net {
	n := s.AddNet(name)
	n.Const = netlist.ConstPwr
	return n
}

// sigConstUint folds a signal of constant bits into its unsigned value.
func sigConstUint(t *testing.T, sig design.Sig) uint64 {
	t.Helper()
	var v uint64
	for i, b := range sig {
		if b.Sig != nil {
			t.Fatalf("bit %d is not constant", i)
		}
		if b.K == design.S1 {
			v |= 1 << uint(i)
		}
	}
	return v
}

func TestImportPortsAndBuses(t *testing.T) {
	s := netlist.NewScope("top")

	clk := userNet(s, "clk")
	s.Bind(s.AddPort("clk", netlist.DirIn), clk)

	b := s.AddPortBus("q", netlist.DirOut, 3, 0)
	for i, n := range []string{"q3", "q2", "q1", "q0"} {
		s.Bind(b.Elems[i], userNet(s, n))
	}

	d, _ := runImport(t, s, nil)
	m := d.Module("top")
	if m == nil {
		t.Fatalf("module top not imported")
	}

	w := m.SignalByName("clk")
	if w == nil || !w.PortInput || w.PortID != 1 || w.Width != 1 {
		t.Errorf("bad clk signal: %+v", w)
	}

	q := m.SignalByName("q")
	if q == nil || !q.PortOutput || q.Width != 4 || q.Offset != 0 {
		t.Errorf("bad q signal: %+v", q)
	}
}

func TestNetNamingModes(t *testing.T) {
	s := netlist.NewScope("top")
	s.AddNet("n17") // tool-generated, not user-declared

	d, _ := runImport(t, s, nil)
	if w := d.Module("top").SignalByName("n17"); w != nil {
		t.Errorf("tool-generated net kept its name outside names mode")
	}

	d2, _ := runImport(t, netlistScopeWithNet("top2", "n17"), func(imp *Importer) { imp.ModeNames = true })
	if w := d2.Module("top2").SignalByName("n17"); w == nil {
		t.Errorf("names mode dropped the source net name")
	}
}

func netlistScopeWithNet(scope, net string) *netlist.Scope {
	s := netlist.NewScope(scope)
	s.AddNet(net)
	return s
}

func TestHierarchicalImportSharedSubScope(t *testing.T) {
	sub := netlist.NewScope("sub")
	sub.Bind(sub.AddPort("x", netlist.DirIn), userNet(sub, "x"))

	top := netlist.NewScope("top")
	a := userNet(top, "a")
	b := userNet(top, "b")

	i1 := top.AddInstance(netlist.KindUser, "u1")
	i1.UserDeclared = true
	i1.SetView(sub)
	i1.ConnectPort("x", 0, a)

	i2 := top.AddInstance(netlist.KindUser, "u2")
	i2.UserDeclared = true
	i2.SetView(sub)
	i2.ConnectPort("x", 0, b)

	d, _ := runImport(t, top, nil)

	if d.Module("sub") == nil {
		t.Fatalf("shared sub scope was not imported")
	}
	m := d.Module("top")
	if m.CellByName("u1") == nil || m.CellByName("u2") == nil {
		t.Fatalf("hierarchical cells missing")
	}
	if m.CellByName("u1").Type != "sub" || m.CellByName("u2").Type != "sub" {
		t.Errorf("hierarchical cells have wrong type")
	}
	if len(d.Modules()) != 2 {
		t.Errorf("modules = %d, want 2 (sub imported once)", len(d.Modules()))
	}
}

func TestExternalReferenceError(t *testing.T) {
	parent := netlist.NewScope("parent")
	shared := userNet(parent, "shared")

	child := netlist.NewScope("child")
	inv := child.AddInstance(netlist.KindInv, "i0")
	inv.Connect(netlist.RoleIn, shared) // reaches into the enclosing scope
	inv.Connect(netlist.RoleOut, userNet(child, "y"))

	parent.AddInstance(netlist.KindUser, "u_child").SetView(child)

	err := importErr(parent, nil)
	var extErr *UnresolvedExternalReferenceError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected UnresolvedExternalReferenceError, got %v", err)
	}
	if extErr.Net != "shared" {
		t.Errorf("error names net %q, want shared", extErr.Net)
	}
}

func TestImmediateAssertions(t *testing.T) {
	s := netlist.NewScope("top")
	cond := userNet(s, "cond")
	s.AddInstance(netlist.KindImmediateAssert, "a0").Connect(netlist.RoleIn, cond)
	s.AddInstance(netlist.KindImmediateCover, "c0").Connect(netlist.RoleIn, cond)

	d, _ := runImport(t, s, nil)
	m := d.Module("top")

	asserts := m.CellsOfType(design.TypeAssert)
	if len(asserts) != 1 {
		t.Fatalf("assert cells = %d, want 1", len(asserts))
	}
	if en := asserts[0].Port("EN"); len(en) != 1 || en[0] != design.Hi {
		t.Errorf("immediate assert must be unconditionally enabled, got %v", en)
	}
	if len(m.CellsOfType(design.TypeCover)) != 1 {
		t.Errorf("cover cell missing")
	}
}

func TestConstantRails(t *testing.T) {
	s := netlist.NewScope("top")
	hi := userNet(s, "hi")
	lo := userNet(s, "lo")
	s.AddInstance(netlist.KindPwr, "p0").Connect(netlist.RoleOut, hi)
	s.AddInstance(netlist.KindGnd, "g0").Connect(netlist.RoleOut, lo)

	d, _ := runImport(t, s, nil)
	m := d.Module("top")

	found := map[design.State]bool{}
	for _, conn := range m.Conns {
		if len(conn.Src) == 1 && conn.Src[0].IsConst() {
			found[conn.Src[0].K] = true
		}
	}
	if !found[design.S1] || !found[design.S0] {
		t.Errorf("expected constant drivers for pwr and gnd rails, conns: %+v", m.Conns)
	}
}

func TestMemoryImportWidthAndSize(t *testing.T) {
	s := netlist.NewScope("top")

	ram := s.AddNet("mem")
	ram.UserDeclared = true
	ram.Ram = true
	ram.Size = 16
	ram.Left, ram.Right = 15, 0

	rd := s.AddInstance(netlist.KindReadPort, "rd0")
	rd.Connect(netlist.RoleIn, ram)
	for i := 0; i < 2; i++ {
		rd.ConnectBit(netlist.RoleIn1Bit, i, userNet(s, "addr"+string(rune('0'+i))))
	}
	for i := 0; i < 4; i++ {
		rd.ConnectBit(netlist.RoleOutBit, i, userNet(s, "data"+string(rune('0'+i))))
	}

	d, _ := runImport(t, s, nil)
	m := d.Module("top")

	mem := m.MemoryByName("mem")
	if mem == nil {
		t.Fatalf("memory not imported")
	}
	if mem.Width != 4 || mem.Size != 4 {
		t.Errorf("memory = %dx%d, want 4x4", mem.Size, mem.Width)
	}

	rdCells := m.CellsOfType(design.TypeMemRd)
	if len(rdCells) != 1 {
		t.Fatalf("memrd cells = %d, want 1", len(rdCells))
	}
	c := rdCells[0]
	if c.Params["memid"] != "mem" || c.Params["abits"] != 2 || c.Params["width"] != 4 {
		t.Errorf("bad memrd params: %+v", c.Params)
	}
}

func TestMemoryInitAddressing(t *testing.T) {
	build := func(left, right int) *netlist.Scope {
		s := netlist.NewScope("top")
		ram := s.AddNet("mem")
		ram.Ram = true
		ram.Size = 16
		ram.Left, ram.Right = left, right
		ram.WideInit = "16'b0001001000110100"

		rd := s.AddInstance(netlist.KindReadPort, "rd0")
		rd.Connect(netlist.RoleIn, ram)
		for i := 0; i < 2; i++ {
			rd.ConnectBit(netlist.RoleIn1Bit, i, userNet(s, "a"+string(rune('0'+i))))
		}
		for i := 0; i < 4; i++ {
			rd.ConnectBit(netlist.RoleOutBit, i, userNet(s, "d"+string(rune('0'+i))))
		}
		return s
	}

	read := func(t *testing.T, d *design.Design) map[int]uint64 {
		t.Helper()
		words := map[int]uint64{}
		for _, c := range d.Module("top").CellsOfType(design.TypeMemInit) {
			addr, ok := c.Params["addr"].(int)
			if !ok {
				t.Fatalf("meminit addr param missing: %+v", c.Params)
			}
			words[addr] = sigConstUint(t, c.Port("DATA"))
		}
		return words
	}

	// Descending range: the first word in the string is the highest address.
	d, _ := runImport(t, build(15, 0), nil)
	words := read(t, d)
	want := map[int]uint64{3: 1, 2: 2, 1: 3, 0: 4}
	for addr, w := range want {
		if words[addr] != w {
			t.Errorf("descending: word[%d] = %d, want %d", addr, words[addr], w)
		}
	}

	// Ascending range: word order follows the string.
	d2, _ := runImport(t, build(0, 15), nil)
	words = read(t, d2)
	want = map[int]uint64{0: 1, 1: 2, 2: 3, 3: 4}
	for addr, w := range want {
		if words[addr] != w {
			t.Errorf("ascending: word[%d] = %d, want %d", addr, words[addr], w)
		}
	}
}

func TestMemoryNonPortReference(t *testing.T) {
	s := netlist.NewScope("top")
	ram := s.AddNet("mem")
	ram.Ram = true
	ram.Size = 8

	inv := s.AddInstance(netlist.KindInv, "i0")
	inv.Connect(netlist.RoleIn, ram)
	inv.Connect(netlist.RoleOut, userNet(s, "y"))

	err := importErr(s, nil)
	var cfgErr *UnsupportedConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected UnsupportedConfigurationError, got %v", err)
	}
}

func TestClockedWritePort(t *testing.T) {
	s := netlist.NewScope("top")
	ram := s.AddNet("mem")
	ram.Ram = true
	ram.Size = 8

	clk := userNet(s, "clk")
	en := userNet(s, "en")

	wr := s.AddInstance(netlist.KindClockedWritePort, "wr0")
	wr.Connect(netlist.RoleOut, ram)
	wr.Connect(netlist.RoleClock, clk)
	wr.Connect(netlist.RoleControl, en)
	wr.ConnectBit(netlist.RoleIn1Bit, 0, userNet(s, "a0"))
	for i := 0; i < 4; i++ {
		wr.ConnectBit(netlist.RoleIn2Bit, i, userNet(s, "w"+string(rune('0'+i))))
	}

	d, _ := runImport(t, s, nil)
	m := d.Module("top")

	wrCells := m.CellsOfType(design.TypeMemWr)
	if len(wrCells) != 1 {
		t.Fatalf("memwr cells = %d, want 1", len(wrCells))
	}
	c := wrCells[0]
	if c.Params["clk_enable"] != true {
		t.Errorf("clocked write port must set clk_enable")
	}
	if len(c.Port("EN")) != 4 {
		t.Errorf("EN width = %d, want data width 4", len(c.Port("EN")))
	}
}

func TestModuleRedefinition(t *testing.T) {
	subA := netlist.NewScope("sub")
	subB := netlist.NewScope("sub") // same name, distinct scope

	top := netlist.NewScope("top")
	top.AddInstance(netlist.KindUser, "u1").SetView(subA)
	top.AddInstance(netlist.KindUser, "u2").SetView(subB)

	if err := importErr(top, nil); err == nil {
		t.Fatalf("expected re-definition error, got nil")
	}
}
