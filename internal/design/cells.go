package design

// Cell type identifiers. The gate-level types are single-bit primitives;
// everything else is a width-parameterized cell.
const (
	TypeAndGate   = "and_gate"
	TypeOrGate    = "or_gate"
	TypeXorGate   = "xor_gate"
	TypeXnorGate  = "xnor_gate"
	TypeNotGate   = "not_gate"
	TypeBufGate   = "buf_gate"
	TypeMuxGate   = "mux_gate"
	TypeDffGate   = "dff_gate"
	TypeAdffGate  = "adff_gate"
	TypeDffsrGate = "dffsr_gate"

	TypeAnd        = "and"
	TypeOr         = "or"
	TypeXor        = "xor"
	TypeXnor       = "xnor"
	TypeNot        = "not"
	TypePos        = "pos"
	TypeNeg        = "neg"
	TypeAdd        = "add"
	TypeSub        = "sub"
	TypeMul        = "mul"
	TypeDiv        = "div"
	TypeMod        = "mod"
	TypeShl        = "shl"
	TypeShr        = "shr"
	TypeSshr       = "sshr"
	TypeLt         = "lt"
	TypeLe         = "le"
	TypeEq         = "eq"
	TypeNe         = "ne"
	TypeMux        = "mux"
	TypeReduceAnd  = "reduce_and"
	TypeReduceOr   = "reduce_or"
	TypeReduceXor  = "reduce_xor"
	TypeReduceXnor = "reduce_xnor"

	TypeDff      = "dff"
	TypeAdff     = "adff"
	TypeDffsr    = "dffsr"
	TypeDlatch   = "dlatch"
	TypeDlatchsr = "dlatchsr"

	TypeAnyConst = "anyconst"
	TypeAnySeq   = "anyseq"
	TypeAssert   = "assert"
	TypeAssume   = "assume"
	TypeCover    = "cover"

	TypeMemRd   = "memrd"
	TypeMemWr   = "memwr"
	TypeMemInit = "meminit"
)

// Single-bit gate constructors.

func (m *Module) addGate2(name, typ string, a, b, y Bit) *Cell {
	c := m.AddCell(name, typ)
	c.SetPort("A", Sig{a}).SetPort("B", Sig{b}).SetPort("Y", Sig{y})
	return c
}

func (m *Module) AddAndGate(name string, a, b, y Bit) *Cell {
	return m.addGate2(name, TypeAndGate, a, b, y)
}

func (m *Module) AddOrGate(name string, a, b, y Bit) *Cell {
	return m.addGate2(name, TypeOrGate, a, b, y)
}

func (m *Module) AddXorGate(name string, a, b, y Bit) *Cell {
	return m.addGate2(name, TypeXorGate, a, b, y)
}

func (m *Module) AddXnorGate(name string, a, b, y Bit) *Cell {
	return m.addGate2(name, TypeXnorGate, a, b, y)
}

func (m *Module) AddNotGate(name string, a, y Bit) *Cell {
	c := m.AddCell(name, TypeNotGate)
	c.SetPort("A", Sig{a}).SetPort("Y", Sig{y})
	return c
}

func (m *Module) AddBufGate(name string, a, y Bit) *Cell {
	c := m.AddCell(name, TypeBufGate)
	c.SetPort("A", Sig{a}).SetPort("Y", Sig{y})
	return c
}

func (m *Module) AddMuxGate(name string, a, b, s, y Bit) *Cell {
	c := m.AddCell(name, TypeMuxGate)
	c.SetPort("A", Sig{a}).SetPort("B", Sig{b}).SetPort("S", Sig{s}).SetPort("Y", Sig{y})
	return c
}

func (m *Module) AddDffGate(name string, clk, d, q Bit, polarity bool) *Cell {
	c := m.AddCell(name, TypeDffGate)
	c.SetPort("CLK", Sig{clk}).SetPort("D", Sig{d}).SetPort("Q", Sig{q})
	c.Params["clk_polarity"] = polarity
	return c
}

// AddAdffGate adds a single-bit register with an asynchronous reset to the
// given value.
func (m *Module) AddAdffGate(name string, clk, arst, d, q Bit, arstVal bool) *Cell {
	c := m.AddCell(name, TypeAdffGate)
	c.SetPort("CLK", Sig{clk}).SetPort("ARST", Sig{arst}).SetPort("D", Sig{d}).SetPort("Q", Sig{q})
	c.Params["clk_polarity"] = true
	c.Params["arst_value"] = arstVal
	return c
}

func (m *Module) AddDffsrGate(name string, clk, set, clr, d, q Bit) *Cell {
	c := m.AddCell(name, TypeDffsrGate)
	c.SetPort("CLK", Sig{clk}).SetPort("SET", Sig{set}).SetPort("CLR", Sig{clr})
	c.SetPort("D", Sig{d}).SetPort("Q", Sig{q})
	c.Params["clk_polarity"] = true
	return c
}

// Wide cell constructors. Binary cells carry explicit input widths and a
// signedness flag describing how inputs extend to the output width.

func (m *Module) addBinary(name, typ string, a, b, y Sig, signed bool) *Cell {
	c := m.AddCell(name, typ)
	c.SetPort("A", a).SetPort("B", b).SetPort("Y", y)
	c.Params["a_width"] = len(a)
	c.Params["b_width"] = len(b)
	c.Params["y_width"] = len(y)
	c.Params["signed"] = signed
	return c
}

func (m *Module) addUnary(name, typ string, a, y Sig, signed bool) *Cell {
	c := m.AddCell(name, typ)
	c.SetPort("A", a).SetPort("Y", y)
	c.Params["a_width"] = len(a)
	c.Params["y_width"] = len(y)
	c.Params["signed"] = signed
	return c
}

func (m *Module) AddAnd(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeAnd, a, b, y, signed)
}

func (m *Module) AddOr(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeOr, a, b, y, signed)
}

func (m *Module) AddXor(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeXor, a, b, y, signed)
}

func (m *Module) AddXnor(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeXnor, a, b, y, signed)
}

func (m *Module) AddNot(name string, a, y Sig, signed bool) *Cell {
	return m.addUnary(name, TypeNot, a, y, signed)
}

func (m *Module) AddPos(name string, a, y Sig, signed bool) *Cell {
	return m.addUnary(name, TypePos, a, y, signed)
}

func (m *Module) AddNeg(name string, a, y Sig, signed bool) *Cell {
	return m.addUnary(name, TypeNeg, a, y, signed)
}

func (m *Module) AddAdd(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeAdd, a, b, y, signed)
}

func (m *Module) AddSub(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeSub, a, b, y, signed)
}

func (m *Module) AddMul(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeMul, a, b, y, signed)
}

func (m *Module) AddDiv(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeDiv, a, b, y, signed)
}

func (m *Module) AddMod(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeMod, a, b, y, signed)
}

func (m *Module) AddShl(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeShl, a, b, y, signed)
}

func (m *Module) AddShr(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeShr, a, b, y, signed)
}

func (m *Module) AddSshr(name string, a, b, y Sig, signed bool) *Cell {
	return m.addBinary(name, TypeSshr, a, b, y, signed)
}

func (m *Module) AddLt(name string, a, b Sig, y Bit, signed bool) *Cell {
	return m.addBinary(name, TypeLt, a, b, Sig{y}, signed)
}

func (m *Module) AddLe(name string, a, b Sig, y Bit, signed bool) *Cell {
	return m.addBinary(name, TypeLe, a, b, Sig{y}, signed)
}

func (m *Module) AddEq(name string, a, b Sig, y Bit, signed bool) *Cell {
	return m.addBinary(name, TypeEq, a, b, Sig{y}, signed)
}

func (m *Module) AddNe(name string, a, b Sig, y Bit, signed bool) *Cell {
	return m.addBinary(name, TypeNe, a, b, Sig{y}, signed)
}

func (m *Module) AddReduceAnd(name string, a Sig, y Bit, signed bool) *Cell {
	return m.addUnary(name, TypeReduceAnd, a, Sig{y}, signed)
}

func (m *Module) AddReduceOr(name string, a Sig, y Bit, signed bool) *Cell {
	return m.addUnary(name, TypeReduceOr, a, Sig{y}, signed)
}

func (m *Module) AddReduceXor(name string, a Sig, y Bit, signed bool) *Cell {
	return m.addUnary(name, TypeReduceXor, a, Sig{y}, signed)
}

func (m *Module) AddReduceXnor(name string, a Sig, y Bit, signed bool) *Cell {
	return m.addUnary(name, TypeReduceXnor, a, Sig{y}, signed)
}

// AddMux adds a width-parameterized two-way multiplexer with a single
// select bit: Y = S ? B : A.
func (m *Module) AddMux(name string, a, b Sig, s Bit, y Sig) *Cell {
	c := m.AddCell(name, TypeMux)
	c.SetPort("A", a).SetPort("B", b).SetPort("S", Sig{s}).SetPort("Y", y)
	c.Params["width"] = len(y)
	return c
}

// Register constructors.

func (m *Module) AddDff(name string, clk Bit, d, q Sig, polarity bool) *Cell {
	c := m.AddCell(name, TypeDff)
	c.SetPort("CLK", Sig{clk}).SetPort("D", d).SetPort("Q", q)
	c.Params["width"] = len(q)
	c.Params["clk_polarity"] = polarity
	return c
}

// AddAdff adds a register with an asynchronous reset to arstVal.
func (m *Module) AddAdff(name string, clk, arst Bit, d, q Sig, arstVal State) *Cell {
	c := m.AddCell(name, TypeAdff)
	c.SetPort("CLK", Sig{clk}).SetPort("ARST", Sig{arst}).SetPort("D", d).SetPort("Q", q)
	c.Params["width"] = len(q)
	c.Params["clk_polarity"] = true
	c.Params["arst_value"] = arstVal == S1
	return c
}

func (m *Module) AddDffsr(name string, clk Bit, set, clr, d, q Sig, polarity bool) *Cell {
	c := m.AddCell(name, TypeDffsr)
	c.SetPort("CLK", Sig{clk}).SetPort("SET", set).SetPort("CLR", clr)
	c.SetPort("D", d).SetPort("Q", q)
	c.Params["width"] = len(q)
	c.Params["clk_polarity"] = polarity
	return c
}

func (m *Module) AddDlatch(name string, en Bit, d, q Sig) *Cell {
	c := m.AddCell(name, TypeDlatch)
	c.SetPort("EN", Sig{en}).SetPort("D", d).SetPort("Q", q)
	c.Params["width"] = len(q)
	return c
}

func (m *Module) AddDlatchsr(name string, en Bit, set, clr, d, q Sig) *Cell {
	c := m.AddCell(name, TypeDlatchsr)
	c.SetPort("EN", Sig{en}).SetPort("SET", set).SetPort("CLR", clr)
	c.SetPort("D", d).SetPort("Q", q)
	c.Params["width"] = len(q)
	return c
}

// Nondeterministic value generators.

// AnyConst adds a generator holding an arbitrary but stable value and
// returns its output.
func (m *Module) AnyConst(name string, width int) Sig {
	y := m.AddSignalWidth(m.NewID(), width).Sig()
	c := m.AddCell(name, TypeAnyConst)
	c.SetPort("Y", y)
	c.Params["width"] = width
	return y
}

// AnySeq adds a generator producing an arbitrary fresh value each cycle
// and returns its output.
func (m *Module) AnySeq(name string, width int) Sig {
	y := m.AddSignalWidth(m.NewID(), width).Sig()
	c := m.AddCell(name, TypeAnySeq)
	c.SetPort("Y", y)
	c.Params["width"] = width
	return y
}

// Checker cells: A is the checked condition, EN gates the check.

func (m *Module) addChecker(name, typ string, a, en Bit) *Cell {
	c := m.AddCell(name, typ)
	c.SetPort("A", Sig{a}).SetPort("EN", Sig{en})
	return c
}

func (m *Module) AddAssert(name string, a, en Bit) *Cell {
	return m.addChecker(name, TypeAssert, a, en)
}

func (m *Module) AddAssume(name string, a, en Bit) *Cell {
	return m.addChecker(name, TypeAssume, a, en)
}

func (m *Module) AddCover(name string, a, en Bit) *Cell {
	return m.addChecker(name, TypeCover, a, en)
}

// Expression-style helpers returning the result bit.

func (m *Module) And(name string, a, b Bit) Bit {
	y := m.AddSignal(m.NewID()).Bit(0)
	m.AddAnd(name, Sig{a}, Sig{b}, Sig{y}, false)
	return y
}

func (m *Module) Or(name string, a, b Bit) Bit {
	y := m.AddSignal(m.NewID()).Bit(0)
	m.AddOr(name, Sig{a}, Sig{b}, Sig{y}, false)
	return y
}

func (m *Module) Not(name string, a Bit) Bit {
	y := m.AddSignal(m.NewID()).Bit(0)
	m.AddNot(name, Sig{a}, Sig{y}, false)
	return y
}

// Mux returns S ? B : A.
func (m *Module) Mux(name string, a, b, s Bit) Bit {
	y := m.AddSignal(m.NewID()).Bit(0)
	m.AddMux(name, Sig{a}, Sig{b}, s, Sig{y})
	return y
}
