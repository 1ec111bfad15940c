package design

import (
	"fmt"
	"sort"
	"strings"
)

// Package design is the flat intermediate representation the importer
// produces: per-scope modules holding named signals, typed cells with named
// port connections, memories and directional connections. The downstream
// synthesis/verification passes consume this container through the
// construction API; nothing here knows about the source netlist.

// State is the value of one signal bit.
type State uint8

const (
	S0 State = iota
	S1
	Sx // unknown
	Sz // high impedance
)

func (s State) String() string {
	switch s {
	case S0:
		return "0"
	case S1:
		return "1"
	case Sz:
		return "z"
	}
	return "x"
}

// Bit addresses one bit: either a bit of a named signal or a constant
// state. The zero value is the constant 0.
type Bit struct {
	Sig *Signal
	Off int
	K   State // constant state when Sig is nil
}

// Const bit values.
var (
	Lo  = Bit{K: S0}
	Hi  = Bit{K: S1}
	Unk = Bit{K: Sx}
	HiZ = Bit{K: Sz}
)

// C returns a constant bit.
func C(s State) Bit { return Bit{K: s} }

// IsConst reports whether the bit is a constant.
func (b Bit) IsConst() bool { return b.Sig == nil }

func (b Bit) String() string {
	if b.Sig == nil {
		return b.K.String()
	}
	if b.Sig.Width == 1 {
		return b.Sig.Name
	}
	return fmt.Sprintf("%s[%d]", b.Sig.Name, b.Off)
}

// Sig is an ordered group of bits, least significant first.
type Sig []Bit

// S builds a Sig from bits, least significant first.
func S(bits ...Bit) Sig { return Sig(bits) }

// Repeat builds a Sig of n copies of one bit.
func Repeat(b Bit, n int) Sig {
	s := make(Sig, n)
	for i := range s {
		s[i] = b
	}
	return s
}

// ConstUint builds a constant Sig holding val in width bits.
func ConstUint(val uint64, width int) Sig {
	s := make(Sig, width)
	for i := 0; i < width; i++ {
		if val&(1<<uint(i)) != 0 {
			s[i] = Hi
		} else {
			s[i] = Lo
		}
	}
	return s
}

// FromStates builds a Sig from states, least significant first.
func FromStates(states []State) Sig {
	s := make(Sig, len(states))
	for i, st := range states {
		s[i] = Bit{K: st}
	}
	return s
}

func (s Sig) String() string {
	if len(s) == 1 {
		return s[0].String()
	}
	parts := make([]string, len(s))
	for i, b := range s {
		parts[len(s)-1-i] = b.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Signal is a named single- or multi-bit signal of a module.
type Signal struct {
	Name       string
	Width      int
	Offset     int // declared index of bit 0
	PortID     int // 1-based port position, 0 for internal signals
	PortInput  bool
	PortOutput bool
	Init       []State // initial value, nil when none; index = bit offset
	Attrs      map[string]string
}

// Bit returns the bit at offset i.
func (w *Signal) Bit(i int) Bit { return Bit{Sig: w, Off: i} }

// Sig returns all bits of the signal, least significant first.
func (w *Signal) Sig() Sig {
	s := make(Sig, w.Width)
	for i := range s {
		s[i] = Bit{Sig: w, Off: i}
	}
	return s
}

// SetInitBit records an initial value for one bit, padding untouched
// positions with unknown.
func (w *Signal) SetInitBit(off int, v State) {
	if w.Init == nil {
		w.Init = make([]State, w.Width)
		for i := range w.Init {
			w.Init[i] = Sx
		}
	}
	w.Init[off] = v
}

// Cell is a typed cell with named port connections and typed parameters.
type Cell struct {
	Name   string
	Type   string
	Conns  map[string]Sig
	Params map[string]any
	Attrs  map[string]string
}

// SetPort connects a port by name.
func (c *Cell) SetPort(name string, s Sig) *Cell {
	c.Conns[name] = s
	return c
}

// Port returns a port connection, nil when absent.
func (c *Cell) Port(name string) Sig { return c.Conns[name] }

// ParamBool reads a bool parameter, false when absent.
func (c *Cell) ParamBool(name string) bool {
	v, _ := c.Params[name].(bool)
	return v
}

// ParamInt reads an int parameter, 0 when absent.
func (c *Cell) ParamInt(name string) int {
	v, _ := c.Params[name].(int)
	return v
}

// Memory is a word-addressed memory of a module.
type Memory struct {
	Name  string
	Width int
	Size  int
	Attrs map[string]string
}

// Conn is a directional connection: Dst is driven by Src.
type Conn struct {
	Dst Sig
	Src Sig
}

// Module owns the signals, cells and memories of one imported scope.
type Module struct {
	Name     string
	BlackBox bool
	Attrs    map[string]string
	Conns    []Conn

	signals   map[string]*Signal
	sigOrder  []*Signal
	cells     map[string]*Cell
	cellOrder []*Cell
	memories  map[string]*Memory
	memOrder  []*Memory
	autoIdx   int
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:     name,
		Attrs:    map[string]string{},
		signals:  map[string]*Signal{},
		cells:    map[string]*Cell{},
		memories: map[string]*Memory{},
	}
}

// NewID returns a fresh anonymous name, unique within the module.
func (m *Module) NewID() string {
	m.autoIdx++
	return fmt.Sprintf("$auto$%d", m.autoIdx)
}

// Uniquify returns name if unused, otherwise name with a numeric suffix.
func (m *Module) Uniquify(name string) string {
	if !m.used(name) {
		return name
	}
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s$%d", name, i)
		if !m.used(cand) {
			return cand
		}
	}
}

func (m *Module) used(name string) bool {
	if _, ok := m.signals[name]; ok {
		return true
	}
	if _, ok := m.cells[name]; ok {
		return true
	}
	_, ok := m.memories[name]
	return ok
}

// AddSignal adds a 1-bit signal.
func (m *Module) AddSignal(name string) *Signal {
	return m.AddSignalWidth(name, 1)
}

// AddSignalWidth adds a signal of the given width.
func (m *Module) AddSignalWidth(name string, width int) *Signal {
	if m.used(name) {
		panic(fmt.Sprintf("design: duplicate object name %q in module %q", name, m.Name))
	}
	w := &Signal{Name: name, Width: width, Attrs: map[string]string{}}
	m.signals[name] = w
	m.sigOrder = append(m.sigOrder, w)
	return w
}

// SignalByName looks a signal up, nil when absent.
func (m *Module) SignalByName(name string) *Signal { return m.signals[name] }

// Signals returns the signals in creation order.
func (m *Module) Signals() []*Signal { return m.sigOrder }

// AddCell adds an empty cell of the given type.
func (m *Module) AddCell(name, typ string) *Cell {
	if m.used(name) {
		panic(fmt.Sprintf("design: duplicate object name %q in module %q", name, m.Name))
	}
	c := &Cell{Name: name, Type: typ, Conns: map[string]Sig{}, Params: map[string]any{}, Attrs: map[string]string{}}
	m.cells[name] = c
	m.cellOrder = append(m.cellOrder, c)
	return c
}

// CellByName looks a cell up, nil when absent.
func (m *Module) CellByName(name string) *Cell { return m.cells[name] }

// Cells returns the cells in creation order.
func (m *Module) Cells() []*Cell { return m.cellOrder }

// CellsOfType returns the cells of one type, in creation order.
func (m *Module) CellsOfType(typ string) []*Cell {
	var out []*Cell
	for _, c := range m.cellOrder {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// RemoveCell deletes a cell from the module.
func (m *Module) RemoveCell(c *Cell) {
	if m.cells[c.Name] != c {
		return
	}
	delete(m.cells, c.Name)
	for i, o := range m.cellOrder {
		if o == c {
			m.cellOrder = append(m.cellOrder[:i], m.cellOrder[i+1:]...)
			break
		}
	}
}

// AddMemory adds a memory object.
func (m *Module) AddMemory(name string, width, size int) *Memory {
	if m.used(name) {
		panic(fmt.Sprintf("design: duplicate object name %q in module %q", name, m.Name))
	}
	mem := &Memory{Name: name, Width: width, Size: size, Attrs: map[string]string{}}
	m.memories[name] = mem
	m.memOrder = append(m.memOrder, mem)
	return mem
}

// MemoryByName looks a memory up, nil when absent.
func (m *Module) MemoryByName(name string) *Memory { return m.memories[name] }

// Memories returns the memories in creation order.
func (m *Module) Memories() []*Memory { return m.memOrder }

// Connect records a directional connection: dst is driven by src.
func (m *Module) Connect(dst, src Sig) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("design: connecting %d bits to %d bits in module %q", len(src), len(dst), m.Name))
	}
	m.Conns = append(m.Conns, Conn{Dst: dst, Src: src})
}

// ConnectBit records a single-bit directional connection.
func (m *Module) ConnectBit(dst, src Bit) {
	m.Connect(Sig{dst}, Sig{src})
}

// Design is the container of all imported modules.
type Design struct {
	modules map[string]*Module
}

// NewDesign creates an empty design.
func NewDesign() *Design {
	return &Design{modules: map[string]*Module{}}
}

// Has reports whether a module of that name exists.
func (d *Design) Has(name string) bool {
	_, ok := d.modules[name]
	return ok
}

// AddModule creates and registers a module.
func (d *Design) AddModule(name string) *Module {
	if d.Has(name) {
		panic(fmt.Sprintf("design: duplicate module %q", name))
	}
	m := NewModule(name)
	d.modules[name] = m
	return m
}

// Module looks a module up, nil when absent.
func (d *Design) Module(name string) *Module { return d.modules[name] }

// Modules returns all modules sorted by name.
func (d *Design) Modules() []*Module {
	names := make([]string, 0, len(d.modules))
	for n := range d.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Module, len(names))
	for i, n := range names {
		out[i] = d.modules[n]
	}
	return out
}
