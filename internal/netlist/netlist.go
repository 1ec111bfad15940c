package netlist

import "fmt"

// Package netlist models the elaborated, hierarchical netlist handed over
// by the HDL front-end. The importer treats this graph as read-only; the
// only mutating consumers are the external-net promotion pre-pass and the
// assertion pre-processing transform, which both go through the builder
// methods below.

// Dir is a port direction.
type Dir int

const (
	DirNone Dir = iota
	DirIn
	DirOut
	DirInout
)

func (d Dir) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInout:
		return "inout"
	}
	return "none"
}

// ParseDir maps the serialized direction name back to the enum value.
func ParseDir(s string) (Dir, error) {
	switch s {
	case "in":
		return DirIn, nil
	case "out":
		return DirOut, nil
	case "inout":
		return DirInout, nil
	}
	return DirNone, fmt.Errorf("unknown port direction %q", s)
}

// ConstKind marks nets that are tied to a global constant rail.
type ConstKind int

const (
	NotConst ConstKind = iota
	ConstGnd
	ConstPwr
)

// Role names the slot an instance connection occupies. Scalar roles hold
// one net; bit roles hold one net per bit of a wide operator port; RolePort
// is a named (possibly bus-sliced) port of a hierarchical instance.
type Role int

const (
	RoleIn Role = iota
	RoleIn1
	RoleIn2
	RoleIn3
	RoleControl
	RoleClock
	RoleSet
	RoleReset
	RoleCin
	RoleCout
	RoleOut
	RoleInBit
	RoleIn1Bit
	RoleIn2Bit
	RoleOutBit
	RolePort
)

var roleNames = map[Role]string{
	RoleIn: "in", RoleIn1: "in1", RoleIn2: "in2", RoleIn3: "in3",
	RoleControl: "control", RoleClock: "clock", RoleSet: "set",
	RoleReset: "reset", RoleCin: "cin", RoleCout: "cout", RoleOut: "out",
	RoleInBit: "in_bit", RoleIn1Bit: "in1_bit", RoleIn2Bit: "in2_bit",
	RoleOutBit: "out_bit", RolePort: "port",
}

var roleByName = func() map[string]Role {
	m := make(map[string]Role, len(roleNames))
	for r, n := range roleNames {
		m[n] = r
	}
	return m
}()

func (r Role) String() string { return roleNames[r] }

// ParseRole maps the serialized role name back to the enum value.
func ParseRole(s string) (Role, error) {
	r, ok := roleByName[s]
	if !ok {
		return RoleIn, fmt.Errorf("unknown connection role %q", s)
	}
	return r, nil
}

// isWide reports whether the role is a per-bit slot of a wide operator port.
func (r Role) isWide() bool {
	return r == RoleInBit || r == RoleIn1Bit || r == RoleIn2Bit || r == RoleOutBit
}

// Conn is one instance port reference: the net connected to one slot of an
// instance. Conns are shared between the instance's connection list and the
// net's reference list, so rewiring through Instance.Rewire keeps both
// views consistent.
type Conn struct {
	Inst  *Instance
	Role  Role
	Index int    // bit index for wide roles, bus offset for RolePort
	Port  string // port or port-bus name for RolePort
	Net   *Net
}

// driving reports whether this connection drives its net.
func (c *Conn) driving() bool {
	switch c.Role {
	case RoleOut, RoleCout, RoleOutBit:
		return true
	case RolePort:
		if c.Inst.View == nil {
			return false
		}
		switch c.Inst.View.PortDir(c.Port) {
		case DirOut, DirInout:
			return true
		}
	}
	return false
}

// Scope is one hierarchical design unit of the source netlist.
type Scope struct {
	Name     string
	Operator bool // operator-expansion scope synthesized by the front-end
	BlackBox bool
	Attrs    map[string]string
	Src      string

	Ports     []*Port
	PortBuses []*PortBus
	Nets      []*Net
	NetBuses  []*NetBus
	Instances []*Instance

	refs []*Instance // instances elsewhere that instantiate this scope
}

// NewScope creates an empty scope.
func NewScope(name string) *Scope {
	return &Scope{Name: name, Attrs: map[string]string{}}
}

// Refs returns the instances that instantiate this scope.
func (s *Scope) Refs() []*Instance { return s.refs }

// IndexOf returns the position of a port in the scope's port list, or -1.
func (s *Scope) IndexOf(p *Port) int {
	for i, q := range s.Ports {
		if q == p {
			return i
		}
	}
	return -1
}

// PortDir resolves the direction of a named port or port bus.
func (s *Scope) PortDir(name string) Dir {
	for _, b := range s.PortBuses {
		if b.Name == name {
			return b.Dir
		}
	}
	for _, p := range s.Ports {
		if p.Name == name {
			return p.Dir
		}
	}
	return DirNone
}

// Port is a scalar port, possibly an element of a PortBus.
type Port struct {
	Name  string
	Dir   Dir
	Bus   *PortBus // nil for standalone ports
	Net   *Net     // inner net bound to this port, nil if unconnected
	Attrs map[string]string
	Src   string

	owner *Scope
}

// Owner returns the scope declaring this port.
func (p *Port) Owner() *Scope { return p.owner }

// AddPort declares a standalone scalar port.
func (s *Scope) AddPort(name string, dir Dir) *Port {
	p := &Port{Name: name, Dir: dir, Attrs: map[string]string{}, owner: s}
	s.Ports = append(s.Ports, p)
	return p
}

// Bind attaches a net to a port inside the port's owning scope.
func (s *Scope) Bind(p *Port, n *Net) {
	p.Net = n
}

// PortBus is a declared multi-bit port with an explicit index range.
// Elems holds the element ports in declared order, Left first.
type PortBus struct {
	Name        string
	Dir         Dir
	Left, Right int
	Elems       []*Port
	Attrs       map[string]string
	Src         string

	owner *Scope
}

// AddPortBus declares a port bus and its element ports. The element ports
// are also appended to the scope's flat port list, with Bus set, matching
// how the front-end exposes them.
func (s *Scope) AddPortBus(name string, dir Dir, left, right int) *PortBus {
	b := &PortBus{Name: name, Dir: dir, Left: left, Right: right, Attrs: map[string]string{}, owner: s}
	for _, i := range b.IndexOrder() {
		p := &Port{Name: fmt.Sprintf("%s[%d]", name, i), Dir: dir, Bus: b, Attrs: map[string]string{}, owner: s}
		b.Elems = append(b.Elems, p)
		s.Ports = append(s.Ports, p)
	}
	s.PortBuses = append(s.PortBuses, b)
	return b
}

// Size returns the number of elements.
func (b *PortBus) Size() int { return len(b.Elems) }

// IsUp reports whether the declared range ascends (left < right).
func (b *PortBus) IsUp() bool { return b.Left < b.Right }

// IndexOrder returns the declared indices from Left to Right inclusive.
func (b *PortBus) IndexOrder() []int {
	return indexOrder(b.Left, b.Right)
}

// ElementAt returns the element port at a declared index.
func (b *PortBus) ElementAt(idx int) *Port {
	return b.Elems[b.pos(idx)]
}

// IndexOf returns the declared index of an element port.
func (b *PortBus) IndexOf(p *Port) int {
	for pos, q := range b.Elems {
		if q == p {
			if b.IsUp() {
				return b.Left + pos
			}
			return b.Left - pos
		}
	}
	return -1
}

func (b *PortBus) pos(idx int) int {
	if b.IsUp() {
		return idx - b.Left
	}
	return b.Left - idx
}

// Net is a single net. RAM-shaped nets carry Size > 1 and a packed
// initial-value string; all other nets are single-bit.
type Net struct {
	Name         string
	UserDeclared bool
	Bus          *NetBus // nil for freestanding nets
	Init         byte    // '0', '1', 'x' or 0 for none
	Rand         bool    // free sequence marker
	RandConst    bool    // free constant marker
	Ram          bool
	WideInit     string // packed initial value for RAM nets
	Size         int    // total bit count, 1 unless RAM
	Left, Right  int    // declared range bounds for RAM nets
	Const        ConstKind
	Attrs        map[string]string
	Src          string

	owner *Scope
	refs  []*Conn
}

// AddNet declares a freestanding single-bit net.
func (s *Scope) AddNet(name string) *Net {
	n := &Net{Name: name, Size: 1, Attrs: map[string]string{}, owner: s}
	s.Nets = append(s.Nets, n)
	return n
}

// Owner returns the scope declaring this net.
func (n *Net) Owner() *Scope { return n.owner }

// ExternalTo reports whether the net is owned by a different scope.
func (n *Net) ExternalTo(s *Scope) bool { return n.owner != s }

// Refs returns every instance connection referencing this net.
func (n *Net) Refs() []*Conn { return n.refs }

// Driver returns the unique driving instance, or nil if the net has no
// driver or more than one.
func (n *Net) Driver() *Instance {
	var inst *Instance
	for _, c := range n.refs {
		if !c.driving() {
			continue
		}
		if inst != nil && inst != c.Inst {
			return nil
		}
		inst = c.Inst
	}
	return inst
}

// MultipleDriven reports whether more than one instance drives the net.
func (n *Net) MultipleDriven() bool {
	var inst *Instance
	for _, c := range n.refs {
		if !c.driving() {
			continue
		}
		if inst != nil && inst != c.Inst {
			return true
		}
		inst = c.Inst
	}
	return false
}

// IsGnd reports whether the net is the constant-0 rail.
func (n *Net) IsGnd() bool { return n.Const == ConstGnd }

// IsPwr reports whether the net is the constant-1 rail.
func (n *Net) IsPwr() bool { return n.Const == ConstPwr }

// IsConstant reports whether the net is tied to either rail.
func (n *Net) IsConstant() bool { return n.Const != NotConst }

// NetBus is a declared multi-bit net with an explicit index range.
// Elems holds the element nets in declared order, Left first.
type NetBus struct {
	Name         string
	UserDeclared bool
	Left, Right  int
	Elems        []*Net
	Attrs        map[string]string
	Src          string

	owner *Scope
}

// AddNetBus declares a net bus and its element nets. Element nets are also
// appended to the scope's flat net list, with Bus set.
func (s *Scope) AddNetBus(name string, left, right int) *NetBus {
	b := &NetBus{Name: name, Left: left, Right: right, Attrs: map[string]string{}, owner: s}
	for _, i := range b.IndexOrder() {
		n := &Net{Name: fmt.Sprintf("%s[%d]", name, i), Size: 1, Bus: b, Attrs: map[string]string{}, owner: s}
		b.Elems = append(b.Elems, n)
		s.Nets = append(s.Nets, n)
	}
	s.NetBuses = append(s.NetBuses, b)
	return b
}

// Size returns the number of elements.
func (b *NetBus) Size() int { return len(b.Elems) }

// IsUp reports whether the declared range ascends (left < right).
func (b *NetBus) IsUp() bool { return b.Left < b.Right }

// IndexOrder returns the declared indices from Left to Right inclusive.
func (b *NetBus) IndexOrder() []int {
	return indexOrder(b.Left, b.Right)
}

// ElementAt returns the element net at a declared index.
func (b *NetBus) ElementAt(idx int) *Net {
	if b.IsUp() {
		return b.Elems[idx-b.Left]
	}
	return b.Elems[b.Left-idx]
}

func indexOrder(left, right int) []int {
	step := 1
	if left > right {
		step = -1
	}
	var out []int
	for i := left; ; i += step {
		out = append(out, i)
		if i == right {
			break
		}
	}
	return out
}

// Instance is one instantiation inside a scope: a primitive, a wide
// operator, a temporal-assertion primitive, or (KindUser) a hierarchical
// instance of another scope.
type Instance struct {
	Kind         Kind
	Name         string
	UserDeclared bool
	Signed       bool   // signedness of wide operators
	View         *Scope // instantiated scope for KindUser and operator views
	Attrs        map[string]string
	Src          string

	owner  *Scope
	conns  []*Conn
	scalar map[Role]*Net
	wide   map[Role][]*Net
}

// AddInstance creates an instance inside the scope.
func (s *Scope) AddInstance(kind Kind, name string) *Instance {
	inst := &Instance{
		Kind:   kind,
		Name:   name,
		Attrs:  map[string]string{},
		owner:  s,
		scalar: map[Role]*Net{},
		wide:   map[Role][]*Net{},
	}
	s.Instances = append(s.Instances, inst)
	return inst
}

// Owner returns the scope containing this instance.
func (inst *Instance) Owner() *Scope { return inst.owner }

// SetView binds a hierarchical instance (or an operator instance) to the
// scope it instantiates and registers the back reference.
func (inst *Instance) SetView(s *Scope) *Instance {
	inst.View = s
	s.refs = append(s.refs, inst)
	return inst
}

// Conns returns every connection of the instance.
func (inst *Instance) Conns() []*Conn { return inst.conns }

// Connect attaches a net to a scalar role.
func (inst *Instance) Connect(role Role, n *Net) *Instance {
	if role.isWide() || role == RolePort {
		panic(fmt.Sprintf("netlist: role %v needs an index", role))
	}
	c := &Conn{Inst: inst, Role: role, Net: n}
	inst.scalar[role] = n
	inst.conns = append(inst.conns, c)
	n.refs = append(n.refs, c)
	return inst
}

// ConnectBit attaches a net to one bit of a wide operator port. Index 0 is
// the most significant bit, matching the front-end's bit order.
func (inst *Instance) ConnectBit(role Role, idx int, n *Net) *Instance {
	if !role.isWide() {
		panic(fmt.Sprintf("netlist: role %v is not a wide port", role))
	}
	bits := inst.wide[role]
	for len(bits) <= idx {
		bits = append(bits, nil)
	}
	bits[idx] = n
	inst.wide[role] = bits
	c := &Conn{Inst: inst, Role: role, Index: idx, Net: n}
	inst.conns = append(inst.conns, c)
	if n != nil {
		n.refs = append(n.refs, c)
	}
	return inst
}

// ConnectBits attaches a full wide port, most significant bit first.
func (inst *Instance) ConnectBits(role Role, nets []*Net) *Instance {
	for i, n := range nets {
		inst.ConnectBit(role, i, n)
	}
	return inst
}

// ConnectPort attaches a net to a named port of a hierarchical instance.
// offset is the zero-based position within the port bus (0 for scalar
// ports).
func (inst *Instance) ConnectPort(port string, offset int, n *Net) *Instance {
	c := &Conn{Inst: inst, Role: RolePort, Port: port, Index: offset, Net: n}
	inst.conns = append(inst.conns, c)
	n.refs = append(n.refs, c)
	return inst
}

// Rewire points an existing connection at a different net, keeping the
// per-net reference lists consistent. Used by external-net promotion.
func (inst *Instance) Rewire(c *Conn, n *Net) {
	if c.Inst != inst {
		panic("netlist: rewiring a connection of a different instance")
	}
	old := c.Net
	if old != nil {
		for i, r := range old.refs {
			if r == c {
				old.refs = append(old.refs[:i], old.refs[i+1:]...)
				break
			}
		}
	}
	c.Net = n
	if c.Role.isWide() {
		inst.wide[c.Role][c.Index] = n
	} else if c.Role != RolePort {
		inst.scalar[c.Role] = n
	}
	if n != nil {
		n.refs = append(n.refs, c)
	}
}

// Scalar role accessors, nil when unconnected.

func (inst *Instance) Input() *Net   { return inst.scalar[RoleIn] }
func (inst *Instance) Input1() *Net  { return inst.scalar[RoleIn1] }
func (inst *Instance) Input2() *Net  { return inst.scalar[RoleIn2] }
func (inst *Instance) Input3() *Net  { return inst.scalar[RoleIn3] }
func (inst *Instance) Control() *Net { return inst.scalar[RoleControl] }
func (inst *Instance) Clock() *Net   { return inst.scalar[RoleClock] }
func (inst *Instance) Set() *Net     { return inst.scalar[RoleSet] }
func (inst *Instance) Reset() *Net   { return inst.scalar[RoleReset] }
func (inst *Instance) Cin() *Net     { return inst.scalar[RoleCin] }
func (inst *Instance) Cout() *Net    { return inst.scalar[RoleCout] }
func (inst *Instance) Output() *Net  { return inst.scalar[RoleOut] }

// Wide port accessors. Bit slices are most significant bit first.

func (inst *Instance) InputBits() []*Net  { return inst.wide[RoleInBit] }
func (inst *Instance) Input1Bits() []*Net { return inst.wide[RoleIn1Bit] }
func (inst *Instance) Input2Bits() []*Net { return inst.wide[RoleIn2Bit] }
func (inst *Instance) OutputBits() []*Net { return inst.wide[RoleOutBit] }

func (inst *Instance) InputSize() int  { return len(inst.wide[RoleInBit]) }
func (inst *Instance) Input1Size() int { return len(inst.wide[RoleIn1Bit]) }
func (inst *Instance) Input2Size() int { return len(inst.wide[RoleIn2Bit]) }
func (inst *Instance) OutputSize() int { return len(inst.wide[RoleOutBit]) }

// Input1Bit returns one bit of the first wide input (0 = MSB), nil when
// unconnected.
func (inst *Instance) Input1Bit(i int) *Net {
	bits := inst.wide[RoleIn1Bit]
	if i < 0 || i >= len(bits) {
		return nil
	}
	return bits[i]
}

// InputBit returns one bit of the wide input (0 = MSB).
func (inst *Instance) InputBit(i int) *Net {
	bits := inst.wide[RoleInBit]
	if i < 0 || i >= len(bits) {
		return nil
	}
	return bits[i]
}

// OutputBit returns one bit of the wide output (0 = MSB).
func (inst *Instance) OutputBit(i int) *Net {
	bits := inst.wide[RoleOutBit]
	if i < 0 || i >= len(bits) {
		return nil
	}
	return bits[i]
}

// Attr returns an instance attribute, "" when absent.
func (inst *Instance) Attr(key string) string { return inst.Attrs[key] }

// SvaBinary synthesizes a two-operand temporal instance driving a fresh
// anonymous net and returns that net. Used by the assertion pre-processing
// transform when it rewrites expression trees in place.
func (s *Scope) SvaBinary(kind Kind, in1, in2 *Net, src string) *Net {
	out := s.AddNet(fmt.Sprintf("%s$%d", kind, len(s.Nets)))
	inst := s.AddInstance(kind, fmt.Sprintf("%s$i%d", kind, len(s.Instances)))
	inst.Src = src
	inst.Connect(RoleIn1, in1)
	inst.Connect(RoleIn2, in2)
	inst.Connect(RoleOut, out)
	return out
}

/// FullName returns the hierarchical name of a scope: the chain of
// instance names when the scope is instantiated exactly once, otherwise
// the scope's own name.
func (s *Scope) FullName() string {
	if len(s.refs) == 1 {
		inst := s.refs[0]
		return inst.owner.FullName() + "." + inst.Name
	}
	return s.Name
}
