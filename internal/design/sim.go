package design

import "fmt"

// Sim is a reference evaluator for imported modules. It interprets the
// combinational cells and registers the importer emits, so a circuit can
// be checked cycle by cycle against the source semantics. It is a checking
// aid, not a performance simulator: Settle relaxes to a fixpoint and
// registers update on explicit clock edges.
type Sim struct {
	m    *Module
	vals map[*Signal][]State
}

// NewSim creates a simulator with every signal at its declared initial
// value, or unknown when none is declared.
func NewSim(m *Module) *Sim {
	s := &Sim{m: m, vals: map[*Signal][]State{}}
	for _, w := range m.Signals() {
		v := make([]State, w.Width)
		for i := range v {
			v[i] = Sx
		}
		if w.Init != nil {
			copy(v, w.Init)
		}
		s.vals[w] = v
	}
	return s
}

// Get returns the current value of a bit.
func (s *Sim) Get(b Bit) State {
	if b.Sig == nil {
		return b.K
	}
	return s.vals[b.Sig][b.Off]
}

// Set drives a bit and reports whether the value changed.
func (s *Sim) Set(b Bit, v State) bool {
	if b.Sig == nil {
		return false
	}
	if s.vals[b.Sig][b.Off] == v {
		return false
	}
	s.vals[b.Sig][b.Off] = v
	return true
}

// SetSig drives all bits of a Sig, least significant first.
func (s *Sim) SetSig(sig Sig, vals ...State) {
	for i, v := range vals {
		s.Set(sig[i], v)
	}
}

// SetUint drives a Sig from an unsigned value.
func (s *Sim) SetUint(sig Sig, val uint64) {
	for i := range sig {
		if val&(1<<uint(i)) != 0 {
			s.Set(sig[i], S1)
		} else {
			s.Set(sig[i], S0)
		}
	}
}

// Uint reads a Sig as an unsigned value; ok is false when any bit is
// undefined.
func (s *Sim) Uint(sig Sig) (uint64, bool) {
	var val uint64
	for i, b := range sig {
		switch s.Get(b) {
		case S1:
			val |= 1 << uint(i)
		case S0:
		default:
			return 0, false
		}
	}
	return val, true
}

// Settle relaxes connections and combinational cells to a fixpoint.
func (s *Sim) Settle() {
	for iter := 0; iter < 10000; iter++ {
		changed := false
		for _, conn := range s.m.Conns {
			for i := range conn.Dst {
				if s.Set(conn.Dst[i], s.Get(conn.Src[i])) {
					changed = true
				}
			}
		}
		for _, c := range s.m.Cells() {
			if s.evalComb(c) {
				changed = true
			}
			if s.applyAsync(c) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
	panic(fmt.Sprintf("sim: module %q did not settle", s.m.Name))
}

// Posedge settles, then raises clk and updates every register triggered by
// its rising edge.
func (s *Sim) Posedge(clk Bit) { s.edge(clk, true) }

// Negedge settles, then lowers clk and updates every register triggered by
// its falling edge.
func (s *Sim) Negedge(clk Bit) { s.edge(clk, false) }

func (s *Sim) edge(clk Bit, rising bool) {
	pre, post := S0, S1
	if !rising {
		pre, post = S1, S0
	}
	s.Set(clk, pre)
	s.Settle()

	type pending struct {
		cell *Cell
		d    []State
	}
	var updates []pending
	for _, c := range s.m.Cells() {
		if !isRegister(c.Type) {
			continue
		}
		cport := c.Port("CLK")
		if len(cport) != 1 || cport[0] != clk {
			continue
		}
		if c.ParamBool("clk_polarity") != rising {
			continue
		}
		d := c.Port("D")
		vals := make([]State, len(d))
		for i, b := range d {
			vals[i] = s.Get(b)
		}
		updates = append(updates, pending{c, vals})
	}

	s.Set(clk, post)
	for _, u := range updates {
		q := u.cell.Port("Q")
		for i := range q {
			s.Set(q[i], u.d[i])
		}
	}
	s.Settle()
}

func isRegister(typ string) bool {
	switch typ {
	case TypeDff, TypeDffGate, TypeAdff, TypeAdffGate, TypeDffsr, TypeDffsrGate:
		return true
	}
	return false
}

// applyAsync forces register outputs held by an active asynchronous
// control.
func (s *Sim) applyAsync(c *Cell) bool {
	changed := false
	switch c.Type {
	case TypeAdff, TypeAdffGate:
		if s.Get(c.Port("ARST")[0]) == S1 {
			v := S0
			if c.ParamBool("arst_value") {
				v = S1
			}
			for _, b := range c.Port("Q") {
				if s.Set(b, v) {
					changed = true
				}
			}
		}
	case TypeDffsr, TypeDffsrGate:
		set, clr, q := c.Port("SET"), c.Port("CLR"), c.Port("Q")
		for i := range q {
			if s.Get(set[i]) == S1 {
				if s.Set(q[i], S1) {
					changed = true
				}
			} else if s.Get(clr[i]) == S1 {
				if s.Set(q[i], S0) {
					changed = true
				}
			}
		}
	}
	return changed
}

func logicNot(a State) State {
	switch a {
	case S0:
		return S1
	case S1:
		return S0
	}
	return Sx
}

func logicAnd(a, b State) State {
	if a == S0 || b == S0 {
		return S0
	}
	if a == S1 && b == S1 {
		return S1
	}
	return Sx
}

func logicOr(a, b State) State {
	if a == S1 || b == S1 {
		return S1
	}
	if a == S0 && b == S0 {
		return S0
	}
	return Sx
}

func logicXor(a, b State) State {
	if (a != S0 && a != S1) || (b != S0 && b != S1) {
		return Sx
	}
	if a == b {
		return S0
	}
	return S1
}

// extended reads a port value extended to width bits per the cell's
// signedness; ok is false when any bit is undefined.
func (s *Sim) extended(sig Sig, signed bool, width int) (uint64, bool) {
	raw, ok := s.Uint(sig)
	if !ok {
		return 0, false
	}
	if signed && len(sig) > 0 && len(sig) < width && raw&(1<<uint(len(sig)-1)) != 0 {
		for i := len(sig); i < width; i++ {
			raw |= 1 << uint(i)
		}
	}
	return raw, true
}

func (s *Sim) setUintOrX(y Sig, val uint64, ok bool) bool {
	changed := false
	for i := range y {
		v := Sx
		if ok {
			v = S0
			if val&(1<<uint(i)) != 0 {
				v = S1
			}
		}
		if s.Set(y[i], v) {
			changed = true
		}
	}
	return changed
}

func (s *Sim) setBitOrX(y Bit, cond, ok bool) bool {
	v := Sx
	if ok {
		v = S0
		if cond {
			v = S1
		}
	}
	return s.Set(y, v)
}

func toSigned(val uint64, width int) int64 {
	if width < 64 && val&(1<<uint(width-1)) != 0 {
		val |= ^uint64(0) << uint(width)
	}
	return int64(val)
}

func (s *Sim) evalComb(c *Cell) bool {
	switch c.Type {
	case TypeAndGate, TypeOrGate, TypeXorGate, TypeXnorGate, TypeMuxGate:
		a, b, y := s.Get(c.Port("A")[0]), s.Get(c.Port("B")[0]), c.Port("Y")[0]
		switch c.Type {
		case TypeAndGate:
			return s.Set(y, logicAnd(a, b))
		case TypeOrGate:
			return s.Set(y, logicOr(a, b))
		case TypeXorGate:
			return s.Set(y, logicXor(a, b))
		case TypeXnorGate:
			return s.Set(y, logicNot(logicXor(a, b)))
		default: // mux gate: Y = S ? B : A
			switch s.Get(c.Port("S")[0]) {
			case S0:
				return s.Set(y, a)
			case S1:
				return s.Set(y, b)
			default:
				if a == b {
					return s.Set(y, a)
				}
				return s.Set(y, Sx)
			}
		}

	case TypeNotGate:
		return s.Set(c.Port("Y")[0], logicNot(s.Get(c.Port("A")[0])))

	case TypeBufGate, TypePos:
		changed := false
		a, y := c.Port("A"), c.Port("Y")
		signed := c.ParamBool("signed")
		for i := range y {
			var v State
			switch {
			case i < len(a):
				v = s.Get(a[i])
			case signed && len(a) > 0:
				v = s.Get(a[len(a)-1])
			default:
				v = S0
			}
			if s.Set(y[i], v) {
				changed = true
			}
		}
		return changed

	case TypeAnd, TypeOr, TypeXor, TypeXnor:
		a, b, y := c.Port("A"), c.Port("B"), c.Port("Y")
		signed := c.ParamBool("signed")
		changed := false
		bitAt := func(sig Sig, i int) State {
			if i < len(sig) {
				return s.Get(sig[i])
			}
			if signed && len(sig) > 0 {
				return s.Get(sig[len(sig)-1])
			}
			return S0
		}
		for i := range y {
			av, bv := bitAt(a, i), bitAt(b, i)
			var v State
			switch c.Type {
			case TypeAnd:
				v = logicAnd(av, bv)
			case TypeOr:
				v = logicOr(av, bv)
			case TypeXor:
				v = logicXor(av, bv)
			default:
				v = logicNot(logicXor(av, bv))
			}
			if s.Set(y[i], v) {
				changed = true
			}
		}
		return changed

	case TypeNot:
		a, y := c.Port("A"), c.Port("Y")
		signed := c.ParamBool("signed")
		changed := false
		for i := range y {
			var v State
			switch {
			case i < len(a):
				v = logicNot(s.Get(a[i]))
			case signed && len(a) > 0:
				v = logicNot(s.Get(a[len(a)-1]))
			default:
				v = S1
			}
			if s.Set(y[i], v) {
				changed = true
			}
		}
		return changed

	case TypeAdd, TypeSub, TypeMul, TypeDiv, TypeMod, TypeNeg:
		y := c.Port("Y")
		signed := c.ParamBool("signed")
		av, aok := s.extended(c.Port("A"), signed, 64)
		var bv uint64
		bok := true
		if c.Type != TypeNeg {
			bv, bok = s.extended(c.Port("B"), signed, 64)
		}
		if !aok || !bok {
			return s.setUintOrX(y, 0, false)
		}
		var val uint64
		switch c.Type {
		case TypeAdd:
			val = av + bv
		case TypeSub:
			val = av - bv
		case TypeMul:
			val = av * bv
		case TypeNeg:
			val = -av
		case TypeDiv:
			if bv == 0 {
				return s.setUintOrX(y, 0, false)
			}
			if signed {
				val = uint64(int64(av) / int64(bv))
			} else {
				val = av / bv
			}
		case TypeMod:
			if bv == 0 {
				return s.setUintOrX(y, 0, false)
			}
			if signed {
				val = uint64(int64(av) % int64(bv))
			} else {
				val = av % bv
			}
		}
		return s.setUintOrX(y, val, true)

	case TypeShl, TypeShr, TypeSshr:
		y := c.Port("Y")
		signed := c.ParamBool("signed")
		av, aok := s.extended(c.Port("A"), signed && c.Type == TypeSshr, 64)
		bv, bok := s.Uint(c.Port("B"))
		if !aok || !bok {
			return s.setUintOrX(y, 0, false)
		}
		var val uint64
		switch {
		case bv >= 64:
			val = 0
			if c.Type == TypeSshr && signed {
				val = uint64(toSigned(av, len(c.Port("A"))) >> 63)
			}
		case c.Type == TypeShl:
			val = av << uint(bv)
		case c.Type == TypeShr:
			val = av >> uint(bv)
		default:
			if signed {
				val = uint64(toSigned(av, len(c.Port("A"))) >> uint(bv))
			} else {
				val = av >> uint(bv)
			}
		}
		return s.setUintOrX(y, val, true)

	case TypeLt, TypeLe, TypeEq, TypeNe:
		a, b := c.Port("A"), c.Port("B")
		y := c.Port("Y")[0]
		signed := c.ParamBool("signed")
		av, aok := s.Uint(a)
		bv, bok := s.Uint(b)
		if !aok || !bok {
			return s.Set(y, Sx)
		}
		var cond bool
		if signed {
			as, bs := toSigned(av, len(a)), toSigned(bv, len(b))
			switch c.Type {
			case TypeLt:
				cond = as < bs
			case TypeLe:
				cond = as <= bs
			case TypeEq:
				cond = as == bs
			default:
				cond = as != bs
			}
		} else {
			switch c.Type {
			case TypeLt:
				cond = av < bv
			case TypeLe:
				cond = av <= bv
			case TypeEq:
				cond = av == bv
			default:
				cond = av != bv
			}
		}
		return s.setBitOrX(y, cond, true)

	case TypeMux:
		a, b, y := c.Port("A"), c.Port("B"), c.Port("Y")
		changed := false
		switch s.Get(c.Port("S")[0]) {
		case S0:
			for i := range y {
				if s.Set(y[i], s.Get(a[i])) {
					changed = true
				}
			}
		case S1:
			for i := range y {
				if s.Set(y[i], s.Get(b[i])) {
					changed = true
				}
			}
		default:
			for i := range y {
				av, bv := s.Get(a[i]), s.Get(b[i])
				v := Sx
				if av == bv {
					v = av
				}
				if s.Set(y[i], v) {
					changed = true
				}
			}
		}
		return changed

	case TypeReduceAnd, TypeReduceOr, TypeReduceXor, TypeReduceXnor:
		a := c.Port("A")
		y := c.Port("Y")[0]
		acc := S1
		if c.Type == TypeReduceOr || c.Type == TypeReduceXor || c.Type == TypeReduceXnor {
			acc = S0
		}
		for _, b := range a {
			v := s.Get(b)
			switch c.Type {
			case TypeReduceAnd:
				acc = logicAnd(acc, v)
			case TypeReduceOr:
				acc = logicOr(acc, v)
			default:
				acc = logicXor(acc, v)
			}
		}
		if c.Type == TypeReduceXnor {
			acc = logicNot(acc)
		}
		return s.Set(y, acc)
	}

	return false
}
