package netlist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// The front-end hands its elaborated netlist over as a JSON document: one
// entry per scope, nets and instances by name, hierarchical instances
// referencing their sub-scope by scope name. Loading reconstructs the
// pointer graph. This is deserialization of an already-elaborated design,
// not HDL parsing.

type fileNetlist struct {
	Top    string      `json:"top"`
	Scopes []fileScope `json:"scopes"`
}

type fileScope struct {
	Name      string            `json:"name"`
	Operator  bool              `json:"operator,omitempty"`
	BlackBox  bool              `json:"blackbox,omitempty"`
	Src       string            `json:"src,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Ports     []filePort        `json:"ports,omitempty"`
	PortBuses []filePortBus     `json:"portBuses,omitempty"`
	Nets      []fileNet         `json:"nets,omitempty"`
	NetBuses  []fileNetBus      `json:"netBuses,omitempty"`
	Instances []fileInstance    `json:"instances,omitempty"`
}

type filePort struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	Net  string `json:"net,omitempty"`
}

type filePortBus struct {
	Name  string   `json:"name"`
	Dir   string   `json:"dir"`
	Left  int      `json:"left"`
	Right int      `json:"right"`
	Nets  []string `json:"nets,omitempty"` // element bindings in declared order, "" for unbound
}

type fileNet struct {
	Name         string            `json:"name"`
	UserDeclared bool              `json:"userDeclared,omitempty"`
	Init         string            `json:"init,omitempty"` // "0", "1" or "x"
	Rand         bool              `json:"rand,omitempty"`
	RandConst    bool              `json:"randConst,omitempty"`
	Ram          bool              `json:"ram,omitempty"`
	WideInit     string            `json:"wideInit,omitempty"`
	Size         int               `json:"size,omitempty"`
	Left         int               `json:"left,omitempty"`
	Right        int               `json:"right,omitempty"`
	Const        string            `json:"const,omitempty"` // "gnd" or "pwr"
	Src          string            `json:"src,omitempty"`
	Attrs        map[string]string `json:"attrs,omitempty"`
}

type fileNetBus struct {
	Name         string   `json:"name"`
	UserDeclared bool     `json:"userDeclared,omitempty"`
	Left         int      `json:"left"`
	Right        int      `json:"right"`
	Elems        []string `json:"elems"` // element net names in declared order
}

type fileInstance struct {
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	UserDeclared bool              `json:"userDeclared,omitempty"`
	Signed       bool              `json:"signed,omitempty"`
	View         string            `json:"view,omitempty"`
	Src          string            `json:"src,omitempty"`
	Attrs        map[string]string `json:"attrs,omitempty"`
	Conns        []fileConn        `json:"conns,omitempty"`
}

type fileConn struct {
	Role  string `json:"role"`
	Index int    `json:"index,omitempty"`
	Port  string `json:"port,omitempty"`
	Net   string `json:"net"` // "scope.net" or bare name for same-scope nets
}

// Load reconstructs a netlist hierarchy from JSON and returns the root
// scope named by the document's "top" field.
func Load(data []byte) (*Scope, error) {
	var file fileNetlist
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding netlist: %w", err)
	}

	scopes := map[string]*Scope{}
	nets := map[string]map[string]*Net{}

	// First pass: scopes, nets and ports, so cross-scope references in the
	// second pass always resolve.
	for _, fs := range file.Scopes {
		if scopes[fs.Name] != nil {
			return nil, fmt.Errorf("duplicate scope %q", fs.Name)
		}
		s := NewScope(fs.Name)
		s.Operator = fs.Operator
		s.BlackBox = fs.BlackBox
		s.Src = fs.Src
		for k, v := range fs.Attrs {
			s.Attrs[k] = v
		}
		scopes[fs.Name] = s
		nets[fs.Name] = map[string]*Net{}

		for _, fn := range fs.Nets {
			n := s.AddNet(fn.Name)
			n.UserDeclared = fn.UserDeclared
			if fn.Init != "" {
				n.Init = fn.Init[0]
			}
			n.Rand = fn.Rand
			n.RandConst = fn.RandConst
			n.Ram = fn.Ram
			n.WideInit = fn.WideInit
			if fn.Size > 0 {
				n.Size = fn.Size
			}
			n.Left, n.Right = fn.Left, fn.Right
			switch fn.Const {
			case "gnd":
				n.Const = ConstGnd
			case "pwr":
				n.Const = ConstPwr
			case "":
			default:
				return nil, fmt.Errorf("scope %q: net %q: unknown const marker %q", fs.Name, fn.Name, fn.Const)
			}
			n.Src = fn.Src
			for k, v := range fn.Attrs {
				n.Attrs[k] = v
			}
			nets[fs.Name][fn.Name] = n
		}

		for _, fb := range fs.NetBuses {
			b := s.AddNetBus(fb.Name, fb.Left, fb.Right)
			b.UserDeclared = fb.UserDeclared
			if len(fb.Elems) != b.Size() {
				return nil, fmt.Errorf("scope %q: net bus %q: %d elements for range [%d:%d]",
					fs.Name, fb.Name, len(fb.Elems), fb.Left, fb.Right)
			}
			for i, name := range fb.Elems {
				b.Elems[i].Name = name
				b.Elems[i].UserDeclared = fb.UserDeclared
				nets[fs.Name][name] = b.Elems[i]
			}
		}
	}

	resolve := func(scope string, ref string) (*Net, error) {
		// A dotted reference names a net in another scope; it stays external
		// until the promotion pre-pass threads it through ports.
		if i := strings.IndexByte(ref, '.'); i >= 0 {
			n := nets[ref[:i]][ref[i+1:]]
			if n == nil {
				return nil, fmt.Errorf("unknown net reference %q", ref)
			}
			return n, nil
		}
		n := nets[scope][ref]
		if n == nil {
			return nil, fmt.Errorf("scope %q: unknown net %q", scope, ref)
		}
		return n, nil
	}

	// Second pass: port bindings and instances.
	for _, fs := range file.Scopes {
		s := scopes[fs.Name]

		for _, fp := range fs.Ports {
			dir, err := ParseDir(fp.Dir)
			if err != nil {
				return nil, fmt.Errorf("scope %q: port %q: %w", fs.Name, fp.Name, err)
			}
			p := s.AddPort(fp.Name, dir)
			if fp.Net != "" {
				n, err := resolve(fs.Name, fp.Net)
				if err != nil {
					return nil, err
				}
				s.Bind(p, n)
			}
		}

		for _, fb := range fs.PortBuses {
			dir, err := ParseDir(fb.Dir)
			if err != nil {
				return nil, fmt.Errorf("scope %q: port bus %q: %w", fs.Name, fb.Name, err)
			}
			b := s.AddPortBus(fb.Name, dir, fb.Left, fb.Right)
			for i, ref := range fb.Nets {
				if ref == "" || i >= b.Size() {
					continue
				}
				n, err := resolve(fs.Name, ref)
				if err != nil {
					return nil, err
				}
				s.Bind(b.Elems[i], n)
			}
		}

		for _, fi := range fs.Instances {
			kind, err := ParseKind(fi.Kind)
			if err != nil {
				return nil, fmt.Errorf("scope %q: instance %q: %w", fs.Name, fi.Name, err)
			}
			inst := s.AddInstance(kind, fi.Name)
			inst.UserDeclared = fi.UserDeclared
			inst.Signed = fi.Signed
			inst.Src = fi.Src
			for k, v := range fi.Attrs {
				inst.Attrs[k] = v
			}
			if fi.View != "" {
				sub := scopes[fi.View]
				if sub == nil {
					return nil, fmt.Errorf("scope %q: instance %q: unknown view %q", fs.Name, fi.Name, fi.View)
				}
				inst.SetView(sub)
			}
			for _, fc := range fi.Conns {
				role, err := ParseRole(fc.Role)
				if err != nil {
					return nil, fmt.Errorf("scope %q: instance %q: %w", fs.Name, fi.Name, err)
				}
				n, err := resolve(fs.Name, fc.Net)
				if err != nil {
					return nil, fmt.Errorf("instance %q: %w", fi.Name, err)
				}
				switch {
				case role == RolePort:
					inst.ConnectPort(fc.Port, fc.Index, n)
				case role.isWide():
					inst.ConnectBit(role, fc.Index, n)
				default:
					inst.Connect(role, n)
				}
			}
		}
	}

	top := scopes[file.Top]
	if top == nil {
		return nil, fmt.Errorf("top scope %q not found", file.Top)
	}
	return top, nil
}

// LoadFile reads and reconstructs a netlist JSON file.
func LoadFile(path string) (*Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}
	return Load(data)
}
