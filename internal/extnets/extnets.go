// Package extnets repairs references to nets owned by enclosing scopes by
// threading fresh output ports up the hierarchy, so that every instance
// connection in every scope points at a net the scope itself owns. Run it
// before the importer; the importer rejects any reference promotion could
// not fix.
package extnets

import (
	"fmt"

	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// Promoter threads external net references upward. A net is promoted one
// level at a time, each promotion memoized so later references to the same
// net reuse the promoted copy.
type Promoter struct {
	Verbose bool

	portnameCnt int
	levelUp     map[*netlist.Net]*netlist.Net
}

// NewPromoter creates a promoter with an empty memo.
func NewPromoter() *Promoter {
	return &Promoter{levelUp: map[*netlist.Net]*netlist.Net{}}
}

func (p *Promoter) logf(format string, args ...any) {
	if p.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}

// netLevelUp returns the copy of net one hierarchy level up, creating a
// fresh output port and net on first use. A net whose owning scope is not
// instantiated exactly once cannot move and is returned unchanged.
func (p *Promoter) netLevelUp(net *netlist.Net) *netlist.Net {
	if promoted, ok := p.levelUp[net]; ok {
		return promoted
	}

	owner := net.Owner()
	refs := owner.Refs()
	if len(refs) != 1 {
		return net
	}

	upInst := refs[len(refs)-1]
	upScope := upInst.Owner()

	name := fmt.Sprintf("___extnets_%d", p.portnameCnt)
	p.portnameCnt++

	port := owner.AddPort(name, netlist.DirOut)
	owner.Bind(port, net)

	newNet := upScope.AddNet(name)
	upInst.ConnectPort(name, 0, newNet)

	p.levelUp[net] = newNet
	return newNet
}

// rewire is one deferred connection repair: point conn at net.
type rewire struct {
	conn *netlist.Conn
	net  *netlist.Net
}

// Run promotes every external reference under scope, children first.
// Rewiring is batched and applied after the scan so the structure being
// traversed is never mutated mid-walk.
func (p *Promoter) Run(scope *netlist.Scope) {
	for _, inst := range scope.Instances {
		if inst.View != nil {
			p.Run(inst.View)
		}
	}

	var todo []rewire

	for _, inst := range scope.Instances {
		for _, conn := range inst.Conns() {
			net := conn.Net
			if net == nil || !net.ExternalTo(scope) {
				continue
			}

			p.logf("Fixing external net reference on %s.%s.", scope.FullName(), inst.Name)

			for net.ExternalTo(scope) {
				promoted := p.netLevelUp(net)
				if promoted == net {
					break
				}
				p.logf("  external net: %s.%s", net.Owner().FullName(), net.Name)
				net = promoted
			}

			p.logf("  final net: %s.%s", net.Owner().FullName(), net.Name)
			todo = append(todo, rewire{conn, net})
		}
	}

	for _, r := range todo {
		r.conn.Inst.Rewire(r.conn, r.net)
	}
}
