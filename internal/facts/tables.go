package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
)

// Tables is the relational fact model exported from an imported design.
// Each slice is a relation (table) with flat rows, consumed by the schema
// validator and the policy engine.
type Tables struct {
	Modules     []ModuleRow     `json:"modules"`
	Signals     []SignalRow     `json:"signals"`
	Cells       []CellRow       `json:"cells"`
	Connections []ConnectionRow `json:"connections"`
	Memories    []MemoryRow     `json:"memories"`
	Checkers    []CheckerRow    `json:"checkers"`
	Warnings    []WarningRow    `json:"warnings"`
}

type ModuleRow struct {
	Name     string `json:"name"`
	BlackBox bool   `json:"is_blackbox"`
	Cells    int    `json:"cell_count"`
	Signals  int    `json:"signal_count"`
}

type SignalRow struct {
	Module  string `json:"module"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Offset  int    `json:"offset"`
	PortID  int    `json:"port_id"`
	Input   bool   `json:"is_input"`
	Output  bool   `json:"is_output"`
	HasInit bool   `json:"has_init"`
	Src     string `json:"src"`
}

type CellRow struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Ports  int    `json:"port_count"`
	Src    string `json:"src"`
}

type ConnectionRow struct {
	Module string `json:"module"`
	Dst    string `json:"dst"`
	Src    string `json:"src"`
	Width  int    `json:"width"`
}

type MemoryRow struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Size   int    `json:"size"`
}

type CheckerRow struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Named  bool   `json:"is_named"`
}

type WarningRow struct {
	Message string `json:"message"`
}

// checkerKinds maps checker cell types to their exported kind name.
var checkerKinds = map[string]string{
	design.TypeAssert: "assert",
	design.TypeAssume: "assume",
	design.TypeCover:  "cover",
}

// BuildTables flattens an imported design into the relational model.
// Warnings accumulated by the importer ride along so policy rules can see
// demoted errors.
func BuildTables(d *design.Design, warnings []string) Tables {
	tables := emptyTables()

	for _, m := range d.Modules() {
		tables.Modules = append(tables.Modules, ModuleRow{
			Name:     m.Name,
			BlackBox: m.BlackBox,
			Cells:    len(m.Cells()),
			Signals:  len(m.Signals()),
		})

		for _, w := range m.Signals() {
			tables.Signals = append(tables.Signals, SignalRow{
				Module:  m.Name,
				Name:    w.Name,
				Width:   w.Width,
				Offset:  w.Offset,
				PortID:  w.PortID,
				Input:   w.PortInput,
				Output:  w.PortOutput,
				HasInit: w.Init != nil,
				Src:     w.Attrs["src"],
			})
		}

		for _, c := range m.Cells() {
			tables.Cells = append(tables.Cells, CellRow{
				Module: m.Name,
				Name:   c.Name,
				Type:   c.Type,
				Ports:  len(c.Conns),
				Src:    c.Attrs["src"],
			})

			if kind, ok := checkerKinds[c.Type]; ok {
				tables.Checkers = append(tables.Checkers, CheckerRow{
					Module: m.Name,
					Name:   c.Name,
					Kind:   kind,
					Named:  len(c.Name) == 0 || c.Name[0] != '$',
				})
			}
		}

		for _, conn := range m.Conns {
			tables.Connections = append(tables.Connections, ConnectionRow{
				Module: m.Name,
				Dst:    conn.Dst.String(),
				Src:    conn.Src.String(),
				Width:  len(conn.Dst),
			})
		}

		for _, mem := range m.Memories() {
			tables.Memories = append(tables.Memories, MemoryRow{
				Module: m.Name,
				Name:   mem.Name,
				Width:  mem.Width,
				Size:   mem.Size,
			})
		}
	}

	for _, w := range warnings {
		tables.Warnings = append(tables.Warnings, WarningRow{Message: w})
	}

	sort.Slice(tables.Modules, func(i, j int) bool { return tables.Modules[i].Name < tables.Modules[j].Name })

	return tables
}
