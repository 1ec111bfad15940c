package facts

import "testing"

func twoModuleTables() Tables {
	return Tables{
		Modules: []ModuleRow{
			{Name: "top", Cells: 1, Signals: 2},
			{Name: "sub", Cells: 3, Signals: 1},
		},
		Signals: []SignalRow{
			{Module: "top", Name: "clk", Width: 1, PortID: 1, Input: true},
			{Module: "sub", Name: "q", Width: 4, PortID: 1, Output: true},
		},
		Cells: []CellRow{
			{Module: "sub", Name: "q_reg", Type: "dff", Ports: 3},
		},
		Checkers: []CheckerRow{
			{Module: "top", Name: "check_clk", Kind: "assert", Named: true},
		},
		Warnings: []WarningRow{{Message: "kept regardless of module"}},
	}
}

func TestFilterTablesByModules(t *testing.T) {
	out := FilterTablesByModules(twoModuleTables(), map[string]bool{"sub": true})

	if len(out.Modules) != 1 || out.Modules[0].Name != "sub" {
		t.Errorf("modules = %+v, want sub only", out.Modules)
	}
	if len(out.Signals) != 1 || out.Signals[0].Module != "sub" {
		t.Errorf("signals = %+v, want sub only", out.Signals)
	}
	if len(out.Cells) != 1 {
		t.Errorf("cells = %+v, want q_reg", out.Cells)
	}
	if len(out.Checkers) != 0 {
		t.Errorf("checkers = %+v, want none", out.Checkers)
	}
	if len(out.Warnings) != 1 {
		t.Errorf("warnings = %+v, want pass-through", out.Warnings)
	}
}

func TestFilterTablesEmptySelection(t *testing.T) {
	out := FilterTablesByModules(twoModuleTables(), nil)

	if len(out.Modules)+len(out.Signals)+len(out.Cells)+len(out.Warnings) != 0 {
		t.Errorf("expected empty tables, got %+v", out)
	}
}

func TestFilterDeltaByModules(t *testing.T) {
	delta := Delta{
		Added:   twoModuleTables(),
		Removed: emptyTables(),
	}

	out := FilterDeltaByModules(delta, map[string]bool{"top": true})

	if len(out.Added.Modules) != 1 || out.Added.Modules[0].Name != "top" {
		t.Errorf("added modules = %+v, want top only", out.Added.Modules)
	}
	if len(out.Added.Cells) != 0 {
		t.Errorf("added cells = %+v, want none", out.Added.Cells)
	}
}
