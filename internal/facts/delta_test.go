package facts

import "testing"

func TestComputeDeltaAddedAndRemoved(t *testing.T) {
	prev := Tables{
		Modules: []ModuleRow{
			{Name: "top", Cells: 2, Signals: 3},
			{Name: "old_sub", Cells: 1, Signals: 1},
		},
		Cells: []CellRow{
			{Module: "top", Name: "q_reg", Type: "dff", Ports: 3},
		},
	}
	next := Tables{
		Modules: []ModuleRow{
			{Name: "top", Cells: 2, Signals: 3},
			{Name: "new_sub", Cells: 4, Signals: 2},
		},
		Cells: []CellRow{
			{Module: "top", Name: "q_reg", Type: "dff", Ports: 3},
			{Module: "new_sub", Name: "adder", Type: "add", Ports: 3},
		},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Modules) != 1 || delta.Added.Modules[0].Name != "new_sub" {
		t.Errorf("added modules = %+v, want new_sub", delta.Added.Modules)
	}
	if len(delta.Removed.Modules) != 1 || delta.Removed.Modules[0].Name != "old_sub" {
		t.Errorf("removed modules = %+v, want old_sub", delta.Removed.Modules)
	}
	if len(delta.Added.Cells) != 1 || delta.Added.Cells[0].Name != "adder" {
		t.Errorf("added cells = %+v, want adder", delta.Added.Cells)
	}
	if len(delta.Removed.Cells) != 0 {
		t.Errorf("removed cells = %+v, want none", delta.Removed.Cells)
	}
}

func TestComputeDeltaFieldChangeIsAddAndRemove(t *testing.T) {
	prev := Tables{
		Memories: []MemoryRow{{Module: "top", Name: "ram", Width: 8, Size: 32}},
	}
	next := Tables{
		Memories: []MemoryRow{{Module: "top", Name: "ram", Width: 16, Size: 32}},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Memories) != 1 || delta.Added.Memories[0].Width != 16 {
		t.Errorf("added memories = %+v", delta.Added.Memories)
	}
	if len(delta.Removed.Memories) != 1 || delta.Removed.Memories[0].Width != 8 {
		t.Errorf("removed memories = %+v", delta.Removed.Memories)
	}
}

func TestComputeDeltaIdenticalTablesIsEmpty(t *testing.T) {
	tables := Tables{
		Modules:  []ModuleRow{{Name: "top", Cells: 1, Signals: 1}},
		Signals:  []SignalRow{{Module: "top", Name: "clk", Width: 1, PortID: 1, Input: true}},
		Warnings: []WarningRow{{Message: "w"}},
	}

	delta := ComputeDelta(tables, tables)

	if len(delta.Added.Modules)+len(delta.Added.Signals)+len(delta.Added.Warnings) != 0 {
		t.Errorf("expected empty added set, got %+v", delta.Added)
	}
	if len(delta.Removed.Modules)+len(delta.Removed.Signals)+len(delta.Removed.Warnings) != 0 {
		t.Errorf("expected empty removed set, got %+v", delta.Removed)
	}
}
