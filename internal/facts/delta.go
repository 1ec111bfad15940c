package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots of an
// imported design, e.g. before and after a source netlist change.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Modules = diffModuleRows(from.Modules, to.Modules)
	out.Signals = diffSignalRows(from.Signals, to.Signals)
	out.Cells = diffCellRows(from.Cells, to.Cells)
	out.Connections = diffConnectionRows(from.Connections, to.Connections)
	out.Memories = diffMemoryRows(from.Memories, to.Memories)
	out.Checkers = diffCheckerRows(from.Checkers, to.Checkers)
	out.Warnings = diffWarningRows(from.Warnings, to.Warnings)

	return out
}

func emptyTables() Tables {
	return Tables{
		Modules:     []ModuleRow{},
		Signals:     []SignalRow{},
		Cells:       []CellRow{},
		Connections: []ConnectionRow{},
		Memories:    []MemoryRow{},
		Checkers:    []CheckerRow{},
		Warnings:    []WarningRow{},
	}
}

func diffModuleRows(from, to []ModuleRow) []ModuleRow {
	return diffRows(from, to, func(r ModuleRow) string {
		return r.Name + "|" + boolKey(r.BlackBox) + "|" + intKey(r.Cells) + "|" + intKey(r.Signals)
	})
}

func diffSignalRows(from, to []SignalRow) []SignalRow {
	return diffRows(from, to, func(r SignalRow) string {
		return r.Module + "|" + r.Name + "|" + intKey(r.Width) + "|" + intKey(r.Offset) + "|" +
			intKey(r.PortID) + "|" + boolKey(r.Input) + "|" + boolKey(r.Output) + "|" + boolKey(r.HasInit)
	})
}

func diffCellRows(from, to []CellRow) []CellRow {
	return diffRows(from, to, func(r CellRow) string {
		return r.Module + "|" + r.Name + "|" + r.Type + "|" + intKey(r.Ports)
	})
}

func diffConnectionRows(from, to []ConnectionRow) []ConnectionRow {
	return diffRows(from, to, func(r ConnectionRow) string {
		return r.Module + "|" + r.Dst + "|" + r.Src + "|" + intKey(r.Width)
	})
}

func diffMemoryRows(from, to []MemoryRow) []MemoryRow {
	return diffRows(from, to, func(r MemoryRow) string {
		return r.Module + "|" + r.Name + "|" + intKey(r.Width) + "|" + intKey(r.Size)
	})
}

func diffCheckerRows(from, to []CheckerRow) []CheckerRow {
	return diffRows(from, to, func(r CheckerRow) string {
		return r.Module + "|" + r.Name + "|" + r.Kind + "|" + boolKey(r.Named)
	})
}

func diffWarningRows(from, to []WarningRow) []WarningRow {
	return diffRows(from, to, func(r WarningRow) string {
		return r.Message
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	var diff []T
	for _, row := range to {
		rowKey := key(row)
		if _, ok := fromSet[rowKey]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func intKey(v int) string {
	return strconv.Itoa(v)
}
