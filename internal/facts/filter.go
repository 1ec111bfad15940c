package facts

// FilterTablesByModules returns a new Tables object containing only rows
// belonging to the provided module set. Warnings are design-wide and pass
// through unchanged.
func FilterTablesByModules(tables Tables, modules map[string]bool) Tables {
	if len(modules) == 0 {
		return emptyTables()
	}
	out := emptyTables()

	for _, row := range tables.Modules {
		if modules[row.Name] {
			out.Modules = append(out.Modules, row)
		}
	}
	for _, row := range tables.Signals {
		if modules[row.Module] {
			out.Signals = append(out.Signals, row)
		}
	}
	for _, row := range tables.Cells {
		if modules[row.Module] {
			out.Cells = append(out.Cells, row)
		}
	}
	for _, row := range tables.Connections {
		if modules[row.Module] {
			out.Connections = append(out.Connections, row)
		}
	}
	for _, row := range tables.Memories {
		if modules[row.Module] {
			out.Memories = append(out.Memories, row)
		}
	}
	for _, row := range tables.Checkers {
		if modules[row.Module] {
			out.Checkers = append(out.Checkers, row)
		}
	}
	out.Warnings = append(out.Warnings, tables.Warnings...)

	return out
}

// FilterDeltaByModules returns a new Delta containing only rows for the
// specified modules.
func FilterDeltaByModules(delta Delta, modules map[string]bool) Delta {
	if len(modules) == 0 {
		return Delta{
			Added:   emptyTables(),
			Removed: emptyTables(),
		}
	}
	return Delta{
		Added:   FilterTablesByModules(delta.Added, modules),
		Removed: FilterTablesByModules(delta.Removed, modules),
	}
}
