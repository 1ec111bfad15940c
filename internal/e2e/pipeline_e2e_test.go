package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/extnets"
	"github.com/robert-at-pretension-io/netlist-import/internal/facts"
	"github.com/robert-at-pretension-io/netlist-import/internal/importer"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
	"github.com/robert-at-pretension-io/netlist-import/internal/policy"
	"github.com/robert-at-pretension-io/netlist-import/internal/validator"
)

// counterNetlist is a two-scope hierarchy: a soc top instantiating a 4-bit
// counter built from an adder, a wide register and an immediate assertion.
const counterNetlist = `{
	"top": "soc",
	"scopes": [
		{
			"name": "soc",
			"src": "soc.v:1",
			"ports": [{"name": "clk", "dir": "in", "net": "clk"}],
			"nets": [
				{"name": "clk", "userDeclared": true},
				{"name": "count0", "userDeclared": true},
				{"name": "count1", "userDeclared": true},
				{"name": "count2", "userDeclared": true},
				{"name": "count3", "userDeclared": true}
			],
			"instances": [
				{
					"name": "u_counter", "kind": "user", "userDeclared": true,
					"view": "counter", "src": "soc.v:9",
					"conns": [
						{"role": "port", "port": "clk", "net": "clk"},
						{"role": "port", "port": "q", "index": 0, "net": "count0"},
						{"role": "port", "port": "q", "index": 1, "net": "count1"},
						{"role": "port", "port": "q", "index": 2, "net": "count2"},
						{"role": "port", "port": "q", "index": 3, "net": "count3"}
					]
				}
			]
		},
		{
			"name": "counter",
			"src": "counter.v:1",
			"ports": [{"name": "clk", "dir": "in", "net": "clk"}],
			"portBuses": [
				{"name": "q", "dir": "out", "left": 3, "right": 0, "nets": ["q3", "q2", "q1", "q0"]}
			],
			"nets": [
				{"name": "clk", "userDeclared": true},
				{"name": "q0", "userDeclared": true, "init": "0"},
				{"name": "q1", "userDeclared": true, "init": "0"},
				{"name": "q2", "userDeclared": true, "init": "0"},
				{"name": "q3", "userDeclared": true, "init": "0"},
				{"name": "g", "const": "gnd"},
				{"name": "p", "const": "pwr"}
			],
			"netBuses": [
				{"name": "d", "userDeclared": true, "left": 3, "right": 0, "elems": ["d3", "d2", "d1", "d0"]}
			],
			"instances": [
				{
					"name": "g_drv", "kind": "gnd",
					"conns": [{"role": "out", "net": "g"}]
				},
				{
					"name": "p_drv", "kind": "pwr",
					"conns": [{"role": "out", "net": "p"}]
				},
				{
					"name": "add1", "kind": "adder", "userDeclared": true, "src": "counter.v:6",
					"conns": [
						{"role": "in1_bit", "index": 0, "net": "q3"},
						{"role": "in1_bit", "index": 1, "net": "q2"},
						{"role": "in1_bit", "index": 2, "net": "q1"},
						{"role": "in1_bit", "index": 3, "net": "q0"},
						{"role": "in2_bit", "index": 0, "net": "g"},
						{"role": "in2_bit", "index": 1, "net": "g"},
						{"role": "in2_bit", "index": 2, "net": "g"},
						{"role": "in2_bit", "index": 3, "net": "p"},
						{"role": "cin", "net": "g"},
						{"role": "out_bit", "index": 0, "net": "d3"},
						{"role": "out_bit", "index": 1, "net": "d2"},
						{"role": "out_bit", "index": 2, "net": "d1"},
						{"role": "out_bit", "index": 3, "net": "d0"}
					]
				},
				{
					"name": "q_reg", "kind": "wide_dffrs", "userDeclared": true, "src": "counter.v:8",
					"conns": [
						{"role": "clock", "net": "clk"},
						{"role": "in_bit", "index": 0, "net": "d3"},
						{"role": "in_bit", "index": 1, "net": "d2"},
						{"role": "in_bit", "index": 2, "net": "d1"},
						{"role": "in_bit", "index": 3, "net": "d0"},
						{"role": "out_bit", "index": 0, "net": "q3"},
						{"role": "out_bit", "index": 1, "net": "q2"},
						{"role": "out_bit", "index": 2, "net": "q1"},
						{"role": "out_bit", "index": 3, "net": "q0"}
					]
				},
				{
					"name": "check_q0", "kind": "immediate_assert", "src": "counter.v:11",
					"conns": [{"role": "in", "net": "q0"}]
				}
			]
		}
	]
}`

func importCounter(t *testing.T) (*design.Design, *importer.Importer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "counter.json")
	if err := os.WriteFile(path, []byte(counterNetlist), 0o644); err != nil {
		t.Fatalf("writing netlist: %v", err)
	}

	root, err := netlist.LoadFile(path)
	if err != nil {
		t.Fatalf("loading netlist: %v", err)
	}
	if root.Name != "soc" {
		t.Fatalf("top scope = %q, want soc", root.Name)
	}

	extnets.NewPromoter().Run(root)

	d := design.NewDesign()
	imp := importer.New(d)
	if err := imp.Run(root); err != nil {
		t.Fatalf("importing: %v", err)
	}
	return d, imp
}

func TestPipelineImportsHierarchy(t *testing.T) {
	d, _ := importCounter(t)

	soc := d.Module("soc")
	counter := d.Module("counter")
	if soc == nil || counter == nil {
		t.Fatalf("expected modules soc and counter, got %v", d.Modules())
	}

	sub := soc.CellByName("u_counter")
	if sub == nil || sub.Type != "counter" {
		t.Fatalf("expected hierarchical cell u_counter of type counter, got %+v", sub)
	}
	if len(sub.Port("q")) != 4 || len(sub.Port("clk")) != 1 {
		t.Errorf("bad sub-instance port widths: q=%d clk=%d", len(sub.Port("q")), len(sub.Port("clk")))
	}

	if n := len(counter.CellsOfType(design.TypeAdd)); n != 1 {
		t.Errorf("adder cells = %d, want 1", n)
	}
	if n := len(counter.CellsOfType(design.TypeDff)); n != 1 {
		t.Errorf("register cells = %d, want 1", n)
	}
	if n := len(counter.CellsOfType(design.TypeAssert)); n != 1 {
		t.Errorf("assert cells = %d, want 1", n)
	}
}

func TestPipelineCounterCounts(t *testing.T) {
	d, _ := importCounter(t)

	counter := d.Module("counter")
	clk := counter.SignalByName("clk")
	q := counter.SignalByName("q")
	if clk == nil || q == nil {
		t.Fatalf("missing clk or q signal in counter")
	}

	sim := design.NewSim(counter)
	sim.Settle()

	if v, ok := sim.Uint(q.Sig()); !ok || v != 0 {
		t.Fatalf("initial q = %d (defined=%v), want 0", v, ok)
	}

	for i := 1; i <= 5; i++ {
		sim.Posedge(clk.Bit(0))
		if v, ok := sim.Uint(q.Sig()); !ok || v != uint64(i) {
			t.Fatalf("q after %d edges = %d (defined=%v), want %d", i, v, ok, i)
		}
	}
}

func TestPipelineFactsValidateAndPolicy(t *testing.T) {
	d, imp := importCounter(t)

	tables := facts.BuildTables(d, imp.Warnings)

	v, err := validator.New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if err := v.ValidateFacts(tables); err != nil {
		t.Fatalf("facts failed schema validation: %v\n%v", err, v.ValidationErrors(tables))
	}

	engine, err := policy.NewDefault()
	if err != nil {
		t.Fatalf("new policy engine: %v", err)
	}
	result, err := engine.Evaluate(tables)
	if err != nil {
		t.Fatalf("evaluating policies: %v", err)
	}

	// The immediate assertion lowers under an auto-generated name, which
	// the built-in rules flag as an unnamed checker.
	if result.Summary.Errors != 0 {
		t.Errorf("policy errors = %d, want 0: %+v", result.Summary.Errors, result.Violations)
	}
	found := false
	for _, viol := range result.Violations {
		if viol.Rule == "unnamed-checker" && viol.Module == "counter" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unnamed-checker violation for counter, got %+v", result.Violations)
	}
}
