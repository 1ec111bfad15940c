package importer

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
)

// Past-register merge: CSE over the single-bit delay registers the
// sequence compiler and the previous-value operator produce. Registers in
// the same clock domain whose data inputs land on consecutive bits of one
// signal collapse into one multi-bit register; their old outputs alias the
// new ones. Aliasing can make further inputs equal, so each clock domain
// re-scans until a full pass merges nothing.

type clockDomain struct {
	clock   design.Bit
	posedge bool
}

func (imp *Importer) mergePastFFs(candidates mapset.Set[*design.Cell]) {
	domains := map[clockDomain]mapset.Set[*design.Cell]{}

	for cell := range candidates.Iter() {
		key := clockDomain{
			clock:   cell.Port("CLK")[0],
			posedge: cell.ParamBool("clk_polarity"),
		}
		set, ok := domains[key]
		if !ok {
			set = mapset.NewThreadUnsafeSet[*design.Cell]()
			domains[key] = set
		}
		set.Add(cell)
	}

	for key, set := range domains {
		imp.mergePastFFsClock(set, key.clock, key.posedge)
	}
}

// aliasMap canonicalizes bits through the aliases accumulated from prior
// merge rounds.
type aliasMap map[design.Bit]design.Bit

func (a aliasMap) canonical(b design.Bit) design.Bit {
	for {
		next, ok := a[b]
		if !ok {
			return b
		}
		b = next
	}
}

func (imp *Importer) mergePastFFsClock(candidates mapset.Set[*design.Cell], clock design.Bit, posedge bool) {
	m := imp.module
	aliases := aliasMap{}

	for keepRunning := true; keepRunning; {
		keepRunning = false

		// Group candidates by canonical data-input bit, then find runs of
		// consecutive bits on one signal.
		dbitsDB := map[design.Bit][]*design.Cell{}
		perSignal := map[*design.Signal][]int{}

		for cell := range candidates.Iter() {
			bit := aliases.canonical(cell.Port("D")[0])
			if len(dbitsDB[bit]) == 0 && bit.Sig != nil {
				perSignal[bit.Sig] = append(perSignal[bit.Sig], bit.Off)
			}
			dbitsDB[bit] = append(dbitsDB[bit], cell)
		}

		signals := make([]*design.Signal, 0, len(perSignal))
		for sig := range perSignal {
			signals = append(signals, sig)
		}
		sort.Slice(signals, func(i, j int) bool { return signals[i].Name < signals[j].Name })

		for _, sig := range signals {
			offs := perSignal[sig]
			sort.Ints(offs)

			for start := 0; start < len(offs); {
				end := start + 1
				for end < len(offs) && offs[end] == offs[end-1]+1 {
					end++
				}
				run := offs[start:end]
				start = end

				if len(run) == 1 {
					continue
				}

				sigD := make(design.Sig, len(run))
				for i, off := range run {
					sigD[i] = sig.Bit(off)
				}
				sigQ := m.AddSignalWidth(m.NewID(), len(run)).Sig()
				newFF := m.AddDff(m.NewID(), clock, sigD, sigQ, posedge)
				imp.logf("  merging single-bit delay registers into new %d-bit register %s.", len(run), newFF.Name)

				for i := range sigD {
					for _, oldFF := range dbitsDB[sigD[i]] {
						imp.logf("    replacing register %s on bit %d.", oldFF.Name, i)

						oldQ := oldFF.Port("Q")[0]
						aliases[oldQ] = sigQ[i]
						m.ConnectBit(oldQ, sigQ[i])
						candidates.Remove(oldFF)
						m.RemoveCell(oldFF)
						keepRunning = true
					}
				}
			}
		}
	}
}
