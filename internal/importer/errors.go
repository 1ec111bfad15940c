package importer

import (
	"fmt"

	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

// UnresolvedExternalReferenceError reports a net referenced outside its
// owning scope. Promotion (extnets) or flattening upstream fixes this.
type UnresolvedExternalReferenceError struct {
	Net   string
	Owner string
	Scope string
}

func (e *UnresolvedExternalReferenceError) Error() string {
	return fmt.Sprintf("external reference to %q.%q in scope %q, run external net promotion or flatten the hierarchy upstream",
		e.Owner, e.Net, e.Scope)
}

// UnsupportedConfigurationError reports a recognized primitive wired in a
// combination the lowering tables do not model. Always fatal.
type UnsupportedConfigurationError struct {
	Inst   string
	Kind   netlist.Kind
	Reason string
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("instance %q (%v): %s", e.Inst, e.Kind, e.Reason)
}

// UnsupportedPrimitiveError reports an instance kind that matches no
// lowering table and no temporal-assertion handler. Demoted to a warning
// in keep mode.
type UnsupportedPrimitiveError struct {
	Inst string
	Kind netlist.Kind
}

func (e *UnsupportedPrimitiveError) Error() string {
	return fmt.Sprintf("unsupported primitive %q of kind %v", e.Inst, e.Kind)
}

// UnsupportedTemporalFeatureError reports a temporal operator the sequence
// compiler does not implement, such as a range with unequal bounds.
type UnsupportedTemporalFeatureError struct {
	Inst   string
	Kind   netlist.Kind
	Reason string
}

func (e *UnsupportedTemporalFeatureError) Error() string {
	return fmt.Sprintf("temporal instance %q (%v): %s", e.Inst, e.Kind, e.Reason)
}

// InternalConsistencyError reports a violated invariant the caller was
// expected to guarantee. A defect in the caller, not a user-facing error.
type InternalConsistencyError struct {
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return "internal consistency: " + e.Reason
}

// importFault carries a typed error out of deeply nested lowering code.
// The per-scope entry point recovers it and returns the wrapped error.
type importFault struct {
	err error
}

func (imp *Importer) fail(err error) {
	panic(importFault{err})
}
