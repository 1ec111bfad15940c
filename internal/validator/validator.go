// Package validator checks the data passed between pipeline stages against
// an embedded CUE schema. The fact tables built from an imported design are
// the contract with the policy engine; if a field name changes or a type is
// wrong, the rules would silently receive undefined and stop firing. The
// validator turns that into an immediate, named error instead.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator validates fact tables, deltas and reports against the CUE
// schema contract. When validation fails, fix the schema or the producer;
// never suppress the error.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator with the embedded CUE schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateFacts checks that fact tables conform to the #FactTables schema.
func (v *Validator) ValidateFacts(data interface{}) error {
	return v.validate(data, "#FactTables")
}

// ValidateDelta checks that a fact table delta conforms to the #Delta schema.
func (v *Validator) ValidateDelta(data interface{}) error {
	return v.validate(data, "#Delta")
}

// ValidateReport checks that a final CLI report conforms to the #Report schema.
func (v *Validator) ValidateReport(data interface{}) error {
	return v.validate(data, "#Report")
}

// ValidateFactsJSON validates JSON bytes directly against the #FactTables schema.
func (v *Validator) ValidateFactsJSON(jsonBytes []byte) error {
	return v.validateJSON(jsonBytes, "#FactTables")
}

func (v *Validator) validate(data interface{}, path string) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.validateJSON(jsonBytes, path)
}

func (v *Validator) validateJSON(jsonBytes []byte, path string) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", path, def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// ValidationErrors returns every individual error from validating fact
// tables, one message per failing field.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	def := v.schema.LookupPath(cue.ParsePath("#FactTables"))
	if def.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", def.Err())}
	}

	unified := def.Unify(dataValue)
	err = unified.Validate()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}
