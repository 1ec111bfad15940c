package validator

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/netlist-import/internal/facts"
)

func validTables() facts.Tables {
	return facts.Tables{
		Modules: []facts.ModuleRow{{
			Name:     "top",
			BlackBox: false,
			Cells:    2,
			Signals:  3,
		}},
		Signals: []facts.SignalRow{{
			Module: "top",
			Name:   "clk",
			Width:  1,
			PortID: 1,
			Input:  true,
			Src:    "top.v:3",
		}},
		Cells: []facts.CellRow{{
			Module: "top",
			Name:   "q_reg",
			Type:   "dff",
			Ports:  3,
		}},
		Connections: []facts.ConnectionRow{{
			Module: "top",
			Dst:    "q_out",
			Src:    "q",
			Width:  1,
		}},
		Memories: []facts.MemoryRow{},
		Checkers: []facts.CheckerRow{{
			Module: "top",
			Name:   "check_req_ack",
			Kind:   "assert",
			Named:  true,
		}},
		Warnings: []facts.WarningRow{},
	}
}

func TestValidatorAcceptsValidTables(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	if err := v.ValidateFacts(validTables()); err != nil {
		t.Fatalf("expected valid tables, got error: %v", err)
	}
}

func TestValidatorRejectsZeroWidthSignal(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	tables := validTables()
	tables.Signals[0].Width = 0

	if err := v.ValidateFacts(tables); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestValidatorRejectsUnknownCheckerKind(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	tables := validTables()
	tables.Checkers[0].Kind = "restrict"

	if err := v.ValidateFacts(tables); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestValidatorRejectsExtraField(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	payload := `{
		"modules": [{"name": "top", "is_blackbox": false, "cell_count": 0, "signal_count": 0, "bogus": 1}],
		"signals": [], "cells": [], "connections": [],
		"memories": [], "checkers": [], "warnings": []
	}`

	if err := v.ValidateFactsJSON([]byte(payload)); err == nil {
		t.Fatalf("expected validation error for unknown field, got nil")
	}
}

func TestValidatorDelta(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	delta := facts.ComputeDelta(facts.Tables{}, validTables())
	if err := v.ValidateDelta(delta); err != nil {
		t.Fatalf("expected valid delta, got error: %v", err)
	}
}

func TestValidationErrorsListsFailures(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	tables := validTables()
	tables.Modules[0].Name = ""
	tables.Memories = []facts.MemoryRow{{Module: "top", Name: "mem", Width: 0, Size: 0}}

	errs := v.ValidationErrors(tables)
	if len(errs) == 0 {
		t.Fatalf("expected validation errors, got none")
	}
	joined := strings.Join(errs, "\n")
	if !strings.Contains(joined, "name") && !strings.Contains(joined, "width") {
		t.Errorf("expected errors to mention failing fields, got: %s", joined)
	}
}

func TestValidationErrorsNilOnValid(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	if errs := v.ValidationErrors(validTables()); errs != nil {
		t.Fatalf("expected no errors, got: %v", errs)
	}
}
