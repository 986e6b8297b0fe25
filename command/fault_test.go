package command

import (
	"errors"
	"fmt"
	"testing"
)

func TestFault(t *testing.T) {
	cause := errors.New("sql: no rows")
	f := NotFound("product %s not found", "p-1").Wrap(cause)

	if f.Error() != "product p-1 not found" {
		t.Errorf("Unexpected message: %q", f.Error())
	}
	if !errors.Is(f, cause) {
		t.Error("Expected fault to unwrap to its cause")
	}

	wrapped := fmt.Errorf("get product: %w", f)
	if !IsFault(wrapped) {
		t.Error("Expected IsFault through wrapping")
	}
	if !HasCode(wrapped, CodeNotFound) || HasCode(wrapped, CodeConflict) {
		t.Error("HasCode mismatch")
	}
	if IsFault(cause) {
		t.Error("Plain errors are not faults")
	}
}

func TestFaultCodes(t *testing.T) {
	tests := []struct {
		fault *Fault
		code  FaultCode
	}{
		{NewFault("x"), CodeBusinessRule},
		{NotFound("x"), CodeNotFound},
		{Concurrency("x"), CodeConcurrency},
		{Conflict("x"), CodeConflict},
	}
	for _, tt := range tests {
		if tt.fault.Code != tt.code {
			t.Errorf("Expected %s, got %s", tt.code, tt.fault.Code)
		}
	}
}

func TestExecutionContext(t *testing.T) {
	ec := NewExecutionContext[string]()
	if _, ok := ec.Entity(); ok {
		t.Error("Expected no entity on a fresh context")
	}
	ec.SetEntity("")
	if _, ok := ec.Entity(); !ok {
		t.Error("Expected zero-valued entity to count as set")
	}

	ec.Set("count", 3)
	if v, ok := Lookup[int](ec, "count"); !ok || v != 3 {
		t.Errorf("Expected 3, got %v (%v)", v, ok)
	}
	if _, ok := Lookup[string](ec, "count"); ok {
		t.Error("Expected type mismatch to report false")
	}
	if _, ok := Lookup[int](ec, "missing"); ok {
		t.Error("Expected missing key to report false")
	}
}
