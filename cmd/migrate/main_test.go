package main

import "testing"

func TestIntArg(t *testing.T) {
	if _, err := intArg(nil, "force"); err == nil {
		t.Error("Expected error for missing argument")
	}
	if _, err := intArg([]string{"two"}, "steps"); err == nil {
		t.Error("Expected error for non-numeric argument")
	}
	n, err := intArg([]string{"-2"}, "steps")
	if err != nil {
		t.Fatalf("intArg() failed: %v", err)
	}
	if n != -2 {
		t.Errorf("Expected -2, got %d", n)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if err := run(nil, "sideways", nil); err == nil {
		t.Error("Expected error for unknown command")
	}
}
