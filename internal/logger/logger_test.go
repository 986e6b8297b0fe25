package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{"warning", LevelWarning, false},
		{"Error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWarnHttp4xx(t *testing.T) {
	before404 := Total404Errors.Load()
	before409 := Total409Errors.Load()
	before4xx := Total4xxErrors.Load()

	WarnHttp4xx(404)
	WarnHttp4xx(409)
	WarnHttp4xx(400)

	if Total404Errors.Load()-before404 != 1 {
		t.Error("Expected 404 counter to increment once")
	}
	if Total409Errors.Load()-before409 != 1 {
		t.Error("Expected 409 counter to increment once")
	}
	if Total4xxErrors.Load()-before4xx != 3 {
		t.Error("Expected 4xx counter to increment three times")
	}
}

func TestSetLevel(t *testing.T) {
	old := GetLevel()
	defer SetLevel(old)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("Expected level %v, got %v", LevelError, GetLevel())
	}
}
