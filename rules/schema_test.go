package rules

import (
	"strings"
	"testing"
)

// TestValidateSchema_EmptySchema verifies a schema must contain at least one object
func TestValidateSchema_EmptySchema(t *testing.T) {
	err := ValidateSchema(Schema{})
	if err == nil {
		t.Fatal("Expected error for empty schema, got nil")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("Expected error message about empty schema, got: %v", err)
	}
}

// TestValidateSchema_EmptyObject verifies objects must contain at least one field
func TestValidateSchema_EmptyObject(t *testing.T) {
	err := ValidateSchema(Schema{"Product": {}})
	if err == nil {
		t.Fatal("Expected error for empty object definition, got nil")
	}
	if !strings.Contains(err.Error(), "Product") {
		t.Errorf("Expected error message to mention 'Product', got: %v", err)
	}
}

// TestValidateSchema_TooManyObjects verifies the object limit
func TestValidateSchema_TooManyObjects(t *testing.T) {
	schema := Schema{}
	for i := 0; i < maxSchemaObjects+1; i++ {
		objectName := "Object" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		schema[objectName] = map[string]string{"Field": "int"}
	}

	err := ValidateSchema(schema)
	if err == nil {
		t.Fatal("Expected error for too many objects, got nil")
	}
	if !strings.Contains(err.Error(), "100") {
		t.Errorf("Expected error message about max 100 objects, got: %v", err)
	}
}

func TestValidateSchema_Types(t *testing.T) {
	tests := []struct {
		typeName string
		valid    bool
	}{
		{"int", true},
		{"int64", true},
		{"float64", true},
		{"string", true},
		{"bool", true},
		{"bytes", true},
		{"timestamp", true},
		{"duration", true},
		{"String", false},
		{"decimal", false},
		{" int", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			err := ValidateSchema(Schema{"Product": {"Field": tt.typeName}})
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got: %v", tt.typeName, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected %q to be rejected", tt.typeName)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"Product", "_private", "field_1", "A"}
	for _, name := range valid {
		if err := validateIdentifier(name); err != nil {
			t.Errorf("Expected %q to be valid, got: %v", name, err)
		}
	}

	invalid := []string{"", "1field", "has-dash", "has space", "in", "null", strings.Repeat("a", maxIdentifierLen+1)}
	for _, name := range invalid {
		if err := validateIdentifier(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

// TestValidateSchema_StableError verifies the first invalid object in name order is reported
func TestValidateSchema_StableError(t *testing.T) {
	schema := Schema{
		"Zeta":  {"bad-field": "int"},
		"Alpha": {"other-bad": "int"},
	}

	for i := 0; i < 10; i++ {
		err := ValidateSchema(schema)
		if err == nil || !strings.Contains(err.Error(), "Alpha") {
			t.Fatalf("Expected error about Alpha, got: %v", err)
		}
	}
}

func TestNewEnv(t *testing.T) {
	env, err := NewEnv(Schema{"Product": {"Price": "float64"}, "Order": {"Total": "float64"}})
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}

	if _, issues := env.Compile(`Product.Price < Order.Total`); issues != nil && issues.Err() != nil {
		t.Errorf("Expected declared objects to compile, got: %v", issues.Err())
	}
	if _, issues := env.Compile(`Customer.Age > 18`); issues == nil || issues.Err() == nil {
		t.Error("Expected undeclared object to fail compilation")
	}

	if _, err := NewEnv(Schema{}); err == nil {
		t.Error("Expected NewEnv to reject an invalid schema")
	}
}
