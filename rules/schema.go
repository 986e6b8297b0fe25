package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
)

// Schema maps the fact objects visible to expression rules to their fields
// and CEL type names, e.g. {"Product": {"Price": "float64"}}
type Schema map[string]map[string]string

const (
	maxSchemaObjects = 100
	maxObjectFields  = 200
	maxIdentifierLen = 100
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var celTypes = map[string]bool{
	"int":       true,
	"int64":     true,
	"float64":   true,
	"string":    true,
	"bool":      true,
	"bytes":     true,
	"timestamp": true,
	"duration":  true,
}

var reservedKeywords = map[string]bool{
	"true": true, "false": true, "null": true,
	"if": true, "else": true, "for": true, "while": true,
	"break": true, "continue": true, "return": true,
	"var": true, "let": true, "const": true, "function": true,
	"in": true, "as": true, "import": true, "package": true,
	"namespace": true, "loop": true, "void": true,
}

// ValidateSchema checks object and field identifiers, type names and size
// limits. Objects are checked in name order so the reported error is stable.
func ValidateSchema(schema Schema) error {
	if len(schema) == 0 {
		return fmt.Errorf("schema cannot be empty, must contain at least one object definition")
	}
	if len(schema) > maxSchemaObjects {
		return fmt.Errorf("schema contains %d objects, maximum allowed is %d", len(schema), maxSchemaObjects)
	}

	for _, objectName := range sortedKeys(schema) {
		fields := schema[objectName]
		if err := validateIdentifier(objectName); err != nil {
			return fmt.Errorf("invalid object name %q: %w", objectName, err)
		}
		if len(fields) == 0 {
			return fmt.Errorf("object %q must contain at least one field", objectName)
		}
		if len(fields) > maxObjectFields {
			return fmt.Errorf("object %q contains %d fields, maximum allowed is %d", objectName, len(fields), maxObjectFields)
		}

		for _, fieldName := range sortedKeys(fields) {
			typeName := fields[fieldName]
			if err := validateIdentifier(fieldName); err != nil {
				return fmt.Errorf("invalid field name %q in object %q: %w", fieldName, objectName, err)
			}
			if typeName == "" {
				return fmt.Errorf("field %q in object %q has empty type name", fieldName, objectName)
			}
			if strings.TrimSpace(typeName) != typeName {
				return fmt.Errorf("field %q in object %q has type with leading/trailing whitespace: %q", fieldName, objectName, typeName)
			}
			if !celTypes[typeName] {
				return fmt.Errorf("field %q in object %q has invalid type %q (must be one of: int, int64, float64, string, bool, bytes, timestamp, duration)", fieldName, objectName, typeName)
			}
		}
	}

	return nil
}

// NewEnv validates schema and creates a CEL environment with one dynamic
// variable per object
func NewEnv(schema Schema) (*cel.Env, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}

	opts := make([]cel.EnvOption, 0, len(schema))
	for _, objectName := range sortedKeys(schema) {
		opts = append(opts, cel.Variable(objectName, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(name), maxIdentifierLen)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$ (start with letter or underscore, followed by letters, digits, or underscores)")
	}
	if reservedKeywords[name] {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
