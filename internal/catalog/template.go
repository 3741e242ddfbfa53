// Package catalog holds the object templates the engine generates from and
// resolves their dynamic fields against a seeded stream.
package catalog

import (
	"fmt"
	"strings"
)

// Kind is the closed set of field resolution policies.
type Kind string

const (
	KindLiteral     Kind = "literal"
	KindAddress     Kind = "address"
	KindIdentifier  Kind = "identifier"
	KindURL         Kind = "url"
	KindMeasurement Kind = "measurement"
	KindTimestamp   Kind = "timestamp"
	KindFallback    Kind = "fallback"
)

// DynamicMarker marks a field whose value is synthesized at generation time.
// "dynamic" infers the kind from the field name; "dynamic:<kind>" names it.
const DynamicMarker = "dynamic"

var dynamicKinds = map[Kind]bool{
	KindAddress:     true,
	KindIdentifier:  true,
	KindURL:         true,
	KindMeasurement: true,
	KindTimestamp:   true,
	KindFallback:    true,
}

// Rule says how one field gets its value.
type Rule struct {
	Kind Kind
	// Value is only used by KindLiteral.
	Value any
}

// Literal returns a rule that passes value through unchanged.
func Literal(value any) Rule {
	return Rule{Kind: KindLiteral, Value: value}
}

// Dynamic returns a rule of the given dynamic kind.
func Dynamic(kind Kind) Rule {
	return Rule{Kind: kind}
}

// String renders the rule the way template files spell it.
func (r Rule) String() string {
	if r.Kind == KindLiteral {
		return fmt.Sprintf("%v", r.Value)
	}
	return DynamicMarker + ":" + string(r.Kind)
}

// InferKind picks the dynamic kind implied by a field name.
func InferKind(fieldName string) Kind {
	switch strings.ToLower(fieldName) {
	case "ip", "target_ip", "source_ip", "address":
		return KindAddress
	case "cve_id":
		return KindIdentifier
	case "url":
		return KindURL
	case "value", "measurement":
		return KindMeasurement
	case "timestamp":
		return KindTimestamp
	default:
		return KindFallback
	}
}

// ParseRule turns a raw template value into a rule. Strings equal to the
// dynamic marker become dynamic rules; everything else is a literal.
func ParseRule(fieldName string, raw any) (Rule, error) {
	text, ok := raw.(string)
	if !ok {
		return Literal(raw), nil
	}
	if text == DynamicMarker {
		return Dynamic(InferKind(fieldName)), nil
	}
	kindName, found := strings.CutPrefix(text, DynamicMarker+":")
	if !found {
		return Literal(raw), nil
	}
	kind := Kind(strings.TrimSpace(kindName))
	if !dynamicKinds[kind] {
		return Rule{}, fmt.Errorf("field %s: unknown dynamic kind %q", fieldName, kindName)
	}
	return Dynamic(kind), nil
}

// Field is one named, ordered entry of a template.
type Field struct {
	Name string
	Rule Rule
}

// Template describes one kind of generated object.
type Template struct {
	Name        string
	ObjectType  string
	Description string
	// Fields resolve in declaration order; the order fixes the stream draws.
	Fields []Field
}
