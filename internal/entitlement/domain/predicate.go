package domain

import (
	"encoding/json"
	"reflect"
)

// Shape classifies arbitrary entitlement input before any field access.
type Shape int

const (
	ShapeMissing Shape = iota
	ShapeNotAMapping
	ShapeMapping
)

// Classify performs the defensive shape check on untrusted input. Only a
// string-keyed mapping yields ShapeMapping; everything else (nil, arrays,
// primitives) is rejected without error.
func Classify(v any) (Record, Shape) {
	if v == nil {
		return nil, ShapeMissing
	}

	switch typed := v.(type) {
	case Record:
		if typed == nil {
			return nil, ShapeMissing
		}
		return typed, ShapeMapping
	case map[string]any:
		if typed == nil {
			return nil, ShapeMissing
		}
		return Record(typed), ShapeMapping
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, ShapeMissing
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, ShapeNotAMapping
	}

	out := make(Record, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, ShapeMapping
}

// GovConUnlocked reports whether the record unlocks the GovCon feature set.
// Default is deny: missing, malformed, or unrecognized input is false. The
// tier comparison is an exact, case-sensitive match: "govcon" does not
// qualify. That is deliberate; the subscription system issues the literal
// "GovCon" tier string.
func GovConUnlocked(v any) bool {
	record, shape := Classify(v)
	if shape != ShapeMapping {
		return false
	}

	if Truthy(record["govcon"]) {
		return true
	}
	if Truthy(record["contractor"]) {
		return true
	}
	if tier, ok := record["tier"].(string); ok && tier == "GovCon" {
		return true
	}
	return false
}

// Truthy mirrors the loose coercion the dashboard frontend applies to flag
// values: false, 0, "" and nil are falsy; non-zero numbers, non-empty
// strings and true are truthy; any other non-nil value counts as set.
func Truthy(v any) bool {
	if v == nil {
		return false
	}

	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		return typed != ""
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return typed.String() != ""
		}
		return f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}
