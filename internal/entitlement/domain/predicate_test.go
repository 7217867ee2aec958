package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestGovConUnlockedDefaultDeny(t *testing.T) {
	cases := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"bool", true},
		{"int", 42},
		{"string", "GovCon"},
		{"array", []any{"govcon"}},
		{"slice of maps", []map[string]any{{"govcon": true}}},
		{"empty mapping", map[string]any{}},
		{"nil typed map", map[string]any(nil)},
		{"nil record", Record(nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, GovConUnlocked(tc.input))
		})
	}
}

func TestGovConUnlockedFlags(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  bool
	}{
		{"govcon true", map[string]any{"govcon": true}, true},
		{"govcon false", map[string]any{"govcon": false}, false},
		{"govcon zero", map[string]any{"govcon": 0}, false},
		{"govcon empty string", map[string]any{"govcon": ""}, false},
		{"govcon nonempty string", map[string]any{"govcon": "yes"}, true},
		{"contractor numeric one", map[string]any{"contractor": 1}, true},
		{"contractor float from json", map[string]any{"contractor": float64(1)}, true},
		{"contractor json.Number", map[string]any{"contractor": json.Number("2")}, true},
		{"contractor json.Number zero", map[string]any{"contractor": json.Number("0")}, false},
		{"tier exact", map[string]any{"tier": "GovCon"}, true},
		{"tier lowercase", map[string]any{"tier": "govcon"}, false},
		{"tier uppercase", map[string]any{"tier": "GOVCON"}, false},
		{"tier non-string", map[string]any{"tier": 7}, false},
		{"unrelated keys", map[string]any{"plan": "pro", "seats": 5}, false},
		{"or across keys", map[string]any{"govcon": false, "contractor": 0, "tier": "GovCon"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GovConUnlocked(tc.input))
		})
	}
}

func TestGovConUnlockedAcceptsStoredRecordTypes(t *testing.T) {
	assert.True(t, GovConUnlocked(Record{"govcon": true}))
	assert.True(t, GovConUnlocked(datatypes.JSONMap{"contractor": int64(3)}))
	assert.False(t, GovConUnlocked(datatypes.JSONMap{}))
	assert.True(t, GovConUnlocked(map[string]string{"tier": "GovCon"}))
	assert.False(t, GovConUnlocked(map[string]string{"tier": "govcon"}))
}

func TestClassify(t *testing.T) {
	_, shape := Classify(nil)
	assert.Equal(t, ShapeMissing, shape)

	_, shape = Classify([]any{})
	assert.Equal(t, ShapeNotAMapping, shape)

	_, shape = Classify("tier")
	assert.Equal(t, ShapeNotAMapping, shape)

	_, shape = Classify(map[int]any{1: "x"})
	assert.Equal(t, ShapeNotAMapping, shape)

	record, shape := Classify(map[string]any{"govcon": true})
	assert.Equal(t, ShapeMapping, shape)
	assert.Equal(t, true, record["govcon"])
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(""))
	assert.True(t, Truthy(true))
	assert.True(t, Truthy(-1))
	assert.True(t, Truthy(uint8(1)))
	assert.True(t, Truthy(0.5))
	assert.True(t, Truthy("0")) // non-empty string, same as the frontend coercion
	assert.True(t, Truthy(map[string]any{}))
	assert.True(t, Truthy([]any{}))
	assert.False(t, Truthy([]any(nil)))
}
