package validation

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func testValidator() SchemaValidator {
	return NewSchemaValidatorFS(fstest.MapFS{
		"person.schema.json": {Data: []byte(personSchema)},
		"broken.schema.json": {Data: []byte(`{"type": `)},
	})
}

func TestSchemaValidator_ValidateBytes(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name      string
		data      string
		wantError bool
		errorMsg  string
	}{
		{name: "valid data", data: `{"name": "John", "age": 30}`},
		{name: "valid data without optional field", data: `{"name": "Jane"}`},
		{name: "missing required field", data: `{"age": 25}`, wantError: true, errorMsg: "required"},
		{name: "wrong type for field", data: `{"name": "John", "age": "thirty"}`, wantError: true, errorMsg: "age"},
		{name: "constraint violation", data: `{"name": "John", "age": -5}`, wantError: true, errorMsg: "age"},
		{name: "invalid JSON", data: `{"name": "John", "age": }`, wantError: true, errorMsg: "parse JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tt.data), "person.schema.json")
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSchemaValidator_ValidateValue(t *testing.T) {
	v := testValidator()

	assert.NoError(t, v.ValidateValue(map[string]any{"name": "x", "age": int64(3)}, "person.schema.json"))
	assert.Error(t, v.ValidateValue(map[string]any{"age": 3}, "person.schema.json"))
	assert.Error(t, v.ValidateValue(func() {}, "person.schema.json"), "unencodable values fail")
}

func TestSchemaValidator_SchemaErrors(t *testing.T) {
	v := testValidator()

	err := v.ValidateBytes([]byte(`{}`), "nonexistent.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")

	err = v.ValidateBytes([]byte(`{}`), "broken.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestEmbeddedPrefsSchema(t *testing.T) {
	v := NewSchemaValidator()

	assert.NoError(t, v.ValidateBytes([]byte(`{"topics": ["csgo", "rust"], "max_rows": 20}`), SchemaPrefs))
	assert.NoError(t, v.ValidateBytes([]byte(`{}`), SchemaPrefs))

	err := v.ValidateBytes([]byte(`{"topics": ["minecraft"]}`), SchemaPrefs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/topics/0")

	assert.Error(t, v.ValidateBytes([]byte(`{"topics": ["csgo", "csgo"]}`), SchemaPrefs))
	assert.Error(t, v.ValidateBytes([]byte(`{"colour": "red"}`), SchemaPrefs))
}
