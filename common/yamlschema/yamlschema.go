// Package yamlschema validates YAML documents against JSON Schemas.
//
// YAML is decoded into plain values, re-encoded as JSON and decoded again
// with json.Number for numbers, so YAML integers, floats and maps reach the
// validator in the shapes it expects.
package yamlschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned for documents that contain no YAML value.
var ErrEmpty = errors.New("yamlschema: document is empty")

// MustCompile compiles a JSON Schema held in a string. It panics on an
// invalid schema and is meant for package-level variables.
func MustCompile(name, schema string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, schema)
}

// Validate checks the YAML document data against schema.
func Validate(schema *jsonschema.Schema, data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("yamlschema: parse: %w", err)
	}
	if raw == nil {
		return ErrEmpty
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("yamlschema: convert: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("yamlschema: convert: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("yamlschema: %s", strings.TrimSpace(err.Error()))
	}
	return nil
}
