// Package schema validates package documents against the published JSON
// schemas.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var files embed.FS

const baseURL = "https://faultbox.dev/furniture/"

// Document schema names.
const (
	Model      = "model.schema.json"
	Properties = "properties.schema.json"
)

// Validator holds the compiled schemas.
type Validator struct {
	model      *jsonschema.Schema
	properties *jsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	for _, name := range []string{Model, Properties} {
		data, err := files.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if err := c.AddResource(baseURL+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding %s: %w", name, err)
		}
	}

	v := &Validator{}
	var err error
	if v.model, err = c.Compile(baseURL + Model); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", Model, err)
	}
	if v.properties, err = c.Compile(baseURL + Properties); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", Properties, err)
	}
	return v, nil
}

// Source returns the raw text of a schema.
func Source(name string) ([]byte, error) {
	return files.ReadFile("schemas/" + name)
}

// ValidateModel checks a model.json document.
func (v *Validator) ValidateModel(data []byte) error {
	return validate(v.model, data)
}

// ValidateProperties checks a properties.json document.
func (v *Validator) ValidateProperties(data []byte) error {
	return validate(v.properties, data)
}

func validate(s *jsonschema.Schema, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return s.Validate(doc)
}
