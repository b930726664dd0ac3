package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

const metaSchemaURL = "schema://varspec/symbol.json"

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(metaSchemaURL, strings.NewReader(metaSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("schema: compiling embedded meta-schema: %w", err)
			return
		}
		s, err := c.Compile(metaSchemaURL)
		if err != nil {
			compileErr = fmt.Errorf("schema: compiling embedded meta-schema: %w", err)
			return
		}
		compiled = s
	})
	return compiled, compileErr
}

// Validate checks raw JSON against the embedded symbol document
// schema, without building a vartree.Symbol from it.
func Validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &Error{Message: "invalid JSON: " + err.Error()}
	}
	if err := s.Validate(v); err != nil {
		return &Error{Message: err.Error()}
	}
	return nil
}

// Parse validates raw and unmarshals it into a Doc.
func Parse(raw []byte) (*Doc, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var doc Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Message: "decoding document: " + err.Error()}
	}
	return &doc, nil
}
