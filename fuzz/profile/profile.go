// Package profile loads a Fuzz configuration wholesale from a YAML
// document, so fuzz campaigns can be checked into version control as
// data rather than constructed in code.
package profile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/rng"
)

// TypeMutator is one entry of a profile's type_mutators map.
type TypeMutator struct {
	Mode      string   `yaml:"mode"`
	Generator string   `yaml:"generator"`
	Seed      uint64   `yaml:"seed"`
	Min       *int64   `yaml:"min"`
	Max       *int64   `yaml:"max"`
	Naughty   []string `yaml:"naughty_strings"`
}

// FieldMutator is one entry of a profile's field_mutators map, keyed
// by field name in the document.
type FieldMutator struct {
	Mode      string `yaml:"mode"`
	Generator string `yaml:"generator"`
	Seed      uint64 `yaml:"seed"`
	Min       *int64 `yaml:"min"`
	Max       *int64 `yaml:"max"`
}

// Document is the top-level YAML shape.
type Document struct {
	TypeMutators     map[string]TypeMutator  `yaml:"type_mutators"`
	FieldMutators    map[string]FieldMutator `yaml:"field_mutators"`
	GlobalCounterMax float64                 `yaml:"global_counter_max"`
}

func parseMode(s string) fuzz.Mode {
	switch s {
	case "mutate":
		return fuzz.ModeMutate
	case "fixed":
		return fuzz.ModeFixed
	case "none":
		return fuzz.ModeNone
	default:
		return fuzz.ModeGenerate
	}
}

// Load decodes a YAML document into a ready-to-use *fuzz.Fuzz.
func Load(data []byte) (*fuzz.Fuzz, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("profile: invalid YAML: %w", err)
	}

	var opts []fuzz.Option
	if doc.GlobalCounterMax > 0 {
		opts = append(opts, fuzz.WithCounterMax(doc.GlobalCounterMax))
	}
	fz := fuzz.New(opts...)

	for typeName, tm := range doc.TypeMutators {
		var mopts []fuzz.MutatorOption
		if tm.Generator != "" {
			mopts = append(mopts, fuzz.WithGenerator(rng.Name(tm.Generator), tm.Seed))
		}
		if tm.Min != nil && tm.Max != nil {
			mopts = append(mopts, fuzz.WithInterval(*tm.Min, *tm.Max))
		}
		if len(tm.Naughty) > 0 {
			mopts = append(mopts, fuzz.WithNaughtyStrings(tm.Naughty...))
		}
		fz.Set(fuzz.TypeKey(typeName), parseMode(tm.Mode), mopts...)
	}

	for fieldName, fm := range doc.FieldMutators {
		var mopts []fuzz.MutatorOption
		if fm.Generator != "" {
			mopts = append(mopts, fuzz.WithGenerator(rng.Name(fm.Generator), fm.Seed))
		}
		if fm.Min != nil && fm.Max != nil {
			mopts = append(mopts, fuzz.WithInterval(*fm.Min, *fm.Max))
		}
		fz.Set(fuzz.FieldKey(fieldName), parseMode(fm.Mode), mopts...)
	}

	return fz, nil
}
