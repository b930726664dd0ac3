package main

import (
	"os"

	"github.com/fieldgraph/varspec/schema"
	"github.com/fieldgraph/varspec/vartree"
)

func loadSymbol(path string) (*vartree.Symbol, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fail(exitIOError, "reading schema %s: %w", path, err)
	}
	sym, err := schema.Build(raw)
	if err != nil {
		return nil, fail(exitSchemaError, "building schema %s: %w", path, err)
	}
	return sym, nil
}

// labelsOf maps every named variable reachable from sym's fields to
// its VarId, for rendering an Assignments map by name instead of by
// opaque id. Unnamed variables are simply absent.
func labelsOf(sym *vartree.Symbol) map[vartree.VarId]string {
	out := map[vartree.VarId]string{}
	seen := map[*vartree.Variable]bool{}
	var walk func(v *vartree.Variable)
	walk = func(v *vartree.Variable) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		if v.Name != "" {
			out[v.ID] = v.Name
		}
		for _, c := range v.Children() {
			walk(c)
		}
	}
	for _, f := range sym.Fields {
		walk(f.Domain)
	}
	return out
}
