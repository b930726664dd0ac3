package vartree

import "golang.org/x/mod/semver"

// Field wraps a root Variable (its Domain) with a human-readable name.
type Field struct {
	Name   string
	Domain *Variable
}

// NewField returns a Field over domain. Panics with a *TypeError if
// domain's graph is cyclic.
func NewField(domain *Variable, name string) *Field {
	if err := CheckAcyclic(domain); err != nil {
		panic(&TypeError{Op: "NewField", Reason: err.Error()})
	}
	return &Field{Name: name, Domain: domain}
}

// Descriptor is optional Symbol metadata, modeled on the teacher's
// decorator Descriptor: a name, a semantic version and a one-line
// summary, carried for tooling built on top of a Library of symbols.
// It has no effect on parsing or specialization.
type Descriptor struct {
	Name    string
	Version string
	Summary string
}

// Symbol is a named grouping of fields forming a message type.
type Symbol struct {
	Name   string
	Fields []*Field
	Meta   *Descriptor
}

// NewSymbol returns a Symbol over fields. If meta is supplied and its
// Version is non-empty, Version must be a valid semantic version
// (golang.org/x/mod/semver); construction panics with a *TypeError
// otherwise.
func NewSymbol(name string, fields []*Field, meta ...Descriptor) *Symbol {
	s := &Symbol{Name: name, Fields: fields}
	if len(meta) > 0 {
		d := meta[0]
		if d.Version != "" && !semver.IsValid(canonicalize(d.Version)) {
			panic(&TypeError{Op: "NewSymbol", Reason: "Descriptor.Version is not a valid semantic version: " + d.Version})
		}
		s.Meta = &d
	}
	return s
}

// canonicalize prefixes v with "v" if it lacks one, since
// golang.org/x/mod/semver requires the "v" prefix spec.md itself does
// not mandate for a bare Descriptor.Version string.
func canonicalize(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		return v
	}
	return "v" + v
}

// Leaves returns every leaf (Data or Relation) variable reachable from
// s's fields, in field then tree order.
func (s *Symbol) Leaves() []*Variable {
	var out []*Variable
	seen := map[*Variable]bool{}
	for _, f := range s.Fields {
		collectLeaves(f.Domain, seen, &out)
	}
	return out
}

func collectLeaves(v *Variable, seen map[*Variable]bool, out *[]*Variable) {
	if v == nil || seen[v] {
		return
	}
	seen[v] = true
	switch v.Kind {
	case KindData, KindRelation:
		*out = append(*out, v)
	default:
		for _, c := range v.Children() {
			collectLeaves(c, seen, out)
		}
	}
}
