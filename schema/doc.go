// Package schema loads declarative symbol documents (JSON, validated
// against an embedded Draft 2020-12 schema) and builds them into live
// vartree.Symbol values, the alternative to constructing a tree
// programmatically via vartree.Data/Alt/Agg/... directly.
package schema

// TypeDoc mirrors types.TypeDoc; schema re-declares it rather than
// embedding types.TypeDoc directly so that Doc's JSON shape is stable
// even if types.TypeDoc ever grows fields schema does not want to
// expose declaratively.
type TypeDoc struct {
	Kind      string   `json:"kind"`
	Width     int      `json:"width,omitempty"`
	Signed    bool     `json:"signed,omitempty"`
	Endian    string   `json:"endian,omitempty"`
	Min       *int64   `json:"min,omitempty"`
	Max       *int64   `json:"max,omitempty"`
	MinLen    int      `json:"min_len,omitempty"`
	MaxLen    int      `json:"max_len,omitempty"`
	Unbounded bool     `json:"unbounded,omitempty"`
	EOS       string   `json:"eos,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Fixed     any      `json:"fixed,omitempty"`
}

// Doc is the top-level declarative symbol document.
type Doc struct {
	Name    string     `json:"name"`
	Version string     `json:"version,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Fields  []FieldDoc `json:"fields"`
}

// FieldDoc names one of the symbol's fields.
type FieldDoc struct {
	Name     string      `json:"name"`
	Variable VariableDoc `json:"variable"`
}

// VariableDoc is the declarative description of one vartree.Variable,
// recursive over Children/Child/Delimiter for the node kinds.
type VariableDoc struct {
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Scope string `json:"scope,omitempty"`

	// data
	Type      *TypeDoc `json:"type,omitempty"`
	ValueHex  string   `json:"value_hex,omitempty"`
	ValueBits int      `json:"value_bits,omitempty"`

	// relation
	RelationKind string   `json:"relation_kind,omitempty"`
	Targets      []string `json:"targets,omitempty"`
	RelType      *TypeDoc `json:"rel_type,omitempty"`
	Factor       float64  `json:"factor,omitempty"`
	Offset       float64  `json:"offset,omitempty"`
	Modulo       int      `json:"modulo,omitempty"`
	Once         bool     `json:"once,omitempty"`
	ChecksumAlgo string   `json:"checksum_algo,omitempty"`

	// alt / agg
	Children []VariableDoc `json:"children,omitempty"`
	// Deterministic, if "last", installs an AltCallback that always
	// picks AltChildren's final entry (spec.md's documented Alt
	// scenario for a symbol-level discriminator with a trailing
	// catch-all).
	Deterministic string `json:"deterministic,omitempty"`

	// repeat
	Child     *VariableDoc `json:"child,omitempty"`
	Lo        int          `json:"lo,omitempty"`
	Hi        int          `json:"hi,omitempty"`
	Delimiter *VariableDoc `json:"delimiter,omitempty"`

	// opt reuses Child
}
