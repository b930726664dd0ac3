package schema

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/checksum"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

// pendingRelation is a relation variable built before its named
// targets are known to exist; resolved once every named variable in
// the document has been built.
type pendingRelation struct {
	v       *vartree.Variable
	path    string
	targets []string
}

type builder struct {
	names    map[string]*vartree.Variable
	pending  []pendingRelation
	allNames []string
}

// Build validates raw, then turns it into a live *vartree.Symbol.
func Build(raw []byte) (*vartree.Symbol, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return BuildDoc(doc)
}

// BuildDoc builds an already-parsed (and assumed schema-valid) Doc.
func BuildDoc(doc *Doc) (*vartree.Symbol, error) {
	b := &builder{names: map[string]*vartree.Variable{}}

	fields := make([]*vartree.Field, 0, len(doc.Fields))
	for _, fd := range doc.Fields {
		v, err := b.build(fd.Variable, "fields."+fd.Name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, vartree.NewField(v, fd.Name))
	}

	if err := b.resolvePending(); err != nil {
		return nil, err
	}

	var meta []vartree.Descriptor
	if doc.Version != "" || doc.Summary != "" {
		meta = []vartree.Descriptor{{Name: doc.Name, Version: doc.Version, Summary: doc.Summary}}
	}
	return vartree.NewSymbol(doc.Name, fields, meta...), nil
}

func (b *builder) register(name string, v *vartree.Variable) {
	if name == "" {
		return
	}
	b.names[name] = v
	b.allNames = append(b.allNames, name)
}

func (b *builder) resolvePending() error {
	for _, pr := range b.pending {
		targets := make([]*vartree.Variable, 0, len(pr.targets))
		for _, name := range pr.targets {
			tv, ok := b.names[name]
			if !ok {
				return &Error{
					Path:        pr.path,
					Message:     fmt.Sprintf("unresolved relation target %q", name),
					Suggestions: suggestNames(name, b.allNames),
				}
			}
			targets = append(targets, tv)
		}
		pr.v.RelTargets = targets
	}
	return nil
}

func (b *builder) build(vd VariableDoc, path string) (*vartree.Variable, error) {
	switch vd.Kind {
	case "data":
		return b.buildData(vd, path)
	case "relation":
		return b.buildRelation(vd, path)
	case "alt":
		return b.buildAlt(vd, path)
	case "agg":
		return b.buildAgg(vd, path)
	case "repeat":
		return b.buildRepeat(vd, path)
	case "opt":
		return b.buildOpt(vd, path)
	default:
		return nil, &Error{Path: path, Message: fmt.Sprintf("unknown variable kind %q", vd.Kind)}
	}
}

func typeDocToTypes(td *TypeDoc) types.TypeDoc {
	var fixed json.RawMessage
	if td.Fixed != nil {
		fixed, _ = json.Marshal(td.Fixed)
	}
	return types.TypeDoc{
		Kind: td.Kind, Width: td.Width, Signed: td.Signed, Endian: td.Endian,
		Min: td.Min, Max: td.Max, MinLen: td.MinLen, MaxLen: td.MaxLen,
		Unbounded: td.Unbounded, EOS: td.EOS, Labels: td.Labels, Fixed: fixed,
	}
}

func scopeFromString(s string) vartree.Scope {
	switch s {
	case "constant":
		return vartree.ScopeConstant
	case "message":
		return vartree.ScopeMessage
	case "session":
		return vartree.ScopeSession
	default:
		return vartree.ScopeNone
	}
}

func (b *builder) buildData(vd VariableDoc, path string) (*vartree.Variable, error) {
	if vd.Type == nil {
		return nil, &Error{Path: path, Message: "data variable requires a type"}
	}
	t, err := types.FromJSON(typeDocToTypes(vd.Type))
	if err != nil {
		return nil, &Error{Path: path, Message: err.Error()}
	}
	v := vartree.Data(t, scopeFromString(vd.Scope))
	if vd.ValueHex != "" {
		raw, err := hex.DecodeString(vd.ValueHex)
		if err != nil {
			return nil, &Error{Path: path, Message: "value_hex: " + err.Error()}
		}
		bits := bitstream.FromBytes(raw, bitstream.BigEndian)
		if vd.ValueBits > 0 && vd.ValueBits < bits.Len() {
			bits = bits.Slice(0, vd.ValueBits)
		}
		v = vartree.WithValue(v, bits)
	}
	if vd.Name != "" {
		v = vartree.WithName(v, vd.Name)
	}
	b.register(vd.Name, v)
	return v, nil
}

func checksumAlgoFromString(s string) (checksum.Algo, error) {
	switch s {
	case "", "crc32":
		return checksum.CRC32, nil
	case "blake2b256":
		return checksum.BLAKE2b256, nil
	case "sha3256":
		return checksum.SHA3_256, nil
	default:
		return 0, fmt.Errorf("unknown checksum_algo %q", s)
	}
}

// buildRelation constructs the Relation variable directly (bypassing
// the panicking Size/Value/Checksum/Padding constructors, which reject
// an empty target slice) since targets named later in the document
// aren't resolvable until every field has been walked; resolvePending
// patches RelTargets in once the whole document is known.
func (b *builder) buildRelation(vd VariableDoc, path string) (*vartree.Variable, error) {
	v := &vartree.Variable{ID: vartree.NewVarId(), Kind: vartree.KindRelation}
	switch vd.RelationKind {
	case "size":
		if vd.RelType == nil {
			return nil, &Error{Path: path, Message: "size relation requires rel_type"}
		}
		t, err := types.FromJSON(typeDocToTypes(vd.RelType))
		if err != nil {
			return nil, &Error{Path: path, Message: err.Error()}
		}
		factor := vd.Factor
		if factor == 0 {
			factor = 1
		}
		v.RelKind = vartree.RelationSize
		v.RelType = t
		v.RelFactor = factor
		v.RelOffset = vd.Offset
	case "value":
		v.RelKind = vartree.RelationValue
	case "checksum":
		algo, err := checksumAlgoFromString(vd.ChecksumAlgo)
		if err != nil {
			return nil, &Error{Path: path, Message: err.Error()}
		}
		v.RelKind = vartree.RelationChecksum
		v.ChecksumAlgoID = uint8(algo)
	case "padding":
		if vd.Modulo <= 0 {
			return nil, &Error{Path: path, Message: "padding relation requires modulo > 0"}
		}
		v.RelKind = vartree.RelationPadding
		v.RelModulo = vd.Modulo
		v.RelOnce = vd.Once
	default:
		return nil, &Error{Path: path, Message: fmt.Sprintf("unknown relation_kind %q", vd.RelationKind)}
	}
	if vd.Name != "" {
		v.Name = vd.Name
	}
	b.register(vd.Name, v)
	b.pending = append(b.pending, pendingRelation{v: v, path: path, targets: vd.Targets})
	return v, nil
}

func (b *builder) buildAlt(vd VariableDoc, path string) (*vartree.Variable, error) {
	if len(vd.Children) == 0 {
		return nil, &Error{Path: path, Message: "alt requires at least one child"}
	}
	children := make([]*vartree.Variable, 0, len(vd.Children))
	for i, cd := range vd.Children {
		c, err := b.build(cd, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	var cb vartree.AltCallback
	if vd.Deterministic == "last" {
		cb = func() int { return -1 }
	}
	var v *vartree.Variable
	if cb != nil {
		v = vartree.Alt(children, cb)
	} else {
		v = vartree.Alt(children)
	}
	if vd.Name != "" {
		v = vartree.WithName(v, vd.Name)
	}
	b.register(vd.Name, v)
	return v, nil
}

func (b *builder) buildAgg(vd VariableDoc, path string) (*vartree.Variable, error) {
	if len(vd.Children) == 0 {
		return nil, &Error{Path: path, Message: "agg requires at least one child"}
	}
	children := make([]*vartree.Variable, 0, len(vd.Children))
	for i, cd := range vd.Children {
		c, err := b.build(cd, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	v := vartree.Agg(children...)
	if vd.Name != "" {
		v = vartree.WithName(v, vd.Name)
	}
	b.register(vd.Name, v)
	return v, nil
}

func (b *builder) buildRepeat(vd VariableDoc, path string) (*vartree.Variable, error) {
	if vd.Child == nil {
		return nil, &Error{Path: path, Message: "repeat requires a child"}
	}
	if vd.Lo < 0 || vd.Hi < vd.Lo {
		return nil, &Error{Path: path, Message: "repeat requires 0 <= lo <= hi"}
	}
	child, err := b.build(*vd.Child, path+".child")
	if err != nil {
		return nil, err
	}
	var delim *vartree.Variable
	if vd.Delimiter != nil {
		delim, err = b.build(*vd.Delimiter, path+".delimiter")
		if err != nil {
			return nil, err
		}
	}
	var v *vartree.Variable
	if delim != nil {
		v = vartree.Repeat(child, vd.Lo, vd.Hi, delim)
	} else {
		v = vartree.Repeat(child, vd.Lo, vd.Hi)
	}
	if vd.Name != "" {
		v = vartree.WithName(v, vd.Name)
	}
	b.register(vd.Name, v)
	return v, nil
}

func (b *builder) buildOpt(vd VariableDoc, path string) (*vartree.Variable, error) {
	if vd.Child == nil {
		return nil, &Error{Path: path, Message: "opt requires a child"}
	}
	child, err := b.build(*vd.Child, path+".child")
	if err != nil {
		return nil, err
	}
	v := vartree.Opt(child)
	if vd.Name != "" {
		v = vartree.WithName(v, vd.Name)
	}
	b.register(vd.Name, v)
	return v, nil
}
