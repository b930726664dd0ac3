package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/schema"
	"github.com/fieldgraph/varspec/specializer"
	"github.com/fieldgraph/varspec/vartree"
)

const sizedMessageDoc = `{
  "name": "msg",
  "fields": [
    {
      "name": "size",
      "variable": {
        "kind": "relation",
        "relation_kind": "size",
        "targets": ["data"],
        "rel_type": {"kind": "integer", "width": 8},
        "factor": 0.125
      }
    },
    {
      "name": "data",
      "variable": {
        "kind": "data",
        "name": "data",
        "type": {"kind": "raw", "min_len": 2, "max_len": 2}
      }
    }
  ]
}`

func TestBuildResolvesForwardRelationTarget(t *testing.T) {
	sym, err := schema.Build([]byte(sizedMessageDoc))
	require.NoError(t, err)
	require.Len(t, sym.Fields, 2)

	sizeVar := sym.Fields[0].Domain
	dataVar := sym.Fields[1].Domain
	assert.Equal(t, vartree.KindRelation, sizeVar.Kind)
	assert.Equal(t, vartree.RelationSize, sizeVar.RelKind)
	require.Len(t, sizeVar.RelTargets, 1)
	assert.Same(t, dataVar, sizeVar.RelTargets[0])
}

func TestBuildDocProducesSpecializableSymbol(t *testing.T) {
	sym, err := schema.Build([]byte(sizedMessageDoc))
	require.NoError(t, err)

	session := memory.NewSession()
	fz := fuzz.New(fuzz.WithCounterMax(1))

	sp := specializer.New(sym)
	var out []byte
	for b, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		out = b
		break
	}
	require.Len(t, out, 3)
	assert.Equal(t, byte(2), out[0])
}

func TestBuildRejectsUnresolvedTarget(t *testing.T) {
	doc := []byte(`{
      "name": "bad",
      "fields": [
        {"name": "size", "variable": {
          "kind": "relation", "relation_kind": "size",
          "targets": ["nonexistent"],
          "rel_type": {"kind": "integer", "width": 8}
        }}
      ]
    }`)
	_, err := schema.Build(doc)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "nonexistent")
}

func TestValidateRejectsMissingFields(t *testing.T) {
	err := schema.Validate([]byte(`{"name": "empty"}`))
	require.Error(t, err)
}
