package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/flow"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

func TestParseFlowSegmentsTwoFixedTagSymbols(t *testing.T) {
	tagA := vartree.Data(types.Uint8().WithFixed(0xAA))
	bodyA := vartree.Data(types.Uint16BE())
	symA := vartree.NewSymbol("A", []*vartree.Field{
		vartree.NewField(tagA, "tag"),
		vartree.NewField(bodyA, "body"),
	})

	tagB := vartree.Data(types.Uint8().WithFixed(0xBB))
	bodyB := vartree.Data(types.Uint8())
	symB := vartree.NewSymbol("B", []*vartree.Field{
		vartree.NewField(tagB, "tag"),
		vartree.NewField(bodyB, "body"),
	})

	fp := flow.NewFlowParser([]*vartree.Symbol{symA, symB})
	session := memory.NewSession()

	// A(0xAA, 0x0102) then B(0xBB, 0x03)
	msg := []byte{0xAA, 0x01, 0x02, 0xBB, 0x03}

	var found [][]flow.Segment
	for segs, err := range fp.ParseFlow(msg, session) {
		require.NoError(t, err)
		found = append(found, segs)
	}
	require.NotEmpty(t, found)

	var names []string
	for _, seg := range found[0] {
		names = append(names, seg.Symbol.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)
	assert.Equal(t, 3, found[0][0].Bits.Len()/8)
	assert.Equal(t, 2, found[0][1].Bits.Len()/8)
}

func TestParseFlowYieldsNothingWhenNoSymbolMatches(t *testing.T) {
	tag := vartree.Data(types.Uint8().WithFixed(0xAA))
	sym := vartree.NewSymbol("A", []*vartree.Field{vartree.NewField(tag, "tag")})
	fp := flow.NewFlowParser([]*vartree.Symbol{sym})
	session := memory.NewSession()

	var found []([]flow.Segment)
	for segs, err := range fp.ParseFlow([]byte{0xFF}, session) {
		require.NoError(t, err)
		found = append(found, segs)
	}
	assert.Empty(t, found)
}
