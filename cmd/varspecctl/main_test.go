package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sizedMessageSchema = `{
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

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParseCmdPrintsAssignmentsOnMatch(t *testing.T) {
	schemaPath := writeTemp(t, "msg.json", []byte(sizedMessageSchema))
	inputPath := writeTemp(t, "msg.bin", []byte{0x02, 0xAB, 0xCD})

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"parse", "--schema", schemaPath, "--input", inputPath})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "abcd")
}

func TestParseCmdFailsWithoutSchema(t *testing.T) {
	inputPath := writeTemp(t, "msg.bin", []byte{0x02, 0xAB, 0xCD})

	root := newRootCmd()
	root.SetArgs([]string{"parse", "--input", inputPath})
	err := root.Execute()
	require.Error(t, err)

	var ce *cliError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, exitInvalidArguments, ce.code)
}

func TestSpecializeCmdProducesHexLines(t *testing.T) {
	schemaPath := writeTemp(t, "msg.json", []byte(sizedMessageSchema))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"specialize", "--schema", schemaPath, "--counter-max", "1"})

	require.NoError(t, root.Execute())
	line := out.String()
	require.NotEmpty(t, line)
	_, err := hex.DecodeString(line[:len(line)-1])
	assert.NoError(t, err)
}

func TestSnapshotRoundTripsBetweenParseInvocations(t *testing.T) {
	schemaPath := writeTemp(t, "msg.json", []byte(sizedMessageSchema))
	inputPath := writeTemp(t, "msg.bin", []byte{0x02, 0xAB, 0xCD})
	snapPath := filepath.Join(t.TempDir(), "session.vsnp")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"parse", "--schema", schemaPath, "--input", inputPath, "--snapshot", snapPath})
	require.NoError(t, root.Execute())

	info, err := os.Stat(snapPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	root2 := newRootCmd()
	root2.SetOut(&bytes.Buffer{})
	root2.SetArgs([]string{"parse", "--schema", schemaPath, "--input", inputPath, "--snapshot", snapPath})
	assert.NoError(t, root2.Execute())
}
