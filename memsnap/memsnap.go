// Package memsnap snapshots and restores a memory.Session's
// ScopeSession bindings to and from a byte stream, so that a long
// running parse/specialize session's learned values survive a process
// restart. The wire format is a small fixed preamble (magic, version,
// body length) followed by a CBOR-encoded body, in the shape of the
// teacher's planfmt.Write (magic + version + length-prefixed body)
// with CBOR standing in for planfmt's bespoke binary encoding.
package memsnap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/vartree"
)

// Magic identifies a memsnap snapshot stream.
const Magic = "VSNP"

// Version is the wire format version. Breaking wire changes bump this.
const Version uint16 = 1

// entryWire is the CBOR-serializable form of a memory.Entry: bitstream.Slice
// has no exported fields for cbor's reflection-based codec to see, so
// it is flattened to its packed bytes, bit length, and endianness tag.
type entryWire struct {
	ID     uint64 `cbor:"id"`
	Bytes  []byte `cbor:"bytes"`
	Bits   int    `cbor:"bits"`
	Endian uint8  `cbor:"endian"`
}

func toWire(e memory.Entry) entryWire {
	return entryWire{
		ID:     uint64(e.ID),
		Bytes:  e.Value.Bytes(),
		Bits:   e.Value.Len(),
		Endian: uint8(e.Value.Endian()),
	}
}

func fromWire(w entryWire) memory.Entry {
	s := bitstream.FromBytes(w.Bytes, bitstream.Endian(w.Endian))
	if w.Bits < s.Len() {
		s = s.Slice(0, w.Bits)
	}
	return memory.Entry{ID: vartree.VarId(w.ID), Value: s}
}

// Write snapshots session's current bindings to w.
func Write(w io.Writer, session *memory.Session) error {
	entries := session.Entries()
	wire := make([]entryWire, len(entries))
	for i, e := range entries {
		wire[i] = toWire(e)
	}
	body, err := cbor.Marshal(wire)
	if err != nil {
		return fmt.Errorf("memsnap: encoding snapshot: %w", err)
	}

	var preamble bytes.Buffer
	preamble.WriteString(Magic)
	if err := binary.Write(&preamble, binary.BigEndian, Version); err != nil {
		return fmt.Errorf("memsnap: writing preamble: %w", err)
	}
	if err := binary.Write(&preamble, binary.BigEndian, uint64(len(body))); err != nil {
		return fmt.Errorf("memsnap: writing preamble: %w", err)
	}
	if _, err := w.Write(preamble.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Read restores a snapshot written by Write into a fresh Session.
func Read(r io.Reader) (*memory.Session, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("memsnap: reading magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("memsnap: bad magic %q", magic)
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("memsnap: reading version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("memsnap: unsupported version %d", version)
	}

	var bodyLen uint64
	if err := binary.Read(r, binary.BigEndian, &bodyLen); err != nil {
		return nil, fmt.Errorf("memsnap: reading body length: %w", err)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("memsnap: reading body: %w", err)
	}

	var wire []entryWire
	if err := cbor.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("memsnap: decoding snapshot: %w", err)
	}

	entries := make([]memory.Entry, len(wire))
	for i, w := range wire {
		entries[i] = fromWire(w)
	}
	session := memory.NewSession()
	session.LoadEntries(entries)
	return session, nil
}

// RestoreInto loads a snapshot from r into the existing session,
// replacing its current bindings. Useful when other code already
// holds a reference to session and cannot swap it for Read's fresh one.
func RestoreInto(r io.Reader, session *memory.Session) error {
	restored, err := Read(r)
	if err != nil {
		return err
	}
	session.LoadEntries(restored.Entries())
	return nil
}
