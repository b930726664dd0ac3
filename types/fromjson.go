package types

import (
	"encoding/json"
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
)

// TypeDoc is the declarative, JSON-decodable description of a catalog
// Type. It lives in this package (rather than in schema, which builds
// whole symbol documents) so that schema can import types without
// types needing to import schema back.
type TypeDoc struct {
	Kind string `json:"kind"`

	// integer
	Width  int    `json:"width,omitempty"`
	Signed bool   `json:"signed,omitempty"`
	Endian string `json:"endian,omitempty"`
	Min    *int64 `json:"min,omitempty"`
	Max    *int64 `json:"max,omitempty"`

	// string / raw / hexastring / bitarray bounds
	MinLen    int      `json:"min_len,omitempty"`
	MaxLen    int      `json:"max_len,omitempty"`
	Unbounded bool     `json:"unbounded,omitempty"`
	EOS       string   `json:"eos,omitempty"`
	Labels    []string `json:"labels,omitempty"`

	// shared fixed-value escape hatch, interpreted per Kind
	Fixed json.RawMessage `json:"fixed,omitempty"`
}

func parseEndian(s string) bitstream.Endian {
	if s == "little" {
		return bitstream.LittleEndian
	}
	return bitstream.BigEndian
}

// FromJSON builds a concrete [Type] from its declarative description.
func FromJSON(doc TypeDoc) (Type, error) {
	switch doc.Kind {
	case "integer":
		it := Integer{Width: doc.Width, Signed: doc.Signed, Endian: parseEndian(doc.Endian)}
		if doc.Min != nil && doc.Max != nil {
			it = it.WithInterval(*doc.Min, *doc.Max)
		}
		if len(doc.Fixed) > 0 {
			var v int64
			if err := json.Unmarshal(doc.Fixed, &v); err != nil {
				return nil, fmt.Errorf("types: integer fixed value: %w", err)
			}
			it = it.WithFixed(v)
		}
		return it, nil

	case "string":
		st := String{MinChars: doc.MinLen, MaxChars: doc.MaxLen, Unbounded: doc.Unbounded, EOS: doc.EOS}
		if len(doc.Fixed) > 0 {
			var v string
			if err := json.Unmarshal(doc.Fixed, &v); err != nil {
				return nil, fmt.Errorf("types: string fixed value: %w", err)
			}
			st = st.WithFixed(v)
		}
		return st, nil

	case "raw":
		rt := Raw{MinBytes: doc.MinLen, MaxBytes: doc.MaxLen, Unbounded: doc.Unbounded}
		if len(doc.Fixed) > 0 {
			var v []byte
			if err := json.Unmarshal(doc.Fixed, &v); err != nil {
				return nil, fmt.Errorf("types: raw fixed value: %w", err)
			}
			rt = rt.WithFixed(v)
		}
		return rt, nil

	case "hexastring":
		ht := HexaString{MinBytes: doc.MinLen, MaxBytes: doc.MaxLen, Unbounded: doc.Unbounded}
		if len(doc.Fixed) > 0 {
			var v string
			if err := json.Unmarshal(doc.Fixed, &v); err != nil {
				return nil, fmt.Errorf("types: hexastring fixed value: %w", err)
			}
			ht = ht.WithFixed(v)
		}
		return ht, nil

	case "bitarray":
		bt := BitArray{Width: doc.Width}
		if len(doc.Labels) > 0 {
			bt = bt.WithLabels(doc.Labels)
		}
		return bt, nil

	case "ipv4":
		return IPv4{}, nil

	case "timestamp":
		width := doc.Width
		if width == 0 {
			width = 32
		}
		tt := Timestamp{Width: width, Endian: parseEndian(doc.Endian)}
		return tt, nil

	default:
		return nil, fmt.Errorf("types: unknown type kind %q", doc.Kind)
	}
}
