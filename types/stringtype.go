package types

import (
	"fmt"
	"unicode/utf8"

	"github.com/fieldgraph/varspec/bitstream"
)

// printableASCII is the sampling alphabet for [String.Generate] when no
// fixed value is configured. It intentionally excludes control
// characters so generated messages remain inspectable in logs.
const printableASCII = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 .,-_/"

// String is a UTF-8 byte sequence, optionally bounded by character
// count and optionally terminated by a fixed end-of-string sentinel
// that is required on parse whenever it is configured.
type String struct {
	MinChars, MaxChars int  // character-count bounds; MaxChars == 0 means unbounded
	Unbounded          bool // true iff MaxChars does not apply
	EOS                string
	Fixed              *string
}

// NewString returns a String bounded to [minChars, maxChars] characters
// with no terminator.
func NewString(minChars, maxChars int) String {
	return String{MinChars: minChars, MaxChars: maxChars}
}

// WithEOS returns a copy of t terminated by eos.
func (t String) WithEOS(eos string) String {
	t.EOS = eos
	return t
}

// WithFixed returns a copy of t pinned to value v.
func (t String) WithFixed(v string) String {
	t.Fixed = &v
	return t
}

func (t String) String() string {
	if t.Unbounded {
		return "string(unbounded)"
	}
	return fmt.Sprintf("string(%d,%d)", t.MinChars, t.MaxChars)
}

func (t String) eosBits() int { return len(t.EOS) * 8 }

// Size implements [Type].
func (t String) Size() Bounds {
	if t.Fixed != nil {
		n := len(*t.Fixed)*8 + t.eosBits()
		return Bounds{Min: n, Max: n}
	}
	if t.Unbounded || t.MaxChars == 0 {
		return Bounds{Min: t.MinChars*8 + t.eosBits(), Unbounded: true}
	}
	return Bounds{Min: t.MinChars*8 + t.eosBits(), Max: t.MaxChars*8 + t.eosBits()}
}

// CanParse implements [Type].
func (t String) CanParse(bits bitstream.Slice) bool {
	b := bits.Bytes()
	if bits.Len()%8 != 0 {
		return false
	}
	n := t.eosBits() / 8
	if len(b) < n {
		return false
	}
	if n > 0 {
		tail := string(b[len(b)-n:])
		if tail != t.EOS {
			return false
		}
		b = b[:len(b)-n]
	}
	if !utf8.Valid(b) {
		return false
	}
	if t.Fixed != nil {
		return string(b) == *t.Fixed
	}
	chars := utf8.RuneCount(b)
	if chars < t.MinChars {
		return false
	}
	if !t.Unbounded && t.MaxChars != 0 && chars > t.MaxChars {
		return false
	}
	return true
}

// Generate implements [Type].
func (t String) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		s, _ := t.Encode(*t.Fixed)
		return s
	}
	maxChars := t.MaxChars
	if t.Unbounded || maxChars == 0 {
		maxChars = t.MinChars + 32
	}
	span := maxChars - t.MinChars
	n := t.MinChars
	if span > 0 {
		n += int(randUintn(rnd, uint64(span+1)))
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = printableASCII[randUintn(rnd, uint64(len(printableASCII)))]
	}
	s, _ := t.Encode(string(buf))
	return s
}

// Encode implements [Type]. raw must be a string.
func (t String) Encode(raw any) (bitstream.Slice, error) {
	str, ok := raw.(string)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as String", raw)}
	}
	if !utf8.ValidString(str) {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: "not valid UTF-8"}
	}
	chars := utf8.RuneCountInString(str)
	if t.Fixed == nil {
		if chars < t.MinChars || (!t.Unbounded && t.MaxChars != 0 && chars > t.MaxChars) {
			return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("%d characters out of bounds", chars)}
		}
	}
	payload := []byte(str + t.EOS)
	return bitstream.FromBytes(payload, bitstream.BigEndian), nil
}

// Decode implements [Type].
func (t String) Decode(bits bitstream.Slice) (any, error) {
	b := bits.Bytes()
	n := t.eosBits() / 8
	if n > 0 {
		if len(b) < n {
			return nil, &EncodingError{Type: t.String(), Reason: "too short for terminator"}
		}
		b = b[:len(b)-n]
	}
	if !utf8.Valid(b) {
		return nil, &EncodingError{Type: t.String(), Reason: "not valid UTF-8"}
	}
	return string(b), nil
}

// naughtyStrings is the bundled corpus the fuzz String mutator samples
// from in addition to any caller-supplied additions.
var naughtyStrings = []string{
	"",
	"\x00",
	"%s%s%s%s",
	"' OR '1'='1",
	"../../../../etc/passwd",
	"<script>alert(1)</script>",
	"\xef\xbb\xbf",
	"A very very very very very very very very very very long string",
	"\xff\xfe\xfd",
	"NaN",
	"-0",
	"🜏🜎🜂",
}

// NaughtyStrings returns a copy of the bundled naughty-string corpus.
func NaughtyStrings() []string {
	out := make([]string, len(naughtyStrings))
	copy(out, naughtyStrings)
	return out
}
