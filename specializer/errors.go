package specializer

import "fmt"

// ErrCode names a specializer failure kind, mirroring parser.ErrCode
// for the dual direction: here ErrInvalidTree (the counterpart of the
// parser's InvalidParsingPath) reports a malformed tree discovered
// while encoding, UnresolvedRelation a
// relation target that never got specialized.
type ErrCode uint8

const (
	ErrInvalidTree ErrCode = iota
	ErrUnresolvedRelation
	ErrRecursionLimit
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnresolvedRelation:
		return "UnresolvedRelation"
	case ErrRecursionLimit:
		return "RecursionLimit"
	default:
		return "InvalidTree"
	}
}

// Error is the structured error type Specialize raises for fatal
// failures. fuzz.ErrMaxFuzzing is handled separately: it ends the
// iterator cleanly rather than surfacing as an Error.
type Error struct {
	Code    ErrCode
	Message string
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("specializer: %s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("specializer: %s: %s", e.Code, e.Message)
}
