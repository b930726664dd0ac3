package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrCode names an error kind per spec.md §7. A parse miss is
// branch-local and never surfaces (it just prunes a branch).
// UnresolvedRelation surfaces through ParseBits's iterator when a
// relation has no statically known width or a completed path still
// has a relation pending (that path is discarded); InvalidParsingPath
// and RecursionLimit surface too, and FlowParser treats
// InvalidParsingPath and UnresolvedRelation as a cue to backtrack.
type ErrCode uint8

const (
	ErrInvalidParsingPath ErrCode = iota
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
		return "InvalidParsingPath"
	}
}

// Error is the structured error type the parser raises for
// iterator-level failures: a code, a message, an optional context
// string and an optional suggestion list.
type Error struct {
	Code        ErrCode
	Message     string
	Context     string
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("parser: %s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("parser: %s: %s", e.Code, e.Message)
}

// ErrorFormatter renders a parser.Error as an "error:" line followed,
// when Candidates is set and the error has a Context, by a "did you
// mean" line listing up to three candidate names ranked by
// fuzzysearch against that Context. It does not point into the input.
type ErrorFormatter struct {
	Candidates []string
}

// Format renders err for human consumption.
func (f ErrorFormatter) Format(err *Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", err.Error())
	if len(f.Candidates) > 0 && err.Context != "" {
		if suggestions := suggest(err.Context, f.Candidates); len(suggestions) > 0 {
			fmt.Fprintf(&b, "did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
	}
	return b.String()
}

// suggest ranks candidates by fuzzy closeness to name and returns the
// top three, closest first.
func suggest(name string, candidates []string) []string {
	matches := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(matches) == 0 {
		return nil
	}
	sort.Sort(matches)
	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].Target)
	}
	return out
}
