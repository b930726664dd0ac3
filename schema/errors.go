package schema

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Error reports a problem with a declarative Doc: either a schema
// violation caught by the embedded Draft 2020-12 schema, or a
// cross-field semantic problem (an unresolved target name, an unknown
// checksum algorithm) caught while Build walks the validated document.
type Error struct {
	Path        string
	Message     string
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

// suggestNames ranks known against name and returns the closest three,
// for an Error's Suggestions field when a relation target name can't
// be resolved.
func suggestNames(name string, known []string) []string {
	matches := fuzzy.RankFindNormalizedFold(name, known)
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
