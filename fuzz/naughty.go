package fuzz

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/fieldgraph/varspec/types"
)

// dedupeAgainstBundled drops any candidate that fuzzy-matches (rank
// distance within a small threshold) something already in the bundled
// naughty-string table, so WithNaughtyStrings doesn't pad the corpus
// with near-duplicates of strings it already covers.
func dedupeAgainstBundled(candidates []string) []string {
	bundled := types.NaughtyStrings()
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if isNearDuplicate(c, bundled) {
			continue
		}
		out = append(out, c)
		bundled = append(bundled, c)
	}
	return out
}

func isNearDuplicate(candidate string, existing []string) bool {
	for _, e := range existing {
		if candidate == e {
			return true
		}
		if len(candidate) > 2 {
			if rank := fuzzy.RankMatchNormalizedFold(candidate, e); rank >= 0 && rank <= 2 {
				return true
			}
		}
	}
	return false
}
