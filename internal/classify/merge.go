package classify

import "sort"

// Merge combines user-supplied tags with inferred tags into the tag set
// persisted on a snippet.
//
// The policy is a plain set union with exact-string deduplication: no case
// folding, no whitespace trimming — "HTTP" and "http" are distinct tags if
// the user typed them that way. The result is sorted so the stored order
// carries no meaning.
//
// Merge(a, a) == a and Merge(a, b) == Merge(b, a).
func Merge(userTags, inferredTags []string) []string {
	set := make(map[string]struct{}, len(userTags)+len(inferredTags))
	for _, t := range userTags {
		set[t] = struct{}{}
	}
	for _, t := range inferredTags {
		set[t] = struct{}{}
	}

	merged := make([]string, 0, len(set))
	for t := range set {
		merged = append(merged, t)
	}
	sort.Strings(merged)
	return merged
}
