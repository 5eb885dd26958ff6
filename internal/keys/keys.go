package keys

import (
	"sort"
	"strings"
)

// CardKeyFromIDs produces a canonical key for a multiset of card ids.
// Behavior: trims ids, lower-cases, replaces spaces with underscores,
// sorts the parts and joins with "+". Duplicates are kept so "a+a+b"
// differs from "a+b".
func CardKeyFromIDs(ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, n := range ids {
		s := strings.TrimSpace(n)
		if s == "" {
			continue
		}
		s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, "+")
}

// FusionKey is the lookup key of a fusion recipe: the primary card id
// followed by the canonical material key.
func FusionKey(primaryID string, materialIDs []string) string {
	return strings.ToLower(strings.TrimSpace(primaryID)) + "|" + CardKeyFromIDs(materialIDs)
}
