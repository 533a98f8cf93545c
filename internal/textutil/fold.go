package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// CollapseSpace trims s and collapses internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldKey returns the comparison key for a label: whitespace collapsed and
// Unicode case-folded, so "  Hip  Hop" and "hip hop" share a key.
func FoldKey(s string) string {
	return cases.Fold().String(CollapseSpace(s))
}

// FirstDuplicate returns the first value whose FoldKey repeats an earlier one.
func FirstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := FoldKey(v)
		if _, ok := seen[key]; ok {
			return v, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(FoldKey(haystack), FoldKey(needle))
}
