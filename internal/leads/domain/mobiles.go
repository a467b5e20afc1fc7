package domain

import "strings"

// TrimMobiles trims every entry and drops blanks and repeats.
func TrimMobiles(mobiles []string) []string {
	out := make([]string, 0, len(mobiles))
	seen := make(map[string]struct{}, len(mobiles))
	for _, m := range mobiles {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// FirstOverlap returns the first candidate that also appears in existing.
// Both sides are compared after trimming.
func FirstOverlap(candidates, existing []string) (string, bool) {
	if len(candidates) == 0 || len(existing) == 0 {
		return "", false
	}
	stored := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		if m = strings.TrimSpace(m); m != "" {
			stored[m] = struct{}{}
		}
	}
	for _, m := range candidates {
		m = strings.TrimSpace(m)
		if _, ok := stored[m]; ok && m != "" {
			return m, true
		}
	}
	return "", false
}

// SameMobiles reports whether a and b hold the same set of trimmed numbers.
func SameMobiles(a, b []string) bool {
	ta, tb := TrimMobiles(a), TrimMobiles(b)
	if len(ta) != len(tb) {
		return false
	}
	set := make(map[string]struct{}, len(ta))
	for _, m := range ta {
		set[m] = struct{}{}
	}
	for _, m := range tb {
		if _, ok := set[m]; !ok {
			return false
		}
	}
	return true
}
