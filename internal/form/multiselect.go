package form

import "strings"

// JoinMulti encodes multi-select choices as the comma-joined string the
// backend stores. Blank choices are dropped and duplicates collapse to their
// first occurrence.
func JoinMulti(values []string) string {
	return strings.Join(normalize(values), ",")
}

// SplitMulti decodes a comma-joined string back into choices.
func SplitMulti(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return normalize(strings.Split(s, ","))
}

func normalize(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
