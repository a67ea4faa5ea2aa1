package media

import "strings"

// Candidates normalizes a raw image field into a list of non-blank strings.
// A bare string becomes a one-element list; non-string entries are dropped.
func Candidates(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if isBlank(t) {
			return nil
		}
		return []string{t}
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if !isBlank(s) {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && !isBlank(s) {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Merge concatenates primary (bucket-sourced) before secondary (record-sourced)
// entries and keeps only the first occurrence of each exact string.
// Empty strings are dropped.
func Merge(primary, secondary []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	out := make([]string, 0, len(primary)+len(secondary))

	for _, list := range [2][]string{primary, secondary} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// MergeValues normalizes both raw fields with Candidates and merges them.
func MergeValues(primary, secondary any) []string {
	return Merge(Candidates(primary), Candidates(secondary))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
