package languages

import "strings"

// SplitQualifiedName splits raw at its last separator that is not nested in
// template brackets, so "std::map<K, T>::value_compare" yields
// ("std::map<K, T>", "value_compare").
func SplitQualifiedName(raw, sep string) (qualifier, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	depth := 0
	cut := -1
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && strings.HasPrefix(raw[i:], sep) {
				cut = i
				i += len(sep) - 1
			}
		}
	}
	if cut == -1 {
		return "", raw
	}
	return strings.TrimSpace(raw[:cut]), strings.TrimSpace(raw[cut+len(sep):])
}

func joinScope(parts []string, sep string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}

func appendScope(parts []string, more ...string) []string {
	out := make([]string, 0, len(parts)+len(more))
	out = append(out, parts...)
	for _, part := range more {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// collapseSpace joins the whitespace-separated fields of s with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
