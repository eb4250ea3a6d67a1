// Package placeholder finds {{identifier}} tokens in message text.
package placeholder

import "regexp"

// Pattern matches a double-brace placeholder; group 1 is the identifier.
var Pattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// ExtractVariables returns the distinct identifiers in text in order of
// first occurrence. Empty text yields an empty slice.
func ExtractVariables(text string) []string {
	return appendUnique(nil, make(map[string]struct{}), text)
}

// ExtractAll extracts from each text in turn and deduplicates across them,
// so a subject's variables come before the body's.
func ExtractAll(texts ...string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range texts {
		out = appendUnique(out, seen, t)
	}
	return out
}

func appendUnique(out []string, seen map[string]struct{}, text string) []string {
	if out == nil {
		out = []string{}
	}
	if text == "" {
		return out
	}
	for _, m := range Pattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
