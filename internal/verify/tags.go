package verify

import "strings"

// Tags splits a comma-separated tag list, trims whitespace, drops empty
// entries, and de-duplicates case-insensitively keeping the first-seen
// spelling.
func Tags(input string) string {
	return strings.Join(splitTags(input), ", ")
}

// TagsForced is Tags restricted to the known tag set: unknown tags are
// dropped (keeping the known spelling for the survivors) and reported.
func TagsForced(input string, known []string) (string, error) {
	var (
		kept    []string
		dropped []string
	)
	for _, tag := range splitTags(input) {
		matched := ""
		for _, k := range known {
			if strings.EqualFold(tag, k) {
				matched = k
				break
			}
		}
		if matched == "" {
			dropped = append(dropped, tag)
			continue
		}
		kept = append(kept, matched)
	}
	out := strings.Join(kept, ", ")
	if len(dropped) > 0 {
		return out, errf(CodeNonExistingTag, "unknown tags dropped: %s", strings.Join(dropped, ", "))
	}
	return out, nil
}

func splitTags(input string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range strings.Split(input, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
