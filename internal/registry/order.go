package registry

// StableOrder merges a fresh external list into a previously published one:
// entries still present keep their old relative order, new entries are
// appended in the order they appear in current. Duplicates in current are
// preserved as separate entries.
func StableOrder(previous, current []string) []string {
	remaining := make(map[string]int, len(current))
	for _, v := range current {
		remaining[v]++
	}

	out := make([]string, 0, len(current))
	for _, v := range previous {
		if remaining[v] > 0 {
			out = append(out, v)
			remaining[v]--
		}
	}
	for _, v := range current {
		if remaining[v] > 0 {
			out = append(out, v)
			remaining[v]--
		}
	}
	return out
}
