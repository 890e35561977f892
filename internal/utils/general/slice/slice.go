package slice

// Contains reports whether str is present in the slice.
func Contains(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

// Unique returns the items in first-seen order with duplicates removed.
func Unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

// Replace maps every item through subst, keeping items without an entry.
func Replace(items []string, subst map[string]string) []string {
	result := make([]string, len(items))
	for i, item := range items {
		if to, ok := subst[item]; ok {
			result[i] = to
		} else {
			result[i] = item
		}
	}
	return result
}
