package stringsutil

// RemoveEmptyStrings filters empty entries out of a slice, preserving
// order. Used when splitting comma-separated env values.
func RemoveEmptyStrings(values []string) []string {
	var result []string
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}

	return result
}
