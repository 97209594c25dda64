package utils

// TruncateRunes keeps the first max runes of s and appends suffix when
// anything was cut.
func TruncateRunes(s string, max int, suffix string) string {
	if max < 0 {
		max = 0
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + suffix
}
