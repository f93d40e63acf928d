package match

import "strings"

// globEscapable lists characters a backslash escapes in a pattern.
const globEscapable = `*?[]{}\`

// NormalizePattern converts path backslashes to "/" and trims surrounding
// slashes. Backslashes escaping a glob character are kept.
//
//	`nightly\2026-*`   -> "nightly/2026-*"
//	`run\*final`       -> `run\*final`
//	"/archive/**/"     -> "archive/**"
func NormalizePattern(pattern string) string {
	if !strings.ContainsRune(pattern, '\\') {
		return strings.Trim(pattern, "/")
	}
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(pattern) && strings.IndexByte(globEscapable, pattern[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		b.WriteByte('/')
	}
	return strings.Trim(b.String(), "/")
}
