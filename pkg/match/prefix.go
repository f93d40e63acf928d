package match

import "strings"

// globMeta lists the characters that start a glob construct.
const globMeta = "*?[{"

// DerivePrefix returns the directory part of pattern before its first
// unescaped glob metacharacter, with escapes removed. A pattern without
// metacharacters is its own prefix.
//
//	"nightly/2026-*/run"   -> "nightly/"
//	"*/run"                -> ""
//	"archive/\[old\]/**"   -> "archive/[old]/"
//	"nightly/run-1"        -> "nightly/run-1"
func DerivePrefix(pattern string) string {
	pattern = NormalizePattern(pattern)
	idx := firstUnescapedMeta(pattern)
	if idx == -1 {
		return unescape(pattern)
	}
	slash := strings.LastIndex(pattern[:idx], "/")
	if slash < 0 {
		return ""
	}
	return unescape(pattern[:slash+1])
}

// IsGlobPattern reports whether pattern has an unescaped metacharacter.
func IsGlobPattern(pattern string) bool {
	return firstUnescapedMeta(pattern) != -1
}

func firstUnescapedMeta(pattern string) int {
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			i++
			continue
		}
		if strings.IndexByte(globMeta, c) >= 0 {
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(globEscapable, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
