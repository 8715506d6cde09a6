package vfs

// Normalize lowercases the ASCII letters in path and rewrites backslashes
// to forward slashes, byte by byte. It does not fold non-ASCII case, does
// not collapse repeated separators, and does not resolve "." or "..". Two
// paths that normalize to the same string are considered the same VFS
// entry; two paths that don't, aren't, even if a Unicode-aware comparison
// would consider them equivalent.
func Normalize(path string) string {
	b := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\':
			b[i] = '/'
		case c >= 'A' && c <= 'Z':
			b[i] = c + 32
		default:
			b[i] = c
		}
	}
	return string(b)
}
