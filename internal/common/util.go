package common

import "strings"

// EscapeLike escapes the LIKE/ILIKE metacharacters in s so it can be used
// as a literal substring inside a pattern. The escape character is '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
