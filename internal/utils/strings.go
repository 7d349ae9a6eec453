package utils

// Abbreviate shortens long identifiers such as locators and public keys to
// their first and last n characters.
func Abbreviate(s string, n int) string {
	if n <= 0 || len(s) <= 2*n+3 {
		return s
	}
	return s[:n] + "..." + s[len(s)-n:]
}
