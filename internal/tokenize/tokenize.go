// Package tokenize implements the external tokenizer collaborator
// described in spec.md §4.2: lowercase, fold every non-alphanumeric
// character to whitespace, split, drop empties. It performs no
// stemming or stop-word removal (spec.md §9 item 3, Non-goals).
package tokenize

import "strings"

// Tokenize normalizes text into an order-preserving sequence of terms.
func Tokenize(text string) []string {
	folded := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			folded[i] = c
		} else {
			folded[i] = ' '
		}
	}
	return strings.Fields(string(folded))
}
