package svcbot

import "strings"

// markdownSpecials is the set of characters Telegram's MarkdownV2 dialect
// treats as structural and therefore requires escaping in literal text.
const markdownSpecials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdown backslash-escapes every MarkdownV2 special character in s.
// It walks runes, not bytes, so multi-byte characters pass through intact.
// Escaping is not idempotent: escape exactly once per rendered string.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 && strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
