package digest

import (
	"regexp"
	"strings"
)

var (
	headingLineExpr = regexp.MustCompile(`(?m)^#+[ \t]*`)
	headingRunExpr  = regexp.MustCompile(`#+`)

	// Soft hyphens and zero-width characters leak out of the generation
	// service and break line-oriented matching if left in place.
	invisibleReplacer = strings.NewReplacer(
		"\u00ad", "",
		"\u200b", "",
		"\u200c", "",
		"\u200d", "",
		"\ufeff", "",
	)
)

// Normalize canonicalizes raw digest text before structural parsing: line
// endings are collapsed to \n, zero-width artifacts removed, heading markers
// stripped, and the whole text trimmed. It never fails on any input.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = invisibleReplacer.Replace(text)
	text = headingLineExpr.ReplaceAllString(text, "")
	text = headingRunExpr.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
