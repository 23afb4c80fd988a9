package digest

import (
	"regexp"

	"PortfolioDigest/internal/domain"
)

var (
	boldExpr   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicExpr = regexp.MustCompile(`\*([^*]+)\*`)
)

// resolveInline splits block text into styled spans. Bold pairs are resolved
// before italic pairs so a bold run is never mis-read as two italic runs
// sharing an asterisk.
func resolveInline(text string) []domain.Span {
	var spans []domain.Span
	last := 0
	for _, m := range boldExpr.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, italicSpans(text[last:m[0]])...)
		spans = append(spans, domain.Span{Text: text[m[2]:m[3]], Style: domain.SpanStrong})
		last = m[1]
	}
	return append(spans, italicSpans(text[last:])...)
}

func italicSpans(text string) []domain.Span {
	var spans []domain.Span
	last := 0
	for _, m := range italicExpr.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, domain.Span{Text: text[last:m[0]], Style: domain.SpanPlain})
		}
		spans = append(spans, domain.Span{Text: text[m[2]:m[3]], Style: domain.SpanEmphasis})
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, domain.Span{Text: text[last:], Style: domain.SpanPlain})
	}
	return spans
}
