// Package render maps a parsed digest onto presentation markup. It consumes
// the immutable digest value one way and never mutates it.
package render

import (
	"fmt"
	"html"
	"strings"

	"PortfolioDigest/internal/domain"
)

// HTML renders the digest as a standalone fragment. Each article expands and
// collapses via details/summary; citations become external source links.
func HTML(d *domain.Digest) string {
	var b strings.Builder
	b.WriteString(`<section class="digest">` + "\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(d.Title))

	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(&b, `<p class="digest-date">%s</p>`+"\n", d.CreatedAt.Format("2 January 2006 15:04 MST"))
	}

	if len(d.Articles) == 0 {
		b.WriteString(`<p class="digest-empty">No articles in this digest.</p>` + "\n")
	}

	for i, article := range d.Articles {
		writeArticle(&b, article, i == 0)
	}

	b.WriteString("</section>\n")
	return b.String()
}

func writeArticle(b *strings.Builder, article domain.Article, open bool) {
	if open {
		b.WriteString(`<details class="article" open>` + "\n")
	} else {
		b.WriteString(`<details class="article">` + "\n")
	}
	fmt.Fprintf(b, "<summary>%s</summary>\n", html.EscapeString(article.Title))

	b.WriteString(`<div class="article-body">` + "\n")
	writeBlocks(b, article.Blocks)
	b.WriteString("</div>\n")

	if len(article.Citations) > 0 {
		b.WriteString(`<ul class="citations">` + "\n")
		for _, cite := range article.Citations {
			fmt.Fprintf(b, `<li><a href="%s" target="_blank" rel="noopener">%s</a></li>`+"\n",
				html.EscapeString(cite.URL), html.EscapeString(cite.Label))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</details>\n")
}

// writeBlocks emits paragraphs as-is and folds consecutive list items into a
// single list.
func writeBlocks(b *strings.Builder, blocks []domain.ContentBlock) {
	inList := false
	for _, block := range blocks {
		switch block.Kind {
		case domain.BlockListItem:
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(b, "<li>%s</li>\n", spansHTML(block.Spans))
		default:
			if inList {
				b.WriteString("</ul>\n")
				inList = false
			}
			fmt.Fprintf(b, "<p>%s</p>\n", spansHTML(block.Spans))
		}
	}
	if inList {
		b.WriteString("</ul>\n")
	}
}

func spansHTML(spans []domain.Span) string {
	var b strings.Builder
	for _, span := range spans {
		text := html.EscapeString(span.Text)
		switch span.Style {
		case domain.SpanStrong:
			b.WriteString("<strong>" + text + "</strong>")
		case domain.SpanEmphasis:
			b.WriteString("<em>" + text + "</em>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

// Page wraps the digest fragment into a minimal self-contained document.
func Page(d *domain.Digest) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(d.Title))
	b.WriteString("<style>\nbody { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }\n" +
		"details.article { margin: 1rem 0; }\nsummary { font-weight: 600; cursor: pointer; }\n" +
		"ul.citations { font-size: 0.9rem; }\n</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(HTML(d))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
