// Package digest converts raw generated digest text into a structured
// record of articles, content blocks, and citations. Parsing is a pure
// computation: it holds no state, performs no I/O, and is total over all
// string input, degrading to empty sections and fallback titles instead of
// failing on malformed structure.
package digest

import (
	"regexp"
	"strings"

	"PortfolioDigest/internal/domain"
)

// Fallbacks substituted when structural extraction finds no match.
const (
	DefaultTitle         = "Portfolio Digest"
	FallbackArticleTitle = "Untitled Article"
	FallbackSourceLabel  = "Source"
)

var (
	articleBoundaryExpr = regexp.MustCompile(`(?im)^[ \t]*article[ \t]+\d+`)
	articleTitleExpr    = regexp.MustCompile(`(?im)^[ \t]*article[ \t]+\d+[ \t]*[-\x{2013}:][ \t]*(.+)`)
	contentsMarkerExpr  = regexp.MustCompile(`(?im)^[ \t]*contents(?:[ \t]*\d+)?[ \t]*$`)
	citationsMarkerExpr = regexp.MustCompile(`(?im)^[ \t]*citations(?:[ \t]*\d+)?[ \t]*$`)
	documentTitleExpr   = regexp.MustCompile(`(?im)^.*portfolio[ \t]+digest.*$`)
	citationURLExpr     = regexp.MustCompile(`\((https?://[^)]+)\)`)

	// A bullet marker followed directly by a bold lead-in ending in a colon,
	// e.g. "- **Revenue:** grew 10%".
	bulletLeadExpr = regexp.MustCompile(`^[-\x{2022}*][ \t]*\*\*[^*]*:[^*]*\*\*`)
	// Hyphen and bullet-dot markers need no trailing space; a star does, so
	// an italic or bold opener at line start is not eaten as a bullet.
	bulletExpr       = regexp.MustCompile(`^[-\x{2022}]|^\*[ \t]+`)
	bulletMarkerExpr = regexp.MustCompile(`^[-\x{2022}*][ \t]*`)

	bracketReplacer = strings.NewReplacer("[", "", "]", "")
)

// Parse converts raw digest text into a structured Digest. CreatedAt is left
// zero for the caller to stamp. Re-parsing identical input yields an
// identical result.
func Parse(raw string) domain.Digest {
	text := Normalize(raw)
	return domain.Digest{
		Title:    documentTitle(text),
		Articles: parseArticles(segment(text)),
	}
}

// documentTitle scans the whole normalized text for a recognizable digest
// heading line, independently of article segmentation.
func documentTitle(text string) string {
	if line := documentTitleExpr.FindString(text); line != "" {
		if title := strings.TrimSpace(strings.TrimLeft(line, "# \t")); title != "" {
			return title
		}
	}
	return DefaultTitle
}

// segment splits normalized text into one chunk per "Article N" boundary.
// Text before the first boundary is document-level preamble and is dropped.
// Zero boundaries yield zero segments, not an error.
func segment(text string) []string {
	bounds := articleBoundaryExpr.FindAllStringIndex(text, -1)
	segments := make([]string, 0, len(bounds))
	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		if seg := strings.TrimSpace(text[b[0]:end]); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func parseArticles(segments []string) []domain.Article {
	articles := make([]domain.Article, 0, len(segments))
	for _, seg := range segments {
		articles = append(articles, parseArticle(seg))
	}
	return articles
}

// parseArticle runs the three extractions against the whole segment. Each
// locates its own marker, so Contents and Citations may appear in either
// order without affecting one another.
func parseArticle(seg string) domain.Article {
	return domain.Article{
		Title:     articleTitle(seg),
		Blocks:    contentBlocks(seg),
		Citations: parseCitations(seg),
	}
}

func articleTitle(seg string) string {
	m := articleTitleExpr.FindStringSubmatch(seg)
	if m == nil {
		return FallbackArticleTitle
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return FallbackArticleTitle
	}
	return title
}

// sectionSpan returns the text between a marker line and the nearest
// terminator (or end of segment). The bool reports whether the marker was
// found at all.
func sectionSpan(seg string, marker *regexp.Regexp, terminators ...*regexp.Regexp) (string, bool) {
	loc := marker.FindStringIndex(seg)
	if loc == nil {
		return "", false
	}
	rest := seg[loc[1]:]
	end := len(rest)
	for _, term := range terminators {
		if tl := term.FindStringIndex(rest); tl != nil && tl[0] < end {
			end = tl[0]
		}
	}
	return rest[:end], true
}

func contentBlocks(seg string) []domain.ContentBlock {
	span, ok := sectionSpan(seg, contentsMarkerExpr, citationsMarkerExpr, articleBoundaryExpr)
	if !ok {
		return nil
	}

	var blocks []domain.ContentBlock
	for _, line := range strings.Split(span, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, classifyLine(line))
	}
	return blocks
}

func classifyLine(line string) domain.ContentBlock {
	if bulletLeadExpr.MatchString(line) || bulletExpr.MatchString(line) {
		text := strings.TrimSpace(bulletMarkerExpr.ReplaceAllString(line, ""))
		return domain.ContentBlock{Kind: domain.BlockListItem, Spans: resolveInline(text)}
	}
	return domain.ContentBlock{Kind: domain.BlockParagraph, Spans: resolveInline(line)}
}

// parseCitations keeps only lines with a parenthesized http(s) URL; lines
// without one contribute nothing. The label is the rest of the line with
// brackets removed, or a generic fallback when empty.
func parseCitations(seg string) []domain.Citation {
	span, ok := sectionSpan(seg, citationsMarkerExpr, articleBoundaryExpr)
	if !ok {
		return nil
	}

	var cites []domain.Citation
	for _, line := range strings.Split(span, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := citationURLExpr.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		label := strings.TrimSpace(bracketReplacer.Replace(line[:m[0]] + line[m[1]:]))
		if label == "" {
			label = FallbackSourceLabel
		}
		cites = append(cites, domain.Citation{Label: label, URL: line[m[2]:m[3]]})
	}
	return cites
}
