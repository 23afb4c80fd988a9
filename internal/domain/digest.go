package domain

import "time"

// BlockKind tags a content block as a paragraph or a list item.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "listItem"
)

// SpanStyle marks how a run of text inside a block is emphasized.
type SpanStyle string

const (
	SpanPlain    SpanStyle = "plain"
	SpanStrong   SpanStyle = "strong"
	SpanEmphasis SpanStyle = "emphasis"
)

// Span is a run of text carrying a single emphasis style.
type Span struct {
	Text  string    `json:"text"`
	Style SpanStyle `json:"style"`
}

// ContentBlock is one paragraph or list item of article body text with
// inline formatting already resolved into spans.
type ContentBlock struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans"`
}

// Citation is a labeled external source link attached to an article.
type Citation struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Article is one digest entry: a title, body blocks, and source citations.
type Article struct {
	Title     string         `json:"title"`
	Blocks    []ContentBlock `json:"contentBlocks"`
	Citations []Citation     `json:"citations"`
}

// Digest is the full parsed document. CreatedAt is stamped by the fetch
// side from the source object's timestamp, never derived during parsing.
type Digest struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Articles  []Article `json:"articles"`
}

// StoredDocument identifies a generated digest object in the bucket.
type StoredDocument struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArchivedDigest is a persisted digest snapshot row used for history views.
type ArchivedDigest struct {
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	ArticleCount int       `json:"articleCount"`
	SourcePath   string    `json:"sourcePath"`
}
