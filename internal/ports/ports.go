package ports

import (
	"context"
	"time"

	"PortfolioDigest/internal/domain"
)

// DocumentStore locates and downloads generated digest documents.
type DocumentStore interface {
	// Lookup returns the most recently updated stored document whose name
	// matches the configured digest keywords.
	Lookup(ctx context.Context) (domain.StoredDocument, error)
	// Retrieve returns the document's raw text, rejecting content below the
	// minimum meaningful length before the parser ever sees it.
	Retrieve(ctx context.Context, doc domain.StoredDocument) (string, error)
}

// Generator starts remote digest generation. Completion is not signalled
// synchronously; callers re-check the document store after a settle interval.
type Generator interface {
	Trigger(ctx context.Context) error
}

// DigestArchive persists parsed digests for history and audit.
type DigestArchive interface {
	SaveDigest(ctx context.Context, doc domain.StoredDocument, d domain.Digest) error
	RecentDigests(ctx context.Context, limit int) ([]domain.ArchivedDigest, error)
}

// Scheduler controls when refresh attempts execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
