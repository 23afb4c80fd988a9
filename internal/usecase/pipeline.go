package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"PortfolioDigest/internal/digest"
	"PortfolioDigest/internal/domain"
	"PortfolioDigest/internal/ports"
)

// ErrGenerationInFlight is returned when a regeneration attempt is already running.
var ErrGenerationInFlight = errors.New("digest generation already in flight")

// PipelineDeps wires all driven adapters into the refresh workflow.
type PipelineDeps struct {
	Store       ports.DocumentStore
	Generator   ports.Generator
	Archive     ports.DigestArchive
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Pipeline implements the digest refresh workflow: locate the newest
// generated document, parse it, archive it, and publish it for serving.
type Pipeline struct {
	store     ports.DocumentStore
	generator ports.Generator
	archive   ports.DigestArchive
	settle    time.Duration
	logger    *slog.Logger

	mu      sync.RWMutex
	current *domain.Digest

	genMu      sync.Mutex
	generating bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:     deps.Store,
		generator: deps.Generator,
		archive:   deps.Archive,
		settle:    deps.SettleDelay,
		logger:    logger,
	}
}

// Refresh locates the newest digest document, parses it, and publishes the
// result. On any collaborator failure the previously published digest keeps
// serving; the parser itself never fails.
func (p *Pipeline) Refresh(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("document store is not configured")
	}

	doc, err := p.store.Lookup(ctx)
	if err != nil {
		return fmt.Errorf("lookup digest: %w", err)
	}

	raw, err := p.store.Retrieve(ctx, doc)
	if err != nil {
		return fmt.Errorf("retrieve %s: %w", doc.Path, err)
	}

	parsed := digest.Parse(raw)
	parsed.CreatedAt = doc.UpdatedAt

	if p.archive != nil {
		// Archiving is best effort; a storage outage must not block serving.
		if err := p.archive.SaveDigest(ctx, doc, parsed); err != nil {
			p.logger.Warn("archive digest", "source", doc.Path, "error", err)
		}
	}

	p.mu.Lock()
	p.current = &parsed
	p.mu.Unlock()

	p.logger.Info("digest refreshed",
		"source", doc.Path,
		"title", parsed.Title,
		"articles", len(parsed.Articles))
	return nil
}

// Current returns the last successfully published digest, or nil before the
// first refresh. The returned value is immutable; callers only read it.
func (p *Pipeline) Current() *domain.Digest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Regenerate triggers remote generation, waits for the settle interval, and
// re-reads the bucket. At most one regeneration runs at a time.
func (p *Pipeline) Regenerate(ctx context.Context) error {
	if p.generator == nil {
		return fmt.Errorf("generator is not configured")
	}
	if !p.beginGeneration() {
		return ErrGenerationInFlight
	}
	defer p.endGeneration()

	return p.regenerate(ctx)
}

// StartRegeneration kicks off a regeneration attempt in the background,
// returning ErrGenerationInFlight when one is already running.
func (p *Pipeline) StartRegeneration(ctx context.Context) error {
	if p.generator == nil {
		return fmt.Errorf("generator is not configured")
	}
	if !p.beginGeneration() {
		return ErrGenerationInFlight
	}

	go func() {
		defer p.endGeneration()
		if err := p.regenerate(ctx); err != nil {
			p.logger.Warn("regenerate digest", "error", err)
		}
	}()
	return nil
}

// GenerationInFlight reports whether a regeneration attempt is running.
func (p *Pipeline) GenerationInFlight() bool {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	return p.generating
}

// History returns recent archived digests, newest first.
func (p *Pipeline) History(ctx context.Context, limit int) ([]domain.ArchivedDigest, error) {
	if p.archive == nil {
		return nil, nil
	}
	return p.archive.RecentDigests(ctx, limit)
}

func (p *Pipeline) regenerate(ctx context.Context) error {
	if err := p.generator.Trigger(ctx); err != nil {
		return fmt.Errorf("trigger generation: %w", err)
	}

	// Completion is not signalled; wait a fixed interval and re-read,
	// accepting that the document may not have changed yet.
	select {
	case <-time.After(p.settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	return p.Refresh(ctx)
}

func (p *Pipeline) beginGeneration() bool {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	if p.generating {
		return false
	}
	p.generating = true
	return true
}

func (p *Pipeline) endGeneration() {
	p.genMu.Lock()
	p.generating = false
	p.genMu.Unlock()
}
