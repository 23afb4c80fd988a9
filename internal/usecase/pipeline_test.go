package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PortfolioDigest/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	doc      domain.StoredDocument
	content  string
	lookupEr error
	fetchEr  error
	fetches  int
}

func (f *fakeStore) Lookup(ctx context.Context) (domain.StoredDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupEr != nil {
		return domain.StoredDocument{}, f.lookupEr
	}
	return f.doc, nil
}

func (f *fakeStore) Retrieve(ctx context.Context, doc domain.StoredDocument) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchEr != nil {
		return "", f.fetchEr
	}
	return f.content, nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	triggers int
	err      error
}

func (f *fakeGenerator) Trigger(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers++
	return f.err
}

func (f *fakeGenerator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggers
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []domain.Digest
	err   error
}

func (f *fakeArchive) SaveDigest(ctx context.Context, doc domain.StoredDocument, d domain.Digest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, d)
	return nil
}

func (f *fakeArchive) RecentDigests(ctx context.Context, limit int) ([]domain.ArchivedDigest, error) {
	return nil, nil
}

const testContent = "Article 1 - Example Corp Update\nContents\n- **Revenue:** grew 10%\nCitations\n[TechNews](https://example.com/a)"

func newTestDoc() domain.StoredDocument {
	return domain.StoredDocument{
		Name:      "portfolio-digest.md",
		Path:      "generated/portfolio-digest.md",
		UpdatedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestRefreshPublishesParsedDigest(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	arch := &fakeArchive{}
	p := NewPipeline(PipelineDeps{Store: store, Archive: arch})

	require.Nil(t, p.Current())
	require.NoError(t, p.Refresh(context.Background()))

	d := p.Current()
	require.NotNil(t, d)
	require.Len(t, d.Articles, 1)
	require.Equal(t, "Example Corp Update", d.Articles[0].Title)

	// CreatedAt comes from the stored object, not from the parser.
	require.Equal(t, newTestDoc().UpdatedAt, d.CreatedAt)

	require.Len(t, arch.saved, 1)
	require.Equal(t, d.Title, arch.saved[0].Title)
}

func TestRefreshKeepsPreviousDigestOnFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	p := NewPipeline(PipelineDeps{Store: store})

	require.NoError(t, p.Refresh(context.Background()))
	previous := p.Current()

	store.mu.Lock()
	store.fetchEr = errors.New("bucket unavailable")
	store.mu.Unlock()

	require.Error(t, p.Refresh(context.Background()))
	require.Same(t, previous, p.Current())
}

func TestRefreshArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	arch := &fakeArchive{err: errors.New("db down")}
	p := NewPipeline(PipelineDeps{Store: store, Archive: arch})

	require.NoError(t, p.Refresh(context.Background()))
	require.NotNil(t, p.Current())
}

func TestRegenerateTriggersWaitsAndRefreshes(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	gen := &fakeGenerator{}
	p := NewPipeline(PipelineDeps{
		Store:       store,
		Generator:   gen,
		SettleDelay: 5 * time.Millisecond,
	})

	require.NoError(t, p.Regenerate(context.Background()))
	require.Equal(t, 1, gen.count())
	require.NotNil(t, p.Current())
}

func TestRegenerateSingleFlight(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	gen := &fakeGenerator{}
	p := NewPipeline(PipelineDeps{
		Store:       store,
		Generator:   gen,
		SettleDelay: 50 * time.Millisecond,
	})

	require.NoError(t, p.StartRegeneration(context.Background()))

	// A second attempt while the first is settling is rejected.
	err := p.Regenerate(context.Background())
	require.ErrorIs(t, err, ErrGenerationInFlight)

	require.Eventually(t, func() bool {
		return !p.GenerationInFlight()
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, 1, gen.count())

	// The guard is released after the attempt, so regeneration works again.
	require.NoError(t, p.Regenerate(context.Background()))
	require.Equal(t, 2, gen.count())
}

func TestRegenerateGuardReleasedOnTriggerFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{doc: newTestDoc(), content: testContent}
	gen := &fakeGenerator{err: errors.New("generator offline")}
	p := NewPipeline(PipelineDeps{Store: store, Generator: gen, SettleDelay: time.Millisecond})

	require.Error(t, p.Regenerate(context.Background()))
	require.False(t, p.GenerationInFlight())
}

func TestRegenerateWithoutGenerator(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{Store: &fakeStore{doc: newTestDoc(), content: testContent}})
	require.Error(t, p.Regenerate(context.Background()))
}
