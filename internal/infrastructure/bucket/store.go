// Package bucket adapts a Supabase storage bucket to the document-store
// port: it finds the newest generated digest object by keyword and downloads
// its text content.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"

	"PortfolioDigest/internal/config"
	"PortfolioDigest/internal/domain"
	"PortfolioDigest/internal/ports"
)

const (
	storageAPISuffix = "/storage/v1"
	listPageSize     = 100
	signedURLTTL     = 300
	maxDocumentBytes = 4 << 20
)

// ErrNoDigestFound is returned when no bucket object matches the digest keywords.
var ErrNoDigestFound = errors.New("no digest document found in bucket")

// ErrContentTooShort is returned when a downloaded document is below the
// minimum meaningful length.
var ErrContentTooShort = errors.New("digest document too short")

// Store implements ports.DocumentStore over a Supabase storage bucket.
type Store struct {
	client     *storage.Client
	httpClient *http.Client
	baseURL    string
	bucket     string
	prefix     string
	keywords   []string
	minLength  int
	logger     *slog.Logger
}

var _ ports.DocumentStore = (*Store)(nil)

// New wires a storage client from configuration.
func New(cfg config.StorageConfig, logger *slog.Logger) *Store {
	base := storageURL(cfg.URL)
	return &Store{
		client:     storage.NewClient(base, cfg.APIKey, nil),
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    base,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		keywords:   cfg.Keywords,
		minLength:  cfg.MinContentLength,
		logger:     logger,
	}
}

// Lookup lists the bucket and returns the most recently updated object whose
// name matches the configured keywords.
func (s *Store) Lookup(ctx context.Context) (domain.StoredDocument, error) {
	if s.bucket == "" {
		return domain.StoredDocument{}, fmt.Errorf("document store misconfigured: no bucket")
	}

	files, err := s.client.ListFiles(s.bucket, s.prefix, storage.FileSearchOptions{
		Limit:         listPageSize,
		SortByOptions: storage.SortBy{Column: "updated_at", Order: "desc"},
	})
	if err != nil {
		return domain.StoredDocument{}, fmt.Errorf("list bucket %s: %w", s.bucket, err)
	}

	doc, ok := newestMatch(files, s.prefix, s.keywords)
	if !ok {
		return domain.StoredDocument{}, ErrNoDigestFound
	}

	s.debug("resolved digest document", "path", doc.Path, "updated_at", doc.UpdatedAt)
	return doc, nil
}

// Retrieve downloads the document text, preferring an inline download and
// falling back to a signed URL fetch. Content below the minimum meaningful
// length is rejected here so the parser only ever sees usable input.
func (s *Store) Retrieve(ctx context.Context, doc domain.StoredDocument) (string, error) {
	raw, err := s.client.DownloadFile(s.bucket, doc.Path)
	if err != nil {
		s.debug("inline download failed, trying signed url", "path", doc.Path, "error", err)
		raw, err = s.fetchSigned(ctx, doc)
		if err != nil {
			return "", fmt.Errorf("download %s: %w", doc.Path, err)
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) < s.minLength {
		return "", fmt.Errorf("%w: %s carries %d bytes", ErrContentTooShort, doc.Path, len(text))
	}
	return text, nil
}

// fetchSigned resolves the object to a downloadable URL and fetches it as text.
func (s *Store) fetchSigned(ctx context.Context, doc domain.StoredDocument) ([]byte, error) {
	signed, err := s.client.CreateSignedUrl(s.bucket, doc.Path, signedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}

	target := signed.SignedURL
	if !strings.HasPrefix(target, "http") {
		target = s.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch signed url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signed url returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}

func storageURL(projectURL string) string {
	base := strings.TrimSuffix(strings.TrimSpace(projectURL), "/")
	if base == "" || strings.HasSuffix(base, storageAPISuffix) {
		return base
	}
	return base + storageAPISuffix
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
