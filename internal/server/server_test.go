package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PortfolioDigest/internal/domain"
	"PortfolioDigest/internal/usecase"
)

type stubStore struct {
	doc     domain.StoredDocument
	content string
}

func (s *stubStore) Lookup(ctx context.Context) (domain.StoredDocument, error) {
	return s.doc, nil
}

func (s *stubStore) Retrieve(ctx context.Context, doc domain.StoredDocument) (string, error) {
	return s.content, nil
}

type stubGenerator struct{}

func (stubGenerator) Trigger(ctx context.Context) error { return nil }

func newTestPipeline(t *testing.T) *usecase.Pipeline {
	t.Helper()
	store := &stubStore{
		doc: domain.StoredDocument{
			Name:      "portfolio-digest.md",
			Path:      "portfolio-digest.md",
			UpdatedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		},
		content: "Article 1 - Example Corp Update\nContents\nBody line.\nCitations\n[TechNews](https://example.com/a)",
	}
	return usecase.NewPipeline(usecase.PipelineDeps{
		Store:       store,
		Generator:   stubGenerator{},
		SettleDelay: time.Millisecond,
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestPipeline(t), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestDigestPageBeforeAndAfterRefresh(t *testing.T) {
	t.Parallel()

	pipeline := newTestPipeline(t)
	router := NewRouter(pipeline, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digest", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "not available yet")

	require.NoError(t, pipeline.Refresh(context.Background()))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Example Corp Update")
}

func TestDigestJSON(t *testing.T) {
	t.Parallel()

	pipeline := newTestPipeline(t)
	router := NewRouter(pipeline, nil)
	require.NoError(t, pipeline.Refresh(context.Background()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/digest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var d domain.Digest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	require.Len(t, d.Articles, 1)
	require.Equal(t, "Example Corp Update", d.Articles[0].Title)
	require.Equal(t, []domain.Citation{{Label: "TechNews", URL: "https://example.com/a"}}, d.Articles[0].Citations)
}

func TestRegenerateAccepted(t *testing.T) {
	t.Parallel()

	pipeline := newTestPipeline(t)
	router := NewRouter(pipeline, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/regenerate", strings.NewReader("")))
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHistoryWithoutArchive(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestPipeline(t), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
