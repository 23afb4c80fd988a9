package bucket

import (
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"

	"PortfolioDigest/internal/domain"
)

// newestMatch picks the most recently updated object whose name contains any
// of the keywords (case-insensitive). An empty keyword list matches nothing:
// the lookup is deliberately opt-in.
func newestMatch(files []storage.FileObject, prefix string, keywords []string) (domain.StoredDocument, bool) {
	var (
		best  domain.StoredDocument
		found bool
	)
	for _, file := range files {
		if !matchesKeywords(file.Name, keywords) {
			continue
		}

		updated := parseObjectTime(file.UpdatedAt)
		if !found || updated.After(best.UpdatedAt) {
			best = domain.StoredDocument{
				Name:      file.Name,
				Path:      joinPath(prefix, file.Name),
				UpdatedAt: updated,
			}
			found = true
		}
	}
	return best, found
}

func matchesKeywords(name string, keywords []string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// parseObjectTime handles the timestamp formats the storage API emits.
// Unparseable values resolve to the zero time and lose newest-wins ties.
func parseObjectTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func joinPath(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
