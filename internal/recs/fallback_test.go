package recs

import (
	"testing"

	"mediapick/recservice/internal/domain"
)

func TestDefaultCatalogCoversEveryContentType(t *testing.T) {
	catalog := DefaultCatalog()
	for _, contentType := range domain.AllContentTypes {
		items := catalog.Items(contentType, false)
		if len(items) == 0 {
			t.Fatalf("no fallback items for %s", contentType)
		}
		for _, item := range items {
			if item.ID == "" || item.Title == "" {
				t.Fatalf("incomplete fallback item for %s: %+v", contentType, item)
			}
			if item.Type != contentType {
				t.Fatalf("fallback item type mismatch: %+v", item)
			}
			if item.Rating <= 0 || item.Rating > domain.RatingMax {
				t.Fatalf("fallback rating out of range: %+v", item)
			}
		}
	}
}

func TestCatalogPrefersRegionalLists(t *testing.T) {
	catalog := DefaultCatalog()

	regional := catalog.Items(domain.ContentTypeMovie, true)
	if len(regional) == 0 {
		t.Fatalf("expected regional movie fallback items")
	}
	for _, item := range regional {
		if !item.Regional {
			t.Fatalf("regional list contains non-regional item: %+v", item)
		}
	}

	global := catalog.Items(domain.ContentTypeMovie, false)
	if global[0].ID == regional[0].ID {
		t.Fatalf("regional and global lists should differ")
	}

	// anime has no regional list; the global one stands in
	if items := catalog.Items(domain.ContentTypeAnime, true); len(items) == 0 {
		t.Fatalf("missing regional list must fall back to the global one")
	}
}

func TestCatalogItemsReturnsCopies(t *testing.T) {
	catalog := DefaultCatalog()
	first := catalog.Items(domain.ContentTypeBook, false)
	first[0].Title = "mutated"

	second := catalog.Items(domain.ContentTypeBook, false)
	if second[0].Title == "mutated" {
		t.Fatalf("catalog handed out shared state")
	}
}
