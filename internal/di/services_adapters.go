package di

import (
	"context"
	"sort"

	"github.com/finlit/finlit/internal/clients/firestore"
	"github.com/finlit/finlit/internal/modules/catalog"
	"github.com/finlit/finlit/internal/modules/content"
)

const learnCollection = "learn"

// firestoreCatalogStore adapts the Firestore client to catalog.Store.
// Videos live at learn/{category}/videos/{title}.
type firestoreCatalogStore struct {
	client *firestore.Client
}

func newFirestoreCatalogStore(client *firestore.Client) *firestoreCatalogStore {
	return &firestoreCatalogStore{client: client}
}

func (s *firestoreCatalogStore) List(ctx context.Context, category string) ([]catalog.Record, error) {
	docs, err := s.client.ListDocuments(ctx, learnCollection, category, "videos")
	if err != nil {
		return nil, err
	}

	records := make([]catalog.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, catalog.Record{
			ID:    d.ID,
			Title: d.Fields["title"],
			URL:   d.Fields["url"],
		})
	}
	return records, nil
}

func (s *firestoreCatalogStore) Put(ctx context.Context, category, title, url string) error {
	// Subcollections alone do not list under learn, so the category document is written too
	if err := s.client.SetDocument(ctx, map[string]string{"name": category}, learnCollection, category); err != nil {
		return err
	}
	return s.client.SetDocument(ctx, map[string]string{"title": title, "url": url}, learnCollection, category, "videos", title)
}

func (s *firestoreCatalogStore) Categories(ctx context.Context) ([]string, error) {
	docs, err := s.client.ListDocuments(ctx, learnCollection)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.ID)
	}
	sort.Strings(names)
	return names, nil
}

// lessonSeeds converts the video lessons of the content library into catalog seeds
func lessonSeeds(svc *content.Service) map[string][]catalog.SeedVideo {
	seeds := make(map[string][]catalog.SeedVideo)
	for category, lessons := range svc.VideoLessons() {
		for _, l := range lessons {
			seeds[category] = append(seeds[category], catalog.SeedVideo{Title: l.Title, URL: l.VideoURL()})
		}
	}
	return seeds
}
