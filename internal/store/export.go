package store

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// Snapshot is the full-library export payload.
type Snapshot struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Books      []*domain.Book   `json:"books"`
	Reviews    []*domain.Review `json:"reviews"`
}

// Export builds a snapshot of every book and review. The two collections
// load concurrently; the snapshot is not a point-in-time view across them,
// which matches how the export has always behaved.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{ExportedAt: time.Now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books, err := s.GetBooks(ctx)
		if err != nil {
			return err
		}
		snapshot.Books = books
		return nil
	})
	g.Go(func() error {
		reviews, err := s.GetReviews(ctx)
		if err != nil {
			return err
		}
		snapshot.Reviews = reviews
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
