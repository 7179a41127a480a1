package service

import (
	"context"
	"log/slog"

	"github.com/shelfmarkapp/shelfmark-server/internal/reconcile"
)

// ReconcileService runs the duplicate-merge pass and refreshes the search
// index afterwards.
type ReconcileService struct {
	reconciler *reconcile.Reconciler
	books      *BookService
	logger     *slog.Logger
}

func NewReconcileService(reconciler *reconcile.Reconciler, books *BookService, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{reconciler: reconciler, books: books, logger: logger}
}

// Run executes a reconciliation pass. The index is only rebuilt when the
// pass actually changed something.
func (s *ReconcileService) Run(ctx context.Context) (reconcile.Report, error) {
	report, err := s.reconciler.Run(ctx)
	if err != nil {
		return report, err
	}

	if !report.Empty() {
		if err := s.books.Reindex(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}
