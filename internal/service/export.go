package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/id"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// ExportService produces downloadable library snapshots.
type ExportService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewExportService(store *store.Store, logger *slog.Logger) *ExportService {
	return &ExportService{store: store, logger: logger}
}

// Export is a snapshot ready to hand to a client, with the filename the
// download should carry.
type Export struct {
	SnapshotID string          `json:"snapshot_id"`
	Filename   string          `json:"filename"`
	Snapshot   *store.Snapshot `json:"snapshot"`
}

// Create builds a full snapshot of the library.
func (s *ExportService) Create(ctx context.Context) (*Export, error) {
	snapshot, err := s.store.Export(ctx)
	if err != nil {
		return nil, err
	}

	snapshotID, err := id.Generate("exp")
	if err != nil {
		return nil, fmt.Errorf("generate snapshot id: %w", err)
	}

	export := &Export{
		SnapshotID: snapshotID,
		Filename:   fmt.Sprintf("shelfmark-export-%s.json", time.Now().Format("2006-01-02")),
		Snapshot:   snapshot,
	}

	if s.logger != nil {
		s.logger.Info("library exported",
			"snapshot_id", snapshotID,
			"books", len(snapshot.Books),
			"reviews", len(snapshot.Reviews))
	}
	return export, nil
}
