// Package main seeds a Shelfmark database with a small sample library.
// The data includes deliberate duplicates so a reconciliation pass has
// something to merge.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/logger"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

func main() {
	dataPath := flag.String("data-path", "", "Base path for the database (default: ~/Shelfmark/data)")
	flag.Parse()

	log := logger.New(logger.Config{Level: slog.LevelInfo})

	path := *dataPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve home directory: %v\n", err)
			os.Exit(1)
		}
		path = filepath.Join(home, "Shelfmark", "data")
	}

	db, err := store.New(filepath.Join(path, "db"), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db, log); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}

	log.Info("Sample library seeded", "path", path)
}

func seed(ctx context.Context, db *store.Store, log *slog.Logger) error {
	books := []*domain.Book{
		{
			Title:          "Dune",
			Author:         "Frank Herbert",
			Status:         domain.StatusFinished,
			Year:           1965,
			Cover:          &domain.Cover{Source: domain.CoverSourceISBN, Value: "0441013597"},
			OpenLibraryURL: "https://openlibrary.org/works/OL893415W",
		},
		{
			// Duplicate of Dune without catalog data; the reconciler
			// should fold this into the record above.
			Title:  "Dune",
			Author: "Frank Herbert",
			Status: domain.StatusLibrary,
		},
		{
			Title:  "Hyperion",
			Author: "Dan Simmons",
			Status: domain.StatusReading,
			Year:   1989,
		},
		{
			Title:  "The Left Hand of Darkness",
			Author: "Ursula K. Le Guin",
			Status: domain.StatusWishlist,
			Year:   1969,
		},
		{
			// Author-less entry matching the record above by title.
			Title:  "The Left Hand of Darkness",
			Status: domain.StatusWishlist,
		},
		{
			Title:  "Piranesi",
			Author: "Susanna Clarke",
			Status: domain.StatusLibrary,
			Year:   2020,
			Unread: true,
		},
	}

	ids := make([]uint64, 0, len(books))
	for _, book := range books {
		id, err := db.AddBook(ctx, book)
		if err != nil {
			return fmt.Errorf("add book %q: %w", book.Title, err)
		}
		ids = append(ids, id)
	}

	reviews := []*domain.Review{
		{
			BookID:         ids[0],
			Rating:         9,
			Text:           "The spice must flow. Still the benchmark for the genre.",
			StatusSnapshot: domain.StatusFinished,
		},
		{
			// Attached to the duplicate Dune record on purpose; the
			// reconciler should move it to the canonical book.
			BookID:         ids[1],
			Rating:         8,
			Text:           "Read it again after the film, holds up.",
			StatusSnapshot: domain.StatusLibrary,
		},
		{
			BookID:         ids[2],
			Rating:         7,
			Text:           "The Priest's Tale alone is worth the cover price.",
			StatusSnapshot: domain.StatusReading,
		},
	}

	for _, review := range reviews {
		if _, err := db.AddReview(ctx, review); err != nil {
			return fmt.Errorf("add review for book %d: %w", review.BookID, err)
		}
	}

	log.Info("Seeded sample data",
		"books", len(books),
		"reviews", len(reviews),
	)
	log.Info("Run the server and POST /api/v1/reconcile to watch the duplicates merge")

	return nil
}
