// Package reconcile merges duplicate library entries and cleans up their
// reviews. The pass runs once at startup and on demand through the API.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// Report summarizes what a reconciliation pass changed. A second pass over
// the same data reports all zeros.
type Report struct {
	Merged     int `json:"merged"`
	Reassigned int `json:"reassigned"`
	Deduped    int `json:"deduped"`
	Trimmed    int `json:"trimmed"`
	Realigned  int `json:"realigned"`
}

// Empty reports whether the pass changed nothing.
func (r Report) Empty() bool {
	return r == Report{}
}

// Reconciler runs the duplicate-merge pass against a store.
type Reconciler struct {
	store  *store.Store
	logger *slog.Logger
}

func New(s *store.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: s, logger: logger}
}

// Run executes a full reconciliation pass: merge duplicate books, move and
// dedupe their reviews, cap each book's reviews, then recompute book status
// from the surviving reviews. Each store call is atomic but the pass as a
// whole is not; it runs while the API is quiet.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report

	books, err := r.store.GetBooks(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: %w", err)
	}

	// Groups can overlap: the same book may sit in a URL group and a
	// title+author group, and an author-less entry pairs with every
	// same-title edition. Deletions are tracked across groups so a book
	// merged away by one group is skipped by the next.
	deleted := make(map[uint64]bool)
	for _, group := range duplicateGroups(books) {
		if err := r.mergeGroup(ctx, group, deleted, &report); err != nil {
			return report, err
		}
	}

	if err := r.cleanReviews(ctx, &report); err != nil {
		return report, err
	}

	if r.logger != nil && !report.Empty() {
		r.logger.Info("reconciliation changed records",
			"merged", report.Merged,
			"reassigned", report.Reassigned,
			"deduped", report.Deduped,
			"trimmed", report.Trimmed,
			"realigned", report.Realigned)
	}
	return report, nil
}

// duplicateGroups collects candidate duplicate groups, one per candidate
// key. Books sharing a catalog URL or a title+author pair form a group;
// a book without an author additionally pairs with each same-title
// authored edition. Groups stay separate on purpose: two authored
// editions that share only a title must never end up in one group, even
// when an author-less entry matches both. A book may therefore appear in
// several groups; the merge pass skips members already deleted.
func duplicateGroups(books []*domain.Book) [][]*domain.Book {
	byURL := make(map[string][]*domain.Book)
	byTitleAuthor := make(map[string][]*domain.Book)
	byTitle := make(map[string][]*domain.Book)

	for _, book := range books {
		if url := normalizeURL(book.OpenLibraryURL); url != "" {
			byURL[url] = append(byURL[url], book)
		}
		if book.TitleLower != "" {
			key := book.TitleLower + "::" + book.AuthorLower
			byTitleAuthor[key] = append(byTitleAuthor[key], book)
			byTitle[book.TitleLower] = append(byTitle[book.TitleLower], book)
		}
	}

	// Emit groups in book order so merge results are deterministic.
	var groups [][]*domain.Book
	emitted := make(map[string]bool)
	emit := func(key string, group []*domain.Book) {
		if len(group) > 1 && !emitted[key] {
			emitted[key] = true
			groups = append(groups, group)
		}
	}

	for _, book := range books {
		if url := normalizeURL(book.OpenLibraryURL); url != "" {
			emit("u:"+url, byURL[url])
		}
		if book.TitleLower != "" {
			key := book.TitleLower + "::" + book.AuthorLower
			emit("ta:"+key, byTitleAuthor[key])
		}
	}

	// Author-less entries pair with each same-title authored edition.
	// (Two author-less twins already share a title+author key above.)
	for _, book := range books {
		if book.TitleLower == "" || book.AuthorLower != "" {
			continue
		}
		for _, other := range byTitle[book.TitleLower] {
			if other == book || other.AuthorLower == "" {
				continue
			}
			groups = append(groups, []*domain.Book{book, other})
		}
	}
	return groups
}

// mergeGroup folds a duplicate group into its best record: reviews move to
// the canonical book, missing display data is backfilled from the
// duplicates, and the duplicates are deleted. Members already deleted by
// an earlier group are skipped.
func (r *Reconciler) mergeGroup(ctx context.Context, group []*domain.Book, deleted map[uint64]bool, report *Report) error {
	alive := make([]*domain.Book, 0, len(group))
	for _, book := range group {
		if !deleted[book.ID] {
			alive = append(alive, book)
		}
	}
	if len(alive) < 2 {
		return nil
	}
	group = alive

	sort.SliceStable(group, func(i, j int) bool {
		return moreCanonical(group[i], group[j])
	})
	canonical := group[0]

	seen, err := r.contentKeys(ctx, canonical.ID)
	if err != nil {
		return err
	}

	backfilled := false
	for _, dup := range group[1:] {
		reviews, err := r.store.GetReviewsByBook(ctx, dup.ID)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		for _, review := range reviews {
			key := review.ContentKey()
			if seen[key] {
				if err := r.store.DeleteReview(ctx, review.ID); err != nil {
					return fmt.Errorf("reconcile: %w", err)
				}
				report.Deduped++
				continue
			}
			review.BookID = canonical.ID
			if _, err := r.store.SaveReview(ctx, review); err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			seen[key] = true
			report.Reassigned++
		}

		if canonical.MergeFrom(dup) {
			backfilled = true
		}
		if err := r.store.DeleteBook(ctx, dup.ID); err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		deleted[dup.ID] = true
		report.Merged++

		if r.logger != nil {
			r.logger.Info("merged duplicate book",
				"canonical_id", canonical.ID, "duplicate_id", dup.ID, "title", canonical.Title)
		}
	}

	if backfilled {
		if err := r.store.UpdateBook(ctx, canonical); err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
	}
	return nil
}

// cleanReviews dedupes and caps each surviving book's reviews, then
// realigns the book's status with its most recent take.
func (r *Reconciler) cleanReviews(ctx context.Context, report *Report) error {
	books, err := r.store.GetBooks(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	for _, book := range books {
		reviews, err := r.store.GetReviewsByBook(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}

		// Reviews arrive most recently updated first, so keeping the
		// first occurrence of each content key keeps the freshest one.
		seen := make(map[string]bool)
		kept := reviews[:0]
		for _, review := range reviews {
			key := review.ContentKey()
			if seen[key] {
				if err := r.store.DeleteReview(ctx, review.ID); err != nil {
					return fmt.Errorf("reconcile: %w", err)
				}
				report.Deduped++
				continue
			}
			seen[key] = true
			kept = append(kept, review)
		}

		for _, review := range kept[min(len(kept), domain.MaxReviewsPerBook):] {
			if err := r.store.DeleteReview(ctx, review.ID); err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			report.Trimmed++
		}
		kept = kept[:min(len(kept), domain.MaxReviewsPerBook)]

		if len(kept) == 0 {
			continue
		}
		if err := r.realignStatus(ctx, book, kept[0], report); err != nil {
			return err
		}
	}
	return nil
}

// realignStatus copies the most recent review's status snapshot and unread
// flag onto the book when they drifted apart.
func (r *Reconciler) realignStatus(ctx context.Context, book *domain.Book, latest *domain.Review, report *Report) error {
	newStatus := book.Status
	if latest.StatusSnapshot.Valid() {
		newStatus = latest.StatusSnapshot
	}
	if newStatus == book.Status && latest.Unread == book.Unread {
		return nil
	}

	book.Status = newStatus
	book.Unread = latest.Unread
	if err := r.store.UpdateBook(ctx, book); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	report.Realigned++

	if r.logger != nil {
		r.logger.Info("realigned book status from review",
			"book_id", book.ID, "status", book.Status, "unread", book.Unread)
	}
	return nil
}

// contentKeys returns the content keys of a book's current reviews.
func (r *Reconciler) contentKeys(ctx context.Context, bookID uint64) (map[string]bool, error) {
	reviews, err := r.store.GetReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	keys := make(map[string]bool, len(reviews))
	for _, review := range reviews {
		keys[review.ContentKey()] = true
	}
	return keys, nil
}

// moreCanonical reports whether a should survive over b when the two are
// duplicates. Cataloged records beat bare ones, covers beat none, an
// authored record beats an author-less one, then the older and
// lower-numbered record wins.
func moreCanonical(a, b *domain.Book) bool {
	if (a.OpenLibraryURL != "") != (b.OpenLibraryURL != "") {
		return a.OpenLibraryURL != ""
	}
	if a.Cover.HasImage() != b.Cover.HasImage() {
		return a.Cover.HasImage()
	}
	if (a.AuthorLower != "") != (b.AuthorLower != "") {
		return a.AuthorLower != ""
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func normalizeURL(url string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(url)), "/")
}
