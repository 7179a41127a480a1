package domain

import "fmt"

// Status is the reading status of a book in the library.
type Status string

// All statuses a book can carry. The zero value is not valid; new books
// default to StatusWishlist at the service boundary.
const (
	StatusWishlist     Status = "wishlist"
	StatusLibrary      Status = "library"
	StatusReading      Status = "reading"
	StatusReReading    Status = "re-reading"
	StatusOnHold       Status = "on-hold"
	StatusFinished     Status = "finished"
	StatusDidNotFinish Status = "did-not-finish"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusWishlist,
	StatusLibrary,
	StatusReading,
	StatusReReading,
	StatusOnHold,
	StatusFinished,
	StatusDidNotFinish,
}

var statusLabels = map[Status]string{
	StatusWishlist:     "Wishlist",
	StatusLibrary:      "Library",
	StatusReading:      "Reading",
	StatusReReading:    "Re-reading",
	StatusOnHold:       "On Hold",
	StatusFinished:     "Finished",
	StatusDidNotFinish: "Did Not Finish",
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q", raw)
	}
	return s, nil
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-readable form of the status, or the raw value
// for statuses written by older versions.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	if s == "" {
		return "—"
	}
	return string(s)
}
