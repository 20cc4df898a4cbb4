package history

import (
	"sort"
	"time"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/google/uuid"
)

// Entry is a persisted record of one completed download. Entries are created
// once per successful download and never mutated or deleted by this system.
type Entry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Year         string    `json:"year,omitempty"`
	IMDbID       string    `json:"imdbId,omitempty"`
	SubtitleID   string    `json:"subtitleId"`
	Language     string    `json:"language"`
	DownloadURL  string    `json:"downloadUrl"`
	FileName     string    `json:"fileName"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

// prepare fills in the identifier and timestamp when the caller left them empty.
func prepare(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DownloadedAt.IsZero() {
		e.DownloadedAt = time.Now()
	}
	e.DownloadedAt = e.DownloadedAt.UTC()
	return e
}

// ClampLimit bounds a requested listing size to (0, MaxHistoryEntries].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > constants.MaxHistoryEntries {
		return constants.MaxHistoryEntries
	}
	return limit
}

// newestFirst returns the most recent limit entries of an insertion-ordered slice,
// ordered by DownloadedAt descending with later insertions first on ties.
func newestFirst(entries []Entry, limit int) []Entry {
	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DownloadedAt.After(out[j].DownloadedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
