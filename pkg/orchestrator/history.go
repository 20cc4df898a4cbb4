package orchestrator

import (
	"context"

	"github.com/angelospk/subsubs/pkg/core/history"
)

// HistoryOutcome is the result of reading the download log.
type HistoryOutcome struct {
	Entries []history.Entry
	Err     error
}

// GetHistory lists the most recent downloads, newest first. limit is clamped to
// (0, 50].
func (o *Orchestrator) GetHistory(ctx context.Context, limit int) HistoryOutcome {
	entries, err := o.store.ListRecent(ctx, history.ClampLimit(limit))
	if err != nil {
		o.logger.WithError(err).Warn("Failed to read download history")
		return HistoryOutcome{Entries: []history.Entry{}, Err: err}
	}
	return HistoryOutcome{Entries: entries}
}
