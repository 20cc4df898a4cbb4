// Package orchestrator drives the search and download sequences on behalf of a
// caller and turns every failure into an outcome value.
package orchestrator

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/angelospk/subsubs/pkg/core/history"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrEmptyQuery rejects a search whose query is blank after trimming.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrNoFiles rejects a download for a record without file identifiers.
	ErrNoFiles = errors.New("subtitle has no downloadable files")
)

// DownloadAdvice accompanies every failed download-link request. It is a hint,
// not a diagnosis.
const DownloadAdvice = "A VIP account or a different API credential may be required."

// Upstream is the subset of the OpenSubtitles client the orchestrator needs.
type Upstream interface {
	SearchSubtitles(ctx context.Context, query string) ([]opensubtitles.SubtitleRecord, error)
	RequestDownloadLink(ctx context.Context, fileID int) (*opensubtitles.DownloadLink, error)
	FetchFile(ctx context.Context, link string) ([]byte, error)
}

// Ensure the real client satisfies Upstream
var _ Upstream = (*opensubtitles.Client)(nil)

// Orchestrator coordinates the upstream client, the ranker and the history store.
// It holds no per-user state; that lives in Session.
type Orchestrator struct {
	upstream Upstream
	store    history.Store
	logger   *log.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the clock used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator. A nil store falls back to an in-memory log and a
// nil logger to an info-level text logger on stdout.
func New(upstream Upstream, store history.Store, logger *log.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.TextFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(log.InfoLevel)
	}
	if store == nil {
		store = history.NewMemoryStore()
	}
	o := &Orchestrator{
		upstream: upstream,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
