package orchestrator

import (
	"context"
	"strings"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/core/ranking"
	"github.com/angelospk/subsubs/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

// SearchOutcome is the terminal result of one search sequence.
type SearchOutcome struct {
	State   SearchState
	Query   string
	Results []opensubtitles.SubtitleRecord
	Err     error
}

// SubmitSearch runs Idle → Searching → {Displaying, Empty, Failed} for query and
// records the result in session. A blank query leaves the session untouched and
// never reaches upstream.
func (o *Orchestrator) SubmitSearch(ctx context.Context, session *Session, query string) SearchOutcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchOutcome{State: SearchIdle, Results: []opensubtitles.SubtitleRecord{}, Err: ErrEmptyQuery}
	}

	session.begin(query)
	logger := o.logger.WithField("query", query)
	logger.Debug("Searching subtitles")

	records, err := o.upstream.SearchSubtitles(ctx, query)
	if err != nil {
		logger.WithError(err).Warn("Subtitle search failed")
		return o.finishSearch(session, SearchOutcome{State: SearchFailed, Query: query, Results: []opensubtitles.SubtitleRecord{}, Err: err})
	}

	if len(records) == 0 {
		logger.Info("No subtitles found")
		return o.finishSearch(session, SearchOutcome{State: SearchEmpty, Query: query, Results: []opensubtitles.SubtitleRecord{}})
	}

	ranked := ranking.Rank(records)
	if len(ranked) > constants.MaxSearchResults {
		ranked = ranked[:constants.MaxSearchResults]
	}
	logger.WithFields(log.Fields{"received": len(records), "shown": len(ranked)}).Info("Subtitles found")
	return o.finishSearch(session, SearchOutcome{State: SearchDisplaying, Query: query, Results: ranked})
}

func (o *Orchestrator) finishSearch(session *Session, outcome SearchOutcome) SearchOutcome {
	session.finish(outcome.State, outcome.Results, outcome.Err)
	metrics.SearchesTotal.WithLabelValues(string(outcome.State)).Inc()
	outcome.Results = session.Results()
	return outcome
}
