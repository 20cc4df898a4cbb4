package orchestrator

import (
	"sync"

	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
)

// SearchState is a step of the search sequence.
type SearchState string

const (
	SearchIdle       SearchState = "idle"
	SearchSearching  SearchState = "searching"
	SearchDisplaying SearchState = "displaying"
	SearchEmpty      SearchState = "empty"
	SearchFailed     SearchState = "failed"
)

// Session is the state of one user's search: the query, where the sequence
// stands and the ranked list on display. Create one per user; never share it.
type Session struct {
	mu      sync.RWMutex
	query   string
	state   SearchState
	results []opensubtitles.SubtitleRecord
	err     error
}

// NewSession returns an idle session with no results.
func NewSession() *Session {
	return &Session{state: SearchIdle, results: []opensubtitles.SubtitleRecord{}}
}

func (s *Session) State() SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Err is the failure of the last search, if it failed.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Results returns a copy of the displayed ranked list.
func (s *Session) Results() []opensubtitles.SubtitleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]opensubtitles.SubtitleRecord, len(s.results))
	copy(out, s.results)
	return out
}

// Record returns the displayed result at index i.
func (s *Session) Record(i int) (opensubtitles.SubtitleRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.results) {
		return opensubtitles.SubtitleRecord{}, false
	}
	return s.results[i], true
}

func (s *Session) begin(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.state = SearchSearching
	s.results = []opensubtitles.SubtitleRecord{}
	s.err = nil
}

func (s *Session) finish(state SearchState, results []opensubtitles.SubtitleRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.results = results
	s.err = err
}
