package server

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/angelospk/subsubs/pkg/core/history"
	"github.com/angelospk/subsubs/pkg/core/metadata"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/orchestrator"
	"github.com/labstack/echo/v4"
)

// HistoryWarningHeader is set on a successful download whose history write failed.
const HistoryWarningHeader = "X-History-Warning"

type searchRequest struct {
	Query string `json:"query"`
}

// resultView is a ranked record plus display details.
type resultView struct {
	opensubtitles.SubtitleRecord
	Details metadata.Details `json:"details"`
}

type searchResponse struct {
	State   orchestrator.SearchState `json:"state"`
	Query   string                   `json:"query"`
	Results []resultView             `json:"results"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Advice  string `json:"advice,omitempty"`
}

func (s *Server) search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	outcome := s.service.SubmitSearch(c.Request().Context(), orchestrator.NewSession(), req.Query)
	if outcome.Err != nil {
		return c.JSON(statusFor(outcome.Err), newErrorResponse(outcome.Err))
	}

	results := make([]resultView, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		results = append(results, resultView{
			SubtitleRecord: r,
			Details:        metadata.Describe(r.Release, r.Language, r.HearingImpaired),
		})
	}
	return c.JSON(http.StatusOK, searchResponse{State: outcome.State, Query: outcome.Query, Results: results})
}

func (s *Server) download(c echo.Context) error {
	var record opensubtitles.SubtitleRecord
	if err := c.Bind(&record); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if msg := validateRecord(record); msg != "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
	}

	outcome := s.service.SubmitDownload(c.Request().Context(), record)
	if outcome.State != orchestrator.DownloadCompleted {
		resp := newErrorResponse(outcome.Err)
		resp.Advice = outcome.Advice
		return c.JSON(statusFor(outcome.Err), resp)
	}

	if outcome.HistoryErr != nil {
		c.Response().Header().Set(HistoryWarningHeader, "download succeeded but was not recorded in history")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": outcome.FileName}))
	return c.Blob(http.StatusOK, "application/x-subrip", outcome.Content)
}

func (s *Server) history(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		}
		limit = n
	}

	outcome := s.service.GetHistory(c.Request().Context(), limit)
	if outcome.Err != nil {
		return c.JSON(statusFor(outcome.Err), newErrorResponse(outcome.Err))
	}
	if outcome.Entries == nil {
		outcome.Entries = []history.Entry{}
	}
	return c.JSON(http.StatusOK, outcome.Entries)
}

// Bounds on the client-supplied fields that end up in the history log.
const (
	maxRecordIDLength       = 64
	maxRecordLanguageLength = 16
	maxRecordTextLength     = 512
)

// validateRecord rejects records that could not have come from a search response.
// It returns an empty string when the record is acceptable.
func validateRecord(r opensubtitles.SubtitleRecord) string {
	if len(r.FileIDs) > 0 && r.FileIDs[0] <= 0 {
		return "file_ids must be positive"
	}
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"id", r.ID, maxRecordIDLength},
		{"language", r.Language, maxRecordLanguageLength},
		{"movie_title", r.MovieTitle, maxRecordTextLength},
		{"release", r.Release, maxRecordTextLength},
	}
	for _, f := range fields {
		if len(f.value) > f.max {
			return f.name + " is too long"
		}
		if strings.IndexFunc(f.value, unicode.IsControl) >= 0 {
			return f.name + " contains control characters"
		}
	}
	return ""
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var storeErr *coreErrors.StoreError
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, orchestrator.ErrEmptyQuery), errors.Is(err, orchestrator.ErrNoFiles):
		return http.StatusBadRequest
	case coreErrors.IsConfiguration(err):
		return http.StatusInternalServerError
	case coreErrors.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	}
	if _, ok := coreErrors.AsUpstream(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func newErrorResponse(err error) errorResponse {
	if err == nil {
		return errorResponse{Error: "unknown error"}
	}
	if coreErrors.IsConfiguration(err) {
		return errorResponse{Error: "subtitle service is not configured"}
	}
	if coreErrors.IsUnavailable(err) {
		return errorResponse{Error: "subtitle service is unreachable"}
	}
	if upErr, ok := coreErrors.AsUpstream(err); ok {
		return errorResponse{Error: "upstream error", Status: upErr.Status, Message: upErr.Message}
	}
	var storeErr *coreErrors.StoreError
	if errors.As(err, &storeErr) {
		return errorResponse{Error: "download history is unavailable"}
	}
	return errorResponse{Error: err.Error()}
}
