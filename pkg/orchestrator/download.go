package orchestrator

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/angelospk/subsubs/pkg/core/history"
	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

// DownloadState is a step of the download sequence.
type DownloadState string

const (
	DownloadIdle          DownloadState = "idle"
	DownloadLinkRequested DownloadState = "link_requested"
	DownloadFileFetching  DownloadState = "file_fetching"
	DownloadCompleted     DownloadState = "completed"
	DownloadFailed        DownloadState = "failed"
)

// DownloadRequest is what the download sequence needs from a chosen record.
type DownloadRequest struct {
	SubtitleID        string
	FileID            int
	Title             string
	Year              *int
	IMDbID            *int
	Language          string
	SuggestedFileName string
}

// NewDownloadRequest builds a request from record. Only the first file is used;
// records listing several files are downloaded as their first file.
func NewDownloadRequest(record opensubtitles.SubtitleRecord) (DownloadRequest, error) {
	if !record.Downloadable() {
		return DownloadRequest{}, ErrNoFiles
	}
	return DownloadRequest{
		SubtitleID:        record.ID,
		FileID:            record.FileIDs[0],
		Title:             record.MovieTitle,
		Year:              record.Year,
		IMDbID:            record.IMDbID,
		Language:          record.Language,
		SuggestedFileName: record.Release,
	}, nil
}

// historyWriteTimeout bounds the history append that follows a completed fetch.
const historyWriteTimeout = 10 * time.Second

// fallbackFileName is used when upstream does not name the file.
func (r DownloadRequest) fallbackFileName() string {
	if name := strings.TrimSpace(r.SuggestedFileName); name != "" {
		return name
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{strings.TrimSpace(r.Title), r.Language} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "subtitle"
	}
	return strings.Join(parts, ".")
}

// DownloadOutcome is the terminal result of one download sequence. On
// DownloadCompleted, Content and FileName are set; HistoryErr reports a failed
// history write without failing the download.
type DownloadOutcome struct {
	State      DownloadState
	FileName   string
	Content    []byte
	Link       *opensubtitles.DownloadLink
	Entry      *history.Entry
	HistoryErr error
	Advice     string
	Err        error
}

// NormalizeFileName returns name with the subtitle extension appended when it
// does not already end with it. An empty name is replaced by fallback first.
// The extension check is case-sensitive.
func NormalizeFileName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	if !strings.HasSuffix(name, constants.SubtitleExtension) {
		name += constants.SubtitleExtension
	}
	return name
}

// SubmitDownload runs Idle → LinkRequested → FileFetching → Completed for record,
// or stops at Failed. There is exactly one attempt per step.
func (o *Orchestrator) SubmitDownload(ctx context.Context, record opensubtitles.SubtitleRecord) DownloadOutcome {
	req, err := NewDownloadRequest(record)
	if err != nil {
		return o.finishDownload(DownloadOutcome{State: DownloadFailed, Err: err})
	}

	logger := o.logger.WithFields(log.Fields{"subtitle_id": req.SubtitleID, "file_id": req.FileID})
	logger.WithField("state", DownloadLinkRequested).Debug("Requesting download link")

	link, err := o.upstream.RequestDownloadLink(ctx, req.FileID)
	if err != nil {
		logger.WithError(err).Warn("Download link request failed")
		return o.finishDownload(DownloadOutcome{State: DownloadFailed, Advice: DownloadAdvice, Err: err})
	}
	logger.WithFields(log.Fields{"remaining": link.Remaining, "reset_time": link.ResetTime}).Debug("Download quota")

	logger.WithField("state", DownloadFileFetching).Debug("Fetching subtitle file")
	content, err := o.upstream.FetchFile(ctx, link.URL)
	if err != nil {
		logger.WithError(err).Warn("Subtitle file fetch failed")
		return o.finishDownload(DownloadOutcome{State: DownloadFailed, Link: link, Err: err})
	}

	outcome := DownloadOutcome{
		State:    DownloadCompleted,
		FileName: NormalizeFileName(link.FileName, req.fallbackFileName()),
		Content:  content,
		Link:     link,
	}

	// The file is already fetched, so the entry must be written even if the
	// caller has gone away.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	entry, err := o.store.Append(appendCtx, history.Entry{
		Title:        req.Title,
		Year:         optionalInt(req.Year),
		IMDbID:       optionalInt(req.IMDbID),
		SubtitleID:   req.SubtitleID,
		Language:     req.Language,
		DownloadURL:  link.URL,
		FileName:     outcome.FileName,
		DownloadedAt: o.now(),
	})
	metrics.HistoryWrite(err)
	if err != nil {
		logger.WithError(err).Error("Failed to record download history")
		outcome.HistoryErr = err
	} else {
		outcome.Entry = &entry
	}

	logger.WithFields(log.Fields{"file_name": outcome.FileName, "bytes": len(content)}).Info("Subtitle downloaded")
	return o.finishDownload(outcome)
}

func (o *Orchestrator) finishDownload(outcome DownloadOutcome) DownloadOutcome {
	metrics.DownloadsTotal.WithLabelValues(string(outcome.State)).Inc()
	return outcome
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
