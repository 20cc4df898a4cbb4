// Package metadata derives display details from the labels OpenSubtitles attaches
// to subtitles. Nothing here influences ranking or downloads.
package metadata

import (
	"strings"

	ptn "github.com/razsteinmetz/go-ptn"
	log "github.com/sirupsen/logrus"
)

// ReleaseInfo holds what can be parsed out of a scene release label such as
// "Inception.2010.1080p.BluRay.x264-SPARKS".
type ReleaseInfo struct {
	Title        string `json:"title,omitempty"`
	Year         int    `json:"year,omitempty"`
	Season       int    `json:"season,omitempty"`
	Episode      int    `json:"episode,omitempty"`
	Resolution   string `json:"resolution,omitempty"` // e.g., "1080p", "720p"
	Source       string `json:"source,omitempty"`     // e.g., "BluRay", "WEB-DL"
	ReleaseGroup string `json:"release_group,omitempty"`
}

// Details is the presentation summary shown next to a search result.
type Details struct {
	LanguageName    string      `json:"language_name"`
	Release         ReleaseInfo `json:"release"`
	HearingImpaired bool        `json:"hearing_impaired,omitempty"`
	Forced          bool        `json:"forced,omitempty"`
}

// ParseRelease parses a release label. Unparseable labels yield a ReleaseInfo whose
// Title is the label with dots and underscores turned into spaces.
func ParseRelease(release string) ReleaseInfo {
	release = strings.TrimSpace(release)
	if release == "" {
		return ReleaseInfo{}
	}

	parsed, err := ptn.Parse(release)
	if err != nil || parsed == nil {
		log.WithError(err).WithField("release", release).Debug("Failed to parse release label")
		return ReleaseInfo{Title: strings.Join(strings.FieldsFunc(release, isSeparator), " ")}
	}

	return ReleaseInfo{
		Title:        parsed.Title,
		Year:         parsed.Year,
		Season:       parsed.Season,
		Episode:      parsed.Episode,
		Resolution:   parsed.Resolution,
		Source:       parsed.Quality,
		ReleaseGroup: parsed.Group,
	}
}

// AnalyzeReleaseFlags checks a label for common Hearing Impaired (HI/SDH) or
// Forced markers.
func AnalyzeReleaseFlags(release string) (isHI bool, isForced bool) {
	hiTerms := map[string]struct{}{"hi": {}, "sdh": {}, "hearingimpaired": {}}
	forcedTerms := map[string]struct{}{"forced": {}, "frc": {}}

	for _, part := range strings.FieldsFunc(strings.ToLower(release), isSeparator) {
		if _, ok := hiTerms[part]; ok {
			isHI = true
		}
		if _, ok := forcedTerms[part]; ok {
			isForced = true
		}
		if isHI && isForced {
			break
		}
	}
	return isHI, isForced
}

// Describe builds the display details for one result. hearingImpaired is the
// upstream flag; label markers can only add to it.
func Describe(release, language string, hearingImpaired bool) Details {
	hi, forced := AnalyzeReleaseFlags(release)
	return Details{
		LanguageName:    LanguageName(language),
		Release:         ParseRelease(release),
		HearingImpaired: hearingImpaired || hi,
		Forced:          forced,
	}
}

func isSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-' || r == ' '
}
