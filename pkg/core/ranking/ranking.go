// Package ranking orders search results for presentation.
package ranking

import (
	"sort"

	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
)

// IsEnglish reports whether a language code is one of the preferred English codes.
// The match is exact; "EN" or "en-GB" are not preferred.
func IsEnglish(language string) bool {
	return language == "en" || language == "en-US"
}

// Rank returns a new slice ordered English-first, then by download count descending.
// The sort is stable: records equal on both keys keep their input order.
// The input slice is not modified.
func Rank(records []opensubtitles.SubtitleRecord) []opensubtitles.SubtitleRecord {
	ranked := make([]opensubtitles.SubtitleRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		ei, ej := IsEnglish(ranked[i].Language), IsEnglish(ranked[j].Language)
		if ei != ej {
			return ei
		}
		return ranked[i].DownloadCount > ranked[j].DownloadCount
	})
	return ranked
}
