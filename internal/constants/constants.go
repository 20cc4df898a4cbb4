package constants

import "time"

// DefaultBaseURL is the standard base URL for the OpenSubtitles REST API.
const DefaultBaseURL = "https://api.opensubtitles.com/api/v1"

// DefaultUserAgent identifies this proxy to the upstream API.
const DefaultUserAgent = "subsubs v1.0"

// DefaultTimeout bounds every upstream round trip.
const DefaultTimeout = 30 * time.Second

// SubtitleExtension is appended to saved file names that lack it.
const SubtitleExtension = ".srt"

// MaxSearchResults is the fixed cap on ranked results (one upstream page).
const MaxSearchResults = 60

// MaxHistoryEntries caps every history listing.
const MaxHistoryEntries = 50

// MaxSubtitleBytes caps the size of a fetched subtitle file.
const MaxSubtitleBytes = 10 << 20
