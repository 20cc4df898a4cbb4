package opensubtitles

// --- Wire Types ---
// Only the fields this proxy reads are modelled; unknown fields are ignored by encoding/json.

// SearchSubtitlesParams defines query parameters for the /subtitles endpoint.
type SearchSubtitlesParams struct {
	Query     string `url:"query"`
	Languages string `url:"languages,omitempty"` // Comma-separated language codes
}

// SubtitleSearchResponse wraps the paginated subtitle results.
type SubtitleSearchResponse struct {
	TotalPages int        `json:"total_pages"`
	TotalCount int        `json:"total_count"`
	PerPage    int        `json:"per_page"`
	Page       int        `json:"page"`
	Data       []Subtitle `json:"data"`
}

// Subtitle represents a single subtitle entry.
type Subtitle struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"` // e.g., "subtitle"
	Attributes SubtitleAttributes `json:"attributes"`
}

// SubtitleAttributes contains the details of a subtitle.
type SubtitleAttributes struct {
	SubtitleID      string         `json:"subtitle_id"`
	Language        string         `json:"language"`
	DownloadCount   int            `json:"download_count"`
	HearingImpaired bool           `json:"hearing_impaired"`
	Ratings         float64        `json:"ratings"`
	FromTrusted     bool           `json:"from_trusted"`
	Release         string         `json:"release"`
	FeatureDetails  FeatureInfo    `json:"feature_details"`
	Files           []SubtitleFile `json:"files"`
}

// FeatureInfo contains details about the feature associated with the subtitle.
type FeatureInfo struct {
	FeatureID   int    `json:"feature_id"`
	FeatureType string `json:"feature_type"` // Movie, Episode
	Year        *int   `json:"year"`         // Pointer as can be null
	Title       string `json:"title"`
	MovieName   string `json:"movie_name"`
	IMDbID      *int   `json:"imdb_id"` // Pointer as can be null
}

// SubtitleFile represents a file associated with a subtitle entry.
type SubtitleFile struct {
	FileID   int    `json:"file_id"` // **ID needed for download**
	CDNumber int    `json:"cd_number"`
	FileName string `json:"file_name"`
}

// DownloadRequest is the request body for the /download endpoint.
type DownloadRequest struct {
	FileID int `json:"file_id"`
}

// DownloadResponse is the successful response from the /download endpoint.
type DownloadResponse struct {
	Link      string `json:"link"`
	FileName  string `json:"file_name"`
	Requests  int    `json:"requests"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
	ResetTime string `json:"reset_time"`
}

// --- Domain Types ---

// SubtitleRecord is one ranked search result as presented to callers.
// It is immutable once built and lives only for the duration of a search session.
type SubtitleRecord struct {
	ID              string  `json:"id"`
	Language        string  `json:"language"`
	Release         string  `json:"release"`
	MovieTitle      string  `json:"movie_title"`
	Year            *int    `json:"year,omitempty"`
	Rating          float64 `json:"rating"`
	DownloadCount   int     `json:"download_count"`
	IMDbID          *int    `json:"imdb_id,omitempty"`
	FileIDs         []int   `json:"file_ids"`
	FeatureType     string  `json:"feature_type,omitempty"`
	HearingImpaired bool    `json:"hearing_impaired,omitempty"`
	FromTrusted     bool    `json:"from_trusted,omitempty"`
}

// Downloadable reports whether the record carries at least one file identifier.
func (r SubtitleRecord) Downloadable() bool {
	return len(r.FileIDs) > 0
}

// DownloadLink is the short-lived signed URL issued by the upstream API.
type DownloadLink struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"reset_time,omitempty"`
}
