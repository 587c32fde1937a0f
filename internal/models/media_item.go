package models

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is a resolved media entry: a public URL plus its kind. Produced
// transiently by the media resolver, never persisted.
type MediaItem struct {
	Kind MediaKind
	URL  string
}

// Outcome records the result of one (row, platform) publish attempt.
type Outcome struct {
	RowNumber int    `json:"row_number"`
	Platform  string `json:"platform"`
	Success   bool   `json:"success"`
	PostID    string `json:"post_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
