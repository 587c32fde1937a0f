package models

const (
	PlatformInstagram = "instagram"
	PlatformThreads   = "threads"
)

const (
	StatusPending    = "Pending"
	StatusPublishing = "Publishing"
	StatusPublished  = "Published"
	StatusFailed     = "Failed"
	StatusDraft      = "Draft"
	StatusCancelled  = "Cancelled"
)

// PostRow is one schedulable unit read from the worksheet. The row is
// immutable for the duration of a run except for Status, which is written
// back through the row repository.
type PostRow struct {
	RowNumber         int    `json:"row_number"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Text              string `json:"text"`
	Hashtags          string `json:"hashtags"`
	HashtagsInCaption bool   `json:"hashtags_in_caption"`
	ImageURLs         string `json:"image_urls"`
	VideoURLs         string `json:"video_urls"`
	LocalImagePaths   string `json:"local_image_paths"`
	LocalVideoPaths   string `json:"local_video_paths"`
	PostToInstagram   bool   `json:"post_to_instagram"`
	PostToThreads     bool   `json:"post_to_threads"`
	TextOnly          bool   `json:"text_only"`
	Status            string `json:"status"`
}

// Platforms returns the platform names this row is flagged for, in a fixed
// order.
func (r *PostRow) Platforms() []string {
	var platforms []string
	if r.PostToInstagram {
		platforms = append(platforms, PlatformInstagram)
	}
	if r.PostToThreads {
		platforms = append(platforms, PlatformThreads)
	}
	return platforms
}
