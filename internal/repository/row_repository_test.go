package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	config "github.com/sheetcast/sheetcast/configs"
)

func testColumns() config.Columns {
	return config.Columns{
		Date:              "date",
		Time:              "time",
		Text:              "text",
		Hashtags:          "hashtags",
		HashtagsInCaption: "hashtags_with_text",
		Status:            "status",
		ImageURLs:         "image_urls",
		VideoURLs:         "video_urls",
		LocalImagePaths:   "local_image_path",
		LocalVideoPaths:   "local_video_path",
		PostToInstagram:   "post_to_instagram",
		PostToThreads:     "post_to_threads",
		TextOnly:          "text_only",
	}
}

func TestMapRow(t *testing.T) {
	headers := []string{
		"date", "time", "text", "hashtags", "hashtags_with_text", "status",
		"image_urls", "video_urls", "local_image_path", "local_video_path",
		"post_to_instagram", "post_to_threads", "text_only",
	}
	record := []interface{}{
		"2026-08-29", "08:00", "hello world", "#go,#testing", "TRUE", "Pending",
		"https://cdn.example.com/a.jpg", "", "./b.jpg", "",
		"TRUE", "FALSE", "",
	}

	row := mapRow(testColumns(), headerIndex(headers), record, 2)

	assert.Equal(t, 2, row.RowNumber)
	assert.Equal(t, "2026-08-29", row.Date)
	assert.Equal(t, "08:00", row.Time)
	assert.Equal(t, "hello world", row.Text)
	assert.Equal(t, "#go,#testing", row.Hashtags)
	assert.True(t, row.HashtagsInCaption)
	assert.Equal(t, "Pending", row.Status)
	assert.Equal(t, "https://cdn.example.com/a.jpg", row.ImageURLs)
	assert.Equal(t, "./b.jpg", row.LocalImagePaths)
	assert.True(t, row.PostToInstagram)
	assert.False(t, row.PostToThreads)
	assert.False(t, row.TextOnly)
}

func TestMapRowShortRecord(t *testing.T) {
	headers := []string{"date", "time", "text", "status"}
	record := []interface{}{"2026-08-29"}

	row := mapRow(testColumns(), headerIndex(headers), record, 5)

	assert.Equal(t, "2026-08-29", row.Date)
	assert.Empty(t, row.Time)
	assert.Empty(t, row.Text)
	assert.Empty(t, row.Status)
}

func TestMapRowHeaderCaseInsensitive(t *testing.T) {
	headers := []string{"Date", "TIME", "Text", "Status"}
	record := []interface{}{"2026-08-29", "10:30", "caption", "Draft"}

	row := mapRow(testColumns(), headerIndex(headers), record, 3)

	assert.Equal(t, "2026-08-29", row.Date)
	assert.Equal(t, "10:30", row.Time)
	assert.Equal(t, "Draft", row.Status)
}

func TestA1Column(t *testing.T) {
	assert.Equal(t, "A", a1Column(0))
	assert.Equal(t, "F", a1Column(5))
	assert.Equal(t, "Z", a1Column(25))
	assert.Equal(t, "AA", a1Column(26))
	assert.Equal(t, "AZ", a1Column(51))
	assert.Equal(t, "BA", a1Column(52))
}
