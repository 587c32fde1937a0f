package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/pkg/utils"
)

// ResolveOptions carries the per-platform media policy: whether the
// platform insists on at least one media item, whether local videos must
// satisfy the feed aspect-ratio constraint, and whether the row's text-only
// override applies.
type ResolveOptions struct {
	RequireMedia  bool
	EnforceAspect bool
	HonorTextOnly bool
}

// MediaResolver turns a row's raw media fields into the final caption and
// ordered media list for one platform. Any upload or transcode failure
// aborts the whole row for that platform: a post never goes out with
// missing promised media.
type MediaResolver interface {
	Resolve(ctx context.Context, row *models.PostRow, opts ResolveOptions) (string, []models.MediaItem, error)
}

type mediaService struct {
	uploader UploadService
	video    VideoService
}

func NewMediaService(uploader UploadService, video VideoService) MediaResolver {
	return &mediaService{uploader: uploader, video: video}
}

func (s *mediaService) Resolve(ctx context.Context, row *models.PostRow, opts ResolveOptions) (string, []models.MediaItem, error) {
	caption := BuildCaption(row)

	if opts.HonorTextOnly && row.TextOnly {
		if opts.RequireMedia {
			return "", nil, fmt.Errorf("row %d: text-only override set but platform requires media", row.RowNumber)
		}
		return caption, nil, nil
	}

	imageURLs := utils.SplitMediaRefs(row.ImageURLs)
	videoURLs := utils.SplitMediaRefs(row.VideoURLs)

	for _, localPath := range utils.SplitMediaRefs(row.LocalImagePaths) {
		url, err := s.uploader.UploadFile(ctx, localPath)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: failed to resolve local image: %w", row.RowNumber, err)
		}
		imageURLs = append(imageURLs, url)
	}

	for _, localPath := range utils.SplitMediaRefs(row.LocalVideoPaths) {
		url, err := s.resolveLocalVideo(ctx, localPath, opts.EnforceAspect)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: failed to resolve local video: %w", row.RowNumber, err)
		}
		videoURLs = append(videoURLs, url)
	}

	// Images first, then videos, each in encounter order; carousel child
	// order on the platform side follows this list.
	items := make([]models.MediaItem, 0, len(imageURLs)+len(videoURLs))
	for _, url := range imageURLs {
		items = append(items, models.MediaItem{Kind: models.MediaKindImage, URL: url})
	}
	for _, url := range videoURLs {
		items = append(items, models.MediaItem{Kind: models.MediaKindVideo, URL: url})
	}

	if len(items) == 0 && opts.RequireMedia {
		return "", nil, fmt.Errorf("row %d: no media items resolved but platform requires media", row.RowNumber)
	}
	return caption, items, nil
}

func (s *mediaService) resolveLocalVideo(ctx context.Context, localPath string, enforceAspect bool) (string, error) {
	uploadPath := localPath
	if enforceAspect {
		preparedPath, cleanup, err := s.video.EnsureAspect(ctx, localPath)
		if err != nil {
			return "", err
		}
		defer cleanup()
		uploadPath = preparedPath
	}
	return s.uploader.UploadFile(ctx, uploadPath)
}

// BuildCaption joins the trimmed body text and, when the row asks for
// hashtags in the caption, the normalized hashtag block, separated by a
// blank line.
func BuildCaption(row *models.PostRow) string {
	var parts []string
	if text := strings.TrimSpace(row.Text); text != "" {
		parts = append(parts, text)
	}
	if row.HashtagsInCaption {
		if tags := utils.FormatHashtags(row.Hashtags); tags != "" {
			parts = append(parts, tags)
		}
	}
	caption := strings.Join(parts, "\n\n")
	if caption == "" {
		slog.Warn("row resolved to an empty caption", "row", row.RowNumber)
	}
	return caption
}
