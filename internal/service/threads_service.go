package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/sheetcast/sheetcast/configs"
	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/internal/repository"
	"github.com/sheetcast/sheetcast/pkg/utils"
)

// ThreadsService publishes rows through the Threads container API. Unlike
// the Instagram feed, Threads accepts pure text posts: a TEXT container is
// immediately publishable without polling. Hashtag replies are posted as a
// TEXT container chained to the published post.
type ThreadsService interface {
	Publisher
	RefreshToken(ctx context.Context) error
}

type threadsService struct {
	cfg      config.Config
	tokens   repository.TokenRepository
	resolver MediaResolver
	client   *graphClient
}

func NewThreadsService(cfg config.Config, tokens repository.TokenRepository, resolver MediaResolver) ThreadsService {
	return &threadsService{
		cfg:      cfg,
		tokens:   tokens,
		resolver: resolver,
		client:   newGraphClient(cfg.ThreadsAPIBaseURL, cfg.ThreadsAPIVersion, "status", cfg.PollInterval, cfg.PollMaxAttempts),
	}
}

func (s *threadsService) Platform() string {
	return models.PlatformThreads
}

func (s *threadsService) Publish(ctx context.Context, row *models.PostRow) (string, error) {
	creds, err := s.tokens.Get(models.PlatformThreads)
	if err != nil {
		return "", err
	}

	caption, items, err := s.resolver.Resolve(ctx, row, ResolveOptions{
		EnforceAspect: true,
		HonorTextOnly: true,
	})
	if err != nil {
		return "", err
	}

	var containerID string
	switch {
	case len(items) == 0:
		containerID, err = s.createTextContainer(ctx, creds, caption, "")
	case len(items) == 1:
		containerID, err = s.createMediaContainer(ctx, creds, items[0], caption)
	default:
		containerID, err = s.createCarouselContainer(ctx, creds, items, caption)
	}
	if err != nil {
		return "", err
	}

	postID, err := s.publishContainer(ctx, creds, containerID)
	if err != nil {
		return "", err
	}
	slog.Info("published to threads", "row", row.RowNumber, "post_id", postID)

	s.maybeReplyHashtags(ctx, creds, row, postID)
	return postID, nil
}

// createTextContainer stages a text-only post; replyTo chains it under an
// existing post. Text containers finish immediately, so no polling.
func (s *threadsService) createTextContainer(ctx context.Context, creds *repository.Credentials, text, replyTo string) (string, error) {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("media_type", "TEXT")
	params.Set("text", text)
	if replyTo != "" {
		params.Set("reply_to_id", replyTo)
	}

	containerID, err := s.client.postForID(ctx, creds.AccountID+"/threads", params)
	if err != nil {
		return "", fmt.Errorf("error creating text container: %w", err)
	}
	return containerID, nil
}

func (s *threadsService) createMediaContainer(ctx context.Context, creds *repository.Credentials, item models.MediaItem, caption string) (string, error) {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("text", caption)
	if item.Kind == models.MediaKindVideo {
		params.Set("media_type", "VIDEO")
		params.Set("video_url", item.URL)
	} else {
		params.Set("media_type", "IMAGE")
		params.Set("image_url", item.URL)
	}

	containerID, err := s.client.postForID(ctx, creds.AccountID+"/threads", params)
	if err != nil {
		return "", fmt.Errorf("error creating media container: %w", err)
	}
	if err := s.client.pollContainer(ctx, containerID, creds.AccessToken); err != nil {
		return "", err
	}
	return containerID, nil
}

func (s *threadsService) createCarouselContainer(ctx context.Context, creds *repository.Credentials, items []models.MediaItem, caption string) (string, error) {
	childIDs := make([]string, 0, len(items))
	for _, item := range items {
		params := url.Values{}
		params.Set("access_token", creds.AccessToken)
		params.Set("is_carousel_item", "true")
		if item.Kind == models.MediaKindVideo {
			params.Set("media_type", "VIDEO")
			params.Set("video_url", item.URL)
		} else {
			params.Set("media_type", "IMAGE")
			params.Set("image_url", item.URL)
		}

		childID, err := s.client.postForID(ctx, creds.AccountID+"/threads", params)
		if err != nil {
			return "", fmt.Errorf("error creating carousel child: %w", err)
		}
		if err := s.client.pollContainer(ctx, childID, creds.AccessToken); err != nil {
			return "", err
		}
		childIDs = append(childIDs, childID)
	}

	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("media_type", "CAROUSEL")
	params.Set("children", strings.Join(childIDs, ","))
	params.Set("text", caption)

	parentID, err := s.client.postForID(ctx, creds.AccountID+"/threads", params)
	if err != nil {
		return "", fmt.Errorf("error creating carousel container: %w", err)
	}
	if err := s.client.pollContainer(ctx, parentID, creds.AccessToken); err != nil {
		return "", err
	}
	return parentID, nil
}

func (s *threadsService) publishContainer(ctx context.Context, creds *repository.Credentials, containerID string) (string, error) {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("creation_id", containerID)

	postID, err := s.client.postForID(ctx, creds.AccountID+"/threads_publish", params)
	if err != nil {
		return "", fmt.Errorf("error publishing container: %w", err)
	}
	return postID, nil
}

// maybeReplyHashtags posts the hashtag block as a reply under the new post.
// Best effort, same as the Instagram first comment.
func (s *threadsService) maybeReplyHashtags(ctx context.Context, creds *repository.Credentials, row *models.PostRow, postID string) {
	if row.HashtagsInCaption {
		return
	}
	tags := utils.FormatHashtags(row.Hashtags)
	if tags == "" {
		return
	}

	s.client.sleep(s.cfg.CommentDelay)

	containerID, err := s.createTextContainer(ctx, creds, tags, postID)
	if err != nil {
		slog.Error("failed to create hashtag reply", "row", row.RowNumber, "post_id", postID, "error", err)
		return
	}
	if _, err := s.publishContainer(ctx, creds, containerID); err != nil {
		slog.Error("failed to publish hashtag reply", "row", row.RowNumber, "post_id", postID, "error", err)
		return
	}
	slog.Info("posted hashtags as reply", "row", row.RowNumber, "post_id", postID)
}

func (s *threadsService) RefreshToken(ctx context.Context) error {
	return refreshLongLivedToken(ctx, &http.Client{Timeout: s.client.http.Timeout},
		s.cfg.ThreadsRefreshURL, "th_refresh_token", models.PlatformThreads, s.tokens)
}
