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

// InstagramService publishes rows through the Instagram Graph container
// API. Feed posts always carry media; single items get their caption at
// container creation, carousels attach it to the parent container.
type InstagramService interface {
	Publisher
	RefreshToken(ctx context.Context) error
}

type instagramService struct {
	cfg      config.Config
	tokens   repository.TokenRepository
	resolver MediaResolver
	client   *graphClient
}

func NewInstagramService(cfg config.Config, tokens repository.TokenRepository, resolver MediaResolver) InstagramService {
	return &instagramService{
		cfg:      cfg,
		tokens:   tokens,
		resolver: resolver,
		client:   newGraphClient(cfg.GraphAPIBaseURL, cfg.GraphAPIVersion, "status_code", cfg.PollInterval, cfg.PollMaxAttempts),
	}
}

func (s *instagramService) Platform() string {
	return models.PlatformInstagram
}

func (s *instagramService) Publish(ctx context.Context, row *models.PostRow) (string, error) {
	creds, err := s.tokens.Get(models.PlatformInstagram)
	if err != nil {
		return "", err
	}

	caption, items, err := s.resolver.Resolve(ctx, row, ResolveOptions{
		RequireMedia:  true,
		EnforceAspect: true,
	})
	if err != nil {
		return "", err
	}

	var containerID string
	if len(items) == 1 {
		containerID, err = s.createSingleContainer(ctx, creds, items[0], caption)
	} else {
		containerID, err = s.createCarouselContainer(ctx, creds, items, caption)
	}
	if err != nil {
		return "", err
	}

	postID, err := s.publishContainer(ctx, creds, containerID)
	if err != nil {
		return "", err
	}
	slog.Info("published to instagram", "row", row.RowNumber, "post_id", postID)

	s.maybeCommentHashtags(ctx, creds, row, postID)
	return postID, nil
}

func (s *instagramService) createSingleContainer(ctx context.Context, creds *repository.Credentials, item models.MediaItem, caption string) (string, error) {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("caption", caption)
	if item.Kind == models.MediaKindVideo {
		params.Set("media_type", "REELS")
		params.Set("video_url", item.URL)
	} else {
		params.Set("image_url", item.URL)
	}

	containerID, err := s.client.postForID(ctx, creds.AccountID+"/media", params)
	if err != nil {
		return "", fmt.Errorf("error creating media container: %w", err)
	}
	if err := s.client.pollContainer(ctx, containerID, creds.AccessToken); err != nil {
		return "", err
	}
	return containerID, nil
}

// createCarouselContainer creates one child container per media item, waits
// for each to finish, then creates the parent. Any child failure aborts the
// row before the parent create is ever issued.
func (s *instagramService) createCarouselContainer(ctx context.Context, creds *repository.Credentials, items []models.MediaItem, caption string) (string, error) {
	childIDs := make([]string, 0, len(items))
	for _, item := range items {
		params := url.Values{}
		params.Set("access_token", creds.AccessToken)
		params.Set("is_carousel_item", "true")
		if item.Kind == models.MediaKindVideo {
			params.Set("media_type", "VIDEO")
			params.Set("video_url", item.URL)
		} else {
			params.Set("image_url", item.URL)
		}

		childID, err := s.client.postForID(ctx, creds.AccountID+"/media", params)
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
	params.Set("caption", caption)

	parentID, err := s.client.postForID(ctx, creds.AccountID+"/media", params)
	if err != nil {
		return "", fmt.Errorf("error creating carousel container: %w", err)
	}
	if err := s.client.pollContainer(ctx, parentID, creds.AccessToken); err != nil {
		return "", err
	}
	return parentID, nil
}

func (s *instagramService) publishContainer(ctx context.Context, creds *repository.Credentials, containerID string) (string, error) {
	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("creation_id", containerID)

	postID, err := s.client.postForID(ctx, creds.AccountID+"/media_publish", params)
	if err != nil {
		return "", fmt.Errorf("error publishing container: %w", err)
	}
	return postID, nil
}

// maybeCommentHashtags posts the hashtag block as the first comment when
// the row keeps hashtags out of the caption. Best effort: the main post
// already succeeded, a comment failure is only logged.
func (s *instagramService) maybeCommentHashtags(ctx context.Context, creds *repository.Credentials, row *models.PostRow, postID string) {
	if row.HashtagsInCaption {
		return
	}
	tags := utils.FormatHashtags(row.Hashtags)
	if tags == "" {
		return
	}

	// give the platform a moment to settle the new post
	s.client.sleep(s.cfg.CommentDelay)

	params := url.Values{}
	params.Set("access_token", creds.AccessToken)
	params.Set("message", tags)
	if _, err := s.client.postForID(ctx, postID+"/comments", params); err != nil {
		slog.Error("failed to post hashtag comment", "row", row.RowNumber, "post_id", postID, "error", err)
		return
	}
	slog.Info("posted hashtags as first comment", "row", row.RowNumber, "post_id", postID)
}

func (s *instagramService) RefreshToken(ctx context.Context) error {
	return refreshLongLivedToken(ctx, &http.Client{Timeout: s.client.http.Timeout},
		s.cfg.InstagramRefreshURL, "ig_refresh_token", models.PlatformInstagram, s.tokens)
}
