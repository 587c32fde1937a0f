package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sheetcast/sheetcast/internal/repository"
)

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// refreshLongLivedToken exchanges a platform's current long-lived token for
// a fresh one and stores it back, keeping the account ID unchanged.
func refreshLongLivedToken(ctx context.Context, client *http.Client, endpoint, grantType, platform string, tokens repository.TokenRepository) error {
	creds, err := tokens.Get(platform)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s?grant_type=%s&access_token=%s", endpoint, grantType, url.QueryEscape(creds.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to refresh %s token: %w", platform, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh rejected for %s: %s (status code: %d)", platform, body, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("no access token returned for %s", platform)
	}

	err = tokens.Save(platform, &repository.Credentials{
		AccessToken: result.AccessToken,
		ExpiryDate:  GetExpiresAt(result.ExpiresIn),
		AccountID:   creds.AccountID,
	})
	if err != nil {
		return err
	}
	slog.Info("refreshed long-lived token", "platform", platform)
	return nil
}
