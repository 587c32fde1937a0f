package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

// Columns maps the logical row fields to the header names used in the
// worksheet, so sheets with different headers work without code changes.
type Columns struct {
	Date              string
	Time              string
	Text              string
	Hashtags          string
	HashtagsInCaption string
	Status            string
	ImageURLs         string
	VideoURLs         string
	LocalImagePaths   string
	LocalVideoPaths   string
	PostToInstagram   string
	PostToThreads     string
	TextOnly          string
}

type Config struct {
	GraphAPIBaseURL   string
	GraphAPIVersion   string
	ThreadsAPIBaseURL string
	ThreadsAPIVersion string

	InstagramRefreshURL string
	ThreadsRefreshURL   string

	GoogleCredentialsFile string
	SpreadsheetID         string
	WorksheetName         string
	Columns               Columns

	R2 R2

	TokenFilePath string
	CacheFilePath string
	LockFilePath  string
	LockTTL       time.Duration

	// FetchSchedule lists the HH:MM times at which a fresh sheet fetch is
	// due; between them the local cache feeds the pipeline.
	FetchSchedule []string

	PollInterval    time.Duration
	PollMaxAttempts int
	CommentDelay    time.Duration

	ListenAddr string
}

func LoadConfig() *Config {
	return &Config{
		GraphAPIBaseURL:   getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/"),
		GraphAPIVersion:   getEnv("GRAPH_API_VERSION", "v23.0"),
		ThreadsAPIBaseURL: getEnv("THREADS_API_BASE_URL", "https://graph.threads.net/"),
		ThreadsAPIVersion: getEnv("THREADS_API_VERSION", "v1.0"),

		InstagramRefreshURL: getEnv("INSTAGRAM_REFRESH_URL", "https://graph.instagram.com/refresh_access_token"),
		ThreadsRefreshURL:   getEnv("THREADS_REFRESH_URL", "https://graph.threads.net/refresh_access_token"),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		WorksheetName:         getEnv("WORKSHEET_NAME", "Sheet1"),
		Columns: Columns{
			Date:              getEnv("DATE_COLUMN_NAME", "date"),
			Time:              getEnv("TIME_COLUMN_NAME", "time"),
			Text:              getEnv("TEXT_COLUMN_NAME", "text"),
			Hashtags:          getEnv("HASHTAGS_COLUMN_NAME", "hashtags"),
			HashtagsInCaption: getEnv("HASHTAGS_IN_CAPTION_COLUMN_NAME", "hashtags_with_text"),
			Status:            getEnv("STATUS_COLUMN_NAME", "status"),
			ImageURLs:         getEnv("IMAGE_URLS_COLUMN_NAME", "image_urls"),
			VideoURLs:         getEnv("VIDEO_URLS_COLUMN_NAME", "video_urls"),
			LocalImagePaths:   getEnv("LOCAL_IMAGE_PATH_COLUMN_NAME", "local_image_path"),
			LocalVideoPaths:   getEnv("LOCAL_VIDEO_PATH_COLUMN_NAME", "local_video_path"),
			PostToInstagram:   getEnv("INSTAGRAM_COLUMN_NAME", "post_to_instagram"),
			PostToThreads:     getEnv("THREADS_COLUMN_NAME", "post_to_threads"),
			TextOnly:          getEnv("TEXT_ONLY_COLUMN_NAME", "text_only"),
		},

		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},

		TokenFilePath: getEnv("TOKEN_FILE_PATH", "token_storage.json"),
		CacheFilePath: getEnv("CACHE_FILE_PATH", "post_cache.json"),
		LockFilePath:  getEnv("LOCK_FILE_PATH", "sheetcast.lock"),
		LockTTL:       getEnvDuration("LOCK_TTL", 30*time.Minute),

		FetchSchedule: getEnvList("FETCH_SCHEDULE", []string{"08:00", "13:00", "18:00"}),

		PollInterval:    getEnvDuration("POLL_INTERVAL", 5*time.Second),
		PollMaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 12),
		CommentDelay:    getEnvDuration("COMMENT_DELAY", 3*time.Second),

		ListenAddr: getEnv("LISTEN_ADDR", ":3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
