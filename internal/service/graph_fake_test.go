package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	config "github.com/sheetcast/sheetcast/configs"
	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/internal/repository"
)

type graphRequest struct {
	Method string
	Path   string // path with the version prefix stripped
	Query  url.Values
}

// fakeGraph simulates the container/publish dialect both platform APIs
// speak: container creation returns sequential ids, status polls serve a
// configurable state sequence, publish returns a post id.
type fakeGraph struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []graphRequest
	statuses map[string][]string
	idSeq    int
	postSeq  int
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()
	f := &fakeGraph{statuses: map[string][]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGraph) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// strip "/<version>/"
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	path := ""
	if len(parts) == 2 {
		path = parts[1]
	}
	f.requests = append(f.requests, graphRequest{Method: r.Method, Path: path, Query: r.URL.Query()})

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && (strings.HasSuffix(path, "/media") || strings.HasSuffix(path, "/threads")):
		f.idSeq++
		json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("c%d", f.idSeq)})

	case r.Method == http.MethodPost && (strings.HasSuffix(path, "/media_publish") || strings.HasSuffix(path, "/threads_publish")):
		f.postSeq++
		json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("post-%d", f.postSeq)})

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/comments"):
		json.NewEncoder(w).Encode(map[string]string{"id": "comment-1"})

	case r.Method == http.MethodGet:
		state := "FINISHED"
		if seq := f.statuses[path]; len(seq) > 0 {
			state, f.statuses[path] = seq[0], seq[1:]
		}
		resp := map[string]string{"status_code": state, "status": state}
		if state == "ERROR" {
			resp["error_message"] = "media rejected by platform"
		}
		json.NewEncoder(w).Encode(resp)

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown endpoint " + path})
	}
}

// setStatuses queues the poll states served for a container id before the
// default FINISHED kicks in.
func (f *fakeGraph) setStatuses(containerID string, states ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[containerID] = states
}

func (f *fakeGraph) recorded() []graphRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]graphRequest{}, f.requests...)
}

func (f *fakeGraph) byPathSuffix(suffix string) []graphRequest {
	var out []graphRequest
	for _, req := range f.recorded() {
		if strings.HasSuffix(req.Path, suffix) {
			out = append(out, req)
		}
	}
	return out
}

func testConfig(serverURL string) config.Config {
	return config.Config{
		GraphAPIBaseURL:   serverURL + "/",
		GraphAPIVersion:   "v23.0",
		ThreadsAPIBaseURL: serverURL + "/",
		ThreadsAPIVersion: "v1.0",
		PollInterval:      time.Millisecond,
		PollMaxAttempts:   3,
		CommentDelay:      0,
	}
}

func testTokens(t *testing.T, platform string) repository.TokenRepository {
	t.Helper()
	repo := repository.NewFileTokenRepository(t.TempDir() + "/token_storage.json")
	err := repo.Save(platform, &repository.Credentials{
		AccessToken: "test-token",
		ExpiryDate:  time.Now().Add(24 * time.Hour),
		AccountID:   "acct",
	})
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

type fakeResolver struct {
	caption  string
	items    []models.MediaItem
	err      error
	lastOpts ResolveOptions
}

func (f *fakeResolver) Resolve(ctx context.Context, row *models.PostRow, opts ResolveOptions) (string, []models.MediaItem, error) {
	f.lastOpts = opts
	if f.err != nil {
		return "", nil, f.err
	}
	return f.caption, f.items, nil
}
