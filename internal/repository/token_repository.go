package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrNoToken signals that no usable credentials exist for a platform. The
// caller skips that platform for the run; the other platform is unaffected.
var ErrNoToken = errors.New("no stored credentials for platform")

// Credentials is one platform entry in the token storage file.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiryDate  time.Time `json:"expiry_date"`
	AccountID   string    `json:"account_id"`
}

type TokenRepository interface {
	Get(platform string) (*Credentials, error)
	Save(platform string, creds *Credentials) error
	List() (map[string]*Credentials, error)
}

type fileTokenRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenRepository(path string) TokenRepository {
	return &fileTokenRepository{path: path}
}

func (r *fileTokenRepository) Get(platform string) (*Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.load()
	if err != nil {
		return nil, err
	}

	creds, ok := tokens[platform]
	if !ok || creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, platform)
	}
	return creds, nil
}

func (r *fileTokenRepository) Save(platform string, creds *Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.load()
	if err != nil {
		return err
	}
	tokens[platform] = creds

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

func (r *fileTokenRepository) List() (map[string]*Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// load tolerates a missing or empty file; the repository starts empty and
// fills in as platforms are authorized.
func (r *fileTokenRepository) load() (map[string]*Credentials, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Credentials{}, nil
		}
		return nil, fmt.Errorf("failed to read token storage: %w", err)
	}

	tokens := map[string]*Credentials{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token storage: %w", err)
	}
	return tokens, nil
}
