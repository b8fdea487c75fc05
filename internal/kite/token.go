package kite

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// TokenSource yields the current access token. Kite access tokens expire
// daily and are refreshed out of band by a login flow, so sources must
// tolerate the token changing between calls.
type TokenSource interface {
	AccessToken() (string, error)
}

// StaticTokenSource wraps a fixed token, typically from the environment.
type StaticTokenSource string

func (s StaticTokenSource) AccessToken() (string, error) {
	if s == "" {
		return "", errors.New("access token is empty")
	}
	return string(s), nil
}

// FileTokenSource reads the access token from a token.json written by the
// login flow. The parsed token is cached until the file changes on disk.
type FileTokenSource struct {
	path string

	mu      sync.Mutex
	token   string
	modTime time.Time
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{path: path}
}

func (f *FileTokenSource) AccessToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, err := os.Stat(f.path)
	if err != nil {
		return "", err
	}
	if f.token != "" && info.ModTime().Equal(f.modTime) {
		return f.token, nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	token := strings.TrimSpace(payload.AccessToken)
	if token == "" {
		return "", errors.New("token file has no access_token")
	}
	f.token = token
	f.modTime = info.ModTime()
	return token, nil
}
