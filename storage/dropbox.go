package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase     = "https://api.dropboxapi.com"
	defaultContentBase = "https://content.dropboxapi.com"
)

// DropboxStore stores poster images in a Dropbox app folder and serves them
// through shared links rewritten to their direct-content form.
type DropboxStore struct {
	token       string
	apiBase     string
	contentBase string
	client      *http.Client
}

func NewDropboxStore(token string) *DropboxStore {
	return &DropboxStore{
		token:       token,
		apiBase:     defaultAPIBase,
		contentBase: defaultContentBase,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewDropboxStoreAt points the client at alternative endpoints. Used by tests.
func NewDropboxStoreAt(token, apiBase, contentBase string) *DropboxStore {
	s := NewDropboxStore(token)
	s.apiBase = apiBase
	s.contentBase = contentBase
	return s
}

func (s *DropboxStore) Store(ctx context.Context, filename string, data []byte) (StoredAsset, error) {
	path := fmt.Sprintf("/events/%d-%s", time.Now().UnixNano(), sanitizeFilename(filename))

	if err := s.upload(ctx, path, data); err != nil {
		return StoredAsset{}, fmt.Errorf("dropbox upload: %w", err)
	}
	url, err := s.shareLink(ctx, path)
	if err != nil {
		return StoredAsset{}, fmt.Errorf("dropbox share link: %w", err)
	}
	return StoredAsset{URL: directURL(url), Path: path}, nil
}

func (s *DropboxStore) Delete(ctx context.Context, path string) error {
	body, _ := json.Marshal(map[string]string{"path": path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/2/files/delete_v2", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("delete", resp)
	}
	return nil
}

func (s *DropboxStore) upload(ctx context.Context, path string, data []byte) error {
	arg, _ := json.Marshal(map[string]any{"path": path, "mode": "add", "autorename": false})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.contentBase+"/2/files/upload", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("upload", resp)
	}
	return nil
}

// shareLink creates a shared link for path, falling back to the existing link
// when the store reports one was already issued.
func (s *DropboxStore) shareLink(ctx context.Context, path string) (string, error) {
	var created struct {
		URL string `json:"url"`
	}
	resp, err := s.apiPost(ctx, "/2/sharing/create_shared_link_with_settings", map[string]any{"path": path})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return "", err
		}
		return created.URL, nil
	}

	if resp.StatusCode == http.StatusConflict {
		raw, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(raw), "shared_link_already_exists") {
			return s.existingLink(ctx, path)
		}
	}
	return "", apiError("create shared link", resp)
}

func (s *DropboxStore) existingLink(ctx context.Context, path string) (string, error) {
	resp, err := s.apiPost(ctx, "/2/sharing/list_shared_links", map[string]any{"path": path, "direct_only": true})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("list shared links", resp)
	}

	var listed struct {
		Links []struct {
			URL string `json:"url"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return "", err
	}
	if len(listed.Links) == 0 {
		return "", fmt.Errorf("no shared link for %s", path)
	}
	return listed.Links[0].URL, nil
}

func (s *DropboxStore) apiPost(ctx context.Context, endpoint string, arg any) (*http.Response, error) {
	body, err := json.Marshal(arg)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	return s.client.Do(req)
}

func apiError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))
}

// directURL rewrites a www.dropbox.com share URL to its direct-content host
// so the browser renders the image instead of the preview page.
func directURL(url string) string {
	url = strings.Replace(url, "www.dropbox.com", "dl.dropboxusercontent.com", 1)
	return strings.Replace(url, "?dl=0", "?raw=1", 1)
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "poster"
	}
	return b.String()
}
