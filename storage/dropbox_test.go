package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeDropbox struct {
	uploads      map[string][]byte
	failUpload   bool
	linkExists   bool
	deletedPaths []string
}

func newFakeDropbox() (*fakeDropbox, *httptest.Server, *httptest.Server) {
	f := &fakeDropbox{uploads: map[string][]byte{}}

	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/files/upload" {
			http.NotFound(w, r)
			return
		}
		if f.failUpload {
			http.Error(w, `{"error_summary":"path/insufficient_space"}`, http.StatusConflict)
			return
		}
		var arg struct {
			Path string `json:"path"`
		}
		_ = json.Unmarshal([]byte(r.Header.Get("Dropbox-API-Arg")), &arg)
		body, _ := io.ReadAll(r.Body)
		f.uploads[arg.Path] = body
		_ = json.NewEncoder(w).Encode(map[string]string{"path_lower": strings.ToLower(arg.Path)})
	}))

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var arg struct {
			Path string `json:"path"`
		}
		_ = json.NewDecoder(r.Body).Decode(&arg)

		switch r.URL.Path {
		case "/2/sharing/create_shared_link_with_settings":
			if f.linkExists {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error_summary":"shared_link_already_exists/.."}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url": "https://www.dropbox.com/s/abc" + arg.Path + "?dl=0",
			})
		case "/2/sharing/list_shared_links":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"links": []map[string]string{
					{"url": "https://www.dropbox.com/s/existing" + arg.Path + "?dl=0"},
				},
			})
		case "/2/files/delete_v2":
			f.deletedPaths = append(f.deletedPaths, arg.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{"metadata": map[string]string{"path_lower": arg.Path}})
		default:
			http.NotFound(w, r)
		}
	}))

	return f, api, content
}

func TestDropboxStore_Store(t *testing.T) {
	f, api, content := newFakeDropbox()
	defer api.Close()
	defer content.Close()
	s := NewDropboxStoreAt("tok", api.URL, content.URL)

	asset, err := s.Store(context.Background(), "My Poster.PNG", []byte("imagebytes"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasPrefix(asset.Path, "/events/") {
		t.Fatalf("path not under /events/: %s", asset.Path)
	}
	if !strings.HasSuffix(asset.Path, "-My_Poster.PNG") {
		t.Fatalf("filename not sanitized into path: %s", asset.Path)
	}
	if string(f.uploads[asset.Path]) != "imagebytes" {
		t.Fatalf("uploaded bytes not received for %s", asset.Path)
	}
	if !strings.Contains(asset.URL, "dl.dropboxusercontent.com") || !strings.Contains(asset.URL, "raw=1") {
		t.Fatalf("share URL not rewritten to direct form: %s", asset.URL)
	}
}

func TestDropboxStore_ReusesExistingLink(t *testing.T) {
	f, api, content := newFakeDropbox()
	defer api.Close()
	defer content.Close()
	f.linkExists = true
	s := NewDropboxStoreAt("tok", api.URL, content.URL)

	asset, err := s.Store(context.Background(), "poster.png", []byte("x"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.Contains(asset.URL, "existing") {
		t.Fatalf("did not reuse the reported link: %s", asset.URL)
	}
}

func TestDropboxStore_UploadFailure(t *testing.T) {
	f, api, content := newFakeDropbox()
	defer api.Close()
	defer content.Close()
	f.failUpload = true
	s := NewDropboxStoreAt("tok", api.URL, content.URL)

	if _, err := s.Store(context.Background(), "poster.png", []byte("x")); err == nil {
		t.Fatal("upload failure did not surface")
	}
}

func TestDropboxStore_Delete(t *testing.T) {
	f, api, content := newFakeDropbox()
	defer api.Close()
	defer content.Close()
	s := NewDropboxStoreAt("tok", api.URL, content.URL)

	if err := s.Delete(context.Background(), "/events/1-poster.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.deletedPaths) != 1 || f.deletedPaths[0] != "/events/1-poster.png" {
		t.Fatalf("delete not forwarded: %v", f.deletedPaths)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("../evil name?.png"); got != ".._evil_name_.png" {
		t.Fatalf("sanitizeFilename: %q", got)
	}
	if got := sanitizeFilename(""); got != "poster" {
		t.Fatalf("empty name fallback: %q", got)
	}
}
