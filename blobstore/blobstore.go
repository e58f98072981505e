// Package blobstore stores uploaded media on the local filesystem and
// resolves public URLs for it. It stands in for the site's managed object
// storage: put an object under a key, get its public URL, delete it by key
// or by URL.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes objects under root and serves them below baseURL.
type Store struct {
	root    string
	baseURL string
}

// New creates a Store rooted at dir. baseURL is the public prefix the
// objects are served under (e.g. "https://site.example/media").
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	return &Store{root: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the filesystem root, for wiring a static file route.
func (s *Store) Dir() string {
	return s.root
}

// Put writes data under key and returns the key as the object reference.
// Keys may contain slashes; parent directories are created as needed.
func (s *Store) Put(key string, data []byte) (string, error) {
	key = cleanKey(key)
	if key == "" {
		return "", fmt.Errorf("blobstore: empty object key")
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blobstore: create dir for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blobstore: write %s: %w", key, err)
	}
	return key, nil
}

// PublicURL returns the public URL for an object reference.
func (s *Store) PublicURL(ref string) string {
	return s.baseURL + "/" + cleanKey(ref)
}

// Delete removes an object by reference or public URL. Unknown references
// are tolerated: deleting something that is already gone is not an error.
func (s *Store) Delete(refOrURL string) error {
	key := s.keyFor(refOrURL)
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	return nil
}

// Hosts reports whether url points into this store. Stale-image cleanup
// only touches objects we host; user-supplied external URLs are left alone.
func (s *Store) Hosts(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}

func (s *Store) keyFor(refOrURL string) string {
	if k, ok := strings.CutPrefix(refOrURL, s.baseURL+"/"); ok {
		return cleanKey(k)
	}
	return cleanKey(refOrURL)
}

// cleanKey normalizes a key and refuses path escapes.
func cleanKey(key string) string {
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return ""
	}
	return cleaned
}
