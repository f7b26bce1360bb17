// ABOUTME: Local cache for image replies referenced by URL
// ABOUTME: Downloads each image once and serves a file path thereafter
package media

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Cache fetches image reply URLs into a temp directory keyed by URL hash.
type Cache struct {
	dir    string
	client *http.Client
	log    zerolog.Logger
}

// NewCache creates the cache directory under the system temp dir.
func NewCache(log zerolog.Logger) (*Cache, error) {
	dir := filepath.Join(os.TempDir(), "voicelink-media")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media cache directory: %w", err)
	}

	return &Cache{
		dir:    dir,
		client: &http.Client{},
		log:    log.With().Str("component", "media").Logger(),
	}, nil
}

// Fetch returns a local file path for the image at url, downloading it on
// the first request. An empty url yields an empty path with no error.
func (c *Cache) Fetch(url string) (string, error) {
	if url == "" {
		return "", nil
	}

	hash := sha256.Sum256([]byte(url))
	name := fmt.Sprintf("%x%s", hash[:8], extension(url))
	path := filepath.Join(c.dir, name)

	if _, err := os.Stat(path); err == nil {
		c.log.Debug().Str("path", path).Msg("media cache hit")
		return path, nil
	}

	c.log.Info().Str("url", url).Msg("downloading image")
	resp, err := c.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed: HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return path, nil
}

// extension guesses the file extension from the URL path, defaulting to
// .jpg when the URL carries none.
func extension(url string) string {
	url = strings.Split(url, "?")[0]
	ext := filepath.Ext(url)
	if ext == "" {
		ext = ".jpg"
	}
	return ext
}

// Clear removes every cached image.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.dir)
}
