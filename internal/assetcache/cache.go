package assetcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"instastudio/internal/fileutil"
	"instastudio/internal/logging"
)

const defaultDownloadTimeout = 60 * time.Second

// MediaTypeVideo and MediaTypeImage select the cached file extension.
const (
	MediaTypeVideo = "video"
	MediaTypeImage = "image"
)

// Cache is an append-only, content-addressed store of downloaded source
// media. Entries are keyed by a stable hash of the platform media id, so the
// same asset is downloaded at most once across jobs. Existing entries are
// never overwritten.
type Cache struct {
	dir    string
	client *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.WaitGroup
}

// Option customizes the cache.
type Option func(*Cache)

// WithHTTPClient overrides the default download client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.client = client
		}
	}
}

// New creates the cache directory if needed and returns a Cache rooted there.
func New(dir string, logger *slog.Logger, opts ...Option) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("asset cache: directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset cache: create directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Cache{
		dir:      dir,
		client:   &http.Client{Timeout: defaultDownloadTimeout},
		logger:   logging.NewComponentLogger(logger, "assetcache"),
		inflight: make(map[string]*sync.WaitGroup),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key derives the stable cache key for a platform media id.
func Key(mediaID string) string {
	sum := md5.Sum([]byte(mediaID))
	return hex.EncodeToString(sum[:])[:12]
}

// Path returns where the asset for mediaID lives, whether or not it exists.
func (c *Cache) Path(mediaID, mediaType string) string {
	return filepath.Join(c.dir, Key(mediaID)+extensionFor(mediaType))
}

// Has reports whether the asset is already cached.
func (c *Cache) Has(mediaID, mediaType string) bool {
	info, err := os.Stat(c.Path(mediaID, mediaType))
	return err == nil && info.Size() > 0
}

// Fetch returns the cached path for mediaID, downloading from url first when
// the asset is not yet present. Concurrent fetches of the same media id are
// coalesced into a single download.
func (c *Cache) Fetch(ctx context.Context, url, mediaID, mediaType string) (string, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return "", errors.New("asset cache: media id required")
	}
	path := c.Path(mediaID, mediaType)

	for {
		if c.Has(mediaID, mediaType) {
			return path, nil
		}

		c.mu.Lock()
		if wg, ok := c.inflight[path]; ok {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[path] = wg
		c.mu.Unlock()

		err := c.download(ctx, url, path)

		c.mu.Lock()
		delete(c.inflight, path)
		c.mu.Unlock()
		wg.Done()

		if err != nil {
			return "", err
		}
		return path, nil
	}
}

// CopyTo copies a cached asset to dst, verifying size after the copy.
func (c *Cache) CopyTo(mediaID, mediaType, dst string) error {
	src := c.Path(mediaID, mediaType)
	if !c.Has(mediaID, mediaType) {
		return fmt.Errorf("asset cache: %s not cached", mediaID)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("asset cache: create destination: %w", err)
	}
	return fileutil.CopyFileVerified(src, dst)
}

func (c *Cache) download(ctx context.Context, url, path string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("asset cache: download url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("asset cache: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("asset cache: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset cache: download: http %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".part-*")
	if err != nil {
		return fmt.Errorf("asset cache: temp file: %w", err)
	}
	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if err == nil {
			err = closeErr
		}
		return fmt.Errorf("asset cache: write body: %w", err)
	}
	if written == 0 {
		os.Remove(tmp.Name())
		return errors.New("asset cache: empty download")
	}

	// Another writer may have landed the asset while we downloaded; the
	// first write wins and ours is discarded.
	if info, statErr := os.Stat(path); statErr == nil && info.Size() > 0 {
		os.Remove(tmp.Name())
		return nil
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("asset cache: finalize: %w", err)
	}

	c.logger.Debug("asset cached",
		logging.String("path", path),
		logging.Int64("bytes", written),
	)
	return nil
}

func extensionFor(mediaType string) string {
	if strings.Contains(strings.ToLower(mediaType), "video") || strings.Contains(strings.ToLower(mediaType), "reel") {
		return ".mp4"
	}
	return ".jpg"
}
