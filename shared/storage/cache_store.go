package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"summary-stack/internal/models"
)

const recordExt = ".json"

var errIncompleteRecord = errors.New("record is missing url or timestamp")

// CacheStore keeps summaries on disk, one JSON file per source URL. There is
// no record-level locking: concurrent writers for the same URL are last-writer-wins.
type CacheStore struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats summarizes the records currently on disk.
type CacheStats struct {
	Total     int   `json:"total_files"`
	Valid     int   `json:"valid_files"`
	Expired   int   `json:"expired_files"`
	TotalSize int64 `json:"total_size_bytes"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
}

// TotalSizeMB reports TotalSize in megabytes rounded to two decimals.
func (s CacheStats) TotalSizeMB() float64 {
	return math.Round(float64(s.TotalSize)/(1024*1024)*100) / 100
}

// cacheEntry is the on-disk layout of a record.
type cacheEntry struct {
	URL       string               `json:"url"`
	Summary   string               `json:"summary"`
	Keywords  []string             `json:"keywords"`
	VideoInfo models.VideoMetadata `json:"video_info"`
	Timestamp time.Time            `json:"timestamp"`
	Tier      models.Tier          `json:"tier,omitempty"`
}

type CacheOption func(*CacheStore)

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CacheStore) {
		c.now = now
	}
}

// NewCacheStore creates a cache rooted at dir, creating the directory if needed.
func NewCacheStore(dir string, ttl time.Duration, opts ...CacheOption) (*CacheStore, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %v", ttl)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &CacheStore{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key derives the content address of a URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *CacheStore) Dir() string {
	return c.dir
}

func (c *CacheStore) TTL() time.Duration {
	return c.ttl
}

func (c *CacheStore) path(url string) string {
	return filepath.Join(c.dir, Key(url)+recordExt)
}

// Get returns the cached record for url. Expired and unreadable records are
// deleted and reported as absent.
func (c *CacheStore) Get(url string) (*models.CacheRecord, bool) {
	path := c.path(url)

	entry, err := readEntry(path)
	if err != nil {
		c.misses.Add(1)
		if errors.Is(err, os.ErrNotExist) {
			return nil, false
		}
		log.Printf("Warning: removing unreadable cache record for %s: %v", url, err)
		c.remove(path)
		return nil, false
	}

	if c.expired(entry) {
		c.misses.Add(1)
		c.remove(path)
		return nil, false
	}

	c.hits.Add(1)
	return entry.record(), true
}

// Put stores a summary for url, overwriting any previous record.
func (c *CacheStore) Put(url, summary string, keywords []string, meta models.VideoMetadata) bool {
	return c.PutResult(url, &models.SummaryResult{Content: summary, Keywords: keywords}, meta)
}

// PutResult stores a full summary result, keeping the tier that produced it.
func (c *CacheStore) PutResult(url string, result *models.SummaryResult, meta models.VideoMetadata) bool {
	entry := cacheEntry{
		URL:       url,
		Summary:   result.Content,
		Keywords:  result.Keywords,
		VideoInfo: meta,
		Timestamp: c.now(),
		Tier:      result.Tier,
	}

	if err := c.write(c.path(url), &entry); err != nil {
		log.Printf("Warning: failed to cache summary for %s: %v", url, err)
		return false
	}
	return true
}

// EvictExpired deletes every expired or unreadable record and returns how many were removed.
func (c *CacheStore) EvictExpired() int {
	paths, err := c.recordPaths()
	if err != nil {
		log.Printf("Warning: failed to list cache directory: %v", err)
		return 0
	}

	removed := 0
	for _, path := range paths {
		entry, err := readEntry(path)
		if err != nil || c.expired(entry) {
			if c.remove(path) {
				removed++
			}
		}
	}
	return removed
}

// EvictAll deletes every record and returns how many were removed.
func (c *CacheStore) EvictAll() int {
	paths, err := c.recordPaths()
	if err != nil {
		log.Printf("Warning: failed to list cache directory: %v", err)
		return 0
	}

	removed := 0
	for _, path := range paths {
		if c.remove(path) {
			removed++
		}
	}
	return removed
}

// Stats scans the cache directory. Any enumeration failure yields zero stats.
func (c *CacheStore) Stats() CacheStats {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return CacheStats{}
	}

	stats := CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		stats.Total++
		stats.TotalSize += info.Size()

		entry, err := readEntry(filepath.Join(c.dir, e.Name()))
		if err != nil || c.expired(entry) {
			stats.Expired++
		} else {
			stats.Valid++
		}
	}
	return stats
}

func (c *CacheStore) expired(entry *cacheEntry) bool {
	return c.now().Sub(entry.Timestamp) > c.ttl
}

func (c *CacheStore) recordPaths() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), recordExt) {
			paths = append(paths, filepath.Join(c.dir, e.Name()))
		}
	}
	return paths, nil
}

func (c *CacheStore) remove(path string) bool {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to remove cache record %s: %v", filepath.Base(path), err)
		return false
	}
	return true
}

// write goes through a temp file so readers never observe a half-written record.
func (c *CacheStore) write(path string, entry *cacheEntry) error {
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entry); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move record into place: %w", err)
	}
	return nil
}

func readEntry(path string) (*cacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if entry.URL == "" || entry.Timestamp.IsZero() {
		return nil, errIncompleteRecord
	}
	return &entry, nil
}

func (e *cacheEntry) record() *models.CacheRecord {
	return &models.CacheRecord{
		URL: e.URL,
		Summary: models.SummaryResult{
			Content:     e.Summary,
			Keywords:    e.Keywords,
			GeneratedAt: e.Timestamp,
			Tier:        e.Tier,
		},
		VideoInfo: e.VideoInfo,
		CachedAt:  e.Timestamp,
	}
}
