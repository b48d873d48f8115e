package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const statsFile = "stats.json"

// FileCache implements Cache using one JSON file per entry.
type FileCache struct {
	now      func() time.Time
	basePath string
	stats    Stats
	mu       sync.Mutex
}

// NewFileCache creates a new file-based cache rooted at basePath.
func NewFileCache(basePath string) (*FileCache, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fc := &FileCache{basePath: basePath, now: time.Now}
	if err := fc.loadStats(); err != nil {
		return nil, &CacheError{Op: "load stats", Key: statsFile, Err: err}
	}
	return fc, nil
}

// Get retrieves a cached narration. Expired entries are removed and count as
// misses.
func (fc *FileCache) Get(_ context.Context, key string) (*Narration, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	filename := fc.filename(key)
	data, err := os.ReadFile(filename) // #nosec G304 - name is a hex digest under basePath
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fc.recordMiss()
			return nil, nil
		}
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, &CacheError{Op: "unmarshal", Key: key, Err: err}
	}

	if fc.now().After(entry.ExpiresAt) {
		_ = os.Remove(filename)
		fc.recordMiss()
		return nil, nil
	}

	fc.recordHit(entry.Narration.TokensUsed)
	return &entry.Narration, nil
}

// Set stores a narration for ttl.
func (fc *FileCache) Set(_ context.Context, key string, n *Narration, ttl time.Duration) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	now := fc.now()
	entry := cacheEntry{
		Narration: *n,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return &CacheError{Op: "marshal", Key: key, Err: err}
	}

	if err := os.WriteFile(fc.filename(key), data, 0o600); err != nil {
		return &CacheError{Op: "write", Key: key, Err: err}
	}

	fc.saveStats()
	return nil
}

// Clear removes all cached narrations and resets statistics.
func (fc *FileCache) Clear(_ context.Context) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	entries, err := os.ReadDir(fc.basePath)
	if err != nil {
		return &CacheError{Op: "readdir", Key: fc.basePath, Err: err}
	}

	for _, entry := range entries {
		if !fc.isEntryFile(entry) {
			continue
		}
		if err := os.Remove(filepath.Join(fc.basePath, entry.Name())); err != nil {
			return &CacheError{Op: "delete", Key: entry.Name(), Err: err}
		}
	}

	fc.stats = Stats{}
	fc.saveStats()
	return nil
}

// Stats returns cache statistics with current entry counts.
func (fc *FileCache) Stats(_ context.Context) (Stats, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	entries, err := os.ReadDir(fc.basePath)
	if err != nil {
		return Stats{}, &CacheError{Op: "readdir", Key: fc.basePath, Err: err}
	}

	fc.stats.TotalEntries = 0
	fc.stats.TotalSize = 0
	for _, entry := range entries {
		if !fc.isEntryFile(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fc.stats.TotalEntries++
		fc.stats.TotalSize += info.Size()
	}

	return fc.stats, nil
}

func (fc *FileCache) isEntryFile(entry os.DirEntry) bool {
	return !entry.IsDir() && entry.Name() != statsFile && strings.HasSuffix(entry.Name(), ".json")
}

func (fc *FileCache) filename(key string) string {
	return filepath.Join(fc.basePath, key+".json")
}

func (fc *FileCache) recordHit(tokensSaved int) {
	fc.stats.TotalHits++
	fc.stats.TokensSaved += int64(tokensSaved)
	fc.updateHitRate()
}

func (fc *FileCache) recordMiss() {
	fc.stats.TotalMisses++
	fc.updateHitRate()
}

func (fc *FileCache) updateHitRate() {
	total := fc.stats.TotalHits + fc.stats.TotalMisses
	if total > 0 {
		fc.stats.HitRate = float64(fc.stats.TotalHits) / float64(total)
	}
}

func (fc *FileCache) loadStats() error {
	data, err := os.ReadFile(filepath.Join(fc.basePath, statsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &fc.stats)
}

// saveStats persists hit and miss counters. Failures only lose statistics.
func (fc *FileCache) saveStats() {
	data, err := json.MarshalIndent(fc.stats, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(fc.basePath, statsFile), data, 0o600)
}

// cacheEntry represents a cached narration with metadata.
type cacheEntry struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Narration Narration `json:"narration"`
}
