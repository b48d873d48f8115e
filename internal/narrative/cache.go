package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores narrations between runs.
type Cache interface {
	// Get returns the cached narration for key, or nil on a miss.
	Get(ctx context.Context, key string) (*Narration, error)
	Set(ctx context.Context, key string, n *Narration, ttl time.Duration) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats contains cache statistics.
type Stats struct {
	TotalEntries int     `json:"total_entries"`
	HitRate      float64 `json:"hit_rate"`
	TotalHits    int64   `json:"total_hits"`
	TotalMisses  int64   `json:"total_misses"`
	TotalSize    int64   `json:"total_size"`
	TokensSaved  int64   `json:"tokens_saved"`
}

// Key derives the cache key for a built prompt and the model answering it.
func Key(prompt, model string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// CacheError represents a cache-specific error.
type CacheError struct {
	Err error
	Op  string
	Key string
}

func (e *CacheError) Error() string {
	return "cache " + e.Op + " failed for key " + e.Key + ": " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
