package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/joshsymonds/policycheck/pkg/logger"
)

// maxCatalogSize bounds how much of a catalog document is read.
const maxCatalogSize = 4 << 20

// Load reads the catalog from the first source that exists. When no source
// exists, or the first existing one cannot be read, decoded or validated, it
// logs a warning and returns an empty catalog. It never fails.
func Load(ctx context.Context, log logger.Logger, sources ...Source) *Catalog {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	for _, src := range sources {
		c, err := loadFrom(ctx, src)
		if errors.Is(err, ErrNotFound) {
			log.Debug("Catalog source not found", "source", src.Name())
			continue
		}
		if err != nil {
			log.Warn("Failed to load control catalog, using empty catalog",
				"source", src.Name(),
				"error", err,
			)
			return Empty()
		}

		log.Info("Loaded control catalog",
			"source", src.Name(),
			"nist_controls", len(c.NIST),
			"iso_controls", len(c.ISO),
			"dpdp_requirements", len(c.DPDP),
		)
		return c
	}

	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name())
	}
	log.Warn("Control catalog not found in any expected location, using empty catalog",
		"candidates", names,
	)
	return Empty()
}

func loadFrom(ctx context.Context, src Source) (*Catalog, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxCatalogSize))
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Loader memoizes catalogs per candidate-source list. Concurrent first use of
// the same list performs a single load.
type Loader struct {
	logger logger.Logger
	loaded map[string]*Catalog
	group  singleflight.Group
	mu     sync.RWMutex
}

// NewLoader creates a Loader. A nil log resolves the global logger at load
// time, so a package-level Loader follows later SetupLogger calls.
func NewLoader(log logger.Logger) *Loader {
	if log != nil {
		log = log.With("component", "catalog")
	}
	return &Loader{
		logger: log,
		loaded: make(map[string]*Catalog),
	}
}

func (l *Loader) log() logger.Logger {
	if l.logger != nil {
		return l.logger
	}
	return logger.GetGlobalLogger().With("component", "catalog")
}

// Get returns the catalog for sources, loading it on first use.
func (l *Loader) Get(ctx context.Context, sources ...Source) *Catalog {
	key := sourcesKey(sources)

	l.mu.RLock()
	c, ok := l.loaded[key]
	l.mu.RUnlock()
	if ok {
		return c
	}

	v, _, _ := l.group.Do(key, func() (any, error) {
		l.mu.RLock()
		cached, ok := l.loaded[key]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded := Load(ctx, l.log(), sources...)

		l.mu.Lock()
		l.loaded[key] = loaded
		l.mu.Unlock()
		return loaded, nil
	})
	return v.(*Catalog)
}

func sourcesKey(sources []Source) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "\x00")
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog loaded from DefaultSources on
// first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = Load(context.Background(), nil, DefaultSources()...)
	})
	return defaultCatalog
}
