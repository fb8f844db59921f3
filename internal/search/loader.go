package search

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tulznet/tulz/internal/catalog"
)

// Source produces the corpus for a Loader.
type Source func() ([]catalog.Entry, error)

// EntriesSource serves a corpus that is already in memory.
func EntriesSource(entries []catalog.Entry) Source {
	return func() ([]catalog.Entry, error) {
		return entries, nil
	}
}

// FileSource reads a search index artifact from path.
func FileSource(path string) Source {
	return func() ([]catalog.Entry, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open search index: %w", err)
		}
		defer f.Close()

		return catalog.LoadArtifact(f)
	}
}

// Loader builds an Index exactly once and serves searches while and after it
// loads. A failed load leaves the index unset; searches then return nothing
// and the load is never retried.
type Loader struct {
	cfg Config

	once    sync.Once
	done    chan struct{}
	mu      sync.RWMutex
	index   Index
	loading bool
	err     error
}

// NewLoader creates a loader that builds indexes with cfg.
func NewLoader(cfg Config) *Loader {
	return &Loader{
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

// Load fetches the corpus from src and builds the index. Only the first call
// does any work; later calls block until that one finishes.
func (l *Loader) Load(src Source) {
	l.once.Do(func() {
		l.mu.Lock()
		l.loading = true
		l.mu.Unlock()

		index, err := l.build(src)

		l.mu.Lock()
		l.index = index
		l.err = err
		l.loading = false
		l.mu.Unlock()

		if err != nil {
			log.Warn().Err(err).Msg("search index unavailable, searches will return no results")
		}
		close(l.done)
	})
	<-l.done
}

// LoadAsync starts Load in the background.
func (l *Loader) LoadAsync(src Source) {
	go l.Load(src)
}

func (l *Loader) build(src Source) (Index, error) {
	if src == nil {
		return nil, fmt.Errorf("no search index source")
	}

	entries, err := src()
	if err != nil {
		return nil, err
	}

	index, err := Build(entries, l.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}

	log.Debug().Int("entries", index.Len()).Str("backend", l.cfg.Backend).Msg("search index built")
	return index, nil
}

// Loading reports whether a build is in progress.
func (l *Loader) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Ready reports whether an index is available.
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index != nil
}

// Done is closed once the load attempt has finished, successfully or not.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Err returns the load failure, if any.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Search queries the index, returning nothing until it is ready.
func (l *Loader) Search(q string, limit int) []Result {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	index := l.index
	l.mu.RUnlock()

	if index == nil {
		return nil
	}
	return index.Search(q, limit)
}

// Index returns the built index, or nil.
func (l *Loader) Index() Index {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index
}

// Close releases the index.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index == nil {
		return nil
	}
	err := l.index.Close()
	l.index = nil
	return err
}
