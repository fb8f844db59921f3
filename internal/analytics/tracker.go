package analytics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tulznet/tulz/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Recorder persists search records.
type Recorder interface {
	Init() error
	RecordSearch(search storage.SearchRecord) error
}

// Tracker records searches in the background with non-blocking writes.
type Tracker struct {
	recorder   Recorder
	eventQueue chan SearchEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker creates a tracker and starts its background worker.
func NewTracker(r Recorder) *Tracker {
	t := &Tracker{
		recorder:   r,
		eventQueue: make(chan SearchEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    r != nil,
	}

	if r != nil {
		if err := r.Init(); err != nil {
			log.Warn().Err(err).Msg("analytics storage initialization failed, tracking disabled")
			t.enabled = false
		}
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track queues an event. If the queue is full the event is dropped.
func (t *Tracker) Track(event SearchEvent) {
	if !t.isEnabled() {
		return
	}

	select {
	case t.eventQueue <- event:
	default:
		log.Warn().Str("search_id", event.SearchID).Msg("analytics queue full, dropping event")
	}
}

// TrackSearch hashes query and queues a search event.
func (t *Tracker) TrackSearch(query string, results int) {
	if t == nil {
		return
	}
	t.Track(NewSearchEvent(query, results))
}

// Stop gracefully shuts down the tracker, flushing remaining events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tracker) isEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled && t.recorder != nil
}

// QueueSize returns the current number of queued events.
func (t *Tracker) QueueSize() int {
	return len(t.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]SearchEvent, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]SearchEvent, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]SearchEvent, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then flush once
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to the recorder.
func (t *Tracker) flush(events []SearchEvent) {
	if len(events) == 0 || t.recorder == nil {
		return
	}

	for _, event := range events {
		if err := t.recorder.RecordSearch(event.ToStorage()); err != nil {
			log.Warn().Err(err).Str("search_id", event.SearchID).Msg("failed to record search")
		}
	}
}
