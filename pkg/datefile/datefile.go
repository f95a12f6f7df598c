// Package datefile is the public entry point for the datefile storage
// engine: a single-file persistent index mapping integer instants to named
// events (spec §1). A Session is the primary type — open one with Open,
// then call Add, Search, Remove and Defrag against it.
package datefile

import (
	"context"

	"github.com/rverma-dev/datefile/internal/engine"
	"github.com/rverma-dev/datefile/pkg/logger"
	"github.com/rverma-dev/datefile/pkg/options"
)

// Event is a logical event returned by Search: its stable id, its
// inclusive [Start, End] range, and its name.
type Event = engine.Event

// Session is a handle on one open datefile. It is single-threaded and
// synchronous (spec §5): callers must not interleave calls against the
// same Session from multiple goroutines, and there is no cancellation
// support once a call has started.
type Session struct {
	engine  *engine.Engine
	options *options.Options
}

// Open opens the datefile at the configured path, creating it if it does
// not exist, per spec §4.9. service names the session for structured
// logging, matching the logger-per-instance convention used throughout
// this module.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*Session, error) {
	log := logger.New(service)

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: &resolved})
	if err != nil {
		return nil, err
	}

	return &Session{engine: eng, options: &resolved}, nil
}

// Add inserts an event spanning the inclusive instant range [start, end]
// under the given name and returns its id — the offset of its event-data
// record, stable for the life of the event (spec §3).
func (s *Session) Add(start, end int64, name string) (int64, error) {
	return s.engine.Add(start, end, name)
}

// Search returns every event whose stored range intersects the inclusive
// query window [qlo, qhi]. The result order follows trie pre-order
// traversal; it is neither time-sorted nor otherwise specified (spec
// §4.7) — sort the result yourself if you need a particular order.
//
// Unlike the collaborator contract this engine is grounded on, callers do
// not need to release the returned slice explicitly: every Event owns its
// own copy of its name, and Go's garbage collector reclaims both once the
// slice is no longer referenced. FreeEventList is provided for API parity
// with that contract and is safe, but optional, to call.
func (s *Session) Search(qlo, qhi int64) ([]Event, error) {
	return s.engine.Search(qlo, qhi)
}

// FreeEventList is a no-op placeholder for the explicit event-list release
// spec §5 requires of implementations that do not have garbage collection.
// Go's runtime reclaims the slice and every event's name string on its
// own; this function exists only so code ported from that contract has
// something to call.
func FreeEventList(_ []Event) {}

// Remove unlinks the event with the given id from every bucket it
// participates in (spec §4.6). The underlying event-data record becomes
// unreachable garbage until the next Defrag.
func (s *Session) Remove(id int64) error {
	return s.engine.Remove(id)
}

// Defrag rebuilds the backing file into a compacted image and atomically
// replaces the original with it (spec §4.8).
func (s *Session) Defrag() error {
	return s.engine.Defrag()
}

// Close flushes and releases the session's file handle. The session must
// not be used afterward.
func (s *Session) Close() error {
	return s.engine.Close()
}
