// Package options provides data structures and functions for configuring
// the datefile engine. It defines the parameters that control where the
// file lives, how defrag names its working files, and how the range-search
// deduper is sized.
package options

import "strings"

// Options defines the configuration parameters for a datefile session.
type Options struct {
	// Path is the location of the datefile on disk. If it does not exist,
	// Open creates it. Per spec §6, a recommended default is
	// "$HOME/.config/nrem/datefile", but the engine never reads that value
	// itself — the embedder is responsible for resolving it.
	//
	// Default: DefaultPath
	Path string `json:"path"`

	// DefragTempPattern is the base name used when compaction.Run names the
	// sibling output file a defrag pass writes to, before the uuid suffix
	// described in SPEC_FULL.md §5 is appended.
	//
	// Default: "defrag"
	DefragTempPattern string `json:"defragTempPattern"`

	// BucketDedupeCapacity sizes the bloom filter internal/search lays in
	// front of its offset dedup map. It should be a rough upper bound on the
	// number of events a single search call is expected to return; an
	// undersized filter only costs a few extra map probes; it can never
	// produce a wrong result since the map is always the final word.
	//
	// Default: 256
	BucketDedupeCapacity uint `json:"bucketDedupeCapacity"`
}

// OptionFunc is a function type that modifies an Options value.
type OptionFunc func(*Options)

// WithDefaultOptions resets Path, DefragTempPattern and BucketDedupeCapacity
// to their defaults.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.Path = opts.Path
		o.DefragTempPattern = opts.DefragTempPattern
		o.BucketDedupeCapacity = opts.BucketDedupeCapacity
	}
}

// WithPath sets the datefile path.
func WithPath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.Path = path
		}
	}
}

// WithDefragTempPattern sets the base name for defrag's sibling output file.
func WithDefragTempPattern(pattern string) OptionFunc {
	return func(o *Options) {
		pattern = strings.TrimSpace(pattern)
		if pattern != "" {
			o.DefragTempPattern = pattern
		}
	}
}

// WithBucketDedupeCapacity sets the expected result-set size used to size
// the search deduper's bloom filter.
func WithBucketDedupeCapacity(capacity uint) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.BucketDedupeCapacity = capacity
		}
	}
}
