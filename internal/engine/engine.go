// Package engine implements spec §4.9: the datefile session. It opens or
// creates the backing file, validates its header, and dispatches add,
// search, remove and defrag to the lower-level components that do the
// actual trie walking, record linking and compaction.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rverma-dev/datefile/internal/codec"
	"github.com/rverma-dev/datefile/internal/compaction"
	"github.com/rverma-dev/datefile/internal/eventindex"
	"github.com/rverma-dev/datefile/internal/search"
	apperrors "github.com/rverma-dev/datefile/pkg/errors"
	"github.com/rverma-dev/datefile/pkg/filesys"
	"github.com/rverma-dev/datefile/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a
// closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// rootBitn is the key precision written into freshly created files. Spec
// §3 requires new files to set bitn = 64.
const rootBitn uint8 = 64

// Event is a logical event returned by Search: the stable id (its
// event-data record's offset), its inclusive range, and its name.
type Event = search.Event

// Config holds the parameters needed to open an Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Engine is the datefile session (spec §4.9). It is single-threaded and
// synchronous per spec §5: the caller must not interleave calls, and there
// is no cancellation support — every operation runs to completion or
// returns an error.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	file   *os.File
	header codec.Header
}

// Open opens the datefile named by config.Options.Path, creating it (and
// its parent directory) if it does not yet exist, per spec §4.9's open
// semantics: this single call covers both the existing-file and
// fresh-file paths, mirroring how the original implementation this is
// grounded on folds "create if missing" into one entry point rather than
// splitting Open and Create.
//
// ctx is accepted for constructor-injection symmetry with the rest of the
// module's components; the engine itself supports no cancellation (spec
// §5), so ctx is not consulted.
func Open(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil {
		return nil, apperrors.NewConfigurationValidationError("options", "engine config requires non-nil options")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	path := config.Options.Path

	exists, err := filesys.Exists(path)
	if err != nil {
		return nil, apperrors.ClassifyOpenError(err, path)
	}

	if !exists {
		if dir := filepath.Dir(path); dir != "." {
			if err := filesys.CreateDir(dir, 0o755, true); err != nil {
				return nil, apperrors.ClassifyOpenError(err, path)
			}
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, apperrors.ClassifyOpenError(err, path)
	}

	var header codec.Header
	if exists {
		header, err = codec.ReadHeader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		log.Infow("opened existing datefile", "path", path, "bit1", header.Bit1, "bitn", header.Bitn)
	} else {
		header, err = codec.WriteHeader(file, 0, rootBitn)
		if err != nil {
			file.Close()
			return nil, err
		}
		root, err := codec.AppendNode(file, 0, 0, 0)
		if err != nil {
			file.Close()
			return nil, err
		}
		if err := codec.PatchBit1(file, header, uint64(root.Offset)); err != nil {
			file.Close()
			return nil, err
		}
		header, err = codec.ReadHeader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		log.Infow("created new datefile", "path", path, "rootOffset", root.Offset)
	}

	return &Engine{
		options: config.Options,
		log:     log,
		file:    file,
		header:  header,
	}, nil
}

func (e *Engine) checkOpen() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

// Add inserts an event spanning [start, end] named name and returns its
// stable id.
func (e *Engine) Add(start, end int64, name string) (int64, error) {
	if err := e.checkOpen(); err != nil {
		return 0, err
	}

	data, err := eventindex.Add(e.file, e.header, start, end, name)
	if err != nil {
		e.log.Errorw("add failed", "error", err, "start", start, "end", end)
		return 0, err
	}

	e.log.Debugw("add succeeded", "id", data.Offset, "start", start, "end", end,
		"nameDigest", codec.NameDigest(name))
	return data.Offset, nil
}

// Search returns every event whose range intersects [qlo, qhi].
func (e *Engine) Search(qlo, qhi int64) ([]Event, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	events, err := search.Search(e.file, e.header, qlo, qhi, e.options.BucketDedupeCapacity)
	if err != nil {
		e.log.Errorw("search failed", "error", err, "qlo", qlo, "qhi", qhi)
		return nil, err
	}

	e.log.Debugw("search succeeded", "qlo", qlo, "qhi", qhi, "results", len(events))
	return events, nil
}

// Remove unlinks the event with the given id from every bucket it
// participates in. The underlying event-data record is left as garbage
// until the next Defrag.
func (e *Engine) Remove(id int64) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	if err := eventindex.Remove(e.file, id); err != nil {
		e.log.Errorw("remove failed", "error", err, "id", id)
		return err
	}

	e.log.Debugw("remove succeeded", "id", id)
	return nil
}

// Defrag rebuilds the datefile into a compacted sibling file and
// atomically replaces the original, then reopens the session against the
// fresh image (spec §4.9's close-and-reopen of both files around the
// rename).
func (e *Engine) Defrag() error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	path := e.options.Path
	if err := e.file.Close(); err != nil {
		return apperrors.NewIOError(err, "failed to flush datefile before defrag").
			WithOperation("flush")
	}

	if err := compaction.Run(path, e.options.DefragTempPattern, e.log); err != nil {
		if apperrors.IsIOError(err) || apperrors.IsFormatError(err) {
			return err
		}
		return apperrors.NewIOError(err, "defrag failed")
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return apperrors.ClassifyOpenError(err, path)
	}
	header, err := codec.ReadHeader(file)
	if err != nil {
		file.Close()
		return err
	}

	e.file = file
	e.header = header
	return nil
}

// Close flushes and releases the engine's file handle. Calling Close more
// than once returns ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}
	return e.file.Close()
}
