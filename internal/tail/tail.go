// Package tail follows a growing text file line by line, surviving
// truncation and rotation.
package tail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/pkg/log"
)

// DefaultPollInterval is how often the file is re-read when no
// notification arrives. Some filesystems never deliver write events.
const DefaultPollInterval = time.Second

// Option configures a Follower.
type Option func(*Follower)

// FromStart emits the lines already present in the file. By default only
// lines written after Run starts are emitted.
func FromStart() Option {
	return func(f *Follower) { f.fromStart = true }
}

// WithPollInterval sets the fallback re-read period.
func WithPollInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.poll = d
		}
	}
}

// WithLogger sets the logger for watch and read errors.
func WithLogger(l ports.Logger) Option {
	return func(f *Follower) {
		if l != nil {
			f.logger = l
		}
	}
}

// Follower emits the lines appended to one file. It is not safe for
// concurrent use; call Run once.
type Follower struct {
	path      string
	fromStart bool
	poll      time.Duration
	logger    ports.Logger

	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial []byte
}

// New creates a Follower for path. The file need not exist yet.
func New(path string, opts ...Option) *Follower {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	f := &Follower{
		path:   filepath.Clean(path),
		poll:   DefaultPollInterval,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run calls fn for every complete line until ctx is cancelled. Line
// terminators ("\n" or "\r\n") are stripped. A trailing line without a
// terminator is held until it is completed.
func (f *Follower) Run(ctx context.Context, fn func(line string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	if err := f.open(!f.fromStart); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	defer f.closeFile()
	f.read(fn)

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				// Rotated: finish the old handle, then start the new file
				// from its beginning.
				if !f.current() {
					f.read(fn)
					f.closeFile()
					f.reopen()
				}
				f.read(fn)
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				f.read(fn)
				f.closeFile()
			case ev.Has(fsnotify.Write):
				f.read(fn)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("tail watch error", log.String("path", f.path), log.Err(err))

		case <-ticker.C:
			if f.file == nil {
				f.reopen()
			}
			f.read(fn)
		}
	}
}

func (f *Follower) open(seekEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	var offset int64
	if seekEnd {
		if offset, err = file.Seek(0, io.SeekEnd); err != nil {
			file.Close()
			return fmt.Errorf("seek %s: %w", f.path, err)
		}
	}
	f.file = file
	f.offset = offset
	f.partial = f.partial[:0]
	if f.reader == nil {
		f.reader = bufio.NewReaderSize(file, 64<<10)
	} else {
		f.reader.Reset(file)
	}
	return nil
}

func (f *Follower) reopen() {
	if err := f.open(false); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("tail open failed", log.String("path", f.path), log.Err(err))
	}
}

// current reports whether the open handle still refers to the file at path.
func (f *Follower) current() bool {
	if f.file == nil {
		return false
	}
	open, err := f.file.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(f.path)
	return err == nil && os.SameFile(open, onDisk)
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

func (f *Follower) read(fn func(line string)) {
	if f.file == nil {
		return
	}
	if fi, err := f.file.Stat(); err == nil && fi.Size() < f.offset {
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			f.logger.Warn("tail rewind failed", log.String("path", f.path), log.Err(err))
			return
		}
		f.reader.Reset(f.file)
		f.offset = 0
		f.partial = f.partial[:0]
	}

	for {
		chunk, err := f.reader.ReadSlice('\n')
		f.offset += int64(len(chunk))
		if err == nil {
			line := chunk[:len(chunk)-1]
			if len(f.partial) > 0 {
				f.partial = append(f.partial, line...)
				line = f.partial
			}
			fn(string(bytes.TrimSuffix(line, []byte{'\r'})))
			f.partial = f.partial[:0]
			continue
		}
		f.partial = append(f.partial, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if !errors.Is(err, io.EOF) {
			f.logger.Warn("tail read failed", log.String("path", f.path), log.Err(err))
		}
		return
	}
}
