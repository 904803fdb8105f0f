// Package logfile manages the pair of append-only CSV logfiles (raddec and stats)
// and rotates them lazily once the active pair is older than the rotation window.
//
// File names:
//
//	{prefix}-raddec-YYMMDD-HHMMSS{ext}
//	{prefix}-stats-YYMMDD-HHMMSS{ext}
package logfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// OpenFunc opens an append-mode stream at path.
type OpenFunc func(path string) (io.WriteCloser, error)

// ErrorHandler receives every open, write and close failure. It must not block.
type ErrorHandler func(err error)

// Options configures a Manager.
type Options struct {
	Dir       string
	Prefix    string
	Extension string
	Window    time.Duration

	// OnRotate, if set, is called after a new set has been opened.
	OnRotate func(s *Set)
}

// Set is the currently open pair of streams. Both streams share one time string.
type Set struct {
	LastRotation time.Time
	TimeString   string
	RaddecPath   string
	StatsPath    string

	raddec io.WriteCloser
	stats  io.WriteCloser
}

// Manager owns at most one open Set. It is not safe for concurrent use:
// the dispatch goroutine is its only caller.
type Manager struct {
	opts    Options
	open    OpenFunc
	onError ErrorHandler
	current *Set
}

// OpenAppend is the default OpenFunc: create or append, write only.
func OpenAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// NewManager creates a Manager. A nil open uses OpenAppend; a nil onError discards errors.
func NewManager(opts Options, open OpenFunc, onError ErrorHandler) *Manager {
	if open == nil {
		open = OpenAppend
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Manager{opts: opts, open: open, onError: onError}
}

// Active returns the open set, or nil before the first write.
func (m *Manager) Active() *Set { return m.current }

// EnsureActive returns a set ready for writes at now, rotating when no set is
// open or the open set is older than the rotation window.
func (m *Manager) EnsureActive(now time.Time) *Set {
	if m.current != nil && now.Sub(m.current.LastRotation) <= m.opts.Window {
		return m.current
	}
	m.closeCurrent()

	ts := TimeString(now.Local())
	s := &Set{
		LastRotation: now,
		TimeString:   ts,
		RaddecPath:   m.path("raddec", ts),
		StatsPath:    m.path("stats", ts),
	}
	s.raddec = m.openStream(s.RaddecPath)
	s.stats = m.openStream(s.StatsPath)
	m.current = s

	if m.opts.OnRotate != nil {
		m.opts.OnRotate(s)
	}
	return s
}

// WriteRaddec appends line to the raddec stream of the set active at now.
func (m *Manager) WriteRaddec(now time.Time, line string) {
	s := m.EnsureActive(now)
	m.write(s.raddec, s.RaddecPath, line)
}

// WriteStats appends line to the stats stream of the set active at now.
func (m *Manager) WriteStats(now time.Time, line string) {
	s := m.EnsureActive(now)
	m.write(s.stats, s.StatsPath, line)
}

// Close closes the active set, if any.
func (m *Manager) Close() {
	m.closeCurrent()
}

func (m *Manager) path(kind, ts string) string {
	name := fmt.Sprintf("%s-%s-%s%s", m.opts.Prefix, kind, ts, m.opts.Extension)
	return filepath.Join(m.opts.Dir, name)
}

// openStream never returns nil: a failed open yields a stream that reports
// the open error on every write, so the sibling stream stays usable.
func (m *Manager) openStream(path string) io.WriteCloser {
	w, err := m.open(path)
	if err != nil {
		err = fmt.Errorf("open logfile %s: %w", path, err)
		m.onError(err)
		return failedStream{err: err}
	}
	return w
}

func (m *Manager) write(w io.Writer, path, line string) {
	if _, err := io.WriteString(w, line); err != nil {
		m.onError(fmt.Errorf("write logfile %s: %w", path, err))
	}
}

func (m *Manager) closeCurrent() {
	if m.current == nil {
		return
	}
	if err := m.current.stats.Close(); err != nil {
		m.onError(fmt.Errorf("close logfile %s: %w", m.current.StatsPath, err))
	}
	if err := m.current.raddec.Close(); err != nil {
		m.onError(fmt.Errorf("close logfile %s: %w", m.current.RaddecPath, err))
	}
	m.current = nil
}

type failedStream struct{ err error }

func (f failedStream) Write([]byte) (int, error) { return 0, f.err }
func (f failedStream) Close() error               { return nil }
