package device

import (
	"bufio"
	"io"
	"sync"
	"time"
)

type lineResult struct {
	line string
	err  error
}

// lineReader pumps lines from r on a single goroutine, so a ReadLine that
// times out never leaves a second reader racing on the same buffer.
type lineReader struct {
	once     sync.Once
	stopOnce sync.Once
	r        *bufio.Reader
	lines    chan lineResult
	done     chan struct{}
	exited   chan struct{}
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r:      bufio.NewReader(r),
		lines:  make(chan lineResult, 16),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (l *lineReader) pump() {
	defer close(l.exited)
	defer close(l.lines)
	for {
		line, err := l.r.ReadString('\n')
		if line != "" || err != nil {
			select {
			case l.lines <- lineResult{line, err}:
			case <-l.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// stop releases the pump once its pending read returns. The owner must
// close the source itself for that read to unblock.
func (l *lineReader) stop() {
	l.stopOnce.Do(func() { close(l.done) })
	// never started: nothing will close exited
	l.once.Do(func() { close(l.exited) })
}

// ReadLine returns the next line. A timeout <= 0 blocks until one arrives.
// After the source fails or the reader is stopped, every call returns io.EOF.
func (l *lineReader) ReadLine(timeout time.Duration) (string, error) {
	select {
	case <-l.done:
		return "", io.EOF
	default:
	}
	l.once.Do(func() { go l.pump() })

	var after <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		after = t.C
	}

	select {
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	case <-l.done:
		return "", io.EOF
	case <-after:
		return "", ErrReadTimeout
	}
}
