package device

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"ReelMonitor/internal/util"
)

// ProcessDevice implements Device on the stdout of a spawned process (e.g. tcpdump -l).
type ProcessDevice struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	r      *lineReader
	closed bool
}

// NewProcessDevice starts argv[0] with the remaining arguments and reads its stdout.
func NewProcessDevice(argv []string) (*ProcessDevice, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = util.Logger().WriterLevel(util.WarnLevel)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for %s: %w", argv[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	util.Info("[process] started %s (pid=%d)", argv[0], cmd.Process.Pid)
	return &ProcessDevice{cmd: cmd, r: newLineReader(stdout)}, nil
}

// ReadLine reads one line of process output.
func (p *ProcessDevice) ReadLine(timeout time.Duration) (string, error) {
	return p.r.ReadLine(timeout)
}

// WriteLine is not supported: the process is a read-only source.
func (p *ProcessDevice) WriteLine(string) error {
	return errors.New("process device is read-only")
}

// Close kills the process and reaps it. It is safe to call more than once.
func (p *ProcessDevice) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.cmd.Process == nil {
		return nil
	}
	util.Info("[process] killing pid=%d", p.cmd.Process.Pid)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		util.Warn("[process] kill pid=%d: %v", p.cmd.Process.Pid, err)
	}
	_ = p.cmd.Wait()
	p.r.stop()
	return nil
}
