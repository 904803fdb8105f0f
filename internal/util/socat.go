package util

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// SocatManager manages socat-created virtual serial pairs, so a simulated
// reel can feed the monitor without hardware.
type SocatManager struct {
	mu     sync.Mutex
	cmds   []*exec.Cmd
	links  []string
	closed bool
}

// NewSocatManager initializes an empty manager.
func NewSocatManager() *SocatManager {
	return &SocatManager{}
}

// PairArgs returns the socat arguments linking two raw PTYs.
func PairArgs(left, right string) []string {
	return []string{
		"-d", "-d",
		fmt.Sprintf("pty,raw,echo=0,link=%s", left),
		fmt.Sprintf("pty,raw,echo=0,link=%s", right),
	}
}

// CreatePair starts a socat process that links two PTYs (bidirectional).
func (m *SocatManager) CreatePair(left, right string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("socat manager closed")
	}

	cmd := exec.Command("socat", PairArgs(left, right)...)
	w := Logger().WriterLevel(DebugLevel)
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to start socat: %w", err)
	}

	Info("[virt-serial] started socat (pid=%d): %s <-> %s", cmd.Process.Pid, left, right)

	m.cmds = append(m.cmds, cmd)
	m.links = append(m.links, left, right)
	return nil
}

// Pairs reports how many pairs are running.
func (m *SocatManager) Pairs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cmds)
}

// Cleanup stops all socat processes and removes created links. Safe to call twice.
func (m *SocatManager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true

	for _, cmd := range m.cmds {
		if cmd.Process != nil {
			Debug("[virt-serial] killing socat pid=%d", cmd.Process.Pid)
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	}

	for _, path := range m.links {
		if _, err := os.Lstat(path); err == nil {
			_ = os.Remove(path)
			Debug("[virt-serial] removed link: %s", path)
		}
	}

	Info("[virt-serial] cleanup complete (%d pairs)", len(m.cmds))
}
