package device

import (
	"sync"

	"ReelMonitor/internal/util"
)

// Indicator is the status-light surface of the agent: a heartbeat that toggles
// while running, a light held on while a raddec is handled, and an error pulse.
type Indicator interface {
	Heartbeat()
	Raddec(on bool)
	Error()
}

// NopIndicator ignores every signal.
type NopIndicator struct{}

func (NopIndicator) Heartbeat()  {}
func (NopIndicator) Raddec(bool) {}
func (NopIndicator) Error()      {}

// LogIndicator records indicator changes at debug level and counts them.
type LogIndicator struct {
	mu        sync.Mutex
	heartbeat bool
	errors    int
}

// NewLogIndicator creates a LogIndicator with the heartbeat light off.
func NewLogIndicator() *LogIndicator { return &LogIndicator{} }

// Heartbeat toggles the heartbeat light.
func (l *LogIndicator) Heartbeat() {
	l.mu.Lock()
	l.heartbeat = !l.heartbeat
	on := l.heartbeat
	l.mu.Unlock()
	util.Logger().WithField("heartbeat", on).Trace("[indicator] toggle")
}

// Raddec logs the raddec light state.
func (l *LogIndicator) Raddec(on bool) {
	util.Logger().WithField("raddec", on).Trace("[indicator] raddec")
}

// Error pulses the error light.
func (l *LogIndicator) Error() {
	l.mu.Lock()
	l.errors++
	l.mu.Unlock()
	util.Debug("[indicator] error pulse")
}

// Errors returns the number of error pulses so far.
func (l *LogIndicator) Errors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}

// HeartbeatOn reports the current heartbeat light state.
func (l *LogIndicator) HeartbeatOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heartbeat
}
