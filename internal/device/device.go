// Package device defines a unified interface for line-oriented listener sources
// such as the reel serial port or a spawned tcpdump process.
package device

import "time"

// Device is a line source the listeners read from. Read-only sources such as
// ProcessDevice return an error from WriteLine; only the simulator writes.
type Device interface {
	// ReadLine returns the next line including its terminator, ErrReadTimeout
	// once timeout (> 0) elapses, or io.EOF at end of input and after Close.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n'. Optional.
	WriteLine(s string) error

	// Close releases the source. It may run while ReadLine is blocked.
	Close() error
}

// Reopener is implemented by devices that can recover after ErrPortLost.
type Reopener interface {
	Open() error
}
