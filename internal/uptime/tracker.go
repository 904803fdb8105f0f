// Package uptime tracks the device uptime broadcast by an Eddystone-TLM beacon.
package uptime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Eddystone-TLM marker and counter location inside a hex packet string.
const (
	tlmMarker      = "1116aafe2000"
	tlmMarkerStart = 30
	tlmMarkerEnd   = 42
	tlmCounterAt   = 58
	msPerTick      = 100 // the TLM counter ticks every 0.1 s
)

// ErrMalformedTail is returned when a TLM packet carries a non-hex counter.
var ErrMalformedTail = errors.New("malformed eddystone-tlm uptime")

// Tracker caches the latest uptime in milliseconds.
// It is owned by the dispatch goroutine and is not safe for concurrent use.
type Tracker struct {
	ms    uint64
	known bool
}

// NewTracker returns a Tracker with no uptime observed yet.
func NewTracker() *Tracker { return &Tracker{} }

// IsTLM reports whether packet carries the Eddystone-TLM marker.
func IsTLM(packet string) bool {
	return len(packet) >= tlmMarkerEnd && packet[tlmMarkerStart:tlmMarkerEnd] == tlmMarker
}

// Update scans packets in order; the last TLM packet with a valid counter wins.
// A malformed counter leaves the cached value unchanged and is reported in the
// returned error; packets after it are still examined.
func (t *Tracker) Update(packets []string) error {
	var errs []error
	for _, packet := range packets {
		if !IsTLM(packet) {
			continue
		}
		tail := ""
		if len(packet) > tlmCounterAt {
			tail = packet[tlmCounterAt:]
		}
		ticks, err := strconv.ParseUint(tail, 16, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrMalformedTail, packet, err))
			continue
		}
		if ticks > math.MaxUint64/msPerTick {
			errs = append(errs, fmt.Errorf("%w: %q: counter overflows milliseconds", ErrMalformedTail, packet))
			continue
		}
		t.ms = ticks * msPerTick
		t.known = true
	}
	return errors.Join(errs...)
}

// Milliseconds returns the cached uptime; ok is false until a TLM packet is seen.
func (t *Tracker) Milliseconds() (ms uint64, ok bool) {
	return t.ms, t.known
}

// String renders the uptime for the logfile, empty while unknown.
func (t *Tracker) String() string {
	if !t.known {
		return ""
	}
	return strconv.FormatUint(t.ms, 10)
}
