package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"ReelMonitor/internal/device"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/util"
)

const listenerReadTimeout = 500 * time.Millisecond

// Retry delays after a failed read, and after losing the port.
var (
	retryInterval  = 100 * time.Millisecond
	reopenInterval = time.Second
)

// Listener reads lines from a Device, decodes them and enqueues the result
// for the dispatcher. It never blocks on a full queue: the event is dropped.
type Listener struct {
	Name     string
	Device   device.Device
	Decoder  parser.Decoder
	Raddecs  chan<- model.Raddec
	Messages chan<- model.InfrastructureMessage

	// OnDrop, if set, is called with the listener name for every dropped event.
	OnDrop func(name string)
}

// Run loops until ctx is cancelled or the device reaches end of input.
func (l *Listener) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := l.Device.ReadLine(listenerReadTimeout)
		if errors.Is(err, device.ErrReadTimeout) {
			continue
		}
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			util.Warn("[listener %s] end of input", l.Name)
			return
		}
		if err != nil && line == "" {
			// transient error: wait and continue
			util.Debug("[listener %s] read err: %v", l.Name, err)
			wait := retryInterval
			if lost(err) {
				wait = reopenInterval
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if lost(err) {
				l.reopen()
			}
			continue
		}

		l.handleLine(line)
	}
}

func lost(err error) bool {
	return errors.Is(err, device.ErrPortLost) || errors.Is(err, device.ErrNotOpen)
}

// reopen retries the device if it supports reopening after a lost port.
func (l *Listener) reopen() {
	r, ok := l.Device.(device.Reopener)
	if !ok {
		return
	}
	if err := r.Open(); err != nil {
		util.Warn("[listener %s] reopen: %v", l.Name, err)
		return
	}
	util.Info("[listener %s] reopened", l.Name)
}

func (l *Listener) handleLine(line string) {
	ev, err := l.Decoder.Decode(line)
	if errors.Is(err, parser.ErrEmptyLine) {
		return
	}
	if err != nil {
		util.Warn("[listener %s] decode err: %v (%s)", l.Name, err, strings.TrimSpace(line))
		return
	}

	switch {
	case ev.Raddec != nil:
		select {
		case l.Raddecs <- *ev.Raddec:
		default:
			l.drop()
		}
	case ev.Message != nil:
		select {
		case l.Messages <- *ev.Message:
		default:
			l.drop()
		}
	}
}

func (l *Listener) drop() {
	util.Warn("[listener %s] queue full, drop", l.Name)
	if l.OnDrop != nil {
		l.OnDrop(l.Name)
	}
}
