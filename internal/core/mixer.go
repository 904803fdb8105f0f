package core

import (
	"context"
	"time"

	"ReelMonitor/internal/model"
)

// Mixer merges decodings of the same transmission before they reach the dispatcher.
// Mix must close its output once in is closed or ctx is done.
type Mixer interface {
	Mix(ctx context.Context, in <-chan model.Raddec) <-chan model.Raddec
}

// PassthroughMixer forwards raddecs unchanged. Delay is accepted for
// configuration compatibility with real mixers and is not used.
type PassthroughMixer struct {
	Delay time.Duration
}

// Mix implements Mixer.
func (p PassthroughMixer) Mix(ctx context.Context, in <-chan model.Raddec) <-chan model.Raddec {
	out := make(chan model.Raddec, cap(in))
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
