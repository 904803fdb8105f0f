package core

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReelMonitor/internal/device"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/store"
)

// scriptDevice replays lines, then reports end of input.
type scriptDevice struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (d *scriptDevice) ReadLine(timeout time.Duration) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || len(d.lines) == 0 {
		return "", io.EOF
	}
	line := d.lines[0]
	d.lines = d.lines[1:]
	return line, nil
}

func (d *scriptDevice) WriteLine(string) error { return errors.New("read-only") }

func (d *scriptDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

const (
	raddecLine = `{"transmitterId":"fee150bada55","transmitterIdType":3,"rssiSignature":[{"receiverId":"001bc50940810000","receiverIdType":1,"rssi":-70,"numberOfDecodings":1}]}`
	statsLine  = `{"type":"reelceiverStatistics","receiverId":"001bc50940810000","uptimeSeconds":120,"sendCount":4,"crcPass":90,"crcFail":2}`
)

func TestListenerRoutesEvents(t *testing.T) {
	raddecs := make(chan model.Raddec, 4)
	messages := make(chan model.InfrastructureMessage, 4)
	dropped := 0
	l := &Listener{
		Name:     "reel",
		Device:   &scriptDevice{lines: []string{raddecLine + "\r\n", "\r\n", "garbage\n", statsLine + "\n"}},
		Decoder:  parser.NewJSONDecoder(),
		Raddecs:  raddecs,
		Messages: messages,
		OnDrop:   func(string) { dropped++ },
	}
	l.Run(context.Background())

	require.Len(t, raddecs, 1)
	require.Len(t, messages, 1)
	assert.Equal(t, "fee150bada55", (<-raddecs).TransmitterID)
	assert.Equal(t, int64(120), (<-messages).UptimeSeconds)
	assert.Zero(t, dropped)
}

func TestListenerDropsOnFullQueue(t *testing.T) {
	raddecs := make(chan model.Raddec, 1)
	var names []string
	l := &Listener{
		Name:     "tcpdump",
		Device:   &scriptDevice{lines: []string{raddecLine, raddecLine, raddecLine}},
		Decoder:  parser.NewJSONDecoder(),
		Raddecs:  raddecs,
		Messages: make(chan model.InfrastructureMessage),
		OnDrop:   func(n string) { names = append(names, n) },
	}
	l.Run(context.Background())

	assert.Len(t, raddecs, 1)
	assert.Equal(t, []string{"tcpdump", "tcpdump"}, names)
}

// flakyDevice loses its port once, then serves lines after Open.
type flakyDevice struct {
	scriptDevice
	lostOnce bool
	opened   bool
	opens    int
}

func (d *flakyDevice) ReadLine(timeout time.Duration) (string, error) {
	d.mu.Lock()
	if !d.lostOnce {
		d.lostOnce = true
		d.mu.Unlock()
		return "", device.ErrPortLost
	}
	opened := d.opened
	d.mu.Unlock()
	if !opened {
		return "", device.ErrNotOpen
	}
	return d.scriptDevice.ReadLine(timeout)
}

func (d *flakyDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	d.opened = true
	return nil
}

func TestListenerReopensLostPort(t *testing.T) {
	prev := reopenInterval
	reopenInterval = time.Millisecond
	defer func() { reopenInterval = prev }()

	raddecs := make(chan model.Raddec, 4)
	dev := &flakyDevice{scriptDevice: scriptDevice{lines: []string{raddecLine}}}
	l := &Listener{
		Name:     "reel",
		Device:   dev,
		Decoder:  parser.NewJSONDecoder(),
		Raddecs:  raddecs,
		Messages: make(chan model.InfrastructureMessage, 1),
	}
	l.Run(context.Background())

	assert.Equal(t, 1, dev.opens)
	require.Len(t, raddecs, 1)
}

func TestPassthroughMixer(t *testing.T) {
	in := make(chan model.Raddec, 2)
	out := PassthroughMixer{Delay: time.Second}.Mix(context.Background(), in)
	in <- model.Raddec{TransmitterID: "a"}
	in <- model.Raddec{TransmitterID: "b"}
	close(in)

	var got []string
	for r := range out {
		got = append(got, r.TransmitterID)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestHeartbeatToggles(t *testing.T) {
	ind := device.NewLogIndicator()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunHeartbeat(ctx, ind, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, ind.HeartbeatOn, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestSystemWritesLogfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.StorageMountPoint = dir
	cfg.ListenToReel = false
	cfg.StateDB = "auto"
	require.NoError(t, cfg.Validate())

	reel := &scriptDevice{lines: []string{raddecLine, statsLine}}
	sys, err := NewSystemFromConfig(&cfg, map[string]device.Device{"reel": reel})
	require.NoError(t, err)
	require.NotNil(t, sys.Store)

	require.NoError(t, sys.StartAll(context.Background()))

	require.Eventually(t, func() bool {
		latest, err := sys.Store.LatestStats()
		return err == nil && len(latest) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		m, _ := filepath.Glob(filepath.Join(dir, "monitor-raddec-*.csv"))
		if len(m) != 1 {
			return false
		}
		b, _ := os.ReadFile(m[0])
		return strings.Contains(string(b), ",fee150bada55,3,001bc50940810000,-70,1\r\n")
	}, 2*time.Second, 10*time.Millisecond)

	sys.StopAll()
	sys.StopAll()

	stats, _ := filepath.Glob(filepath.Join(dir, "monitor-stats-*.csv"))
	require.Len(t, stats, 1)
	b, err := os.ReadFile(stats[0])
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), ",,001bc50940810000,120,4,90,2\r\n"))

	_, err = os.Stat(filepath.Join(dir, "monitor-state.db"))
	assert.NoError(t, err)
}

func TestStartFailureReleasesResources(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.StorageMountPoint = dir
	cfg.ListenToReel = false
	cfg.StateDB = "auto"
	cfg.HTTPAddr = "127.0.0.1:-1"

	reel := &scriptDevice{lines: []string{raddecLine}}
	sys, err := NewSystemFromConfig(&cfg, map[string]device.Device{"reel": reel})
	require.NoError(t, err)

	require.Error(t, sys.StartAll(context.Background()))
	assert.True(t, reel.closed)

	// the bolt file lock is free again
	st, err := store.Open(cfg.StateDBPath())
	require.NoError(t, err)
	assert.NoError(t, st.Close())

	sys.StopAll()
}

func TestNewSystemMissingConfig(t *testing.T) {
	_, err := NewSystem(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
