// Package core contains the runtime logic and orchestration layer of ReelMonitor.
// It defines the Monitor dispatcher, the listeners feeding it and the System that
// wires them together from configuration.
package core

import (
	"context"
	"sync/atomic"
	"time"

	"ReelMonitor/internal/device"
	"ReelMonitor/internal/filter"
	"ReelMonitor/internal/logfile"
	"ReelMonitor/internal/metrics"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/uptime"
	"ReelMonitor/internal/util"
)

// Feed receives every line written to a logfile. kind is "raddec" or "stats".
type Feed interface {
	Broadcast(kind, line string)
}

// StatsRecorder keeps the latest statistics per receiver.
type StatsRecorder interface {
	PutStats(m model.InfrastructureMessage) error
}

// Deps are the collaborators of a Monitor. Nil fields get defaults.
type Deps struct {
	Filter    filter.Filter
	Indicator device.Indicator
	Metrics   *metrics.Metrics
	Feed      Feed
	Stats     StatsRecorder
	Open      logfile.OpenFunc
	Now       func() time.Time
}

// Monitor dispatches raddecs and infrastructure messages to the logfiles.
// All Handle methods must be called from one goroutine; Run is that goroutine.
type Monitor struct {
	logs      *logfile.Manager
	encoder   *parser.CSVEncoder
	uptime    *uptime.Tracker
	filter    filter.Filter
	indicator device.Indicator
	metrics   *metrics.Metrics
	feed      Feed
	stats     StatsRecorder
	now       func() time.Time

	beaconSignature string
	debug           bool

	active     atomic.Pointer[logfile.Set]
	uptimeText atomic.Pointer[string]
}

// NewMonitor builds a Monitor from configuration and collaborators.
func NewMonitor(cfg *model.Config, deps Deps) *Monitor {
	m := &Monitor{
		encoder:         parser.NewCSVEncoder(cfg.LogfileDelimiter, cfg.IncludePacketsInLogfile),
		uptime:          uptime.NewTracker(),
		filter:          deps.Filter,
		indicator:       deps.Indicator,
		metrics:         deps.Metrics,
		feed:            deps.Feed,
		stats:           deps.Stats,
		now:             deps.Now,
		beaconSignature: cfg.UptimeBeaconSignature,
		debug:           cfg.IsDebugMode,
	}
	if m.filter == nil {
		m.filter = filter.NewRaddecFilter(cfg.RaddecFilterParameters)
	}
	if m.indicator == nil {
		m.indicator = device.NopIndicator{}
	}
	if m.metrics == nil {
		m.metrics = metrics.New()
	}
	if m.now == nil {
		m.now = time.Now
	}

	m.logs = logfile.NewManager(logfile.Options{
		Dir:       cfg.StorageMountPoint,
		Prefix:    cfg.LogfileNamePrefix,
		Extension: cfg.LogfileExtension,
		Window:    cfg.RotationWindow(),
		OnRotate:  m.onRotate,
	}, deps.Open, func(err error) { m.handleError("logfile", err) })
	return m
}

// HandleRaddec updates the uptime from the beacon and logs the raddec if it passes the filter.
func (m *Monitor) HandleRaddec(r model.Raddec) {
	m.indicator.Raddec(true)
	defer m.indicator.Raddec(false)
	m.metrics.RaddecsReceived.Inc()

	if m.beaconSignature != "" && r.Signature() == m.beaconSignature {
		if err := m.uptime.Update(r.Packets); err != nil {
			m.handleError("uptime", err)
		}
		if ms, ok := m.uptime.Milliseconds(); ok {
			m.metrics.UptimeMs.Set(float64(ms))
			text := m.uptime.String()
			m.uptimeText.Store(&text)
		}
	}

	if m.filter.IsPassing(r) {
		m.writeRaddec(r)
	}
}

// HandleInfrastructureMessage logs reelceiverStatistics with a positive uptime and ignores the rest.
func (m *Monitor) HandleInfrastructureMessage(msg model.InfrastructureMessage) {
	if !msg.IsLoggableStatistics() {
		return
	}
	now := m.now()
	line := m.encoder.EncodeStats(now.UnixMilli(), m.uptime.String(), msg)
	m.logs.WriteStats(now, line)
	m.metrics.StatsWritten.Inc()
	m.broadcast("stats", line)

	if m.stats != nil {
		if err := m.stats.PutStats(msg); err != nil {
			m.handleError("store", err)
		}
	}
}

// Run handles events in arrival order until ctx is cancelled or both channels
// are closed, then closes the open logfiles.
func (m *Monitor) Run(ctx context.Context, raddecs <-chan model.Raddec, messages <-chan model.InfrastructureMessage) {
	defer m.Close()
	for raddecs != nil || messages != nil {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-raddecs:
			if !ok {
				raddecs = nil
				continue
			}
			m.HandleRaddec(r)
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			m.HandleInfrastructureMessage(msg)
		}
	}
}

// Close closes the open logfile set. The next write opens a new one.
func (m *Monitor) Close() {
	m.logs.Close()
	m.active.Store(nil)
}

// ActiveLogfiles returns the paths of the open logfile set. Safe from any goroutine.
func (m *Monitor) ActiveLogfiles() []string {
	s := m.active.Load()
	if s == nil {
		return nil
	}
	return []string{s.RaddecPath, s.StatsPath}
}

// Uptime returns the cached beacon uptime as written to the logfile. Safe from any goroutine.
func (m *Monitor) Uptime() string {
	if p := m.uptimeText.Load(); p != nil {
		return *p
	}
	return ""
}

func (m *Monitor) writeRaddec(r model.Raddec) {
	now := m.now()
	line := m.encoder.EncodeRaddec(now.UnixMilli(), m.uptime.String(), r.Flatten())
	m.logs.WriteRaddec(now, line)
	m.metrics.RaddecsWritten.Inc()
	m.broadcast("raddec", line)
}

func (m *Monitor) broadcast(kind, line string) {
	if m.feed != nil {
		m.feed.Broadcast(kind, line)
	}
}

func (m *Monitor) onRotate(s *logfile.Set) {
	m.active.Store(s)
	m.metrics.Rotations.Inc()
	util.Info("[monitor] logging to %s and %s", s.RaddecPath, s.StatsPath)
}

// handleError pulses the error indicator and, in debug mode, prints the error.
func (m *Monitor) handleError(kind string, err error) {
	m.indicator.Error()
	m.metrics.Errors.WithLabelValues(kind).Inc()
	if m.debug {
		util.Error("[monitor] %s: %v", kind, err)
	}
}
