package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ReelMonitor/internal/app"
	"ReelMonitor/internal/device"
	"ReelMonitor/internal/filter"
	"ReelMonitor/internal/metrics"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/store"
	"ReelMonitor/internal/util"
)

const (
	heartbeatInterval = 500 * time.Millisecond
	queueSize         = 256
)

// System manages the lifecycle of the listeners, the mixer, the Monitor and the status server.
type System struct {
	cfg       *model.Config
	Monitor   *Monitor
	Metrics   *metrics.Metrics
	Indicator device.Indicator
	App       *app.App
	Store     *store.Store
	Listeners []*Listener
	Mixer     Mixer

	raddecs  chan model.Raddec
	messages chan model.InfrastructureMessage

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
	startLock sync.Mutex
}

// NewSystem reads the YAML configuration at cfgPath and creates a System instance.
func NewSystem(cfgPath string) (*System, error) {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewSystemFromConfig(cfg, nil)
}

// NewSystemFromConfig builds a System. Devices are opened from cfg unless
// devices is non-nil, in which case those devices are used as listeners instead.
func NewSystemFromConfig(cfg *model.Config, devices map[string]device.Device) (*System, error) {
	s := &System{
		cfg:       cfg,
		Metrics:   metrics.New(),
		Indicator: device.NewLogIndicator(),
		Mixer:     PassthroughMixer{Delay: cfg.MixingDelay()},
		raddecs:   make(chan model.Raddec, queueSize),
		messages:  make(chan model.InfrastructureMessage, queueSize),
	}

	if path := cfg.StateDBPath(); path != "" {
		st, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		s.Store = st
	}

	hub := app.NewHub()
	deps := Deps{
		Filter:    filter.NewRaddecFilter(cfg.RaddecFilterParameters),
		Indicator: s.Indicator,
		Metrics:   s.Metrics,
	}
	if cfg.HTTPAddr != "" {
		deps.Feed = hub
	}
	if s.Store != nil {
		deps.Stats = s.Store
	}
	s.Monitor = NewMonitor(cfg, deps)

	var latest app.LatestStats
	if s.Store != nil {
		latest = s.Store
	}
	s.App = app.NewApp(hub, s.Metrics.Handler(), latest, s.Monitor)

	if devices == nil {
		var err error
		devices, err = openDevices(cfg)
		if err != nil {
			_ = s.Store.Close()
			return nil, err
		}
	}
	decoder := parser.NewJSONDecoder()
	for name, dev := range devices {
		s.Listeners = append(s.Listeners, &Listener{
			Name:     name,
			Device:   dev,
			Decoder:  decoder,
			Messages: s.messages,
			OnDrop:   func(n string) { s.Metrics.DroppedEvents.WithLabelValues(n).Inc() },
		})
	}
	return s, nil
}

// openDevices opens the reel and/or tcpdump sources selected in configuration.
func openDevices(cfg *model.Config) (map[string]device.Device, error) {
	devices := map[string]device.Device{}
	if cfg.ListenToReel {
		dev, err := device.NewSerialDevice(cfg.ReelDevice, cfg.ReelBaud)
		if err != nil {
			return nil, fmt.Errorf("reel listener: %w", err)
		}
		devices["reel"] = dev
	}
	if cfg.ListenToTcpdump {
		dev, err := device.NewProcessDevice(cfg.TcpdumpCommand)
		if err != nil {
			for _, d := range devices {
				_ = d.Close()
			}
			return nil, fmt.Errorf("tcpdump listener: %w", err)
		}
		devices["tcpdump"] = dev
	}
	if len(devices) == 0 {
		util.Warn("[system] no listener enabled; only the status server will run")
	}
	return devices, nil
}

// StartAll starts the listeners, the mixer, the heartbeat, the status server and the dispatcher.
func (s *System) StartAll(ctx context.Context) error {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if s.started {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.App.Start(s.cfg.HTTPAddr); err != nil {
		cancel()
		s.release()
		return err
	}

	// listeners feed the mixer when mixing is enabled, the dispatcher otherwise
	raw := s.raddecs
	var toDispatch <-chan model.Raddec = s.raddecs
	if s.cfg.EnableMixing {
		toDispatch = s.Mixer.Mix(ctx, raw)
		util.Info("[system] mixing enabled (delay %s)", s.cfg.MixingDelay())
	}

	for _, l := range s.Listeners {
		l.Raddecs = raw
		s.wg.Add(1)
		go func(l *Listener) {
			defer s.wg.Done()
			util.Info("[system] listener %s started", l.Name)
			l.Run(ctx)
		}(l)
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		RunHeartbeat(ctx, s.Indicator, heartbeatInterval)
	}()
	go func() {
		defer s.wg.Done()
		s.Monitor.Run(ctx, toDispatch, s.messages)
	}()

	s.started = true
	return nil
}

// StopAll stops all running components gracefully.
func (s *System) StopAll() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	s.closeDevices()
	s.wg.Wait()
	s.App.Stop()
	s.closeStore()
	s.started = false
}

// release frees what NewSystemFromConfig opened when the System never started.
func (s *System) release() {
	s.closeDevices()
	s.App.Stop()
	s.closeStore()
}

func (s *System) closeDevices() {
	for _, l := range s.Listeners {
		if err := l.Device.Close(); err != nil {
			util.Warn("[system] close listener %s: %v", l.Name, err)
		}
	}
}

func (s *System) closeStore() {
	if err := s.Store.Close(); err != nil {
		util.Warn("[system] close state db: %v", err)
	}
}

// RunHeartbeat toggles the heartbeat indicator every interval until ctx is done.
func RunHeartbeat(ctx context.Context, ind device.Indicator, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			ind.Heartbeat()
		}
	}
}
