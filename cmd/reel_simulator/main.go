// Reel simulator: writes decoded raddec and reelceiver statistics lines to a
// serial device. Use this for local testing when you don't have a reel.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ReelMonitor/internal/device"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/util"
)

type options struct {
	dev         string
	baud        int
	virtual     string
	receiver    string
	beacon      string
	interval    time.Duration
	statsEvery  int
	transmitter int
}

func main() {
	var opts options

	root := &cobra.Command{
		Use:          "reel_simulator",
		Short:        "Feed simulated reel output into a serial device",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			util.SetupLogger(true)
			return run(opts)
		},
	}
	f := root.Flags()
	f.StringVar(&opts.dev, "dev", "/tmp/reel-sim", "serial device to write into")
	f.IntVar(&opts.baud, "baud", device.DefaultReelBaud, "baud rate")
	f.StringVar(&opts.virtual, "virtual", "", "create a socat pair linking --dev to this path for the monitor")
	f.StringVar(&opts.receiver, "receiver", "001bc50940810000", "simulated reelceiver id")
	f.StringVar(&opts.beacon, "beacon", "ac233fa00001", "transmitter id of the uptime beacon")
	f.DurationVar(&opts.interval, "interval", time.Second, "time between raddecs")
	f.IntVar(&opts.statsEvery, "stats-every", 10, "emit statistics every N raddecs")
	f.IntVar(&opts.transmitter, "transmitters", 5, "number of simulated transmitters")

	if err := root.Execute(); err != nil {
		util.Error("%v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.virtual != "" {
		socat := util.NewSocatManager()
		defer socat.Cleanup()
		if err := socat.CreatePair(opts.dev, opts.virtual); err != nil {
			return err
		}
		// socat needs a moment to create the links
		time.Sleep(500 * time.Millisecond)
	}

	port, err := device.NewSerialDevice(opts.dev, opts.baud)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			util.Warn("close serial: %v", cerr)
		}
	}()

	util.Info("simulator sending to %s every %s", opts.dev, opts.interval)
	tick := time.NewTicker(opts.interval)
	defer tick.Stop()

	start := time.Now()
	sim := newSimulator(opts, rand.New(rand.NewSource(start.UnixNano())))
	for range tick.C {
		for _, line := range sim.next(time.Since(start)) {
			if err := port.WriteLine(line); err != nil {
				util.Warn("write err: %v", err)
				continue
			}
			util.Debug("sent: %s", line)
		}
	}
	return nil
}

type simulator struct {
	opts  options
	rng   *rand.Rand
	count int
	sent  int64
}

func newSimulator(opts options, rng *rand.Rand) *simulator {
	if opts.statsEvery <= 0 {
		opts.statsEvery = 10
	}
	if opts.transmitter <= 0 {
		opts.transmitter = 1
	}
	return &simulator{opts: opts, rng: rng}
}

// next returns the lines emitted for one tick: a raddec, plus the beacon
// and statistics on every statsEvery-th tick.
func (s *simulator) next(elapsed time.Duration) []string {
	s.count++
	var out []string

	id := fmt.Sprintf("fee150bada%02x", s.rng.Intn(s.opts.transmitter))
	if line, err := parser.EncodeRaddec(s.raddec(id, 2, nil)); err == nil {
		out = append(out, line)
	}

	if s.count%s.opts.statsEvery == 0 {
		beacon := s.raddec(s.opts.beacon, 2, []string{tlmPacket(elapsed)})
		if line, err := parser.EncodeRaddec(beacon); err == nil {
			out = append(out, line)
		}
		s.sent++
		stats := model.InfrastructureMessage{
			Type:           model.TypeReelceiverStatistics,
			ReceiverID:     s.opts.receiver,
			ReceiverIDType: 1,
			UptimeSeconds:  int64(elapsed / time.Second),
			SendCount:      s.sent,
			CRCPass:        int64(s.count),
			CRCFail:        int64(s.rng.Intn(3)),
		}
		if line, err := parser.EncodeMessage(stats); err == nil {
			out = append(out, line)
		}
	}
	return out
}

func (s *simulator) raddec(id string, idType int, packets []string) model.Raddec {
	return model.Raddec{
		TransmitterID:     id,
		TransmitterIDType: idType,
		RSSISignature: []model.RSSIEntry{{
			ReceiverID:        s.opts.receiver,
			ReceiverIDType:    1,
			RSSI:              -40 - s.rng.Intn(60),
			NumberOfDecodings: 1 + s.rng.Intn(3),
		}},
		Packets: packets,
	}
}

// tlmPacket builds an Eddystone-TLM hex packet whose trailing counter
// holds elapsed in tenths of a second.
func tlmPacket(elapsed time.Duration) string {
	header := "4225" + "0100a03f23ac" + "0201060303aafe"
	header += strings.Repeat("0", 30-len(header))
	return header + "1116aafe2000" + strings.Repeat("0", 16) + fmt.Sprintf("%08x", int64(elapsed/(100*time.Millisecond)))
}
