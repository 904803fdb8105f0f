package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReelMonitor/internal/parser"
	"ReelMonitor/internal/uptime"
)

func TestTLMPacketDecodes(t *testing.T) {
	tr := uptime.NewTracker()
	require.NoError(t, tr.Update([]string{tlmPacket(90 * time.Second)}))
	ms, ok := tr.Milliseconds()
	assert.True(t, ok)
	assert.Equal(t, uint64(90000), ms)
}

func TestSimulatorEmitsStatsPeriodically(t *testing.T) {
	sim := newSimulator(options{receiver: "rx", beacon: "ac233fa00001", statsEvery: 2, transmitter: 3}, rand.New(rand.NewSource(1)))
	dec := parser.NewJSONDecoder()

	first := sim.next(time.Second)
	require.Len(t, first, 1)
	ev, err := dec.Decode(first[0])
	require.NoError(t, err)
	require.NotNil(t, ev.Raddec)
	assert.Equal(t, "rx", ev.Raddec.RSSISignature[0].ReceiverID)

	second := sim.next(5 * time.Second)
	require.Len(t, second, 3)
	beacon, err := dec.Decode(second[1])
	require.NoError(t, err)
	assert.Equal(t, "ac233fa00001", beacon.Raddec.TransmitterID)
	stats, err := dec.Decode(second[2])
	require.NoError(t, err)
	require.NotNil(t, stats.Message)
	assert.True(t, stats.Message.IsLoggableStatistics())
	assert.Equal(t, int64(5), stats.Message.UptimeSeconds)
}
