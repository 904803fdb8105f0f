package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReelMonitor/internal/model"
)

func TestLatestStatsPerReceiver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.PutStats(model.InfrastructureMessage{Type: model.TypeReelceiverStatistics, ReceiverID: "rx-a", UptimeSeconds: 10}))
	require.NoError(t, s.PutStats(model.InfrastructureMessage{Type: model.TypeReelceiverStatistics, ReceiverID: "rx-b", UptimeSeconds: 5}))
	require.NoError(t, s.PutStats(model.InfrastructureMessage{Type: model.TypeReelceiverStatistics, ReceiverID: "rx-a", UptimeSeconds: 20, CRCFail: 1}))
	assert.Error(t, s.PutStats(model.InfrastructureMessage{}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	latest, err := s.LatestStats()
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(20), latest["rx-a"].UptimeSeconds)
	assert.Equal(t, int64(1), latest["rx-a"].CRCFail)
	assert.Equal(t, int64(5), latest["rx-b"].UptimeSeconds)
}

func TestCloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
