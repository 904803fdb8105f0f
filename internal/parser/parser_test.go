package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReelMonitor/internal/model"
)

func sampleFlat() model.FlatRaddec {
	return model.FlatRaddec{
		TransmitterID:     "fee150bada55",
		TransmitterIDType: 3,
		ReceiverID:        "001bc50940810000",
		ReceiverIDType:    1,
		RSSI:              -72,
		NumberOfDecodings: 2,
		Packets:           []string{"061bbada55e1eefe0201041103", "0a1bbada55e1eefe02010611"},
	}
}

func TestEncodeRaddecWithoutPackets(t *testing.T) {
	e := NewCSVEncoder(",", false)
	line := e.EncodeRaddec(1646489229000, "1000", sampleFlat())

	require.True(t, strings.HasSuffix(line, "\r\n"))
	fields := strings.Split(strings.TrimSuffix(line, "\r\n"), ",")
	assert.Len(t, fields, 7)
	assert.Equal(t, "1646489229000,1000,fee150bada55,3,001bc50940810000,-72,2\r\n", line)
}

func TestEncodeRaddecWithPackets(t *testing.T) {
	e := NewCSVEncoder(",", true)
	line := e.EncodeRaddec(1646489229000, "", sampleFlat())

	fields := strings.Split(strings.TrimSuffix(line, "\r\n"), ",")
	require.Len(t, fields, 9)
	assert.Equal(t, "", fields[1])
	assert.Equal(t, "061bbada55e1eefe0201041103", fields[7])
	assert.Equal(t, "0a1bbada55e1eefe02010611", fields[8])
}

func TestEncodeRaddecCustomDelimiter(t *testing.T) {
	e := NewCSVEncoder(";", false)
	line := e.EncodeRaddec(1, "2", sampleFlat())
	assert.Equal(t, "1;2;fee150bada55;3;001bc50940810000;-72;2\r\n", line)
}

func TestEncodeStats(t *testing.T) {
	e := NewCSVEncoder(",", true)
	line := e.EncodeStats(1646489229000, "500", model.InfrastructureMessage{
		Type:          model.TypeReelceiverStatistics,
		ReceiverID:    "001bc50940810000",
		UptimeSeconds: 3600,
		SendCount:     12,
		CRCPass:       1000,
		CRCFail:       3,
	})
	assert.Equal(t, "1646489229000,500,001bc50940810000,3600,12,1000,3\r\n", line)
}

func TestDecodeRaddec(t *testing.T) {
	d := NewJSONDecoder()
	ev, err := d.Decode(`{"transmitterId":"fee150bada55","transmitterIdType":3,` +
		`"rssiSignature":[{"receiverId":"001bc50940810000","receiverIdType":1,"rssi":-72,"numberOfDecodings":2}],` +
		`"packets":["061bbada55"]}` + "\r\n")
	require.NoError(t, err)
	require.NotNil(t, ev.Raddec)
	assert.Nil(t, ev.Message)
	assert.Equal(t, "fee150bada55/3", ev.Raddec.Signature())
	assert.Equal(t, -72, ev.Raddec.Flatten().RSSI)
	assert.Equal(t, []string{"061bbada55"}, ev.Raddec.Packets)
}

func TestDecodeInfrastructureMessage(t *testing.T) {
	d := NewJSONDecoder()
	ev, err := d.Decode(`{"type":"reelceiverStatistics","receiverId":"001bc50940810000",` +
		`"uptimeSeconds":60,"sendCount":1,"crcPass":20,"crcFail":0}`)
	require.NoError(t, err)
	require.NotNil(t, ev.Message)
	assert.Nil(t, ev.Raddec)
	assert.True(t, ev.Message.IsLoggableStatistics())
	assert.Equal(t, int64(20), ev.Message.CRCPass)
}

func TestDecodeErrors(t *testing.T) {
	d := NewJSONDecoder()

	_, err := d.Decode("   ")
	assert.ErrorIs(t, err, ErrEmptyLine)

	_, err = d.Decode("not json")
	assert.Error(t, err)

	_, err = d.Decode(`{"foo":1}`)
	assert.Error(t, err)

	_, err = d.Decode(`{"transmitterId":"aa","transmitterIdType":"x"}`)
	assert.Error(t, err)
}

func TestEncodeDecodeRaddecLine(t *testing.T) {
	in := model.Raddec{
		TransmitterID:     "aabbccddeeff",
		TransmitterIDType: 2,
		RSSISignature:     []model.RSSIEntry{{ReceiverID: "r1", ReceiverIDType: 1, RSSI: -50, NumberOfDecodings: 1}},
	}
	line, err := EncodeRaddec(in)
	require.NoError(t, err)

	ev, err := NewJSONDecoder().Decode(line)
	require.NoError(t, err)
	assert.Equal(t, in, *ev.Raddec)
}
