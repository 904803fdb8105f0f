package parser

import (
	"strconv"
	"strings"

	"ReelMonitor/internal/model"
)

const lineEnd = "\r\n"

// CSVEncoder formats logfile lines. Fields are joined by Delimiter without
// quoting: values must not contain the delimiter (packets are hex).
type CSVEncoder struct {
	Delimiter      string
	IncludePackets bool
}

// NewCSVEncoder creates a new CSV encoder instance.
func NewCSVEncoder(delimiter string, includePackets bool) *CSVEncoder {
	return &CSVEncoder{Delimiter: delimiter, IncludePackets: includePackets}
}

// EncodeRaddec converts a flattened raddec into a raddec logfile line.
func (e *CSVEncoder) EncodeRaddec(timestamp int64, uptime string, r model.FlatRaddec) string {
	fields := []string{
		strconv.FormatInt(timestamp, 10),
		uptime,
		r.TransmitterID,
		strconv.Itoa(r.TransmitterIDType),
		r.ReceiverID,
		strconv.Itoa(r.RSSI),
		strconv.Itoa(r.NumberOfDecodings),
	}
	if e.IncludePackets {
		fields = append(fields, r.Packets...)
	}
	return strings.Join(fields, e.Delimiter) + lineEnd
}

// EncodeStats converts a reelceiverStatistics message into a stats logfile line.
func (e *CSVEncoder) EncodeStats(timestamp int64, uptime string, m model.InfrastructureMessage) string {
	fields := []string{
		strconv.FormatInt(timestamp, 10),
		uptime,
		m.ReceiverID,
		strconv.FormatInt(m.UptimeSeconds, 10),
		strconv.FormatInt(m.SendCount, 10),
		strconv.FormatInt(m.CRCPass, 10),
		strconv.FormatInt(m.CRCFail, 10),
	}
	return strings.Join(fields, e.Delimiter) + lineEnd
}
