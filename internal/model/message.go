// Package model defines shared message structures for ReelMonitor.
package model

import (
	"sort"
	"strconv"
)

// Infrastructure message types.
const (
	TypeReelceiverStatistics = "reelceiverStatistics"
)

// RSSIEntry is one receiver's view of a transmission.
type RSSIEntry struct {
	ReceiverID        string `json:"receiverId"`
	ReceiverIDType    int    `json:"receiverIdType"`
	RSSI              int    `json:"rssi"`
	NumberOfDecodings int    `json:"numberOfDecodings"`
}

// Raddec is a radio decoding: one transmitter as seen by one or more receivers.
type Raddec struct {
	TransmitterID     string      `json:"transmitterId"`
	TransmitterIDType int         `json:"transmitterIdType"`
	RSSISignature     []RSSIEntry `json:"rssiSignature"`
	Packets           []string    `json:"packets,omitempty"`
	Timestamp         int64       `json:"timestamp,omitempty"`
}

// FlatRaddec is the single-receiver view written to the logfile.
type FlatRaddec struct {
	TransmitterID     string
	TransmitterIDType int
	ReceiverID        string
	ReceiverIDType    int
	RSSI              int
	NumberOfDecodings int
	Packets           []string
}

// Signature identifies the transmitter as "transmitterId/transmitterIdType".
func (r Raddec) Signature() string {
	return r.TransmitterID + "/" + strconv.Itoa(r.TransmitterIDType)
}

// Strongest returns the rssiSignature entry with the highest RSSI.
// ok is false when the raddec carries no signature at all.
func (r Raddec) Strongest() (RSSIEntry, bool) {
	if len(r.RSSISignature) == 0 {
		return RSSIEntry{}, false
	}
	entries := make([]RSSIEntry, len(r.RSSISignature))
	copy(entries, r.RSSISignature)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].RSSI > entries[j].RSSI })
	return entries[0], true
}

// Flatten collapses the raddec onto its strongest receiver.
func (r Raddec) Flatten() FlatRaddec {
	flat := FlatRaddec{
		TransmitterID:     r.TransmitterID,
		TransmitterIDType: r.TransmitterIDType,
		Packets:           r.Packets,
	}
	if s, ok := r.Strongest(); ok {
		flat.ReceiverID = s.ReceiverID
		flat.ReceiverIDType = s.ReceiverIDType
		flat.RSSI = s.RSSI
		flat.NumberOfDecodings = s.NumberOfDecodings
	}
	return flat
}

// InfrastructureMessage is a non-detection message from a listener.
// Only reelceiverStatistics messages carry the counter fields.
type InfrastructureMessage struct {
	Type           string `json:"type"`
	ReceiverID     string `json:"receiverId"`
	ReceiverIDType int    `json:"receiverIdType,omitempty"`
	UptimeSeconds  int64  `json:"uptimeSeconds"`
	SendCount      int64  `json:"sendCount"`
	CRCPass        int64  `json:"crcPass"`
	CRCFail        int64  `json:"crcFail"`
	Timestamp      int64  `json:"timestamp,omitempty"`
}

// IsLoggableStatistics reports whether the message should reach the stats logfile.
func (m InfrastructureMessage) IsLoggableStatistics() bool {
	return m.Type == TypeReelceiverStatistics && m.UptimeSeconds > 0
}
