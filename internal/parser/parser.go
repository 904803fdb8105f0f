// Package parser turns listener lines into raddecs and infrastructure messages,
// and turns those back into logfile CSV lines.
//
// CSV raddec logfile format:
//
//	TIMESTAMP,UPTIME_MS,TRANSMITTER_ID,TRANSMITTER_ID_TYPE,RECEIVER_ID,RSSI,NUMBER_OF_DECODINGS[,PACKET...]
//
// CSV stats logfile format:
//
//	TIMESTAMP,UPTIME_MS,RECEIVER_ID,UPTIME_SECONDS,SEND_COUNT,CRC_PASS,CRC_FAIL
package parser

import "ReelMonitor/internal/model"

// Event is one decoded listener line. Exactly one of Raddec and Message is set.
type Event struct {
	Raddec  *model.Raddec
	Message *model.InfrastructureMessage
}

// Decoder converts one line read from a listener into an Event.
type Decoder interface {
	Decode(line string) (Event, error)
}
