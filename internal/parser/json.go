package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ReelMonitor/internal/model"
)

// ErrEmptyLine is returned for blank listener lines.
var ErrEmptyLine = errors.New("empty line")

// JSONDecoder decodes one JSON object per line. Objects with a "type" field are
// infrastructure messages; objects with a "transmitterId" are raddecs.
type JSONDecoder struct{}

// NewJSONDecoder creates a new JSON decoder.
func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

type probe struct {
	Type          *string `json:"type"`
	TransmitterID *string `json:"transmitterId"`
}

// Decode implements Decoder.
func (d *JSONDecoder) Decode(line string) (Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, ErrEmptyLine
	}
	b := []byte(line)

	var p probe
	if err := json.Unmarshal(b, &p); err != nil {
		return Event{}, fmt.Errorf("invalid json: %w", err)
	}

	switch {
	case p.Type != nil:
		var m model.InfrastructureMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return Event{}, fmt.Errorf("invalid infrastructure message: %w", err)
		}
		return Event{Message: &m}, nil
	case p.TransmitterID != nil:
		var r model.Raddec
		if err := json.Unmarshal(b, &r); err != nil {
			return Event{}, fmt.Errorf("invalid raddec: %w", err)
		}
		return Event{Raddec: &r}, nil
	default:
		return Event{}, errors.New("neither raddec nor infrastructure message")
	}
}

// EncodeRaddec encodes a raddec as a single JSON line, the inverse of Decode.
func EncodeRaddec(r model.Raddec) (string, error) {
	b, err := json.Marshal(r)
	return string(b), err
}

// EncodeMessage encodes an infrastructure message as a single JSON line.
func EncodeMessage(m model.InfrastructureMessage) (string, error) {
	b, err := json.Marshal(m)
	return string(b), err
}
