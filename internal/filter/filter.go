// Package filter decides which raddecs reach the logfile.
package filter

import "ReelMonitor/internal/model"

// Filter is a pass/fail predicate over a raddec.
type Filter interface {
	IsPassing(r model.Raddec) bool
}

// RaddecFilter compares the strongest receiver of a raddec against fixed thresholds.
// Unset thresholds accept everything.
type RaddecFilter struct {
	minRSSI   *int
	maxRSSI   *int
	receivers map[string]struct{}
}

// NewRaddecFilter builds a filter from the configured parameters.
func NewRaddecFilter(p model.FilterParameters) *RaddecFilter {
	f := &RaddecFilter{minRSSI: p.MinRSSI, maxRSSI: p.MaxRSSI}
	if len(p.AcceptedReceiverIDs) > 0 {
		f.receivers = make(map[string]struct{}, len(p.AcceptedReceiverIDs))
		for _, id := range p.AcceptedReceiverIDs {
			f.receivers[id] = struct{}{}
		}
	}
	return f
}

// IsPassing implements Filter. A raddec without any rssiSignature entry
// passes only when no threshold is configured.
func (f *RaddecFilter) IsPassing(r model.Raddec) bool {
	s, ok := r.Strongest()
	if !ok {
		return f.minRSSI == nil && f.maxRSSI == nil && f.receivers == nil
	}
	if f.minRSSI != nil && s.RSSI < *f.minRSSI {
		return false
	}
	if f.maxRSSI != nil && s.RSSI > *f.maxRSSI {
		return false
	}
	if f.receivers != nil {
		if _, ok := f.receivers[s.ReceiverID]; !ok {
			return false
		}
	}
	return true
}
