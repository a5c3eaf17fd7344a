package orch

import "mysteryforge/internal/stage"

// LedgerEntry is one recorded cost/duration measurement for a stage attempt.
type LedgerEntry struct {
	Stage      string  `json:"stage"`
	Cost       float64 `json:"cost"`
	DurationMS int64   `json:"duration_ms"`
}

// Ledger is the append-only record of per-stage spend. Retried attempts
// append new entries under the same stage key; aggregation sums them, so
// retries accumulate rather than replace.
type Ledger struct {
	entries []LedgerEntry
}

// Record appends one measurement.
func (l *Ledger) Record(stageName string, meta stage.Meta) {
	l.entries = append(l.entries, LedgerEntry{
		Stage:      stageName,
		Cost:       meta.Cost,
		DurationMS: meta.DurationMS,
	})
}

// PerStageCost sums the recorded costs per stage.
func (l *Ledger) PerStageCost() map[string]float64 {
	out := make(map[string]float64, len(l.entries))
	for _, e := range l.entries {
		out[e.Stage] += e.Cost
	}
	return out
}

// PerStageDuration sums the recorded durations per stage, in milliseconds.
func (l *Ledger) PerStageDuration() map[string]int64 {
	out := make(map[string]int64, len(l.entries))
	for _, e := range l.entries {
		out[e.Stage] += e.DurationMS
	}
	return out
}

// TotalCost sums every recorded cost, retried attempts included.
func (l *Ledger) TotalCost() float64 {
	total := 0.0
	for _, e := range l.entries {
		total += e.Cost
	}
	return total
}

// Entries returns a copy of the raw measurements, for tests and replay.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
