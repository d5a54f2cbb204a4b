package store

import "time"

// NopLedger is used when no ledger path is configured or in dry-run mode.
// It never records anything, so every eligible job is alerted on each run.
type NopLedger struct{}

func NewNopLedger() *NopLedger { return &NopLedger{} }

func (l *NopLedger) HasAlerted(identityKey string) (bool, error) { return false, nil }
func (l *NopLedger) MarkAlerted(identityKey string) error        { return nil }
func (l *NopLedger) Cleanup(olderThan time.Duration) error        { return nil }
