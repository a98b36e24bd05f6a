package domain

import "time"

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	SourceID  string
	Fetched   int
	New       int
	Updated   int
	Skipped   int
	Errors    int
	Archived  int
	Published int
	Written   bool
	Partial   bool
	Duration  time.Duration
}

type SyncState struct {
	ID           int64     `db:"id"`
	SourceID     string    `db:"source_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	LastCount    int       `db:"last_count"`
	TotalSynced  int64     `db:"total_synced"`
}
