package model

import "time"

// SequenceCounter is the single row per scope behind the sequence issuer.
// Scope is "<prefix>:<YYYYMMDD>" — one counter per document family per day.
// The row is only ever mutated under SELECT ... FOR UPDATE; reading it and
// incrementing outside a lock is how duplicate sale numbers happen.
type SequenceCounter struct {
	Scope     string `gorm:"type:varchar(20);primaryKey"`
	Value     int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
