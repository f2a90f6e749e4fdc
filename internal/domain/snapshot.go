// Package domain defines the persistence model used by master-list change
// detection. This type is mapped with GORM and shared between the repository
// layer and the facade.
package domain

import "time"

// BillHash is the stored change hash for a single bill within a session,
// persisted so a restart does not force a full detail refetch of every bill.
// A bill is considered changed when the upstream master list reports a
// different change_hash than the stored row, or when no row exists yet.
type BillHash struct {
	SessionID  int       `gorm:"type:INTEGER NOT NULL;primaryKey;autoIncrement:false"`
	BillID     int       `gorm:"type:INTEGER NOT NULL;primaryKey;autoIncrement:false"`
	Number     string    `gorm:"type:TEXT NOT NULL"`
	ChangeHash string    `gorm:"type:TEXT NOT NULL"`
	UpdatedAt  time.Time `gorm:"type:DATETIME NOT NULL"`
}

// TableName implements the GORM tabler interface.
func (BillHash) TableName() string { return "bill_hashes" }
