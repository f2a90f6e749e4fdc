// Package repo implements the data persistence layer for the master-list
// hash snapshot, backed by GORM. The snapshot is what makes change detection
// cheap: the facade compares the upstream's hash-only master list against the
// stored hashes and only bills whose hash moved (or are new) warrant a full
// detail refetch.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vbc-hub/legis-gateway/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// GetBillHashes returns the stored change hashes for a session, keyed by
// bill id. An empty map (never nil) is returned when no snapshot exists yet.
func GetBillHashes(ctx context.Context, db *gorm.DB, sessionID int) (map[int]string, error) {
	var rows []domain.BillHash
	if err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]string, len(rows))
	for _, r := range rows {
		out[r.BillID] = r.ChangeHash
	}
	return out, nil
}

// UpsertBillHashes writes the current master-list hashes for a session,
// inserting new rows and updating rows whose hash moved. Rows for bills no
// longer present upstream are left in place; they are harmless and keep
// history should a bill reappear.
func UpsertBillHashes(ctx context.Context, db *gorm.DB, sessionID int, entries []domain.MasterListEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]domain.BillHash, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, domain.BillHash{
			SessionID:  sessionID,
			BillID:     e.BillID,
			Number:     e.Number,
			ChangeHash: e.ChangeHash,
			UpdatedAt:  now,
		})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "bill_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"number", "change_hash", "updated_at"}),
		}).
		Create(&rows).Error
}

// CountBillHashes returns the number of snapshot rows held for a session.
func CountBillHashes(ctx context.Context, db *gorm.DB, sessionID int) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.BillHash{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return n, err
}
