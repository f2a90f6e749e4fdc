package legiscan

import (
	"context"
	"strconv"

	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/repo"
)

// ChangedBill is one bill flagged by change detection. New marks bills that
// had no stored hash at all, as opposed to bills whose hash moved.
type ChangedBill struct {
	BillID     int    `json:"bill_id"`
	Number     string `json:"number"`
	ChangeHash string `json:"change_hash"`
	New        bool   `json:"new"`
}

// DiffMasterList compares a hash-only master list against previously stored
// hashes and returns the entries that are new or whose hash moved, in master
// list order. With no stored hashes every entry is reported, which is the
// correct cold-start behavior: everything is unseen.
func DiffMasterList(stored map[int]string, ml *domain.MasterList) []ChangedBill {
	changed := make([]ChangedBill, 0)
	for _, e := range ml.Bills {
		prev, ok := stored[e.BillID]
		if ok && prev == e.ChangeHash {
			continue
		}
		changed = append(changed, ChangedBill{
			BillID:     e.BillID,
			Number:     e.Number,
			ChangeHash: e.ChangeHash,
			New:        !ok,
		})
	}
	return changed
}

// DetectChangedBills fetches the hash-only master list for a session, diffs
// it against the stored snapshot, persists the fresh hashes, and returns the
// bills that warrant a detail refetch. One upstream call per invocation at
// most; the list itself may come from cache.
func (f *Facade) DetectChangedBills(ctx context.Context, sessionID int) ([]ChangedBill, error) {
	ml, err := f.GetMasterListRaw(ctx, strconv.Itoa(sessionID))
	if err != nil {
		return nil, err
	}

	stored, err := repo.GetBillHashes(ctx, f.db, sessionID)
	if err != nil {
		return nil, err
	}

	changed := DiffMasterList(stored, ml)
	if len(changed) > 0 {
		if err := repo.UpsertBillHashes(ctx, f.db, sessionID, ml.Bills); err != nil {
			return nil, err
		}
	}

	f.log.Info().
		Int("session_id", sessionID).
		Int("list_size", len(ml.Bills)).
		Int("changed", len(changed)).
		Msg("master list change detection")
	return changed, nil
}
