package legiscan

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/vbc-hub/legis-gateway/internal/cache"
	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/quota"
)

// defaultSearchTerms is the query sweep used to assemble the digital-asset
// bill aggregate. Each term is a separate upstream search, so adding a term
// costs one quota unit per uncached sweep.
var defaultSearchTerms = []string{
	"blockchain",
	"digital asset",
	"cryptocurrency",
	"virtual currency",
	"distributed ledger",
}

const opBlockchainBills = "blockchainBills"

// GetBlockchainBills assembles the full-detail set of digital-asset bills
// for the configured state. The aggregate is expensive (one search per term
// plus one getBill per distinct hit), so it is cached as a single unit and
// rebuilt at most once per TTL window.
//
// Term searches run through the bulk scheduler one at a time with a pause
// between terms; detail fetches run in small batches with a pause between
// batches. A single failed detail fetch drops that bill from the aggregate
// rather than failing the sweep.
func (f *Facade) GetBlockchainBills(ctx context.Context) ([]domain.Bill, error) {
	key := cache.Key(f.prefix, opBlockchainBills, map[string]string{"state": f.state})
	var bills []domain.Bill
	if f.cache.Get(ctx, key, &bills) {
		cacheHits.WithLabelValues(opBlockchainBills).Inc()
		return bills, nil
	}
	cacheMisses.WithLabelValues(opBlockchainBills).Inc()

	ids, err := f.sweepSearchTerms(ctx)
	if err != nil {
		return nil, err
	}

	bills, err = f.fetchBillDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	f.cache.Set(ctx, key, bills, f.ttl.Aggregate)
	f.log.Info().
		Int("terms", len(f.searchTerms)).
		Int("distinct_bills", len(ids)).
		Int("fetched", len(bills)).
		Msg("rebuilt blockchain bill aggregate")
	return bills, nil
}

// sweepSearchTerms runs every configured term through Search and returns the
// distinct bill ids, ascending. Search itself is cached and bulk-scheduled,
// so repeated sweeps within the search TTL cost nothing upstream.
func (f *Facade) sweepSearchTerms(ctx context.Context) ([]int, error) {
	seen := make(map[int]struct{})
	for i, term := range f.searchTerms {
		if i > 0 {
			if err := pause(ctx, f.termDelay); err != nil {
				return nil, err
			}
		}
		sr, err := f.Search(ctx, term, "")
		if err != nil {
			return nil, err
		}
		for _, hit := range sr.Hits {
			seen[hit.BillID] = struct{}{}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// fetchBillDetails resolves ids to full bill records in batches. Per-bill
// failures are logged and skipped; a quota stop aborts the whole fetch since
// every remaining call would fail the same way.
func (f *Facade) fetchBillDetails(ctx context.Context, ids []int) ([]domain.Bill, error) {
	bills := make([]domain.Bill, 0, len(ids))
	for start := 0; start < len(ids); start += f.batchSize {
		if start > 0 {
			if err := pause(ctx, f.batchDelay); err != nil {
				return nil, err
			}
		}
		end := start + f.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			b, err := f.GetBill(ctx, strconv.Itoa(id))
			if err != nil {
				if errors.Is(err, quota.ErrQuotaExceeded) || ctx.Err() != nil {
					return nil, err
				}
				f.log.Warn().Err(err).Int("bill_id", id).Msg("skipping bill in aggregate")
				continue
			}
			bills = append(bills, *b)
		}
	}
	return bills, nil
}

// pause sleeps for d or returns early with the context's error.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
