// Package quota tracks calls made to the upstream API within the current
// calendar month, enforces the hard monthly ceiling, and fires a one-time
// webhook alert when usage crosses the warning threshold.
//
// The counter lives in the shared key-value store under a period key of the
// form "<prefix>:quota:YYYY-MM". Increments use the store's atomic Incr so
// concurrent requests cannot undercount; the key's TTL is reset on every
// increment to cover at least the remainder of the month plus a safety
// margin, letting stale periods expire on their own.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vbc-hub/legis-gateway/internal/cache"
)

// ErrQuotaExceeded signals that the monthly call budget is exhausted. It is
// distinguishable from upstream errors so route handlers can answer with a
// "try again later" condition instead of a generic failure.
var ErrQuotaExceeded = errors.New("quota: monthly call limit reached")

var (
	quotaUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "legiscan_quota_calls_used",
		Help: "Upstream calls recorded against the current monthly quota.",
	})
	quotaRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "legiscan_quota_rejected_total",
		Help: "Call attempts rejected because the monthly quota was exhausted.",
	})
)

func init() {
	prometheus.MustRegister(quotaUsage, quotaRejected)
}

// Notifier delivers the one-shot threshold alert. Implementations must be
// best-effort; the ledger swallows their errors.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Ledger enforces the monthly upstream call budget.
type Ledger struct {
	store    cache.Store
	notifier Notifier
	log      zerolog.Logger

	prefix       string
	limit        int
	threshold    int
	periodExpiry time.Duration

	now func() time.Time // test seam
}

// Options configures a Ledger.
type Options struct {
	Prefix         string
	MonthlyLimit   int
	AlertThreshold int
	PeriodExpiry   time.Duration
}

// NewLedger builds a Ledger over store. notifier may be nil when no alert
// webhook is configured.
func NewLedger(store cache.Store, notifier Notifier, opts Options, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:        store,
		notifier:     notifier,
		log:          log,
		prefix:       opts.Prefix,
		limit:        opts.MonthlyLimit,
		threshold:    opts.AlertThreshold,
		periodExpiry: opts.PeriodExpiry,
		now:          time.Now,
	}
}

// PeriodKey returns the storage key for the current monthly period.
func (l *Ledger) PeriodKey() string {
	return fmt.Sprintf("%s:quota:%s", l.prefix, l.now().UTC().Format("2006-01"))
}

func (l *Ledger) alertKey() string {
	return l.PeriodKey() + ":alerted"
}

// Usage returns the call count recorded for the current period. An absent
// key reads as zero; storage failures are returned to the caller.
func (l *Ledger) Usage(ctx context.Context) (int, error) {
	data, err := l.store.Get(ctx, l.PeriodKey())
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(string(data), "%d", &n); err != nil {
		return 0, fmt.Errorf("quota: corrupt counter %q: %w", data, err)
	}
	return n, nil
}

// CheckBudget verifies the current period is under the hard limit. It does
// not consume budget; RecordSuccess charges the call after it succeeds.
//
// When the counter's storage is unreachable the call is allowed and logged
// loudly: the bulk scheduler's independent admission cap still bounds the
// expensive operations, and blocking all traffic on a cache outage would be
// a worse failure mode than a temporarily unmetered window.
func (l *Ledger) CheckBudget(ctx context.Context) error {
	used, err := l.Usage(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("quota storage unreachable, allowing call without budget check")
		return nil
	}
	if used >= l.limit {
		quotaRejected.Inc()
		return ErrQuotaExceeded
	}
	return nil
}

// RecordSuccess charges one successful upstream call against the current
// period and returns the new count. The period key's expiry is reset so the
// counter outlives the month plus a safety margin, and the alert threshold
// is checked against the returned count.
func (l *Ledger) RecordSuccess(ctx context.Context) (int, error) {
	key := l.PeriodKey()
	n, err := l.store.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := l.store.Expire(ctx, key, l.periodExpiry); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to refresh quota key expiry")
	}
	quotaUsage.Set(float64(n))
	l.maybeAlert(ctx, int(n))
	return int(n), nil
}

// maybeAlert dispatches the one-shot warning the first time count reaches
// the threshold. Delivery failures are logged and swallowed; a failure to
// notify must never surface as a call failure.
func (l *Ledger) maybeAlert(ctx context.Context, count int) {
	if l.notifier == nil || count < l.threshold {
		return
	}

	// The sent flag lives next to the counter and expires with it, so a new
	// period starts with a fresh alert budget.
	sentKey := l.alertKey()
	if _, err := l.store.Get(ctx, sentKey); err == nil {
		return // already sent this period
	} else if !errors.Is(err, cache.ErrNotFound) {
		l.log.Warn().Err(err).Msg("could not read quota alert flag, skipping alert")
		return
	}

	text := fmt.Sprintf("LegiScan quota warning: %d of %d monthly calls used", count, l.limit)
	if err := l.notifier.Notify(ctx, text); err != nil {
		l.log.Warn().Err(err).Msg("quota alert delivery failed")
		return
	}
	if err := l.store.Set(ctx, sentKey, []byte("1"), l.periodExpiry); err != nil {
		l.log.Warn().Err(err).Msg("failed to persist quota alert flag")
	}
	l.log.Warn().Int("used", count).Int("limit", l.limit).Msg("quota alert threshold crossed")
}
