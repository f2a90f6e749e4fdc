// Package legiscan exposes the gateway's legislative-data operations to the
// HTTP layer. The Facade is the only component the rest of the application
// talks to: it composes the response cache, the upstream client, the quota
// ledger, and the bulk scheduler so every operation follows the same
// discipline: serve from cache when fresh, otherwise consult the budget,
// call upstream, cache the success with an operation-specific TTL, and charge
// the call against the monthly quota.
//
// Upstream error envelopes are never cached; quota and upstream failures
// propagate to the caller as typed errors, and the facade itself never
// retries. Retry policy, if any, belongs to the route layer.
package legiscan

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vbc-hub/legis-gateway/internal/cache"
	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/scheduler"
	"github.com/vbc-hub/legis-gateway/internal/upstream"
)

var (
	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "legiscan_cache_hits_total",
		Help: "Facade reads served from cache, by operation.",
	}, []string{"operation"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "legiscan_cache_misses_total",
		Help: "Facade reads that required an upstream call, by operation.",
	}, []string{"operation"})
	upstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "legiscan_upstream_calls_total",
		Help: "Upstream calls attempted, by operation and outcome.",
	}, []string{"operation", "outcome"})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, upstreamCalls)
}

// UpstreamAPI is the slice of the upstream client the facade consumes.
// Implementations must return classified *upstream.Error values on failure.
type UpstreamAPI interface {
	GetBill(ctx context.Context, billID string) (*domain.Bill, error)
	GetBillText(ctx context.Context, docID string) (*domain.BillText, error)
	GetAmendment(ctx context.Context, amendmentID string) (*domain.Amendment, error)
	GetSupplement(ctx context.Context, supplementID string) (*domain.Supplement, error)
	GetRollCall(ctx context.Context, rollCallID string) (*domain.RollCall, error)
	GetPerson(ctx context.Context, peopleID string) (*domain.Person, error)
	GetSessionPeople(ctx context.Context, sessionID string) (*domain.SessionPeople, error)
	GetSponsoredList(ctx context.Context, peopleID string) (*domain.SponsoredList, error)
	GetSearch(ctx context.Context, state, query, page string) (*domain.SearchResult, error)
	GetMasterList(ctx context.Context, sessionID string) (*domain.MasterList, error)
	GetMasterListRaw(ctx context.Context, sessionID string) (*domain.MasterList, error)
	GetSessionList(ctx context.Context, state string) ([]domain.Session, error)
}

// Budget is the quota ledger contract the facade consumes.
type Budget interface {
	CheckBudget(ctx context.Context) error
	RecordSuccess(ctx context.Context) (int, error)
}

// Bulk is the admission-control contract for quota-expensive operations.
type Bulk interface {
	Schedule(ctx context.Context, name string, task scheduler.Task) error
}

// TTLs holds the per-operation cache lifetimes. Volatile data (search, raw
// master list) stays short; immutable documents (texts, amendments) keep for
// a week since their content never changes once published.
type TTLs struct {
	Bill           time.Duration
	Document       time.Duration
	RollCall       time.Duration
	Person         time.Duration
	Sponsored      time.Duration
	Search         time.Duration
	MasterList     time.Duration
	MasterListFull time.Duration
	Sessions       time.Duration
	Aggregate      time.Duration
}

// DefaultTTLs returns the operation lifetimes used in production.
func DefaultTTLs() TTLs {
	return TTLs{
		Bill:           time.Hour,
		Document:       7 * 24 * time.Hour,
		RollCall:       24 * time.Hour,
		Person:         24 * time.Hour,
		Sponsored:      6 * time.Hour,
		Search:         30 * time.Minute,
		MasterList:     30 * time.Minute,
		MasterListFull: time.Hour,
		Sessions:       24 * time.Hour,
		Aggregate:      time.Hour,
	}
}

// Facade is the public surface for legislative data.
type Facade struct {
	cache  *cache.ResponseCache
	api    UpstreamAPI
	budget Budget
	bulk   Bulk
	db     *gorm.DB
	log    zerolog.Logger

	prefix string
	state  string
	ttl    TTLs

	// Aggregation pacing (see blockchain.go).
	searchTerms []string
	batchSize   int
	termDelay   time.Duration
	batchDelay  time.Duration
}

// Options configures a Facade. Zero-value pacing fields fall back to the
// production defaults; tests shrink them to keep runs fast.
type Options struct {
	Prefix string
	State  string
	TTL    TTLs

	SearchTerms []string
	BatchSize   int
	TermDelay   time.Duration
	BatchDelay  time.Duration
}

// New wires the facade. db may be nil only in tests that never touch change
// detection.
func New(c *cache.ResponseCache, api UpstreamAPI, budget Budget, bulk Bulk, db *gorm.DB, opts Options, log zerolog.Logger) *Facade {
	ttl := opts.TTL
	if ttl == (TTLs{}) {
		ttl = DefaultTTLs()
	}
	f := &Facade{
		cache:       c,
		api:         api,
		budget:      budget,
		bulk:        bulk,
		db:          db,
		log:         log,
		prefix:      opts.Prefix,
		state:       opts.State,
		ttl:         ttl,
		searchTerms: opts.SearchTerms,
		batchSize:   opts.BatchSize,
		termDelay:   opts.TermDelay,
		batchDelay:  opts.BatchDelay,
	}
	if len(f.searchTerms) == 0 {
		f.searchTerms = defaultSearchTerms
	}
	if f.batchSize <= 0 {
		f.batchSize = 10
	}
	if f.termDelay <= 0 {
		f.termDelay = 2 * time.Second
	}
	if f.batchDelay <= 0 {
		f.batchDelay = time.Second
	}
	return f
}

// fetch runs the shared cache/budget/call/record flow for one operation.
// call must decode its result into the same destination dst points at, so a
// cache hit and an upstream fetch are indistinguishable to the caller.
func (f *Facade) fetch(ctx context.Context, op string, params map[string]string, ttl time.Duration, bulk bool, dst any, call func(context.Context) error) error {
	key := cache.Key(f.prefix, op, params)
	if f.cache.Get(ctx, key, dst) {
		cacheHits.WithLabelValues(op).Inc()
		return nil
	}
	cacheMisses.WithLabelValues(op).Inc()

	run := func(ctx context.Context) error {
		if err := f.budget.CheckBudget(ctx); err != nil {
			return err
		}
		if err := call(ctx); err != nil {
			upstreamCalls.WithLabelValues(op, "error").Inc()
			return err
		}
		upstreamCalls.WithLabelValues(op, "ok").Inc()

		f.cache.Set(ctx, key, dst, ttl)
		if _, err := f.budget.RecordSuccess(ctx); err != nil {
			// The call itself succeeded; a bookkeeping failure must not
			// turn it into a caller-visible error.
			f.log.Error().Err(err).Str("operation", op).Msg("failed to record quota usage")
		}
		return nil
	}

	if bulk {
		return f.bulk.Schedule(ctx, op, run)
	}
	return run(ctx)
}

// GetBill returns the full bill record for billID.
func (f *Facade) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	var b domain.Bill
	err := f.fetch(ctx, upstream.OpGetBill, map[string]string{"id": billID}, f.ttl.Bill, false, &b, func(ctx context.Context) error {
		got, err := f.api.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		b = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBillText returns one text document by doc id.
func (f *Facade) GetBillText(ctx context.Context, docID string) (*domain.BillText, error) {
	var t domain.BillText
	err := f.fetch(ctx, upstream.OpGetBillText, map[string]string{"id": docID}, f.ttl.Document, false, &t, func(ctx context.Context) error {
		got, err := f.api.GetBillText(ctx, docID)
		if err != nil {
			return err
		}
		t = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetAmendment returns one amendment document.
func (f *Facade) GetAmendment(ctx context.Context, amendmentID string) (*domain.Amendment, error) {
	var a domain.Amendment
	err := f.fetch(ctx, upstream.OpGetAmendment, map[string]string{"id": amendmentID}, f.ttl.Document, false, &a, func(ctx context.Context) error {
		got, err := f.api.GetAmendment(ctx, amendmentID)
		if err != nil {
			return err
		}
		a = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetSupplement returns one supplemental document.
func (f *Facade) GetSupplement(ctx context.Context, supplementID string) (*domain.Supplement, error) {
	var s domain.Supplement
	err := f.fetch(ctx, upstream.OpGetSupplement, map[string]string{"id": supplementID}, f.ttl.Document, false, &s, func(ctx context.Context) error {
		got, err := f.api.GetSupplement(ctx, supplementID)
		if err != nil {
			return err
		}
		s = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetRollCall returns one roll-call vote record.
func (f *Facade) GetRollCall(ctx context.Context, rollCallID string) (*domain.RollCall, error) {
	var r domain.RollCall
	err := f.fetch(ctx, upstream.OpGetRollCall, map[string]string{"id": rollCallID}, f.ttl.RollCall, false, &r, func(ctx context.Context) error {
		got, err := f.api.GetRollCall(ctx, rollCallID)
		if err != nil {
			return err
		}
		r = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetPerson returns one legislator record.
func (f *Facade) GetPerson(ctx context.Context, peopleID string) (*domain.Person, error) {
	var p domain.Person
	err := f.fetch(ctx, upstream.OpGetPerson, map[string]string{"id": peopleID}, f.ttl.Person, false, &p, func(ctx context.Context) error {
		got, err := f.api.GetPerson(ctx, peopleID)
		if err != nil {
			return err
		}
		p = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSessionPeople returns the legislator roster for a session.
func (f *Facade) GetSessionPeople(ctx context.Context, sessionID string) (*domain.SessionPeople, error) {
	var sp domain.SessionPeople
	err := f.fetch(ctx, upstream.OpGetSessionPeople, map[string]string{"id": sessionID}, f.ttl.Person, false, &sp, func(ctx context.Context) error {
		got, err := f.api.GetSessionPeople(ctx, sessionID)
		if err != nil {
			return err
		}
		sp = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// GetSponsoredList returns the bills sponsored by a legislator.
func (f *Facade) GetSponsoredList(ctx context.Context, peopleID string) (*domain.SponsoredList, error) {
	var sl domain.SponsoredList
	err := f.fetch(ctx, upstream.OpGetSponsoredList, map[string]string{"id": peopleID}, f.ttl.Sponsored, false, &sl, func(ctx context.Context) error {
		got, err := f.api.GetSponsoredList(ctx, peopleID)
		if err != nil {
			return err
		}
		sl = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

// Search runs a full-text query against the configured state. Searches sweep
// wide upstream and are bulk operations: concurrent searches serialize
// through the scheduler rather than racing the monthly budget.
func (f *Facade) Search(ctx context.Context, query, page string) (*domain.SearchResult, error) {
	params := map[string]string{"state": f.state, "query": query}
	if page != "" {
		params["page"] = page
	}
	var sr domain.SearchResult
	err := f.fetch(ctx, upstream.OpGetSearch, params, f.ttl.Search, true, &sr, func(ctx context.Context) error {
		got, err := f.api.GetSearch(ctx, f.state, query, page)
		if err != nil {
			return err
		}
		sr = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// GetMasterList returns the full master list for a session (bulk).
func (f *Facade) GetMasterList(ctx context.Context, sessionID string) (*domain.MasterList, error) {
	var ml domain.MasterList
	err := f.fetch(ctx, upstream.OpGetMasterList, map[string]string{"id": sessionID}, f.ttl.MasterListFull, true, &ml, func(ctx context.Context) error {
		got, err := f.api.GetMasterList(ctx, sessionID)
		if err != nil {
			return err
		}
		ml = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ml, nil
}

// GetMasterListRaw returns the hash-only master list for a session (bulk).
func (f *Facade) GetMasterListRaw(ctx context.Context, sessionID string) (*domain.MasterList, error) {
	var ml domain.MasterList
	err := f.fetch(ctx, upstream.OpGetMasterListRaw, map[string]string{"id": sessionID}, f.ttl.MasterList, true, &ml, func(ctx context.Context) error {
		got, err := f.api.GetMasterListRaw(ctx, sessionID)
		if err != nil {
			return err
		}
		ml = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ml, nil
}

// GetSessionList returns the sessions available for the configured state.
func (f *Facade) GetSessionList(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := f.fetch(ctx, upstream.OpGetSessionList, map[string]string{"state": f.state}, f.ttl.Sessions, false, &sessions, func(ctx context.Context) error {
		got, err := f.api.GetSessionList(ctx, f.state)
		if err != nil {
			return err
		}
		sessions = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
