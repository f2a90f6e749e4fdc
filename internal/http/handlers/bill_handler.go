// Bill and document HTTP handlers.
//
// This file exposes REST endpoints for bill resources:
//   - GET /bills/blockchain        (digital-asset aggregate)
//   - GET /bills/{id}              (full bill detail)
//   - GET /texts/{docID}           (bill text document)
//   - GET /amendments/{id}
//   - GET /supplements/{id}
//   - GET /rollcalls/{id}
//
// Handlers are transport-thin: they validate input, call the data facade, and
// translate results (including quota stops and upstream failures) into HTTP
// responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/http/middleware"
	"github.com/vbc-hub/legis-gateway/internal/legiscan"
	"github.com/vbc-hub/legis-gateway/internal/quota"
	"github.com/vbc-hub/legis-gateway/internal/upstream"
)

//
// Facade contract (context-aware)
//

// Gateway defines the legislative-data operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. *legiscan.Facade satisfies
// this interface.
type Gateway interface {
	GetBill(ctx context.Context, billID string) (*domain.Bill, error)
	GetBillText(ctx context.Context, docID string) (*domain.BillText, error)
	GetAmendment(ctx context.Context, amendmentID string) (*domain.Amendment, error)
	GetSupplement(ctx context.Context, supplementID string) (*domain.Supplement, error)
	GetRollCall(ctx context.Context, rollCallID string) (*domain.RollCall, error)
	GetPerson(ctx context.Context, peopleID string) (*domain.Person, error)
	GetSessionPeople(ctx context.Context, sessionID string) (*domain.SessionPeople, error)
	GetSponsoredList(ctx context.Context, peopleID string) (*domain.SponsoredList, error)
	Search(ctx context.Context, query, page string) (*domain.SearchResult, error)
	GetMasterList(ctx context.Context, sessionID string) (*domain.MasterList, error)
	GetMasterListRaw(ctx context.Context, sessionID string) (*domain.MasterList, error)
	GetSessionList(ctx context.Context) ([]domain.Session, error)
	GetBlockchainBills(ctx context.Context) ([]domain.Bill, error)
	DetectChangedBills(ctx context.Context, sessionID int) ([]legiscan.ChangedBill, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for bills, documents, people, sessions,
// search, and the master list. It depends on the Gateway interface to keep
// transport concerns separate from quota and cache logic.
type Handlers struct {
	gw Gateway
}

// New constructs a Handlers instance bound to the given gateway.
func New(gw Gateway) *Handlers {
	return &Handlers{gw: gw}
}

//
// Helpers
//

// numericID validates that a path parameter is a plain decimal id. The
// upstream addresses every record by integer id; rejecting anything else here
// avoids burning quota on requests that can only fail.
func numericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// failGateway translates facade errors into the public error contract.
//
// Quota stops and upstream throttling both surface as 429 with a retry hint:
// the client cannot tell them apart and should react the same way. An
// unauthorized upstream answer means the configured API key is bad, which is
// a deployment fault: logged loudly but reported to the client without detail.
func failGateway(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		fail(c, http.StatusTooManyRequests, ErrCodeQuotaExhausted, "service temporarily limited, try again later")
	case upstream.IsKind(err, upstream.KindRateLimited):
		fail(c, http.StatusTooManyRequests, ErrCodeUpstreamRateLimited, "service temporarily limited, try again later")
	case upstream.IsKind(err, upstream.KindUnauthorized):
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("upstream rejected the configured API key")
		fail(c, http.StatusUnauthorized, ErrCodeUpstreamUnauthorized, "upstream authentication failed")
	case upstream.IsKind(err, upstream.KindNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "resource not found")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		c.Abort()
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpstreamError, "upstream request failed")
	}
}

//
// Handlers
//

// GetBill returns the full bill record for a bill id.
func (h *Handlers) GetBill(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "bill id must be numeric")
		return
	}
	b, err := h.gw.GetBill(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// GetBlockchainBills returns the aggregated digital-asset bill set for the
// configured state. The first call after the aggregate TTL expires is slow
// (multiple upstream calls behind the bulk scheduler); subsequent calls are
// served from cache.
func (h *Handlers) GetBlockchainBills(c *gin.Context) {
	bills, err := h.gw.GetBlockchainBills(c.Request.Context())
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": len(bills), "bills": bills})
}

// GetBillText returns one text document by doc id.
func (h *Handlers) GetBillText(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "doc id must be numeric")
		return
	}
	t, err := h.gw.GetBillText(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// GetAmendment returns one amendment document by id.
func (h *Handlers) GetAmendment(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amendment id must be numeric")
		return
	}
	a, err := h.gw.GetAmendment(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}

// GetSupplement returns one supplemental document by id.
func (h *Handlers) GetSupplement(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "supplement id must be numeric")
		return
	}
	s, err := h.gw.GetSupplement(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// GetRollCall returns one roll-call vote record by id.
func (h *Handlers) GetRollCall(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "roll call id must be numeric")
		return
	}
	r, err := h.gw.GetRollCall(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}
