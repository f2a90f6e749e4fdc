// Search and master-list HTTP handlers.
//
//   - GET  /search?q=&page=            (full-text search, bulk-scheduled)
//   - GET  /masterlist?session=&full=  (master list; hash-only by default)
//   - POST /masterlist/changes         (change-detection scan)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Search runs a full-text query against the configured state. Because the
// underlying upstream call is quota-expensive, concurrent searches serialize
// through the bulk scheduler; slow responses under load are expected.
func (h *Handlers) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q query parameter required")
		return
	}
	page := c.Query("page")
	if page != "" && !numericID(page) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "page must be numeric")
		return
	}

	sr, err := h.gw.Search(c.Request.Context(), q, page)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"summary": sr.Summary, "results": sr.Hits})
}

// GetMasterList returns the master list for a session. The default variant
// carries only bill numbers and change hashes; full=true includes status and
// last-action metadata at a higher quota cost.
func (h *Handlers) GetMasterList(c *gin.Context) {
	session := c.Query("session")
	if !numericID(session) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session query parameter must be numeric")
		return
	}

	full := strings.EqualFold(c.Query("full"), "true") || c.Query("full") == "1"

	var (
		ml  any
		err error
	)
	if full {
		ml, err = h.gw.GetMasterList(c.Request.Context(), session)
	} else {
		ml, err = h.gw.GetMasterListRaw(c.Request.Context(), session)
	}
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, ml)
}

// ChangesRequest is the JSON payload for a change-detection scan.
type ChangesRequest struct {
	// SessionID selects the session whose master list is scanned.
	SessionID int `json:"session_id" binding:"required" example:"2172"`
}

// ChangesResponse reports the outcome of a change-detection scan.
type ChangesResponse struct {
	SessionID int           `json:"session_id"`
	Changed   []ChangedBill `json:"changed"`
}

// ChangedBill mirrors the facade's change record for the wire.
type ChangedBill struct {
	BillID     int    `json:"bill_id"`
	Number     string `json:"number"`
	ChangeHash string `json:"change_hash"`
	New        bool   `json:"new"`
}

// DetectChanges scans the session's master list against the stored hash
// snapshot and returns the bills that are new or whose hash moved. The scan
// costs at most one upstream call; the snapshot persists across restarts.
func (h *Handlers) DetectChanges(c *gin.Context) {
	var req ChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session_id required, positive integer")
		return
	}

	changed, err := h.gw.DetectChangedBills(c.Request.Context(), req.SessionID)
	if err != nil {
		failGateway(c, err)
		return
	}

	out := make([]ChangedBill, 0, len(changed))
	for _, cb := range changed {
		out = append(out, ChangedBill{
			BillID:     cb.BillID,
			Number:     cb.Number,
			ChangeHash: cb.ChangeHash,
			New:        cb.New,
		})
	}
	ok(c, http.StatusOK, ChangesResponse{SessionID: req.SessionID, Changed: out})
}
