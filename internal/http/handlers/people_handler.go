// People and session HTTP handlers.
//
//   - GET /people/{id}             (legislator detail)
//   - GET /people/{id}/sponsored   (sponsored bills)
//   - GET /sessions                (session list for the configured state)
//   - GET /sessions/{id}/people    (legislator roster for a session)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPerson returns one legislator record by people id.
func (h *Handlers) GetPerson(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "people id must be numeric")
		return
	}
	p, err := h.gw.GetPerson(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetSponsored returns the bills sponsored by a legislator.
func (h *Handlers) GetSponsored(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "people id must be numeric")
		return
	}
	sl, err := h.gw.GetSponsoredList(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, sl)
}

// GetSessions returns the sessions available for the configured state.
func (h *Handlers) GetSessions(c *gin.Context) {
	sessions, err := h.gw.GetSessionList(c.Request.Context())
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"sessions": sessions})
}

// GetSessionPeople returns the legislator roster for a session.
func (h *Handlers) GetSessionPeople(c *gin.Context) {
	id := c.Param("id")
	if !numericID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be numeric")
		return
	}
	sp, err := h.gw.GetSessionPeople(c.Request.Context(), id)
	if err != nil {
		failGateway(c, err)
		return
	}
	ok(c, http.StatusOK, sp)
}
