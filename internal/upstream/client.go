package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbc-hub/legis-gateway/internal/domain"
)

// Operation names accepted by the upstream. The facade passes these through
// both to the wire and into cache keys, so they must match exactly.
const (
	OpGetBill          = "getBill"
	OpGetBillText      = "getBillText"
	OpGetAmendment     = "getAmendment"
	OpGetSupplement    = "getSupplement"
	OpGetRollCall      = "getRollCall"
	OpGetPerson        = "getPerson"
	OpGetSessionPeople = "getSessionPeople"
	OpGetSponsoredList = "getSponsoredList"
	OpGetSearch        = "getSearch"
	OpGetMasterList    = "getMasterList"
	OpGetMasterListRaw = "getMasterListRaw"
	OpGetSessionList   = "getSessionList"
)

// envelope is the upstream response wrapper. On success the operation's
// payload sits under an operation-specific key next to status; on failure
// the alert block carries the error message.
type envelope struct {
	Status string `json:"status"`
	Alert  *struct {
		Message string `json:"message"`
	} `json:"alert,omitempty"`
}

// Client performs one HTTP GET per logical operation against the LegiScan
// API and decodes the operation payload into a typed record at this
// boundary. It does no caching and no quota bookkeeping; those concerns are
// composed around it by the facade, which keeps this layer trivially
// testable against a stub transport.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a Client. timeout bounds every upstream call so a hung
// upstream cannot indefinitely occupy the single bulk-operation slot.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// call performs the GET for op with params and decodes the payload found
// under payloadKey into dst. It returns a classified *Error for transport
// failures, non-2xx statuses, and the upstream's in-band ERROR envelope.
func (c *Client) call(ctx context.Context, op string, params map[string]string, payloadKey string, dst any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: fmt.Sprintf("bad base url: %v", err)}
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("op", op)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: err.Error()}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: err.Error()}
	}

	c.log.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Int("bytes", len(body)).
		Msg("upstream call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:      KindUnknown,
			Operation: op,
			Message:   fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode),
			Raw:       body,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: fmt.Sprintf("undecodable envelope: %v", err), Raw: body}
	}
	if env.Status != "OK" {
		msg := "upstream reported an error"
		if env.Alert != nil && env.Alert.Message != "" {
			msg = env.Alert.Message
		}
		return newError(op, msg, body)
	}

	// Pull the operation-specific payload key out of the envelope.
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: fmt.Sprintf("undecodable body: %v", err), Raw: body}
	}
	payload, ok := keyed[payloadKey]
	if !ok {
		return &Error{Kind: KindBadRequest, Operation: op, Message: fmt.Sprintf("payload key %q missing", payloadKey), Raw: body}
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return &Error{Kind: KindUnknown, Operation: op, Message: fmt.Sprintf("undecodable %s payload: %v", payloadKey, err), Raw: body}
	}
	return nil
}

// GetBill fetches the full bill record.
func (c *Client) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	var b domain.Bill
	if err := c.call(ctx, OpGetBill, map[string]string{"id": billID}, "bill", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBillText fetches one text document by doc id.
func (c *Client) GetBillText(ctx context.Context, docID string) (*domain.BillText, error) {
	var t domain.BillText
	if err := c.call(ctx, OpGetBillText, map[string]string{"id": docID}, "text", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetAmendment fetches one amendment document.
func (c *Client) GetAmendment(ctx context.Context, amendmentID string) (*domain.Amendment, error) {
	var a domain.Amendment
	if err := c.call(ctx, OpGetAmendment, map[string]string{"id": amendmentID}, "amendment", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetSupplement fetches one supplemental document.
func (c *Client) GetSupplement(ctx context.Context, supplementID string) (*domain.Supplement, error) {
	var s domain.Supplement
	if err := c.call(ctx, OpGetSupplement, map[string]string{"id": supplementID}, "supplement", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetRollCall fetches one roll-call vote record.
func (c *Client) GetRollCall(ctx context.Context, rollCallID string) (*domain.RollCall, error) {
	var r domain.RollCall
	if err := c.call(ctx, OpGetRollCall, map[string]string{"id": rollCallID}, "roll_call", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetPerson fetches one legislator record.
func (c *Client) GetPerson(ctx context.Context, peopleID string) (*domain.Person, error) {
	var p domain.Person
	if err := c.call(ctx, OpGetPerson, map[string]string{"id": peopleID}, "person", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSessionPeople fetches the legislator roster for a session.
func (c *Client) GetSessionPeople(ctx context.Context, sessionID string) (*domain.SessionPeople, error) {
	var sp domain.SessionPeople
	if err := c.call(ctx, OpGetSessionPeople, map[string]string{"id": sessionID}, "sessionpeople", &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// GetSponsoredList fetches the bills sponsored by a legislator.
func (c *Client) GetSponsoredList(ctx context.Context, peopleID string) (*domain.SponsoredList, error) {
	var sl domain.SponsoredList
	if err := c.call(ctx, OpGetSponsoredList, map[string]string{"id": peopleID}, "sponsoredbills", &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// GetSearch runs a full-text search within a state.
func (c *Client) GetSearch(ctx context.Context, state, query, page string) (*domain.SearchResult, error) {
	params := map[string]string{"state": state, "query": query}
	if page != "" {
		params["page"] = page
	}
	var sr domain.SearchResult
	if err := c.call(ctx, OpGetSearch, params, "searchresult", &sr); err != nil {
		return nil, err
	}
	return &sr, nil
}

// GetMasterList fetches the full master list for a session.
func (c *Client) GetMasterList(ctx context.Context, sessionID string) (*domain.MasterList, error) {
	var ml domain.MasterList
	if err := c.call(ctx, OpGetMasterList, map[string]string{"id": sessionID}, "masterlist", &ml); err != nil {
		return nil, err
	}
	return &ml, nil
}

// GetMasterListRaw fetches the hash-only master list for a session. This is
// the cheap single call that bounds change detection.
func (c *Client) GetMasterListRaw(ctx context.Context, sessionID string) (*domain.MasterList, error) {
	var ml domain.MasterList
	if err := c.call(ctx, OpGetMasterListRaw, map[string]string{"id": sessionID}, "masterlist", &ml); err != nil {
		return nil, err
	}
	return &ml, nil
}

// GetSessionList fetches the sessions available for a state.
func (c *Client) GetSessionList(ctx context.Context, state string) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := c.call(ctx, OpGetSessionList, map[string]string{"state": state}, "sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
