package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/legiscan"
)

func TestSearch_RequiresQuery(t *testing.T) {
	r := newTestRouter(&fakeGateway{})

	w := do(r, http.MethodGet, "/search", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	w = do(r, http.MethodGet, "/search?q=%20%20", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank query accepted: %d", w.Code)
	}
	w = do(r, http.MethodGet, "/search?q=blockchain&page=two", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric page accepted: %d", w.Code)
	}
}

func TestSearch_OK(t *testing.T) {
	gw := &fakeGateway{search: &domain.SearchResult{
		Summary: domain.SearchSummary{Count: 1},
		Hits:    []domain.SearchHit{{BillID: 42, BillNumber: "HB42", Relevance: 99}},
	}}
	r := newTestRouter(gw)

	w := do(r, http.MethodGet, "/search?q=blockchain", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Summary domain.SearchSummary `json:"summary"`
		Results []domain.SearchHit   `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Summary.Count != 1 || len(body.Results) != 1 || body.Results[0].BillID != 42 {
		t.Fatalf("body unexpected: %+v", body)
	}
}

func TestGetMasterList_SessionValidation(t *testing.T) {
	r := newTestRouter(&fakeGateway{})

	for _, path := range []string{"/masterlist", "/masterlist?session=abc"} {
		w := do(r, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d; want 400", path, w.Code)
		}
	}
}

func TestGetMasterList_FullFlagSelectsVariant(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestRouter(gw)

	if w := do(r, http.MethodGet, "/masterlist?session=2172", ""); w.Code != http.StatusOK {
		t.Fatalf("raw: status = %d", w.Code)
	}
	if gw.rawCalls != 1 || gw.fullCalls != 0 {
		t.Fatalf("default should hit raw variant: raw=%d full=%d", gw.rawCalls, gw.fullCalls)
	}

	if w := do(r, http.MethodGet, "/masterlist?session=2172&full=true", ""); w.Code != http.StatusOK {
		t.Fatalf("full: status = %d", w.Code)
	}
	if gw.fullCalls != 1 {
		t.Fatalf("full=true should hit full variant: full=%d", gw.fullCalls)
	}
}

func TestDetectChanges_ValidatesBody(t *testing.T) {
	r := newTestRouter(&fakeGateway{})

	cases := []string{"", "{}", `{"session_id": 0}`, `{"session_id": "x"}`, "not json"}
	for _, body := range cases {
		w := do(r, http.MethodPost, "/masterlist/changes", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d; want 400", body, w.Code)
		}
	}
}

func TestDetectChanges_OK(t *testing.T) {
	gw := &fakeGateway{changed: []legiscan.ChangedBill{
		{BillID: 5678, Number: "SB100", ChangeHash: "def", New: true},
	}}
	r := newTestRouter(gw)

	w := do(r, http.MethodPost, "/masterlist/changes", `{"session_id": 2172}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
	}
	var resp ChangesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.SessionID != 2172 || len(resp.Changed) != 1 || !resp.Changed[0].New {
		t.Fatalf("response unexpected: %+v", resp)
	}
}
