package domain

import (
	"encoding/json"
	"testing"
)

func TestMasterList_UnmarshalIndexKeyedObject(t *testing.T) {
	payload := []byte(`{
		"session": {"session_id": 2172, "session_name": "2025 Regular Session"},
		"1": {"bill_id": 5678, "number": "SB100", "change_hash": "def"},
		"0": {"bill_id": 1234, "number": "HB2", "change_hash": "abc"},
		"10": {"bill_id": 9999, "number": "HB30", "change_hash": "ggg"}
	}`)

	var ml MasterList
	if err := json.Unmarshal(payload, &ml); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ml.Session.SessionID != 2172 {
		t.Fatalf("session_id = %d; want 2172", ml.Session.SessionID)
	}
	if len(ml.Bills) != 3 {
		t.Fatalf("bills = %d; want 3", len(ml.Bills))
	}
	// Numeric, not lexicographic, ordering: 0, 1, 10.
	if ml.Bills[0].BillID != 1234 || ml.Bills[1].BillID != 5678 || ml.Bills[2].BillID != 9999 {
		t.Fatalf("bill order unexpected: %+v", ml.Bills)
	}
	if ml.Bills[0].ChangeHash != "abc" {
		t.Fatalf("change_hash = %q; want abc", ml.Bills[0].ChangeHash)
	}
}

func TestMasterList_MarshalRoundTrip(t *testing.T) {
	in := MasterList{
		Session: Session{SessionID: 1, SessionName: "s"},
		Bills: []MasterListEntry{
			{BillID: 1, Number: "HB1", ChangeHash: "a"},
			{BillID: 2, Number: "HB2", ChangeHash: "b"},
		},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out MasterList
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Bills) != 2 || out.Bills[0].BillID != 1 || out.Bills[1].Number != "HB2" {
		t.Fatalf("round trip mismatch: %+v", out.Bills)
	}
	if out.Session.SessionID != 1 {
		t.Fatalf("session lost in round trip")
	}
}

func TestSearchResult_UnmarshalIndexKeyedObject(t *testing.T) {
	payload := []byte(`{
		"summary": {"count": 2, "page_current": 1, "page_total": 1},
		"0": {"relevance": 99, "bill_id": 1867310, "bill_number": "HB2124", "title": "Digital asset registration"},
		"1": {"relevance": 72, "bill_id": 1880001, "bill_number": "SB903"}
	}`)

	var sr SearchResult
	if err := json.Unmarshal(payload, &sr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sr.Summary.Count != 2 {
		t.Fatalf("count = %d; want 2", sr.Summary.Count)
	}
	if len(sr.Hits) != 2 {
		t.Fatalf("hits = %d; want 2", len(sr.Hits))
	}
	if sr.Hits[0].BillID != 1867310 || sr.Hits[0].Relevance != 99 {
		t.Fatalf("first hit unexpected: %+v", sr.Hits[0])
	}
}

func TestSearchResult_EmptyObject(t *testing.T) {
	var sr SearchResult
	if err := json.Unmarshal([]byte(`{"summary": {"count": 0}}`), &sr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(sr.Hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(sr.Hits))
	}
}
