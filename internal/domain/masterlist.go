// Package domain – master list and search decoding.
//
// The upstream encodes master lists and search results as JSON objects whose
// keys are a mix of named members ("session", "summary") and numeric indexes
// ("0", "1", …) holding the actual entries. These types normalize that shape
// into ordinary Go slices at decode time so nothing downstream has to deal
// with the index-keyed form.
package domain

import (
	"encoding/json"
	"sort"
	"strconv"
)

// MasterListEntry is one bill row in a master list. The raw variant of the
// list carries only bill_id, number, and change_hash; the full variant adds
// status and last-action metadata.
type MasterListEntry struct {
	BillID         int    `json:"bill_id"`
	Number         string `json:"number"`
	ChangeHash     string `json:"change_hash"`
	URL            string `json:"url,omitempty"`
	StatusDate     string `json:"status_date,omitempty"`
	Status         any    `json:"status,omitempty"`
	LastActionDate string `json:"last_action_date,omitempty"`
	LastAction     string `json:"last_action,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
}

// MasterList is the decoded getMasterList / getMasterListRaw payload.
// Bills are ordered by their numeric index key in the upstream object.
type MasterList struct {
	Session Session
	Bills   []MasterListEntry
}

// UnmarshalJSON decodes the upstream's index-keyed object form.
func (m *MasterList) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if s, ok := raw["session"]; ok {
		if err := json.Unmarshal(s, &m.Session); err != nil {
			return err
		}
	}

	idx := numericKeys(raw)
	m.Bills = make([]MasterListEntry, 0, len(idx))
	for _, k := range idx {
		var e MasterListEntry
		if err := json.Unmarshal(raw[k], &e); err != nil {
			return err
		}
		m.Bills = append(m.Bills, e)
	}
	return nil
}

// MarshalJSON re-encodes in the upstream's object form for wire compatibility.
func (m MasterList) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Bills)+1)
	out["session"] = m.Session
	for i, e := range m.Bills {
		out[strconv.Itoa(i)] = e
	}
	return json.Marshal(out)
}

// SearchSummary is the metadata block of a search result page.
type SearchSummary struct {
	Page      string `json:"page,omitempty"`
	Range     string `json:"range,omitempty"`
	Relevancy string `json:"relevancy,omitempty"`
	Count     int    `json:"count"`
	PageCurrent int  `json:"page_current,omitempty"`
	PageTotal   int  `json:"page_total,omitempty"`
	Query       string `json:"query,omitempty"`
}

// SearchHit is one bill match in a search result. Search hits are partial
// records; consumers needing full detail must fetch the bill by id.
type SearchHit struct {
	Relevance      int    `json:"relevance"`
	State          string `json:"state,omitempty"`
	BillNumber     string `json:"bill_number"`
	BillID         int    `json:"bill_id"`
	ChangeHash     string `json:"change_hash,omitempty"`
	URL            string `json:"url,omitempty"`
	TextURL        string `json:"text_url,omitempty"`
	ResearchURL    string `json:"research_url,omitempty"`
	LastActionDate string `json:"last_action_date,omitempty"`
	LastAction     string `json:"last_action,omitempty"`
	Title          string `json:"title,omitempty"`
}

// SearchResult is the decoded getSearch payload.
type SearchResult struct {
	Summary SearchSummary
	Hits    []SearchHit
}

// UnmarshalJSON decodes the upstream's index-keyed object form.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if s, ok := raw["summary"]; ok {
		if err := json.Unmarshal(s, &r.Summary); err != nil {
			return err
		}
	}

	idx := numericKeys(raw)
	r.Hits = make([]SearchHit, 0, len(idx))
	for _, k := range idx {
		var h SearchHit
		if err := json.Unmarshal(raw[k], &h); err != nil {
			return err
		}
		r.Hits = append(r.Hits, h)
	}
	return nil
}

// MarshalJSON re-encodes in the upstream's object form for wire compatibility.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Hits)+1)
	out["summary"] = r.Summary
	for i, h := range r.Hits {
		out[strconv.Itoa(i)] = h
	}
	return json.Marshal(out)
}

// numericKeys returns the all-digit keys of raw sorted in numeric order.
func numericKeys(raw map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if _, err := strconv.Atoi(k); err == nil {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	return keys
}
