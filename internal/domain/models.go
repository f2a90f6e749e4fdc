// Package domain defines the LegiScan record types relayed by the gateway and
// the persistence model used for master-list change detection. The upstream
// payload shapes are preserved verbatim (field names match the LegiScan JSON
// keys) because downstream consumers depend on them; the gateway caches and
// relays these records without mutating their content.
package domain

// Session describes a legislative session as reported by the upstream.
type Session struct {
	SessionID       int    `json:"session_id"`
	StateID         int    `json:"state_id"`
	YearStart       int    `json:"year_start"`
	YearEnd         int    `json:"year_end"`
	Special         int    `json:"special"`
	SessionName     string `json:"session_name"`
	SessionTitle    string `json:"session_title"`
	SessionTag      string `json:"session_tag,omitempty"`
	Prefile         int    `json:"prefile,omitempty"`
	SineDie         int    `json:"sine_die,omitempty"`
	Prior           int    `json:"prior,omitempty"`
	DatasetHash     string `json:"dataset_hash,omitempty"`
	SessionHash     string `json:"session_hash,omitempty"`
	PushSafeHash    string `json:"push_safe_hash,omitempty"`
	ImportDate      string `json:"import_date,omitempty"`
	ImportHash      string `json:"import_hash,omitempty"`
	StateAbbr       string `json:"state_abbr,omitempty"`
	SessionTagShort string `json:"session_tag_short,omitempty"`
}

// Sponsor is a legislator attached to a bill.
type Sponsor struct {
	PeopleID     int    `json:"people_id"`
	PersonHash   string `json:"person_hash,omitempty"`
	PartyID      any    `json:"party_id,omitempty"`
	Party        string `json:"party,omitempty"`
	RoleID       int    `json:"role_id,omitempty"`
	Role         string `json:"role,omitempty"`
	Name         string `json:"name"`
	FirstName    string `json:"first_name,omitempty"`
	MiddleName   string `json:"middle_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Suffix       string `json:"suffix,omitempty"`
	District     string `json:"district,omitempty"`
	SponsorType  int    `json:"sponsor_type_id,omitempty"`
	SponsorOrder int    `json:"sponsor_order,omitempty"`
	CommitteeID  any    `json:"committee_id,omitempty"`
}

// HistoryStep is a single action in a bill's history timeline.
type HistoryStep struct {
	Date     string `json:"date"`
	Action   string `json:"action"`
	Chamber  string `json:"chamber,omitempty"`
	Importance int  `json:"importance,omitempty"`
}

// TextRef points at a bill text document (the document itself is fetched
// separately via its doc_id).
type TextRef struct {
	DocID    int    `json:"doc_id"`
	Date     string `json:"date,omitempty"`
	Type     string `json:"type,omitempty"`
	TypeID   int    `json:"type_id,omitempty"`
	Mime     string `json:"mime,omitempty"`
	MimeID   int    `json:"mime_id,omitempty"`
	URL      string `json:"url,omitempty"`
	StateLink string `json:"state_link,omitempty"`
	TextSize int    `json:"text_size,omitempty"`
}

// VoteRef points at a roll call attached to a bill.
type VoteRef struct {
	RollCallID int    `json:"roll_call_id"`
	Date       string `json:"date,omitempty"`
	Desc       string `json:"desc,omitempty"`
	Yea        int    `json:"yea"`
	Nay        int    `json:"nay"`
	NV         int    `json:"nv"`
	Absent     int    `json:"absent"`
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Chamber    string `json:"chamber,omitempty"`
	ChamberID  int    `json:"chamber_id,omitempty"`
	URL        string `json:"url,omitempty"`
	StateLink  string `json:"state_link,omitempty"`
}

// AmendmentRef points at an amendment document attached to a bill.
type AmendmentRef struct {
	AmendmentID int    `json:"amendment_id"`
	Date        string `json:"date,omitempty"`
	Adopted     int    `json:"adopted"`
	Chamber     string `json:"chamber,omitempty"`
	ChamberID   int    `json:"chamber_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Mime        string `json:"mime,omitempty"`
	MimeID      int    `json:"mime_id,omitempty"`
	URL         string `json:"url,omitempty"`
	StateLink   string `json:"state_link,omitempty"`
}

// SupplementRef points at a supplemental document (fiscal note, analysis).
type SupplementRef struct {
	SupplementID int    `json:"supplement_id"`
	Date         string `json:"date,omitempty"`
	Type         string `json:"type,omitempty"`
	TypeID       int    `json:"type_id,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Mime         string `json:"mime,omitempty"`
	MimeID       int    `json:"mime_id,omitempty"`
	URL          string `json:"url,omitempty"`
	StateLink    string `json:"state_link,omitempty"`
}

// Bill is the full bill record returned by the upstream getBill operation.
type Bill struct {
	BillID      int             `json:"bill_id"`
	ChangeHash  string          `json:"change_hash"`
	SessionID   int             `json:"session_id"`
	Session     *Session        `json:"session,omitempty"`
	URL         string          `json:"url,omitempty"`
	StateLink   string          `json:"state_link,omitempty"`
	State       string          `json:"state,omitempty"`
	StateID     int             `json:"state_id,omitempty"`
	BillNumber  string          `json:"bill_number"`
	BillType    string          `json:"bill_type,omitempty"`
	BillTypeID  any             `json:"bill_type_id,omitempty"`
	Body        string          `json:"body,omitempty"`
	BodyID      int             `json:"body_id,omitempty"`
	CurrentBody string          `json:"current_body,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      int             `json:"status"`
	StatusDate  string          `json:"status_date,omitempty"`
	PendingCommitteeID int      `json:"pending_committee_id,omitempty"`
	Sponsors    []Sponsor       `json:"sponsors,omitempty"`
	History     []HistoryStep   `json:"history,omitempty"`
	Texts       []TextRef       `json:"texts,omitempty"`
	Votes       []VoteRef       `json:"votes,omitempty"`
	Amendments  []AmendmentRef  `json:"amendments,omitempty"`
	Supplements []SupplementRef `json:"supplements,omitempty"`
}

// BillText is a full text document, base64-encoded in Doc.
type BillText struct {
	DocID     int    `json:"doc_id"`
	BillID    int    `json:"bill_id"`
	Date      string `json:"date,omitempty"`
	Type      string `json:"type,omitempty"`
	TypeID    any    `json:"type_id,omitempty"`
	Mime      string `json:"mime,omitempty"`
	MimeID    int    `json:"mime_id,omitempty"`
	TextSize  int    `json:"text_size,omitempty"`
	TextHash  string `json:"text_hash,omitempty"`
	Doc       string `json:"doc"`
}

// Amendment is a full amendment document, base64-encoded in Doc.
type Amendment struct {
	AmendmentID   int    `json:"amendment_id"`
	BillID        int    `json:"bill_id"`
	ChamberID     int    `json:"chamber_id,omitempty"`
	Chamber       string `json:"chamber,omitempty"`
	Date          string `json:"date,omitempty"`
	Adopted       int    `json:"adopted"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Mime          string `json:"mime,omitempty"`
	MimeID        int    `json:"mime_id,omitempty"`
	AmendmentSize int    `json:"amendment_size,omitempty"`
	AmendmentHash string `json:"amendment_hash,omitempty"`
	Doc           string `json:"doc"`
}

// Supplement is a full supplemental document, base64-encoded in Doc.
type Supplement struct {
	SupplementID   int    `json:"supplement_id"`
	BillID         int    `json:"bill_id"`
	Date           string `json:"date,omitempty"`
	TypeID         int    `json:"type_id,omitempty"`
	Type           string `json:"type,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Mime           string `json:"mime,omitempty"`
	MimeID         int    `json:"mime_id,omitempty"`
	SupplementSize int    `json:"supplement_size,omitempty"`
	SupplementHash string `json:"supplement_hash,omitempty"`
	Doc            string `json:"doc"`
}

// Vote is a single legislator's position within a roll call.
type Vote struct {
	PeopleID int    `json:"people_id"`
	VoteID   int    `json:"vote_id"`
	VoteText string `json:"vote_text"`
}

// RollCall is a full roll-call vote record.
type RollCall struct {
	RollCallID int    `json:"roll_call_id"`
	BillID     int    `json:"bill_id"`
	Date       string `json:"date,omitempty"`
	Desc       string `json:"desc,omitempty"`
	Yea        int    `json:"yea"`
	Nay        int    `json:"nay"`
	NV         int    `json:"nv"`
	Absent     int    `json:"absent"`
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Chamber    string `json:"chamber,omitempty"`
	ChamberID  int    `json:"chamber_id,omitempty"`
	Votes      []Vote `json:"votes,omitempty"`
}

// Person is a legislator record.
type Person struct {
	PeopleID   int    `json:"people_id"`
	PersonHash string `json:"person_hash,omitempty"`
	StateID    int    `json:"state_id,omitempty"`
	PartyID    any    `json:"party_id,omitempty"`
	Party      string `json:"party,omitempty"`
	RoleID     int    `json:"role_id,omitempty"`
	Role       string `json:"role,omitempty"`
	Name       string `json:"name"`
	FirstName  string `json:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	District   string `json:"district,omitempty"`
	CommitteeID any   `json:"committee_id,omitempty"`
	Ballotpedia string `json:"ballotpedia,omitempty"`
	Votesmart   any    `json:"votesmart_id,omitempty"`
	Opensecrets string `json:"opensecrets_id,omitempty"`
	KnowWho     int    `json:"knowwho_pid,omitempty"`
}

// SessionPeople is the roster for one session.
type SessionPeople struct {
	Session Session  `json:"session"`
	People  []Person `json:"people"`
}

// SponsoredBill is a single entry in a legislator's sponsored-bill list.
type SponsoredBill struct {
	SessionID int    `json:"session_id"`
	BillID    int    `json:"bill_id"`
	Number    string `json:"number"`
}

// SponsoredList is the upstream getSponsoredList payload.
type SponsoredList struct {
	Sponsor  Person          `json:"sponsor"`
	Sessions []Session       `json:"sessions,omitempty"`
	Bills    []SponsoredBill `json:"bills"`
}
