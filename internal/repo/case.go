package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned for a missing case and for a case owned by another lab.
	ErrNotFound = errors.New("case not found")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusOnHold     Status = "on_hold"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}
	return false
}

// ParseStatus accepts exactly the enumerated values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of due dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without time zone.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Case is a dental lab work order. The four specification documents and
// patient_info are stored verbatim; nil means absent.
type Case struct {
	ID                  int64           `json:"id"`
	LabID               string          `json:"lab_id"`
	DoctorID            string          `json:"doctor_id"`
	ProductID           string          `json:"product_id"`
	Status              Status          `json:"status"`
	CaseName            *string         `json:"case_name"`
	Description         *string         `json:"description"`
	Priority            Priority        `json:"priority"`
	CreatedBy           *string         `json:"created_by"`
	AssignedTo          *string         `json:"assigned_to"`
	CaseType            *string         `json:"case_type"`
	DueDate             *Date           `json:"due_date"`
	RushOrder           bool            `json:"rush_order"`
	SpecialInstructions *string         `json:"special_instructions"`
	PatientInfo         json.RawMessage `json:"patient_info"`
	FixedProsthetic     json.RawMessage `json:"fixed_prosthetic"`
	Denture             json.RawMessage `json:"denture"`
	NightGuard          json.RawMessage `json:"night_guard"`
	Implant             json.RawMessage `json:"implant"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Clone returns a deep copy, so stores never share buffers with callers.
func (c *Case) Clone() *Case {
	out := *c
	out.CaseName = cloneString(c.CaseName)
	out.Description = cloneString(c.Description)
	out.CreatedBy = cloneString(c.CreatedBy)
	out.AssignedTo = cloneString(c.AssignedTo)
	out.CaseType = cloneString(c.CaseType)
	out.SpecialInstructions = cloneString(c.SpecialInstructions)
	if c.DueDate != nil {
		d := *c.DueDate
		out.DueDate = &d
	}
	out.PatientInfo = cloneRaw(c.PatientInfo)
	out.FixedProsthetic = cloneRaw(c.FixedProsthetic)
	out.Denture = cloneRaw(c.Denture)
	out.NightGuard = cloneRaw(c.NightGuard)
	out.Implant = cloneRaw(c.Implant)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

// Filter narrows List. Nil fields do not filter; set fields are ANDed.
type Filter struct {
	Status    *Status
	DoctorID  *string
	ProductID *string
	CaseType  *string
	Priority  *Priority
	RushOrder *bool
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Offset saturates at math.MaxInt for page numbers far past the end.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// PageInfo describes one page of a listing.
type PageInfo struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NewPageInfo computes page counts. An empty result has zero pages.
func NewPageInfo(p Page, total int) PageInfo {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageInfo{
		Page:    p.Number,
		PerPage: p.Size,
		Total:   total,
		Pages:   pages,
		HasPrev: p.Number > 1,
		HasNext: p.Number < pages,
	}
}
