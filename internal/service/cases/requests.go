package cases

import (
	"bytes"
	"encoding/json"

	"github.com/Alijeyrad/caseservice/internal/repo"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Caller is the verified user acting in a lab.
type Caller struct {
	UserID string
	LabID  string
	Token  string
}

// CreateCaseRequest is the body of POST /cases/. A status in the body is
// accepted and ignored; new cases always start pending.
type CreateCaseRequest struct {
	DoctorID            string          `json:"doctor_id" validate:"required,max=50"`
	ProductID           string          `json:"product_id" validate:"required,max=50"`
	CaseName            *string         `json:"case_name" validate:"omitempty,max=255"`
	Description         *string         `json:"description"`
	Priority            *string         `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status              *string         `json:"status"`
	AssignedTo          *string         `json:"assigned_to" validate:"omitempty,max=50"`
	CaseType            *string         `json:"case_type" validate:"omitempty,max=50"`
	DueDate             *string         `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	RushOrder           *bool           `json:"rush_order"`
	SpecialInstructions *string         `json:"special_instructions"`
	PatientInfo         json.RawMessage `json:"patient_info"`
	FixedProsthetic     json.RawMessage `json:"fixed_prosthetic"`
	Denture             json.RawMessage `json:"denture"`
	NightGuard          json.RawMessage `json:"night_guard"`
	Implant             json.RawMessage `json:"implant"`
}

// Optional is a JSON member that remembers whether it was sent at all and
// whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// UpdateCaseRequest is the body of PUT /cases/{id}. Members that are absent
// are left alone. Status, priority and due_date are raw so that values that
// do not parse can be skipped instead of failing the request.
type UpdateCaseRequest struct {
	CaseName            Optional[string] `json:"case_name"`
	Description         Optional[string] `json:"description"`
	Priority            json.RawMessage  `json:"priority"`
	Status              json.RawMessage  `json:"status"`
	AssignedTo          Optional[string] `json:"assigned_to"`
	CaseType            Optional[string] `json:"case_type"`
	DueDate             json.RawMessage  `json:"due_date"`
	RushOrder           Optional[bool]   `json:"rush_order"`
	SpecialInstructions Optional[string] `json:"special_instructions"`
	PatientInfo         json.RawMessage  `json:"patient_info"`
	FixedProsthetic     json.RawMessage  `json:"fixed_prosthetic"`
	Denture             json.RawMessage  `json:"denture"`
	NightGuard          json.RawMessage  `json:"night_guard"`
	Implant             json.RawMessage  `json:"implant"`
}

// SetStatusRequest is the body of PATCH /cases/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListCasesRequest holds the query of GET /cases/. Empty strings and a nil
// RushOrder do not filter.
type ListCasesRequest struct {
	Page      int
	PerPage   int
	Status    string
	DoctorID  string
	ProductID string
	CaseType  string
	Priority  string
	RushOrder *bool
}

type ListResult struct {
	Cases      []*repo.Case  `json:"cases"`
	Pagination repo.PageInfo `json:"pagination"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

var jsonNull = []byte("null")

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// document checks that raw is a JSON object. Absent and null give nil.
func document(field string, raw json.RawMessage) (json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '{' {
		return nil, invalidf("field `%s` must be a JSON object", field)
	}
	return append(json.RawMessage(nil), trimmed...), nil
}

func isEmptyObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil && len(m) == 0
}

// specification is like document but an empty object counts as absent.
func specification(field string, raw json.RawMessage) (json.RawMessage, error) {
	doc, err := document(field, raw)
	if err != nil || doc == nil || isEmptyObject(doc) {
		return nil, err
	}
	return doc, nil
}

func (r CreateCaseRequest) toCase(caller Caller) (*repo.Case, error) {
	c := &repo.Case{
		LabID:               caller.LabID,
		DoctorID:            r.DoctorID,
		ProductID:           r.ProductID,
		Status:              repo.StatusPending,
		CaseName:            r.CaseName,
		Description:         r.Description,
		Priority:            repo.PriorityMedium,
		AssignedTo:          r.AssignedTo,
		CaseType:            r.CaseType,
		SpecialInstructions: r.SpecialInstructions,
	}
	if caller.UserID != "" {
		uid := caller.UserID
		c.CreatedBy = &uid
	}
	if r.Priority != nil && *r.Priority != "" {
		c.Priority = repo.Priority(*r.Priority)
		if !c.Priority.Valid() {
			return nil, invalidf("field `priority` must be one of low, medium, high")
		}
	}
	if r.RushOrder != nil {
		c.RushOrder = *r.RushOrder
	}
	if r.DueDate != nil && *r.DueDate != "" {
		d, err := repo.ParseDate(*r.DueDate)
		if err != nil {
			return nil, invalidf("field `due_date` should be a date in the format YYYY-MM-DD")
		}
		c.DueDate = &d
	}

	var err error
	if c.PatientInfo, err = document("patient_info", r.PatientInfo); err != nil {
		return nil, err
	}
	if c.FixedProsthetic, err = specification("fixed_prosthetic", r.FixedProsthetic); err != nil {
		return nil, err
	}
	if c.Denture, err = specification("denture", r.Denture); err != nil {
		return nil, err
	}
	if c.NightGuard, err = specification("night_guard", r.NightGuard); err != nil {
		return nil, err
	}
	if c.Implant, err = specification("implant", r.Implant); err != nil {
		return nil, err
	}
	return c, nil
}

// patch is a validated UpdateCaseRequest, ready to apply to a stored case.
type patch struct {
	req UpdateCaseRequest

	status   *repo.Status
	priority *repo.Priority
	dueDate  *repo.Date
	clearDue bool

	patientInfo    json.RawMessage
	setPatientInfo bool
	specs          [4]json.RawMessage
}

// lenientString returns the JSON string in raw, or false for absent,
// null and non-string values.
func lenientString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func maxLen(field string, o Optional[string], n int) error {
	if o.Set && !o.Null && len(o.Value) > n {
		return invalidf("field `%s` must have at most %d characters", field, n)
	}
	return nil
}

func (r UpdateCaseRequest) validate() (*patch, error) {
	for _, err := range []error{
		maxLen("case_name", r.CaseName, 255),
		maxLen("assigned_to", r.AssignedTo, 50),
		maxLen("case_type", r.CaseType, 50),
	} {
		if err != nil {
			return nil, err
		}
	}

	p := &patch{req: r}

	if s, ok := lenientString(r.Status); ok {
		if st, err := repo.ParseStatus(s); err == nil {
			p.status = &st
		}
	}
	if s, ok := lenientString(r.Priority); ok {
		if pr := repo.Priority(s); pr.Valid() {
			p.priority = &pr
		}
	}
	switch {
	case r.DueDate == nil:
	case isNull(r.DueDate):
		p.clearDue = true
	default:
		if s, ok := lenientString(r.DueDate); ok {
			if d, err := repo.ParseDate(s); err == nil {
				p.dueDate = &d
			}
		}
	}

	if r.PatientInfo != nil {
		doc, err := document("patient_info", r.PatientInfo)
		if err != nil {
			return nil, err
		}
		p.patientInfo, p.setPatientInfo = doc, true
	}

	for i, f := range []struct {
		name string
		raw  json.RawMessage
	}{
		{"fixed_prosthetic", r.FixedProsthetic},
		{"denture", r.Denture},
		{"night_guard", r.NightGuard},
		{"implant", r.Implant},
	} {
		doc, err := specification(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		p.specs[i] = doc
	}
	return p, nil
}

func applyString(dst **string, o Optional[string]) {
	switch {
	case !o.Set:
	case o.Null:
		*dst = nil
	default:
		v := o.Value
		*dst = &v
	}
}

func (p *patch) apply(c *repo.Case) {
	r := p.req
	applyString(&c.CaseName, r.CaseName)
	applyString(&c.Description, r.Description)
	applyString(&c.AssignedTo, r.AssignedTo)
	applyString(&c.CaseType, r.CaseType)
	applyString(&c.SpecialInstructions, r.SpecialInstructions)

	if r.RushOrder.Set && !r.RushOrder.Null {
		c.RushOrder = r.RushOrder.Value
	}
	if p.status != nil {
		c.Status = *p.status
	}
	if p.priority != nil {
		c.Priority = *p.priority
	}
	if p.clearDue {
		c.DueDate = nil
	}
	if p.dueDate != nil {
		d := *p.dueDate
		c.DueDate = &d
	}
	if p.setPatientInfo {
		c.PatientInfo = p.patientInfo
	}

	// specifications are replaced whole, never merged
	for i, dst := range []*json.RawMessage{&c.FixedProsthetic, &c.Denture, &c.NightGuard, &c.Implant} {
		if p.specs[i] != nil {
			*dst = p.specs[i]
		}
	}
}
