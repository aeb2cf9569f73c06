package ums

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID accepts both JSON strings and numbers. The identity service has served
// user and lab ids in either form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ums: id must be a string or number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Membership is a caller's relation to one lab.
type Membership struct {
	LabID            ID     `json:"lab_id"`
	Role             string `json:"role"`
	MembershipStatus string `json:"membership_status"`
}

// MembershipActive is the membership_status of a usable membership.
const MembershipActive = "active"

func (m Membership) Active() bool { return m.MembershipStatus == MembershipActive }

// Identity is the body of GET /api/auth/me.
type Identity struct {
	ID     ID           `json:"id"`
	UserID ID           `json:"user_id"`
	Email  string       `json:"email"`
	Labs   []Membership `json:"labs"`

	// LabID is a legacy single-lab field, used only when Labs is empty.
	LabID ID `json:"lab_id"`
}

// Subject returns the caller's user id, preferring "id" over "user_id".
func (i *Identity) Subject() string {
	if i.ID != "" {
		return i.ID.String()
	}
	return i.UserID.String()
}

// Lab is the body of GET /api/labs/{id}. Only the id is interpreted; the
// rest is passed through to clients.
type Lab map[string]any
