package authorize

import "strings"

type Action string
type Resource string
type Role string
type Domain string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
}

const (
	WildcardResource Resource = "*"

	ResourceCase    Resource = "case"
	ResourceCatalog Resource = "catalog"
	ResourceDoctor  Resource = "doctor"
	ResourceLab     Resource = "lab"
	ResourceProduct Resource = "product"
)

var KnownResources = map[Resource]struct{}{
	ResourceCase: {}, ResourceCatalog: {}, ResourceDoctor: {}, ResourceLab: {}, ResourceProduct: {},
}

// Roles are not a closed set: the identity service owns membership roles and
// policies reference them by name, e.g. "role:lab:technician".
const (
	WildcardRole Role = "*"

	RolePrefixLab Role = "role:lab:"

	// RoleLabMember is used when the caller's lab came from the identity's
	// direct lab id and carries no membership role.
	RoleLabMember Role = "role:lab:member"
)

// LabRole maps a membership role reported by the identity service to a
// policy subject.
func LabRole(membershipRole string) Role {
	r := strings.ToLower(strings.TrimSpace(membershipRole))
	if r == "" {
		return RoleLabMember
	}
	return RolePrefixLab + Role(r)
}

const (
	DomainPrefixLab Domain = "lab:"
	WildcardDomain  Domain = "*"
)

// LabDomain returns the policy domain for a lab.
func LabDomain(labID string) Domain {
	return DomainPrefixLab + Domain(labID)
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == WildcardDomain {
		return true
	}
	s := string(d)
	return strings.HasPrefix(s, string(DomainPrefixLab)) && len(s) > len(DomainPrefixLab)
}

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
