package domain

import "sort"

type Role string

const (
	RoleInstituteAdmin Role = "institute_admin"
	RoleBranchAdmin    Role = "branch_admin"
	RoleTeacher        Role = "teacher"
	RoleSales          Role = "sales"
	RoleSupport        Role = "support"
	RoleStudent        Role = "student"
)

// AllRoles is the closed set of roles an account can hold.
var AllRoles = []Role{
	RoleInstituteAdmin,
	RoleBranchAdmin,
	RoleTeacher,
	RoleSales,
	RoleSupport,
	RoleStudent,
}

func ParseRole(v string) (Role, bool) {
	r := Role(v)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsEmployeeClass reports whether the role binds the account to a branch.
func (r Role) IsEmployeeClass() bool {
	switch r {
	case RoleBranchAdmin, RoleTeacher, RoleSales, RoleSupport:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) IsEmpty() bool {
	return len(s) == 0
}

func (s RoleSet) HasEmployeeClass() bool {
	for r := range s {
		if r.IsEmployeeClass() {
			return true
		}
	}
	return false
}

// Slice returns the roles in a stable order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}
