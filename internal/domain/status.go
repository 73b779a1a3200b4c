package domain

// AccountStatus is either Active (non-empty role set) or Blocked.
type AccountStatus interface {
	Roles() RoleSet
	String() string
	isAccountStatus()
}

type Active struct {
	roles RoleSet
}

type Blocked struct{}

// StatusFromRoles is the only way to build an Active status, so an Active
// value never carries an empty role set.
func StatusFromRoles(roles RoleSet) AccountStatus {
	if roles.IsEmpty() {
		return Blocked{}
	}
	return Active{roles: roles.Clone()}
}

func (a Active) Roles() RoleSet { return a.roles.Clone() }
func (Active) String() string { return "active" }
func (Active) isAccountStatus() {}
func (Blocked) Roles() RoleSet { return RoleSet{} }
func (Blocked) String() string { return "blocked" }
func (Blocked) isAccountStatus() {}

func IsBlocked(s AccountStatus) bool {
	if s == nil {
		return true
	}
	_, blocked := s.(Blocked)
	return blocked
}
