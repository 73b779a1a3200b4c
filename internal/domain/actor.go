package domain

// Placement is where an account currently works or studies. It is set
// independently of Scope: a global actor may still be placed at a branch.
type Placement struct {
	BranchID   string `json:"branch_id,omitempty"`
	Department string `json:"department,omitempty"`
}

// Actor is the explicit caller identity passed into every guard and
// workflow call. It is rebuilt for each request. Scope bounds authority;
// Placement drives audience matching.
type Actor struct {
	AccountID string
	Status    AccountStatus
	Scope     Scope
	Placement Placement
}

func NewActor(accountID string, roles RoleSet, scope Scope) Actor {
	return Actor{
		AccountID: accountID,
		Status:    StatusFromRoles(roles),
		Scope:     scope,
	}
}

func (a Actor) WithPlacement(p Placement) Actor {
	a.Placement = p
	return a
}

func (a Actor) Roles() RoleSet {
	if a.Status == nil {
		return RoleSet{}
	}
	return a.Status.Roles()
}

func (a Actor) HasRole(r Role) bool {
	if a.Status == nil {
		return false
	}
	return a.Status.Roles().Has(r)
}

func (a Actor) IsBlocked() bool {
	return IsBlocked(a.Status)
}
