package domain

// Scope bounds an actor's visibility and authority. A global scope is
// unbounded; otherwise the actor is confined to BranchID.
type Scope struct {
	Global     bool   `json:"global"`
	BranchID   string `json:"branch_id,omitempty"`
	Department string `json:"department,omitempty"`
}

func GlobalScope() Scope {
	return Scope{Global: true}
}

func BranchScope(branchID, department string) Scope {
	return Scope{BranchID: branchID, Department: department}
}

func (s Scope) Covers(branchID string) bool {
	if s.Global {
		return true
	}
	return s.BranchID == branchID
}
