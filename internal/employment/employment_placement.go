package employment

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Placement answers branch lookups straight from the repository so the
// identity store can check placements without depending on this service.
type Placement struct {
	repo Repository
}

func NewPlacement(repo Repository) *Placement {
	return &Placement{repo: repo}
}

func (p *Placement) BranchOf(ctx context.Context, accountID string) (string, bool, error) {
	e, err := p.repo.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Branch(), true, nil
}
