package identity

import (
	"errors"

	identityerrors "go-institute/internal/identity/errors"
	"go-institute/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identityerrors.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Two writers replaced the same role set at once.
		return apperror.ErrConflict
	}

	return err
}
