package scopeerrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var ErrPlacementMissing = apperror.New(
	apperror.CodeNotFound,
	"account has no branch placement",
	http.StatusNotFound,
)
