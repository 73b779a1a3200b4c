package brancherrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var ErrBranchNotFound = apperror.New(
	apperror.CodeNotFound,
	"branch not found",
	http.StatusNotFound,
)
