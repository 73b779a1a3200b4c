package employmenterrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var (
	ErrEmploymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"employment record not found",
		http.StatusNotFound,
	)
	ErrBranchNotFound = apperror.New(
		apperror.CodeValidation,
		"branch does not exist or is inactive",
		http.StatusBadRequest,
	)
	ErrBranchRequired = apperror.New(
		apperror.CodeValidation,
		"accounts holding employee roles must be placed at a branch",
		http.StatusBadRequest,
	)
)
