package identityerrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var (
	ErrAccountNotFound = apperror.New(
		apperror.CodeNotFound,
		"account not found",
		http.StatusNotFound,
	)
	ErrUnknownRole = apperror.New(
		apperror.CodeValidation,
		"role is not one of institute_admin, branch_admin, teacher, sales, support, student",
		http.StatusBadRequest,
	)
	ErrEmploymentBranchRequired = apperror.New(
		apperror.CodeValidation,
		"employee roles require an employment record with a branch",
		http.StatusBadRequest,
	)
)
