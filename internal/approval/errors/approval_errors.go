package approvalerrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"invalid request status transition",
		http.StatusBadRequest,
	)
	ErrAlreadyFinalized = apperror.New(
		apperror.CodeAlreadyFinalized,
		"this request was already finalized",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeValidation,
		"reason is required when rejecting a request",
		http.StatusBadRequest,
	)
	ErrInvalidRequestType = apperror.New(
		apperror.CodeValidation,
		"request_type must be one of leave, problem, resource, other",
		http.StatusBadRequest,
	)
	ErrRequesterNotEmployee = apperror.New(
		apperror.CodeUnauthorized,
		"only staff accounts can submit requests",
		http.StatusForbidden,
	)
	ErrRequesterBranchMissing = apperror.New(
		apperror.CodeValidation,
		"requester is not placed at a branch",
		http.StatusBadRequest,
	)
)
