package notificationerrors

import (
	"net/http"

	"go-institute/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrInvalidTarget = apperror.New(
		apperror.CodeValidation,
		"target must name exactly the qualifier its target_type requires",
		http.StatusBadRequest,
	)
)
