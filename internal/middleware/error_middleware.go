package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/logger"
)

// HandleAPIError maps application errors onto HTTP responses. Every
// controller funnels service errors through here so the kind-to-status
// mapping lives in exactly one place.
func HandleAPIError(c *gin.Context, err error) {
	var enrollErr *apperrors.EnrollmentViolationError
	if errors.As(err, &enrollErr) {
		detail := dto.NewErrorDetail(dto.ErrorCodeEnrollmentViolation, enrollErr.Error()).
			WithDetails(map[string]interface{}{"invalidStudents": enrollErr.StudentIDs})
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrPermissionDenied):
		detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, errorMessage(err, "Permission denied"))
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrRecordNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrDuplicateSession):
		detail := dto.NewErrorDetail(dto.ErrorCodeDuplicateSession, apperrors.ErrDuplicateSession.Error())
		c.JSON(http.StatusConflict, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrInvalidStatus):
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidStatus,
			"Status must be one of present, absent, late, excused").WithField("status")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrInvalidStudentIDs):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.ErrInvalidStudentIDs.Error()).
			WithDetails(customDetails(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrNothingToEnroll),
		errors.Is(err, apperrors.ErrStudentNotEnrolled),
		errors.Is(err, apperrors.ErrInvalidFaculty),
		errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrCourseCodeExists):
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())
		c.JSON(http.StatusConflict, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrTokenExpired):
		detail := dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))

	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))

	default:
		// Store and unexpected failures: log the cause, hide it from clients.
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "An unexpected error occurred")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	}
}

// errorMessage prefers the wrapped message of a CustomError, falling back to
// a fixed text for bare sentinels.
func errorMessage(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// customDetails extracts the details map of a CustomError, if any.
func customDetails(err error) map[string]interface{} {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}
