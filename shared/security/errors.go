package security

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medicare-backend/shared/apperr"
)

// ErrorResponse represents a standardized error response structure
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// Authentication errors
	CodeMissingToken           = "MISSING_TOKEN"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeInvalidTokenFormat     = "INVALID_TOKEN_FORMAT"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeUserNotFoundOrInactive = "USER_NOT_FOUND_OR_INACTIVE"
	CodeAuthVerificationError  = "AUTH_VERIFICATION_ERROR"
	CodeUserNotAuthenticated   = "USER_NOT_AUTHENTICATED"

	// Authorization errors
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

	// Validation errors
	CodeValidationError = "VALIDATION_ERROR"

	// Resource errors
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeConflict         = "RESOURCE_CONFLICT"

	// Server errors
	CodeDatabaseError = "DATABASE_ERROR"
)

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, errorCode, errorMessage, detailedMessage string, details interface{}) {
	response := ErrorResponse{
		Error:   errorMessage,
		Message: detailedMessage,
		Code:    errorCode,
	}

	if details != nil {
		response.Details = details
	}

	c.JSON(statusCode, response)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, message string, details interface{}) {
	SendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", message, details)
}

// SendBindingError reports a request body that failed to decode or bind.
func SendBindingError(c *gin.Context, err error) {
	SendValidationError(c, "Invalid input data", apperr.FromValidator(err).Fields)
}

// SendAppError writes the response for a classified error. Unclassified
// errors are logged and answered with 500 without leaking the cause.
func SendAppError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Internal server error",
			"Something went wrong while processing the request. Please try again later", nil)
		return
	}

	var details interface{}
	if len(appErr.Fields) > 0 {
		details = appErr.Fields
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		SendValidationError(c, appErr.Message, details)
	case apperr.KindAuthentication:
		SendError(c, http.StatusUnauthorized, CodeInvalidCredentials, "Authentication failed", appErr.Message, details)
	case apperr.KindAuthorization:
		SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions", appErr.Message, details)
	case apperr.KindNotFound:
		SendError(c, http.StatusNotFound, CodeResourceNotFound, "Resource not found", appErr.Message, details)
	case apperr.KindConflict:
		SendError(c, http.StatusConflict, CodeConflict, "Resource conflict", appErr.Message, details)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Internal server error",
			"Something went wrong while processing the request. Please try again later", nil)
	}
}
