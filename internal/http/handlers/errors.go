package handlers

import (
	"errors"
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"
	"backoffice/internal/repositories"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain and remote API errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	_ = c.Error(err)

	if apiErr, ok := domain.AsAPIError(err); ok {
		respondAPIError(c, apiErr)
		return
	}
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), validationDetails(err))
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repositories.ErrAuditUnavailable):
		respondError(c, http.StatusServiceUnavailable, "audit_disabled", "the audit trail is not configured", nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

func respondAPIError(c *gin.Context, e domain.APIError) {
	msg := e.Message
	if msg == "" {
		msg = domain.FallbackMessage(e.Status)
	}
	switch e.Kind {
	case domain.KindUnauthorized:
		middleware.RejectAnonymous(c)
	case domain.KindTransport:
		respondError(c, http.StatusBadGateway, "upstream_unreachable", msg, nil)
	case domain.KindDecode:
		respondError(c, http.StatusBadGateway, "upstream_malformed", msg, nil)
	case domain.KindApplication:
		respondError(c, http.StatusUnprocessableEntity, "upstream_rejected", msg, nil)
	default:
		status := e.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		respondError(c, status, "upstream_error", msg, nil)
	}
}

func validationDetails(err error) []fieldError {
	var many domain.ValidationErrors
	if errors.As(err, &many) {
		out := make([]fieldError, 0, len(many))
		for _, fe := range many {
			out = append(out, fieldError{Field: fe.Field, Message: fe.Msg})
		}
		return out
	}
	var one domain.ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return []fieldError{{Field: one.Field, Message: one.Msg}}
	}
	return nil
}
