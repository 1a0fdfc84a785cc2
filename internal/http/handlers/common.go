package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondError sends the standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	var details any
	if err != nil {
		details = err.Error()
	}
	respondError(c, status, "", message, details)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// bindForm decodes the JSON "payload" field of a multipart form into dst.
func bindForm(c *gin.Context, dst any) bool {
	raw := strings.TrimSpace(c.PostForm("payload"))
	if raw == "" {
		RespondError(c, http.StatusBadRequest, "multipart form is missing the payload field", nil)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "must be a positive id"})
		return 0, false
	}
	return id, true
}
