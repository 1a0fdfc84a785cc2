package handlers

import (
	"net/http"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/http/middleware"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// SaveWorkingHours writes a salon's schedule day by day. The response lists
// every day; 207 means some days were saved and others were not.
func SaveWorkingHours(c *gin.Context) {
	salonID, ok := paramID(c)
	if !ok {
		return
	}
	var payload models.WorkingHoursPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	rs, ok := resourceService(c)
	if !ok {
		return
	}
	svc := services.WorkingHoursService{Client: rs.Client, Audit: rs.Audit, RequestID: rs.RequestID, Concurrency: 3}
	days, err := svc.Save(c.Request.Context(), salonID, payload)
	if days == nil {
		RespondDomainError(c, err)
		return
	}

	// A 401 on any day ends the session even when other days went through.
	if sess := middleware.GetSession(c); domain.IsUnauthorized(err) || (sess != nil && sess.State() == apiclient.Anonymous) {
		middleware.RejectAnonymous(c)
		return
	}

	saved := 0
	for _, d := range days {
		if d.Saved {
			saved++
		}
	}
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "data": days})
	case saved > 0:
		c.JSON(http.StatusMultiStatus, gin.H{"success": false, "message": "some days could not be saved", "data": days})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "no day could be saved", "data": days})
	}
}
