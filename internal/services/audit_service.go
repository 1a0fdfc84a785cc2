package services

import (
	"context"
	"fmt"

	"backoffice/internal/repositories"
	"backoffice/internal/utils"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// AuditService records gateway mutations. Without an audit database it only logs.
type AuditService struct {
	Repo      repositories.AuditRepository
	RequestID string
	Actor     string
	Role      string
}

// Record stores the outcome of one mutation. Storage failures are logged, never returned.
func (s AuditService) Record(ctx context.Context, resource, action string, targetID int64, opErr error) {
	entry := repositories.AuditEntry{
		RequestID: s.RequestID,
		Actor:     s.Actor,
		Role:      s.Role,
		Resource:  resource,
		Action:    action,
		TargetID:  targetID,
		Outcome:   OutcomeOK,
	}
	if opErr != nil {
		entry.Outcome = OutcomeFailed
		entry.Detail = opErr.Error()
	}
	utils.LogEvent(s.RequestID, resource, action, fmt.Sprintf("target_id=%d outcome=%s", targetID, entry.Outcome))

	if !s.Repo.Enabled() {
		return
	}
	if _, err := s.Repo.Insert(ctx, entry); err != nil {
		utils.LogFailure(s.RequestID, "audit", "insert", err)
	}
}

// Recent lists the newest audit entries, optionally for one resource.
func (s AuditService) Recent(ctx context.Context, resource string, limit int) ([]repositories.AuditEntry, error) {
	return s.Repo.ListRecent(ctx, resource, limit)
}
