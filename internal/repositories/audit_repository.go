package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "backoffice/internal/config"
	intdb "backoffice/internal/db"
)

const auditTable = "audit_log"

var ErrAuditUnavailable = errors.New("audit database not configured")

// AuditEntry is one gateway mutation as recorded in audit_log.
type AuditEntry struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Actor     string    `json:"actor"`
	Role      string    `json:"role,omitempty"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	TargetID  int64     `json:"target_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditRepository wraps DB access for audit_log.
type AuditRepository struct {
	DB *sql.DB
}

func (r AuditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Enabled reports whether an audit database is connected.
func (r AuditRepository) Enabled() bool {
	return r.db() != nil
}

// EnsureSchema creates audit_log when it does not exist yet.
func (r AuditRepository) EnsureSchema(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return ErrAuditUnavailable
	}
	if intdb.HasTable(ctx, db, auditTable) {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL,
			actor CHAR(32) NOT NULL,
			role VARCHAR(32) NULL,
			resource VARCHAR(64) NOT NULL,
			action VARCHAR(32) NOT NULL,
			target_id BIGINT NULL,
			outcome VARCHAR(16) NOT NULL,
			detail VARCHAR(500) NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_audit_resource (resource, created_at)
		)
	`)
	if err != nil {
		return fmt.Errorf("create %s: %w", auditTable, err)
	}
	return nil
}

// Insert stores e and returns its id. Strings longer than their column are
// cut so a caller-controlled claim cannot make the insert fail.
func (r AuditRepository) Insert(ctx context.Context, e AuditEntry) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, ErrAuditUnavailable
	}
	if !intdb.HasTable(ctx, db, auditTable) {
		return 0, fmt.Errorf("%s table is missing", auditTable)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var target any
	if e.TargetID > 0 {
		target = e.TargetID
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO audit_log (request_id, actor, role, resource, action, target_id, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		truncate(e.RequestID, 64),
		truncate(e.Actor, 32),
		intdb.NullIfEmpty(truncate(e.Role, 32)),
		truncate(e.Resource, 64),
		truncate(e.Action, 32),
		target,
		truncate(e.Outcome, 16),
		intdb.NullIfEmpty(truncate(e.Detail, 500)),
		e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", auditTable, err)
	}
	return res.LastInsertId()
}

// ListRecent returns the newest entries first, optionally for one resource.
func (r AuditRepository) ListRecent(ctx context.Context, resource string, limit int) ([]AuditEntry, error) {
	db := r.db()
	if db == nil {
		return nil, ErrAuditUnavailable
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id, request_id, actor, COALESCE(role, ''), resource, action,
		       COALESCE(target_id, 0), outcome, COALESCE(detail, ''), created_at
		FROM audit_log`
	args := []any{}
	if resource != "" {
		query += ` WHERE resource = ?`
		args = append(args, resource)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", auditTable, err)
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Actor, &e.Role, &e.Resource, &e.Action, &e.TargetID, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
