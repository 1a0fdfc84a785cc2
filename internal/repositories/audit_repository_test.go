package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuditInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT table_name\s+FROM information_schema.tables`).
		WithArgs("audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("audit_log"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("req-1", "0f1e2d3c4b5a69780f1e2d3c4b5a6978", "admin", "groups", "reorder", int64(7), "ok", nil, at).
		WillReturnResult(sqlmock.NewResult(42, 1))

	repo := AuditRepository{DB: db}
	id, err := repo.Insert(context.Background(), AuditEntry{
		RequestID: "req-1",
		Actor:     "0f1e2d3c4b5a69780f1e2d3c4b5a6978",
		Role:      "admin",
		Resource:  "groups",
		Action:    "reorder",
		TargetID:  7,
		Outcome:   "ok",
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditInsertWithoutTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT table_name`).
		WithArgs("audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	if _, err := (AuditRepository{DB: db}).Insert(context.Background(), AuditEntry{Resource: "salons"}); err == nil {
		t.Fatalf("expected error when audit_log is missing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditEnsureSchemaCreatesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT table_name`).
		WithArgs("audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (AuditRepository{DB: db}).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditListRecentFiltersByResource(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM audit_log WHERE resource = \? ORDER BY id DESC LIMIT \?`).
		WithArgs("coupons", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "actor", "role", "resource", "action", "target_id", "outcome", "detail", "created_at"}).
			AddRow(9, "req-9", "abc", "admin", "coupons", "delete", 3, "failed", "http error (status 404): not found", at).
			AddRow(8, "req-8", "abc", "", "coupons", "create", 0, "ok", "", at))

	entries, err := (AuditRepository{DB: db}).ListRecent(context.Background(), "coupons", 20)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 9 || entries[0].Outcome != "failed" || entries[1].TargetID != 0 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditWithoutDatabase(t *testing.T) {
	repo := AuditRepository{}
	if repo.Enabled() {
		t.Skip("a global audit database is connected")
	}
	if _, err := repo.Insert(context.Background(), AuditEntry{}); err != ErrAuditUnavailable {
		t.Fatalf("expected ErrAuditUnavailable, got %v", err)
	}
}

func TestAuditInsertTruncatesLongClaims(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	longRole := strings.Repeat("r", 80)
	mock.ExpectQuery(`SELECT table_name`).
		WithArgs("audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("audit_log"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("req-2", "actor", strings.Repeat("r", 32), "salons", "create", nil, "failed", strings.Repeat("d", 500), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = (AuditRepository{DB: db}).Insert(context.Background(), AuditEntry{
		RequestID: "req-2",
		Actor:     "actor",
		Role:      longRole,
		Resource:  "salons",
		Action:    "create",
		Outcome:   "failed",
		Detail:    strings.Repeat("d", 900),
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
