package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestConnectionPrepareCaches(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, ":memory:", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	stmt1, err := conn.Prepare(ctx, "SELECT 1;")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	stmt2, err := conn.Prepare(ctx, "SELECT 1;")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if stmt1 != stmt2 {
		t.Error("Prepare returned a different *sql.Stmt for the same query text")
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, nil, nil, false, false)

	sentinel := errors.New("boom")
	err := conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, `INSERT INTO [`+cfg.TableNames[GeneralTable]+`] ([Key],[ValueString]) VALUES ('x','y');`)
		if execErr != nil {
			t.Fatalf("insert inside transaction: %v", execErr)
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("WithTransaction returned %v, want the callback's error", err)
	}

	var count int
	if scanErr := conn.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM [`+cfg.TableNames[GeneralTable]+`] WHERE [Key]='x';`).Scan(&count); scanErr != nil {
		t.Fatalf("scan: %v", scanErr)
	}
	if count != 0 {
		t.Error("row inserted inside a rolled-back transaction is still present")
	}
}

func TestGetStatisticsReportsNonZeroSize(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestDocument(t, 2, nil, nil, false, false)

	stats, err := conn.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if stats.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes = %d, want > 0", stats.FileSizeBytes)
	}
}
