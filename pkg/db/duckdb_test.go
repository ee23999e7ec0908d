package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewDuckDBClientInMemory(t *testing.T) {
	client, err := NewDuckDBClient(context.Background(), &Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer client.Close()

	for _, table := range []string{"submitters", "capture_sessions", "packets"} {
		var n int64
		if err := client.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("Expected table %s to exist, got %v", table, err)
		}
		if n != 0 {
			t.Fatalf("Expected empty table %s, got %d rows", table, n)
		}
	}
}

func TestMigrateSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.duckdb")

	client, err := NewDuckDBClient(context.Background(), &Options{Path: path})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := client.Exec("INSERT INTO submitters (identifier) VALUES ('abc')"); err != nil {
		t.Fatalf("Expected insert to succeed, got %v", err)
	}
	client.Close()

	client, err = NewDuckDBClient(context.Background(), &Options{Path: path})
	if err != nil {
		t.Fatalf("Expected reopen to succeed, got %v", err)
	}
	defer client.Close()

	var id int64
	if err := client.QueryRow("SELECT id FROM submitters WHERE identifier = 'abc'").Scan(&id); err != nil {
		t.Fatalf("Expected the row to survive reopening, got %v", err)
	}
	if id != 1 {
		t.Fatalf("Expected id 1, got %d", id)
	}

	if _, err := client.Exec("INSERT INTO submitters (identifier) VALUES ('abc')"); err == nil {
		t.Fatalf("Expected duplicate identifier to be rejected")
	}
}
