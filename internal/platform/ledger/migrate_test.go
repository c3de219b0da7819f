package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_permission_edges.sql", "CREATE TABLE permission_edges ();")
	writeFile(t, dir, "001_users.sql", "CREATE TABLE users ();")
	writeFile(t, dir, "010_audit_entries.sql", "CREATE TABLE audit_entries ();")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 || migs[2].Version != 10 {
		t.Errorf("migrations out of order: %v %v %v", migs[0].Version, migs[1].Version, migs[2].Version)
	}
	if migs[0].SQL != "CREATE TABLE users ();" {
		t.Errorf("unexpected SQL: %s", migs[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonNumeric(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_users.sql", "CREATE TABLE users ();")
	writeFile(t, dir, "README.md", "docs")
	writeFile(t, dir, "notes.sql", "-- no version prefix")
	writeFile(t, dir, "abc_bad.sql", "-- not numeric")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migs))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
