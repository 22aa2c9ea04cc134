package postgres

import (
	"os"
	"path/filepath"
	"testing"
)

func clearPGEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PGHOST", "PGPORT", "PGUSER", "PGDATABASE", "PGSSLMODE", "PGPASSWORD", "PGPASSWORD_FILE"} {
		t.Setenv(k, "")
	}
}

func TestConnStringDefaults(t *testing.T) {
	clearPGEnv(t)

	got, err := ConnString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "host=127.0.0.1 port=5432 user=innervoice dbname=innervoice sslmode=disable"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConnStringPasswordFromFile(t *testing.T) {
	clearPGEnv(t)
	t.Setenv("PGHOST", "db")
	path := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(path, []byte("it's secret\n"), 0o600); err != nil {
		t.Fatalf("write password: %v", err)
	}
	t.Setenv("PGPASSWORD_FILE", path)

	got, err := ConnString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `host=db port=5432 user=innervoice password='it\'s secret' dbname=innervoice sslmode=disable`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConnStringMissingPasswordFile(t *testing.T) {
	clearPGEnv(t)
	t.Setenv("PGPASSWORD_FILE", filepath.Join(t.TempDir(), "missing"))

	if _, err := ConnString(); err == nil {
		t.Error("expected error for missing password file")
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		"":           "''",
		"two words":  "'two words'",
		`back\slash`: `'back\\slash'`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %q, want %q", in, got, want)
		}
	}
}
