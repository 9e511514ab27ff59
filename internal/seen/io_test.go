package seen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jimezsa/sportstx/internal/models"
)

func TestReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	txs := []models.Transaction{{Date: "2023-02-15", Team: "Lakers", Acquired: "• LeBron James"}}
	if err := Write(path, txs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0] != txs[0] {
		t.Fatalf("unexpected transactions read back: %+v", got)
	}
}

func TestReadResultDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	doc := `{"transactions":[{"Date":"2023-02-15","Team":"Lakers","Acquired":"x","Relinquished":"","Notes":""}],"pages":1}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].Team != "Lakers" {
		t.Fatalf("unexpected transactions: %+v", got)
	}
}

func TestReadAllowMissing(t *testing.T) {
	got, err := ReadAllowMissing(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("ReadAllowMissing() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history for missing file, got %d", len(got))
	}
}

func TestReadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %v (%v)", got, err)
	}
}
