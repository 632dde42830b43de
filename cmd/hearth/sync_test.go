package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSyncRefusesEmptyDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hearth.yaml")
	cfg := `database:
  driver: ""
remote:
  base_url: "http://127.0.0.1:1"
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	old := cfgPath
	cfgPath = path
	defer func() { cfgPath = old }()

	err := syncCmd.RunE(syncCmd, nil)
	if err == nil {
		t.Fatal("sync with empty database.driver: expected error, got nil")
	}
	if !strings.Contains(err.Error(), "needs a database") {
		t.Fatalf("unexpected error: %v", err)
	}
}
