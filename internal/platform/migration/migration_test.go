package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveDirPicksFirstExistingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir.sql")
	if err := os.WriteFile(file, []byte("SELECT 1;"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := ResolveDir("", filepath.Join(dir, "missing"), file, dir)
	if err != nil {
		t.Fatalf("resolve dir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got=%s", dir, got)
	}
}

func TestResolveDirListsCheckedCandidates(t *testing.T) {
	t.Parallel()

	_, err := ResolveDir("/nope/a", "/nope/b")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "/nope/a, /nope/b") {
		t.Fatalf("expected checked candidates in error, got=%v", err)
	}
}

func TestParseSteps(t *testing.T) {
	t.Parallel()

	steps, err := ParseSteps(nil)
	if err != nil || steps != 1 {
		t.Fatalf("expected default 1 step, got=%d err=%v", steps, err)
	}
	steps, err = ParseSteps([]string{" 3 "})
	if err != nil || steps != 3 {
		t.Fatalf("expected 3 steps, got=%d err=%v", steps, err)
	}
	if _, err := ParseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
	if _, err := ParseSteps([]string{"x"}); err == nil {
		t.Fatalf("expected error for non-numeric steps")
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	t.Parallel()

	if v, err := ParseVersion("2"); err != nil || v != 2 {
		t.Fatalf("expected version 2, got=%d err=%v", v, err)
	}
	if _, err := ParseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if v, err := ParseTarget("3"); err != nil || v != 3 {
		t.Fatalf("expected target 3, got=%d err=%v", v, err)
	}
	if _, err := ParseTarget("-3"); err == nil {
		t.Fatalf("expected error for negative target")
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("..", "..", "..", "db", "migrations")
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(ups) == 0 {
		t.Fatalf("expected migrations in %s", dir)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := os.Stat(down); err != nil {
			t.Fatalf("missing down migration for %s", filepath.Base(up))
		}
	}
}
