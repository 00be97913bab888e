package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# comment
TASKER_TEST_A=plain
TASKER_TEST_B="quoted value"
export TASKER_TEST_C='single'
not a pair
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"TASKER_TEST_A", "TASKER_TEST_B", "TASKER_TEST_C"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}

	cases := map[string]string{
		"TASKER_TEST_A": "plain",
		"TASKER_TEST_B": "quoted value",
		"TASKER_TEST_C": "single",
	}
	for k, want := range cases {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TASKER_TEST_KEEP=file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKER_TEST_KEEP", "process")
	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TASKER_TEST_KEEP"); got != "process" {
		t.Errorf("got %q, want process env to win", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestPathsUnderTaskerPath(t *testing.T) {
	t.Setenv("TASKER_PATH", "/tmp/tasker-test")

	if got := TaskerPath(); got != "/tmp/tasker-test" {
		t.Fatalf("TaskerPath: got %q", got)
	}
	if got := QueuePath(); got != "/tmp/tasker-test/queue.jsonl" {
		t.Errorf("QueuePath: got %q", got)
	}
	if got := ArchivePath(); got != "/tmp/tasker-test/archive.db" {
		t.Errorf("ArchivePath: got %q", got)
	}
}
