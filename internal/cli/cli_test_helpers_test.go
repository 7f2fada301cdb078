package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var cliTestNow = time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC)

const legacyExportFixture = `{
  "habits": [
    {"id": "walk", "name": "Walk", "points": 5, "category": "health"},
    {"id": "read", "name": "Read", "points": 10, "category": "productivity"}
  ],
  "teams": [{"id": "blue", "name": "Blue", "color": "#0000ff", "order_index": 0}],
  "profiles": [
    {"id": "u1", "email": "ada@example.com", "name": "Ada:::[\"walk\",\"read\"]", "role": "ADMIN", "team_id": "blue"},
    {"id": "u2", "email": "max@example.com", "name": "Max", "role": "MEMBER"}
  ],
  "logs": [
    {"id": "a", "user_id": "u1", "habit_id": "walk", "date": "2026-05-01", "completed": true},
    {"id": "b", "user_id": "u2", "habit_id": "read", "date": "2026-05-02", "completed": true}
  ],
  "settings": {"name": "Spring", "start_date": "2026-05-01", "end_date": "2026-05-10", "is_active": true, "rules": "[STAKE:100] Be honest"}
}`

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	return &Context{
		Globals: &Globals{DBPath: filepath.Join(t.TempDir(), "challenge.db"), TZ: "UTC"},
		Stdout:  &stdout,
		Now:     func() time.Time { return cliTestNow },
	}, &stdout
}

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func importFixture(t *testing.T, ctx *Context) {
	t.Helper()
	cmd := &ImportLegacyCmd{File: writeTempFile(t, "export.json", legacyExportFixture)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("import fixture: %v", err)
	}
}
