package history

import (
	"testing"

	"github.com/rohankatakam/depscope/internal/models"
)

func TestParseNumstatPath(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		path   string
		source string
	}{
		{"plain", "src/app.py", "src/app.py", ""},
		{"whole rename", "old.py => new.py", "new.py", "old.py"},
		{"braced rename", "src/{old => new}/mod.py", "src/new/mod.py", "src/old/mod.py"},
		{"braced into subdir", "src/{ => sub}/mod.py", "src/sub/mod.py", "src/mod.py"},
		{"braced file rename", "src/{a.py => b.py}", "src/b.py", "src/a.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, source := parseNumstatPath(tt.raw)
			if path != tt.path || source != tt.source {
				t.Fatalf("parseNumstatPath(%q) = (%q, %q), want (%q, %q)",
					tt.raw, path, source, tt.path, tt.source)
			}
		})
	}
}

func TestParseNameStatus(t *testing.T) {
	output := "\x01abc123\x1fAlice\x1falice@example.com\x1f1700000000\x1fadd feature\n" +
		"A\tsrc/new.py\n" +
		"M\tsrc/old.py\n" +
		"D\tsrc/gone.py\n" +
		"R095\tsrc/before.py\tsrc/after.py\n"

	statuses := parseNameStatus(output)
	commit := statuses["abc123"]
	if commit == nil {
		t.Fatal("commit abc123 not parsed")
	}

	tests := []struct {
		path string
		want models.ChangeType
	}{
		{"src/new.py", models.ChangeAdded},
		{"src/old.py", models.ChangeModified},
		{"src/gone.py", models.ChangeDeleted},
		{"src/after.py", models.ChangeRenamed},
	}
	for _, tt := range tests {
		st, ok := commit[tt.path]
		if !ok {
			t.Fatalf("no status for %s", tt.path)
		}
		if st.changeType != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.path, st.changeType, tt.want)
		}
	}
	if commit["src/after.py"].oldPath != "src/before.py" {
		t.Fatalf("rename source not captured: %+v", commit["src/after.py"])
	}
}

func TestParseNumstatJoinsStatuses(t *testing.T) {
	header := "\x01abc123\x1fAlice\x1falice@example.com\x1f1700000000\x1ffix parser\n"
	output := header +
		"10\t2\tsrc/app.py\n" +
		"-\t-\tassets/logo.png\n"

	statuses := map[string]map[string]changeStatus{
		"abc123": {
			"src/app.py": {changeType: models.ChangeAdded},
		},
	}

	records, err := parseNumstat(output, statuses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	c := records[0].Commit
	if c.Hash != "abc123" || c.AuthorEmail != "alice@example.com" || c.Message != "fix parser" {
		t.Fatalf("unexpected commit: %+v", c)
	}
	if c.Timestamp.Unix() != 1700000000 {
		t.Fatalf("unexpected timestamp: %v", c.Timestamp)
	}

	changes := records[0].Changes
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].FilePath != "src/app.py" || changes[0].LinesAdded != 10 || changes[0].LinesDeleted != 2 {
		t.Fatalf("unexpected change: %+v", changes[0])
	}
	if changes[0].ChangeType != models.ChangeAdded {
		t.Fatalf("status not joined: %+v", changes[0])
	}
	// Binary files have no line counts and no recorded status.
	if changes[1].LinesAdded != 0 || changes[1].ChangeType != models.ChangeModified {
		t.Fatalf("unexpected binary change: %+v", changes[1])
	}
}

func TestParseNumstatBadTimestamp(t *testing.T) {
	output := "\x01abc\x1fAlice\x1fa@example.com\x1fnot-a-number\x1fmsg\n"
	if _, err := parseNumstat(output, nil); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}
