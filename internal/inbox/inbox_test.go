package inbox

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestInbox(t *testing.T) (*Inbox, Paths) {
	t.Helper()
	root := t.TempDir()
	paths := Paths{
		InboxDir:          filepath.Join(root, "inbox"),
		TriageRejectedDir: filepath.Join(root, "triage_rejected"),
		ReviewQueueDir:    filepath.Join(root, "review_queue"),
		ProcessedDir:      filepath.Join(root, "processed"),
	}
	in, err := New(paths)
	if err != nil {
		t.Fatalf("new inbox: %v", err)
	}
	return in, paths
}

func writeInboxFile(t *testing.T, paths Paths, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(paths.InboxDir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadAllSortedWithDerivedIDs(t *testing.T) {
	in, paths := newTestInbox(t)
	writeInboxFile(t, paths, "claim_002.json", `{"subject":"broken","body":"my dryer stopped"}`)
	writeInboxFile(t, paths, "claim_001.json", `{"email_id":"custom_id","subject":"hi","body":"text"}`)
	writeInboxFile(t, paths, "notes.txt", "ignored")

	emails, failures, err := in.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
	if emails[0].EmailID != "custom_id" {
		t.Fatalf("explicit email_id should win, got %q", emails[0].EmailID)
	}
	if emails[1].EmailID != "claim_002" {
		t.Fatalf("missing email_id should derive from file stem, got %q", emails[1].EmailID)
	}
}

func TestLoadAllCollectsFailures(t *testing.T) {
	in, paths := newTestInbox(t)
	writeInboxFile(t, paths, "bad.json", `{not json`)
	writeInboxFile(t, paths, "empty.json", `{"subject":"","body":""}`)
	writeInboxFile(t, paths, "good.json", `{"subject":"s","body":"b"}`)

	emails, failures, err := in.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(emails) != 1 || emails[0].EmailID != "good" {
		t.Fatalf("expected only the good email, got %v", emails)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", failures)
	}
	for _, f := range failures {
		if f.Err == nil || f.File == "" {
			t.Fatalf("failure must name file and error: %+v", f)
		}
	}
}

func TestMoveToTriageRejected(t *testing.T) {
	in, paths := newTestInbox(t)
	writeInboxFile(t, paths, "spam_001.json", `{"subject":"seo","body":"offer"}`)

	dst, err := in.MoveToTriageRejected("spam_001")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if dst != filepath.Join(paths.TriageRejectedDir, "spam_001.json") {
		t.Fatalf("unexpected destination %q", dst)
	}
	if _, err := os.Stat(filepath.Join(paths.InboxDir, "spam_001.json")); !os.IsNotExist(err) {
		t.Fatalf("source should be gone")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}

	if _, err := in.MoveToTriageRejected("spam_001"); err == nil {
		t.Fatalf("moving a missing file must error")
	}
}

func TestMoveToProcessedOptional(t *testing.T) {
	root := t.TempDir()
	in, err := New(Paths{
		InboxDir:          filepath.Join(root, "inbox"),
		TriageRejectedDir: filepath.Join(root, "rej"),
		ReviewQueueDir:    filepath.Join(root, "queue"),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dst, err := in.MoveToProcessed("anything")
	if err != nil || dst != "" {
		t.Fatalf("unconfigured processed dir should no-op, got %q %v", dst, err)
	}
}

func TestNewRequiresCoreDirs(t *testing.T) {
	if _, err := New(Paths{InboxDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for missing dirs")
	}
}
