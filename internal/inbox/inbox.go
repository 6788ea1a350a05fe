// Package inbox is the file-based mail adapter: JSON files dropped into
// the inbox directory are the ingestion surface, and routing happens by
// moving files between sibling directories.
package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aerodry/claimflow/pkg/types"
)

// Paths names the directories the inbox routes between. ProcessedDir is
// optional; when empty, archiving is a no-op.
type Paths struct {
	InboxDir          string `yaml:"inbox_dir"`
	TriageRejectedDir string `yaml:"triage_rejected_dir"`
	ReviewQueueDir    string `yaml:"review_queue_dir"`
	ProcessedDir      string `yaml:"processed_dir"`
}

// LoadError pairs an unreadable inbox file with its error. Bad files are
// reported, never fatal; the rest of the inbox still processes.
type LoadError struct {
	File string
	Err  error
}

type Inbox struct {
	paths Paths
}

func New(paths Paths) (*Inbox, error) {
	if paths.InboxDir == "" || paths.TriageRejectedDir == "" || paths.ReviewQueueDir == "" {
		return nil, fmt.Errorf("inbox: inbox, triage_rejected, and review_queue dirs are required")
	}
	dirs := []string{paths.InboxDir, paths.TriageRejectedDir, paths.ReviewQueueDir}
	if paths.ProcessedDir != "" {
		dirs = append(dirs, paths.ProcessedDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("inbox: create %s: %w", dir, err)
		}
	}
	return &Inbox{paths: paths}, nil
}

// ListFiles returns the inbox JSON files sorted by name so runs are
// deterministic.
func (in *Inbox) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(in.paths.InboxDir)
	if err != nil {
		return nil, fmt.Errorf("inbox: read dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(in.paths.InboxDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LoadEmail reads one inbox file. A missing email_id defaults to the file
// stem; subject and body are required.
func (in *Inbox) LoadEmail(path string) (types.Email, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Email{}, fmt.Errorf("inbox: read %s: %w", filepath.Base(path), err)
	}
	var email types.Email
	if err := json.Unmarshal(raw, &email); err != nil {
		return types.Email{}, fmt.Errorf("inbox: invalid email JSON in %s: %w", filepath.Base(path), err)
	}
	if email.EmailID == "" {
		email.EmailID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if email.Subject == "" || email.Body == "" {
		return types.Email{}, fmt.Errorf("inbox: invalid email JSON in %s: subject and body are required", filepath.Base(path))
	}
	return email, nil
}

// LoadAll loads every inbox file, collecting per-file failures instead of
// aborting the batch.
func (in *Inbox) LoadAll() ([]types.Email, []LoadError, error) {
	files, err := in.ListFiles()
	if err != nil {
		return nil, nil, err
	}
	var emails []types.Email
	var failures []LoadError
	for _, path := range files {
		email, err := in.LoadEmail(path)
		if err != nil {
			failures = append(failures, LoadError{File: filepath.Base(path), Err: err})
			continue
		}
		emails = append(emails, email)
	}
	return emails, failures, nil
}

// MoveToTriageRejected routes a non-claim out of the inbox.
func (in *Inbox) MoveToTriageRejected(emailID string) (string, error) {
	return in.move(emailID, in.paths.TriageRejectedDir)
}

// MoveToProcessed archives a handled email. No-op when no processed dir
// is configured.
func (in *Inbox) MoveToProcessed(emailID string) (string, error) {
	if in.paths.ProcessedDir == "" {
		return "", nil
	}
	return in.move(emailID, in.paths.ProcessedDir)
}

func (in *Inbox) move(emailID, dstDir string) (string, error) {
	src := filepath.Join(in.paths.InboxDir, emailID+".json")
	dst := filepath.Join(dstDir, emailID+".json")
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("inbox: cannot move %s: %w", emailID, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("inbox: move %s: %w", emailID, err)
	}
	return dst, nil
}
