// Package file exports conversation transcripts as markdown files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ExportSink = (*Sink)(nil)

// maxAttempts bounds the numbered suffixes tried when a file name is taken.
const maxAttempts = 100

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Sink writes one markdown file per export.
type Sink struct {
	dir string
	now func() time.Time
}

// NewSink creates a file sink writing to dir.
// If dir is empty, uses ~/.docqa/exports.
func NewSink(dir string) (*Sink, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "exports")
	}

	return &Sink{dir: dir, now: time.Now}, nil
}

// Name identifies the sink.
func (s *Sink) Name() string {
	return "file"
}

// Dir returns the output directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Export writes title and content to a new file and returns its path.
// Existing files are never overwritten.
func (s *Sink) Export(ctx context.Context, title, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	now := s.now()
	body := fmt.Sprintf("# %s\n\n_Exported %s_\n\n%s\n", title, now.Format(time.DateTime), content)
	base := now.Format("2006-01-02") + "-" + slug(title)

	for i := 1; i <= maxAttempts; i++ {
		name := base + ".md"
		if i > 1 {
			name = fmt.Sprintf("%s-%d.md", base, i)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create export file: %w", err)
		}

		if _, err := f.WriteString(body); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("write export file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close export file: %w", err)
		}
		return path, nil
	}

	return "", fmt.Errorf("no free file name for %q in %s", base, s.dir)
}

// slug lowercases title and replaces runs of other characters with dashes.
func slug(title string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		return "conversation"
	}
	return s
}
