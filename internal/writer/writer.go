// Package writer abstracts file writes so commands can run in dry-run
// mode (no disk changes) or commit mode (atomic in-place writes).
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer provides an abstraction for file writing operations.
type Writer interface {
	WriteFile(path string, content []byte, perm os.FileMode) error
	Summary() string
}

// DryRunWriter tracks file changes without writing to disk.
type DryRunWriter struct {
	changes []FileChange
}

// FileChange represents a file that would be modified.
type FileChange struct {
	Path         string
	OriginalSize int
	NewSize      int
	BytesDiff    int
}

// NewDryRunWriter creates a new dry-run writer.
func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{changes: make([]FileChange, 0)}
}

// WriteFile simulates writing a file and tracks the change.
func (w *DryRunWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	var originalSize int
	if stat, err := os.Stat(path); err == nil {
		originalSize = int(stat.Size())
	}

	w.changes = append(w.changes, FileChange{
		Path:         path,
		OriginalSize: originalSize,
		NewSize:      len(content),
		BytesDiff:    len(content) - originalSize,
	})
	return nil
}

// Summary returns a summary of changes that would be made.
func (w *DryRunWriter) Summary() string {
	if len(w.changes) == 0 {
		return "No changes would be made."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Would modify %d file(s):\n", len(w.changes)))
	for _, change := range w.changes {
		sign := "+"
		if change.BytesDiff < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf("  %s (%s%d bytes)\n", change.Path, sign, change.BytesDiff))
	}
	return sb.String()
}

// DiskWriter performs atomic file writes, optionally keeping a
// timestamped backup of the previous content.
type DiskWriter struct {
	Backup       bool
	UseFsync     bool
	writtenFiles []string
}

// NewDiskWriter creates a new disk writer.
func NewDiskWriter(backup bool) *DiskWriter {
	return &DiskWriter{Backup: backup, writtenFiles: make([]string, 0)}
}

// WriteFile writes content to path via a temp file and rename. When the
// target exists its file mode is preserved; perm applies to new files.
func (w *DiskWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
		if w.Backup {
			if err := createBackup(path); err != nil {
				return fmt.Errorf("creating backup of %s: %w", path, err)
			}
		}
	}

	if err := w.writeFileAtomic(path, content, perm); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	w.writtenFiles = append(w.writtenFiles, path)
	return nil
}

func (w *DiskWriter) writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".confx-tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if w.UseFsync {
		if err := tmpFile.Sync(); err != nil {
			tmpFile.Close()
			return err
		}
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmpFile.Name(), path)
}

// Summary returns a summary of files that were written.
func (w *DiskWriter) Summary() string {
	if len(w.writtenFiles) == 0 {
		return "No files were written."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Successfully wrote %d file(s):\n", len(w.writtenFiles)))
	for _, path := range w.writtenFiles {
		sb.WriteString(fmt.Sprintf("  %s\n", path))
	}
	return sb.String()
}

// createBackup copies the current file content to <path>.bak.<timestamp>.
func createBackup(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	backupPath := fmt.Sprintf("%s.bak.%s", path, time.Now().Format("20060102-150405"))
	return os.WriteFile(backupPath, content, 0o600)
}

// RaceDetected checks if a file has been modified since it was last read.
func RaceDetected(before, after os.FileInfo) bool {
	return before.ModTime() != after.ModTime() || before.Size() != after.Size()
}
