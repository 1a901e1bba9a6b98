package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	receiptsDir = "receipts"
	reportsDir  = "reports"
	archiveDir  = "archive"
	timeLayout  = "20060102-150405"
)

// FileStore keeps printed receipts and shift reports on local disk:
//
//	<dir>/receipts/receipt-table-<n>-<timestamp>.txt
//	<dir>/reports/shift-report-<timestamp>-<id>.txt
//	<dir>/archive/<report id>/receipt-table-...
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	for _, sub := range []string{receiptsDir, reportsDir, archiveDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact directory %s: %w", sub, err)
		}
	}
	return &FileStore{dir: dir}, nil
}

// SaveReceipt writes a receipt and returns its path. Receipts for the same
// table in the same second get a numeric suffix instead of overwriting.
func (s *FileStore) SaveReceipt(tableNumber uint, settledAt time.Time, content []byte) (string, error) {
	base := fmt.Sprintf("receipt-table-%d-%s", tableNumber, settledAt.UTC().Format(timeLayout))
	path := filepath.Join(s.dir, receiptsDir, base+".txt")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(s.dir, receiptsDir, fmt.Sprintf("%s-%d.txt", base, n))
	}

	if err := writeDurable(path, content); err != nil {
		return "", fmt.Errorf("saving receipt: %w", err)
	}
	return path, nil
}

// SaveReport writes a shift report and returns once it is on stable storage.
func (s *FileStore) SaveReport(reportID string, closedAt time.Time, content []byte) (string, error) {
	name := fmt.Sprintf("shift-report-%s-%s.txt", closedAt.UTC().Format(timeLayout), reportID)
	path := filepath.Join(s.dir, reportsDir, name)

	if err := writeDurable(path, content); err != nil {
		return "", fmt.Errorf("saving shift report: %w", err)
	}
	return path, nil
}

// ArchiveReceipts moves every pending receipt under archive/<reportID>/ and
// returns how many were moved.
func (s *FileStore) ArchiveReceipts(reportID string) (int, error) {
	src := filepath.Join(s.dir, receiptsDir)
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("listing receipts: %w", err)
	}

	dst := filepath.Join(s.dir, archiveDir, reportID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("creating archive directory: %w", err)
	}

	moved := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "receipt-") {
			continue
		}
		if err := os.Rename(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return moved, fmt.Errorf("archiving receipt %s: %w", e.Name(), err)
		}
		moved++
	}

	if err := syncDir(dst); err != nil {
		return moved, err
	}
	return moved, syncDir(src)
}

// writeDurable writes to a temp file, fsyncs it, renames it into place and
// fsyncs the directory.
func writeDurable(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening directory %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("syncing directory %s: %w", dir, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
