// Package report encodes execution reports and writes them to disk.
//
// Writes go to a temporary file that is renamed into place while holding a
// file lock on the report directory, so concurrent taskflow processes never
// interleave or expose partial reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/harrison/taskflow/internal/models"
	"gopkg.in/yaml.v3"
)

// lockFileName is the lock file kept inside the report directory.
const lockFileName = ".reports.lock"

// Supported encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode renders a report in the given format ("json" or "yaml").
func Encode(r models.ExecutionReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report as json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode report as yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// Decode parses a report previously written by Encode.
func Decode(data []byte, format string) (models.ExecutionReport, error) {
	var r models.ExecutionReport
	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		err = json.Unmarshal(data, &r)
	case FormatYAML:
		err = yaml.Unmarshal(data, &r)
	default:
		return r, fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return r, fmt.Errorf("decode %s report: %w", format, err)
	}
	return r, nil
}

// Store writes reports into a directory.
type Store struct {
	dir    string
	format string
}

// NewStore creates a Store for dir. The directory is created on first write.
func NewStore(dir, format string) (*Store, error) {
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	return &Store{dir: dir, format: format}, nil
}

// Dir returns the report directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the file name used for a report:
// run-YYYYMMDD-HHMMSS-<first 8 chars of run id>.<format>
func (s *Store) FileName(r models.ExecutionReport) string {
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	name := "run-" + r.StartTime.Format("20060102-150405")
	if id != "" {
		name += "-" + id
	}
	return name + "." + s.format
}

// Write encodes r and stores it atomically. It returns the written path.
func (s *Store) Write(r models.ExecutionReport) (string, error) {
	data, err := Encode(r, s.format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", s.dir, err)
	}

	lock := flock.New(filepath.Join(s.dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("failed to acquire report lock: %w", err)
	}
	defer lock.Unlock()

	path := filepath.Join(s.dir, s.FileName(r))
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the report files in the directory, oldest first.
// File names sort chronologically because they start with the run timestamp.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var paths []string
	suffix := "." + s.format
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "run-") || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read loads a report file. The format follows the file extension
// (.json, .yaml, .yml) and falls back to the store's format.
func (s *Store) Read(path string) (models.ExecutionReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ExecutionReport{}, fmt.Errorf("failed to read report: %w", err)
	}
	return Decode(data, formatForPath(path, s.format))
}

func formatForPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return fallback
	}
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over path, so readers never observe a partial report.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure temp file is cleaned up on error
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed into place; nothing left to clean up.
	tempFile = nil
	return nil
}
