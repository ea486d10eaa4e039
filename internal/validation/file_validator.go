package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Upload rejection errors
var (
	ErrNotCSV         = errors.New("Only CSV files supported")
	ErrEmptyUpload    = errors.New("uploaded file is empty")
	ErrUploadTooLarge = errors.New("uploaded file exceeds the size limit")
)

// FileValidator checks uploaded and local files before they are ingested
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator. A maxBytes of zero disables the size check.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// MaxBytes returns the configured upload size limit
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

// RejectionReason returns a short metric label for an upload rejection
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNotCSV):
		return "not_csv"
	case errors.Is(err, ErrEmptyUpload):
		return "empty"
	case errors.Is(err, ErrUploadTooLarge):
		return "too_large"
	default:
		return "other"
	}
}

// ValidateUpload checks an uploaded file's name and size. The name must end
// in ".csv" in any letter case.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if !IsCSVName(filename) {
		v.logger.Warn("Rejected upload with unsupported extension",
			slog.String("filename", filename))
		return ErrNotCSV
	}
	if size == 0 {
		v.logger.Warn("Rejected empty upload",
			slog.String("filename", filename))
		return ErrEmptyUpload
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Rejected oversized upload",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return fmt.Errorf("%w: %d bytes (max %d)", ErrUploadTooLarge, size, v.maxBytes)
	}

	v.logger.Debug("Upload validated",
		slog.String("filename", filename),
		slog.Int64("size", size))
	return nil
}

// IsCSVName reports whether name carries a .csv extension, ignoring case
func IsCSVName(name string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".csv")
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks a local transactions file the same way as an upload
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return v.ValidateUpload(filepath.Base(path), info.Size())
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
