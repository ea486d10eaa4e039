package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"saaspulse/internal/validation"
)

// ErrNoInputs is returned when arguments expand to no files at all
var ErrNoInputs = errors.New("no input files")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindCSVFiles lists the CSV files directly inside dir, sorted by name.
// Subdirectories are not searched.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !validation.IsCSVName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// ExpandInputs replaces every directory argument with the CSV files it
// contains. Other arguments, including paths that do not exist, are kept
// verbatim. Duplicates are dropped; the first occurrence wins.
func (d *Discovery) ExpandInputs(args []string) ([]string, error) {
	seen := make(map[string]struct{}, len(args))
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}

	for _, arg := range args {
		path := d.resolve(arg)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			add(path)
			continue
		}

		found, err := d.FindCSVFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f.Path)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoInputs
	}
	return out, nil
}
