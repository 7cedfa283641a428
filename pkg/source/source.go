// Package source locates and loads the JavaScript source bundle.
//
// The bundle is either one file (Config.Path) or every file under Root that
// matches the Include globs, concatenated in sorted path order.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrSourceNotFound is returned when the configured bundle does not exist
// or the include globs match nothing.
var ErrSourceNotFound = errors.New("source bundle not found")

// DefaultPath is the bundle path used when nothing is configured.
const DefaultPath = "api.js"

// Config selects the source bundle.
type Config struct {
	// Path is a single bundle file. Takes precedence over Include.
	Path string `yaml:"path"`

	// Root is the directory Include and Exclude are relative to.
	// Defaults to the working directory.
	Root string `yaml:"root"`

	// Include globs (doublestar syntax), e.g. "src/api/**/*.js".
	Include []string `yaml:"include"`

	// Exclude globs; matching directories are not descended into.
	Exclude []string `yaml:"exclude"`
}

// Bundle is the loaded source text.
type Bundle struct {
	// Files are the absolute paths that make up the bundle, in the order
	// they were concatenated.
	Files []string

	// Text is the concatenated content, files separated by a newline.
	Text string

	// MmapFallbacks counts files that had to be read with os.ReadFile.
	MmapFallbacks int
}

// Discover resolves cfg to the list of bundle files.
func Discover(cfg Config) ([]string, error) {
	if cfg.Path != "" || len(cfg.Include) == 0 {
		path, err := discoverPath(cfg.Path)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	files, err := discoverGlobs(cfg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files under %s match %s; check source.include in the project config",
			ErrSourceNotFound, rootOrDot(cfg.Root), strings.Join(cfg.Include, ", "))
	}
	return files, nil
}

func discoverPath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source path: %w", err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s does not exist; set source.path in the project config or pass --source", ErrSourceNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat source %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source %s is a directory; set source.include to glob files inside it", path)
	}
	return abs, nil
}

// discoverGlobs walks Root applying include/exclude globs. Returns a sorted
// slice of absolute file paths for deterministic output.
func discoverGlobs(cfg Config) ([]string, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootOrDot(cfg.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: root %s is not a directory", ErrSourceNotFound, rootOrDot(cfg.Root))
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if MatchAny(relPath, cfg.Exclude) {
			if d.IsDir() && relPath != "." {
				return filepath.SkipDir
			}
			if !d.IsDir() {
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if MatchAny(relPath, cfg.Include) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// MatchAny reports whether relPath (slash-separated) matches any of the
// doublestar patterns.
func MatchAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, relPath); m {
			return true
		}
	}
	return false
}

func rootOrDot(root string) string {
	if root == "" {
		return "."
	}
	return root
}

// Load discovers and reads the bundle.
func Load(cfg Config, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := Discover(cfg)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Files: files}
	parts := make([]string, 0, len(files))
	for _, path := range files {
		data, mapped, err := readMapped(path)
		if err != nil {
			return nil, err
		}
		if !mapped {
			b.MmapFallbacks++
			logger.Debug("mmap unavailable, read file directly", "path", path)
		}
		parts = append(parts, string(data))
	}
	b.Text = strings.Join(parts, "\n")

	logger.Debug("source bundle loaded", "files", len(files), "bytes", len(b.Text))
	return b, nil
}
