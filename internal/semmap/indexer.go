package semmap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// ScanOptions describe which files under Root take part in a scan.
type ScanOptions struct {
	Root              string
	ProjectName       string
	Purpose           string
	IncludeExtensions []string
	IncludeFileNames  []string
	ExcludeDirs       []string
	ExcludeGlobs      []string
	ExcludeFiles      []string
	IncludeHidden     bool
	Registry          *ExtractorRegistry
	Logger            *slog.Logger
}

// DefaultScanOptions returns the scan contract used when nothing is configured.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Root:              ".",
		IncludeExtensions: []string{"rs", "ts", "tsx", "mts", "cts", "js", "jsx", "mjs", "cjs", "py", "go", "sh", "bash", "toml", "yaml", "yml", "json"},
		IncludeFileNames:  []string{"Makefile", "Dockerfile", "go.mod"},
		ExcludeDirs:       []string{".git", "target", "node_modules", "dist", "build", "__pycache__", "vendor"},
	}
}

func (o ScanOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// includeExtensions falls back to the default set so that a zero ScanOptions
// still scans source files.
func (o ScanOptions) includeExtensions() []string {
	if len(o.IncludeExtensions) > 0 {
		return o.IncludeExtensions
	}
	return DefaultScanOptions().IncludeExtensions
}

func (o ScanOptions) includeFileNames() []string {
	if len(o.IncludeFileNames) > 0 {
		return o.IncludeFileNames
	}
	return DefaultScanOptions().IncludeFileNames
}

func (o ScanOptions) registry() *ExtractorRegistry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultExtractorRegistry()
}

// FileRecord describes a discovered file in the project tree.
type FileRecord struct {
	AbsPath  string
	RelPath  string
	Language string
	Size     int64
}

// FileIndex is a deterministic snapshot of the files under a scan root.
type FileIndex struct {
	Root     string
	Files    []FileRecord
	Warnings []Warning
}

// Paths returns the relative path of every indexed file.
func (idx *FileIndex) Paths() []string {
	paths := make([]string, len(idx.Files))
	for i, rec := range idx.Files {
		paths[i] = rec.RelPath
	}
	return paths
}

// BuildFileIndex walks the scan root once and returns the included files
// sorted by relative path. Dot-prefixed names are skipped unless
// IncludeHidden is set; the root itself is never skipped, whatever its name.
// Unreadable directories are reported as warnings and skipped.
func BuildFileIndex(ctx context.Context, opts ScanOptions) (*FileIndex, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}

	log := opts.logger()
	idx := &FileIndex{Root: absRoot}
	includeExt := extensionSet(opts.includeExtensions())
	includeNames := opts.includeFileNames()
	skipFiles := make(map[string]bool, len(opts.ExcludeFiles))
	for _, f := range opts.ExcludeFiles {
		if abs, err := filepath.Abs(f); err == nil {
			skipFiles[abs] = true
		}
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if p == absRoot {
				return walkErr
			}
			idx.Warnings = append(idx.Warnings, Warning{Path: relativeSlash(absRoot, p), Err: walkErr})
			log.Warn("skipping unreadable path", slog.String("path", p), slog.Any("error", walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == absRoot {
			return nil
		}

		rel := relativeSlash(absRoot, p)
		name := d.Name()

		if d.IsDir() {
			if opts.excludesDir(name, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFiles[p] || opts.excludesFile(name, rel) {
			return nil
		}
		if !isRegularFile(d, p) {
			return nil
		}

		language := ""
		ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
		switch {
		case ext != "" && includeExt[ext]:
			language, _ = LanguageForPath(rel)
		case containsFold(includeNames, name):
			language, _ = LanguageForPath(rel)
		case ext == "":
			language = detectLanguage(p, rel)
			if language == "" {
				return nil
			}
		default:
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		idx.Files = append(idx.Files, FileRecord{
			AbsPath:  p,
			RelPath:  rel,
			Language: language,
			Size:     size,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(idx.Files, func(i, j int) bool {
		return idx.Files[i].RelPath < idx.Files[j].RelPath
	})
	return idx, nil
}

func (o ScanOptions) excludesDir(name, rel string) bool {
	if !o.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if containsString(o.ExcludeDirs, name) {
		return true
	}
	return o.matchesExcludeGlob(rel)
}

func (o ScanOptions) excludesFile(name, rel string) bool {
	if !o.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return o.matchesExcludeGlob(rel)
}

func (o ScanOptions) matchesExcludeGlob(rel string) bool {
	for _, pattern := range o.ExcludeGlobs {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isRegularFile(d fs.DirEntry, p string) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func relativeSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	return filepath.ToSlash(rel)
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
