package semmap

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath returns the canonical form of a document path: forward
// slashes, cleaned, with no leading "./" or "/". The empty path stays empty.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if p == "" {
		return ""
	}
	p = strings.TrimLeft(path.Clean(p), "/")
	if p == "." {
		return ""
	}
	return p
}

// JoinPrefix places a scan-relative path under the scan prefix.
func JoinPrefix(prefix, p string) string {
	prefix = NormalizePath(prefix)
	if prefix == "" {
		return NormalizePath(p)
	}
	return NormalizePath(prefix + "/" + p)
}

// HasPathPrefix reports whether p lies inside the directory prefix.
// Every path lies inside the empty prefix.
func HasPathPrefix(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// ScanPrefix expresses scanRoot relative to docDir, the directory holding the
// document, in canonical form. Scanning the document's own directory gives "".
func ScanPrefix(docDir, scanRoot string) (string, error) {
	absDoc, err := filepath.Abs(docDir)
	if err != nil {
		return "", fmt.Errorf("resolve document dir: %w", err)
	}
	absRoot, err := filepath.Abs(scanRoot)
	if err != nil {
		return "", fmt.Errorf("resolve scan root: %w", err)
	}
	rel, err := filepath.Rel(absDoc, absRoot)
	if err != nil {
		return "", fmt.Errorf("scan root %s relative to %s: %w", scanRoot, docDir, err)
	}
	return NormalizePath(filepath.ToSlash(rel)), nil
}

// NormalizeDocumentPaths rewrites every entry path of doc into canonical form.
func NormalizeDocumentPaths(doc *Document) {
	for i := range doc.Layers {
		for j := range doc.Layers[i].Entries {
			entry := &doc.Layers[i].Entries[j]
			entry.Path = NormalizePath(entry.Path)
		}
	}
}
