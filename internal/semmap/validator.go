package semmap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Line is 0 when unknown.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Path     string   `json:"path,omitempty"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	if i.Line > 0 {
		fmt.Fprintf(&b, " line %d", i.Line)
	}
	b.WriteString(": ")
	if i.Path != "" {
		b.WriteString(i.Path + ": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// Report collects validation issues in document order.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, line int, path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Message: fmt.Sprintf(format, args...), Line: line, Path: path})
}

// ErrorCount returns the number of error issues.
func (r *Report) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning issues.
func (r *Report) WarningCount() int { return r.count(SeverityWarning) }

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool { return r.ErrorCount() > 0 }

// Failed reports whether the report fails a run; strict runs also fail on warnings.
func (r *Report) Failed(strict bool) bool {
	if strict {
		return len(r.Issues) > 0
	}
	return r.HasErrors()
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// ValidateOptions configure Validate.
type ValidateOptions struct {
	// Root is the directory entry paths are relative to.
	Root string
	// CheckFiles reports entries whose file does not exist under Root.
	CheckFiles bool
	// Strict reports files under Root that the document does not list.
	Strict bool
	// AllowedTags restricts entry tags. Empty means any tag unless UseLegendTags is set.
	AllowedTags []string
	// UseLegendTags adds the document's legend tags to the allowed set.
	UseLegendTags bool
	// Lines attaches source line numbers to issues when the document came from markdown.
	Lines *LineIndex
	// Scan is the scan contract used by Strict.
	Scan ScanOptions
}

// Validate checks doc for structural and content problems. It never fails;
// everything it finds is returned in the report.
func Validate(ctx context.Context, doc *Document, opts ValidateOptions) *Report {
	report := &Report{}
	var titleLine int
	if opts.Lines != nil {
		titleLine = opts.Lines.Title
	}
	if strings.TrimSpace(doc.ProjectName) == "" {
		report.add(SeverityError, titleLine, "", "missing project title")
	}
	if strings.TrimSpace(doc.Purpose) == "" {
		report.add(SeverityWarning, titleLine, "", "missing purpose statement")
	}
	if len(doc.Layers) == 0 {
		report.add(SeverityError, 0, "", "document has no layers")
	}

	allowed := allowedTags(doc, opts)
	seenLayers := make(map[int]bool)
	seenPaths := make(map[string]int)
	for li, layer := range doc.Layers {
		line := opts.Lines.LayerLine(li)
		switch {
		case seenLayers[layer.Number]:
			report.add(SeverityError, line, "", "duplicate layer %d", layer.Number)
		case li > 0 && layer.Number < doc.Layers[li-1].Number:
			report.add(SeverityError, line, "", "layer %d appears after layer %d", layer.Number, doc.Layers[li-1].Number)
		case li > 0 && layer.Number > doc.Layers[li-1].Number+1:
			report.add(SeverityWarning, line, "", "gap in layer numbering between %d and %d", doc.Layers[li-1].Number, layer.Number)
		}
		seenLayers[layer.Number] = true

		for ei, entry := range layer.Entries {
			line := opts.Lines.EntryLine(li, ei)
			validateEntry(report, entry, line, allowed)
			if first, dup := seenPaths[entry.Path]; dup {
				report.add(SeverityError, line, entry.Path, "duplicate entry (first in layer %d)", first)
			} else {
				seenPaths[entry.Path] = layer.Number
			}
			if opts.CheckFiles && !fileExists(opts.Root, entry.Path) {
				report.add(SeverityError, line, entry.Path, "file does not exist")
			}
		}
	}

	if opts.Strict {
		checkUnlisted(ctx, report, seenPaths, opts)
	}
	return report
}

func validateEntry(report *Report, entry FileEntry, line int, allowed map[string]bool) {
	what := strings.TrimSpace(entry.What)
	why := strings.TrimSpace(entry.Why)
	if what == "" {
		report.add(SeverityError, line, entry.Path, "missing WHAT description")
	} else if sentenceCount(what) > 1 {
		report.add(SeverityWarning, line, entry.Path, "WHAT should be a single sentence")
	}
	if why == "" {
		report.add(SeverityError, line, entry.Path, "missing WHY description")
	}
	if isGenericDescription(what, why) {
		report.add(SeverityWarning, line, entry.Path, "description is a generic placeholder")
	}
	if allowed == nil {
		return
	}
	for _, tag := range entry.Tags {
		if !allowed[tag] {
			report.add(SeverityError, line, entry.Path, "unknown tag [%s]", tag)
		}
	}
}

func allowedTags(doc *Document, opts ValidateOptions) map[string]bool {
	if len(opts.AllowedTags) == 0 && !opts.UseLegendTags {
		return nil
	}
	allowed := make(map[string]bool)
	for _, tag := range opts.AllowedTags {
		allowed[strings.Trim(strings.TrimSpace(tag), "[]")] = true
	}
	if opts.UseLegendTags {
		for _, item := range doc.Legend {
			allowed[item.Tag] = true
		}
	}
	return allowed
}

// sentenceCount counts sentence terminators followed by more text.
func sentenceCount(text string) int {
	n := 1
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' && strings.TrimSpace(text[i+1:]) != "" {
				n++
			}
		}
	}
	return n
}

// isGenericDescription matches the fallback sentences the generator writes
// when it knows nothing beyond a file name.
func isGenericDescription(what, why string) bool {
	if subject, ok := strings.CutPrefix(what, "Implements "); ok {
		if subject, ok = strings.CutSuffix(subject, " functionality."); ok && strings.Contains(subject, ".") {
			return true
		}
	}
	return why == StereotypeUnknown.Why()
}

func fileExists(root, rel string) bool {
	if root == "" {
		root = "."
	}
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func checkUnlisted(ctx context.Context, report *Report, listed map[string]int, opts ValidateOptions) {
	scan := opts.Scan
	scan.Root = opts.Root
	idx, err := BuildFileIndex(ctx, scan)
	if err != nil {
		report.add(SeverityWarning, 0, "", "strict scan failed: %v", err)
		return
	}
	for _, p := range idx.Paths() {
		if _, ok := listed[p]; !ok {
			report.add(SeverityWarning, 0, p, "file is not listed in the semantic map")
		}
	}
}
