package semmap

import (
	"regexp"
	"strings"
)

var (
	pythonClassPattern          = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
	pythonFuncPattern           = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	pythonImportPattern         = regexp.MustCompile(`^\s*import\s+(.+)$`)
	pythonFromImportPattern     = regexp.MustCompile(`^\s*from\s+(\.*[A-Za-z_][A-Za-z0-9_\.]*|\.+)\s+import\s+(.+)$`)
	pythonConstantAssignPattern = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*(?::[^=]+)?=`)
	pythonAllPattern            = regexp.MustCompile(`(?s)(?:^|\n)__all__\s*(?::[^=]+)?=\s*[\[(](.*?)[\])]`)
	pythonQuotedNamePattern     = regexp.MustCompile(`['"]([A-Za-z_][A-Za-z0-9_]*)['"]`)
	pythonIdentifierPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\.]*$`)
)

// PythonExtractor reads Python sources with line-oriented patterns.
type PythonExtractor struct{}

func (PythonExtractor) LanguageID() string { return languagePython }

// ExtractDoc returns the module docstring, or the docstring of the first public def or class.
func (PythonExtractor) ExtractDoc(src []byte) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			i++
			continue
		}
		break
	}
	if doc, ok := pythonDocstringAt(lines, i); ok {
		return doc, true
	}

	for ; i < len(lines); i++ {
		name := ""
		if m := pythonClassPattern.FindStringSubmatch(lines[i]); m != nil {
			name = m[1]
		} else if m := pythonFuncPattern.FindStringSubmatch(lines[i]); m != nil {
			name = m[1]
		}
		if name == "" || strings.HasPrefix(name, "_") {
			continue
		}

		// Skip the rest of a multi-line signature.
		j := i
		for j < len(lines) && !strings.HasSuffix(strings.TrimSpace(stripPythonComment(lines[j])), ":") {
			j++
		}
		j++
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		return pythonDocstringAt(lines, j)
	}
	return "", false
}

func pythonDocstringAt(lines []string, i int) (string, bool) {
	if i >= len(lines) {
		return "", false
	}
	line := strings.TrimSpace(lines[i])
	line = strings.TrimLeft(line, "rRuUbB")

	var quote string
	switch {
	case strings.HasPrefix(line, `"""`):
		quote = `"""`
	case strings.HasPrefix(line, `'''`):
		quote = `'''`
	default:
		return "", false
	}

	body := strings.TrimPrefix(line, quote)
	if end := strings.Index(body, quote); end >= 0 {
		return joinDoc([]string{body[:end]})
	}

	collected := []string{body}
	for j := i + 1; j < len(lines); j++ {
		text := strings.TrimSpace(lines[j])
		if end := strings.Index(text, quote); end >= 0 {
			collected = append(collected, text[:end])
			break
		}
		collected = append(collected, text)
	}
	return joinDoc(collected)
}

func stripPythonComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

// ExtractExports honors `__all__` when present; otherwise public top-level
// classes, functions and constants are exported.
func (PythonExtractor) ExtractExports(src []byte) []string {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	if m := pythonAllPattern.FindStringSubmatch(text); m != nil {
		var names []string
		for _, q := range pythonQuotedNamePattern.FindAllStringSubmatch(m[1], -1) {
			names = append(names, q[1])
		}
		return sortedSet(names)
	}

	var names []string
	for _, line := range strings.Split(text, "\n") {
		for _, pattern := range []*regexp.Regexp{pythonClassPattern, pythonFuncPattern, pythonConstantAssignPattern} {
			if m := pattern.FindStringSubmatch(line); m != nil {
				if !strings.HasPrefix(m[1], "_") {
					names = append(names, m[1])
				}
				break
			}
		}
	}
	return sortedSet(names)
}

// ExtractImports returns dotted module hints. Relative imports keep their
// leading dots; `from . import a, b` yields `.a` and `.b`.
func (PythonExtractor) ExtractImports(src []byte, _ string) []Import {
	var imports []Import
	for _, line := range strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n") {
		line = stripPythonComment(line)
		if m := pythonFromImportPattern.FindStringSubmatch(line); m != nil {
			module := m[1]
			if strings.Trim(module, ".") == "" {
				for _, name := range pythonImportNames(m[2]) {
					imports = append(imports, Import{Hint: module + name, Kind: ImportUse})
				}
				continue
			}
			imports = append(imports, Import{Hint: module, Kind: ImportUse})
			continue
		}
		if m := pythonImportPattern.FindStringSubmatch(line); m != nil {
			for _, name := range pythonImportNames(m[1]) {
				imports = append(imports, Import{Hint: name, Kind: ImportUse})
			}
		}
	}
	return dedupeImports(imports)
}

func pythonImportNames(list string) []string {
	list = strings.Trim(strings.TrimSpace(list), "()\\")
	var names []string
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if pythonIdentifierPattern.MatchString(fields[0]) {
			names = append(names, fields[0])
		}
	}
	return names
}
