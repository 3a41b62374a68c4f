package semmap

import (
	"regexp"
	"strings"
)

var (
	shellFuncPattern   = regexp.MustCompile(`^(?:function\s+)?([A-Za-z_][A-Za-z0-9_:-]*)\s*(?:\(\))?\s*\{?\s*$`)
	shellSourcePattern = regexp.MustCompile(`^(?:source|\.)\s+([^\s;#]+)`)
)

// ShellExtractor reads shell scripts.
type ShellExtractor struct{}

func (ShellExtractor) LanguageID() string { return languageShell }

// ExtractDoc returns the comment block after the shebang, or the comment block above the first public function.
func (ShellExtractor) ExtractDoc(src []byte) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")

	var block []string
	leading := true
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case i == 0 && strings.HasPrefix(line, "#!"):
			continue
		case strings.HasPrefix(line, "#"):
			body := commentBody(line, "#")
			if strings.HasPrefix(body, "shellcheck ") || strings.HasPrefix(body, "-*-") {
				continue
			}
			block = append(block, body)
		case line == "":
			if leading && len(block) > 0 {
				return joinDoc(block)
			}
			block = nil
		default:
			if leading && len(block) > 0 {
				return joinDoc(block)
			}
			leading = false
			if m := shellFuncPattern.FindStringSubmatch(line); m != nil && isPublicShellName(m[1]) && shellLooksLikeFunction(line) {
				return joinDoc(block)
			}
			block = nil
		}
	}
	return "", false
}

func shellLooksLikeFunction(line string) bool {
	return strings.HasPrefix(line, "function ") || strings.Contains(line, "()")
}

func isPublicShellName(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// ExtractExports lists functions whose names do not start with an underscore.
func (ShellExtractor) ExtractExports(src []byte) []string {
	var names []string
	for _, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimSpace(raw)
		if !shellLooksLikeFunction(line) {
			continue
		}
		if m := shellFuncPattern.FindStringSubmatch(line); m != nil && isPublicShellName(m[1]) {
			names = append(names, m[1])
		}
	}
	return sortedSet(names)
}

// ExtractImports returns the literal paths of `source` and `.` statements.
// Paths built from variables cannot be resolved syntactically and are skipped.
func (ShellExtractor) ExtractImports(src []byte, _ string) []Import {
	var imports []Import
	for _, raw := range strings.Split(string(src), "\n") {
		m := shellSourcePattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		target := strings.Trim(m[1], `"'`)
		if target == "" || strings.ContainsAny(target, "$`") {
			continue
		}
		imports = append(imports, Import{Hint: target, Kind: ImportUse})
	}
	return dedupeImports(imports)
}
