package semmap

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path"
	"strings"
)

const (
	languageGo         = "go"
	languageJavaScript = "javascript"
	languagePython     = "python"
	languageRust       = "rust"
	languageShell      = "shell"
	languageTypeScript = "typescript"
)

// LanguageSpec describes how files of one language are recognized and which
// file names play the manifest, entry point and test roles.
type LanguageSpec struct {
	ID                string
	FileSuffixes      []string
	TestFileSuffixes  []string
	TestFilePrefixes  []string
	EntryFileNames    []string
	ManifestFileNames []string
}

var builtinLanguageSpecs = map[string]LanguageSpec{
	languageGo: {
		ID:                languageGo,
		FileSuffixes:      []string{".go"},
		TestFileSuffixes:  []string{"_test.go"},
		EntryFileNames:    []string{"main.go"},
		ManifestFileNames: []string{"go.mod", "go.sum", "go.work"},
	},
	languageRust: {
		ID:                languageRust,
		FileSuffixes:      []string{".rs"},
		TestFileSuffixes:  []string{"_test.rs", "_tests.rs"},
		EntryFileNames:    []string{"main.rs", "lib.rs", "mod.rs"},
		ManifestFileNames: []string{"cargo.toml", "cargo.lock", "build.rs"},
	},
	languageTypeScript: {
		ID:                languageTypeScript,
		FileSuffixes:      []string{".ts", ".tsx", ".mts", ".cts"},
		TestFileSuffixes:  []string{".test.ts", ".spec.ts", ".test.tsx", ".spec.tsx", ".test.mts", ".spec.mts"},
		EntryFileNames:    []string{"index.ts", "index.tsx", "main.ts", "main.tsx", "cli.ts", "server.ts"},
		ManifestFileNames: []string{"package.json", "tsconfig.json", "package-lock.json"},
	},
	languageJavaScript: {
		ID:                languageJavaScript,
		FileSuffixes:      []string{".js", ".jsx", ".mjs", ".cjs"},
		TestFileSuffixes:  []string{".test.js", ".spec.js", ".test.jsx", ".spec.jsx", ".test.mjs", ".spec.mjs"},
		EntryFileNames:    []string{"index.js", "index.jsx", "index.mjs", "main.js", "cli.js", "server.js"},
		ManifestFileNames: []string{"package.json", "package-lock.json", "webpack.config.js", "vite.config.js", "eslint.config.js"},
	},
	languagePython: {
		ID:                languagePython,
		FileSuffixes:      []string{".py"},
		TestFileSuffixes:  []string{"_test.py", ".test.py", ".spec.py", "conftest.py"},
		TestFilePrefixes:  []string{"test_"},
		EntryFileNames:    []string{"__main__.py", "main.py", "app.py", "cli.py", "manage.py", "wsgi.py", "asgi.py"},
		ManifestFileNames: []string{"setup.py", "setup.cfg", "pyproject.toml", "requirements.txt", "pipfile", "tox.ini"},
	},
	languageShell: {
		ID:                languageShell,
		FileSuffixes:      []string{".sh", ".bash", ".zsh", ".bats"},
		TestFileSuffixes:  []string{".bats", "_test.sh", ".test.sh", "_test.bash"},
		TestFilePrefixes:  []string{"test_"},
		EntryFileNames:    []string{"main.sh", "install.sh", "run.sh", "entrypoint.sh"},
		ManifestFileNames: []string{},
	},
}

// Manifest and configuration names that apply regardless of language.
var (
	commonManifestNames = []string{"makefile", "dockerfile", "docker-compose.yml", "docker-compose.yaml", "justfile", "magefile.go"}
	configSuffixes      = []string{".toml", ".yaml", ".yml", ".json", ".ini", ".cfg", ".conf"}
)

// LanguageSpecFor returns the built-in spec for a language identifier.
func LanguageSpecFor(id string) (LanguageSpec, bool) {
	spec, ok := builtinLanguageSpecs[canonicalLanguageID(id)]
	return spec, ok
}

func canonicalLanguageID(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	switch normalized {
	case "py", "python3":
		return languagePython
	case "bash", "sh", "zsh":
		return languageShell
	case "ts", "tsx":
		return languageTypeScript
	case "js", "jsx", "node":
		return languageJavaScript
	case "rs":
		return languageRust
	case "golang":
		return languageGo
	default:
		return normalized
	}
}

// LanguageForPath infers a language from the file name suffix.
func LanguageForPath(relPath string) (string, bool) {
	name := strings.ToLower(path.Base(relPath))
	for _, id := range []string{languageGo, languageRust, languageTypeScript, languageJavaScript, languagePython, languageShell} {
		if hasAnySuffix(name, builtinLanguageSpecs[id].FileSuffixes) {
			return id, true
		}
	}
	return "", false
}

// detectLanguage uses suffix rules first, then shebangs for extensionless scripts.
func detectLanguage(absPath, relPath string) string {
	if id, ok := LanguageForPath(relPath); ok {
		return id
	}
	base := path.Base(relPath)
	if strings.Contains(base, ".") {
		return ""
	}
	program, ok, err := readShebangProgram(absPath)
	if err != nil || !ok {
		return ""
	}
	switch program {
	case "sh", "bash", "zsh":
		return languageShell
	case "python", "python3":
		return languagePython
	case "node":
		return languageJavaScript
	default:
		return ""
	}
}

func readShebangProgram(absPath string) (string, bool, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 256)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return "", false, err
	}
	return shebangProgram(line)
}

func shebangProgram(line string) (string, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#!") {
		return "", false, nil
	}
	fields := strings.Fields(strings.TrimSpace(strings.TrimPrefix(line, "#!")))
	if len(fields) == 0 {
		return "", false, nil
	}
	program := path.Base(fields[0])
	if program == "env" {
		for _, field := range fields[1:] {
			if strings.HasPrefix(field, "-") {
				continue
			}
			program = path.Base(field)
			break
		}
	}
	return strings.ToLower(program), true, nil
}

func hasAnySuffix(value string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(value, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
