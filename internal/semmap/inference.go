package semmap

import (
	"path"
	"strings"
)

// Inference is what the engine derives for one file.
type Inference struct {
	Layer      int
	Stereotype Stereotype
	What       string
	Why        string
	Exports    []string
}

// Infer derives layer, WHAT, WHY and exports for a file. It is a pure function
// of the extracted facts and the dependency metrics.
func Infer(facts FileFacts, metrics Metrics) Inference {
	stereotype := Classify(facts, metrics)
	return Inference{
		Layer:      InferLayer(facts.Path, facts.Language),
		Stereotype: stereotype,
		What:       InferWhat(facts),
		Why:        stereotype.Why(),
		Exports:    facts.Exports,
	}
}

// InferLayer applies the layer priority chain: manifest, entry point, test,
// utility, and otherwise the domain layer.
func InferLayer(relPath, language string) int {
	lowerPath := strings.ToLower(relPath)
	switch {
	case isManifestPath(lowerPath):
		return LayerConfig
	case isEntryPath(lowerPath, language):
		return LayerEntry
	case isTestPath(lowerPath, language):
		return LayerTests
	case isUtilityPath(lowerPath):
		return LayerUtilities
	default:
		return LayerDomain
	}
}

var specialFileWhat = map[string]string{
	"main.rs":        "Application entry point.",
	"lib.rs":         "Library root and public exports.",
	"build.rs":       "Build script run before compiling the crate.",
	"cargo.toml":     "Rust package manifest and dependencies.",
	"cargo.lock":     "Locked Rust dependency versions.",
	"package.json":   "Node.js package manifest.",
	"tsconfig.json":  "TypeScript compiler configuration.",
	"go.mod":         "Go module definition and dependency requirements.",
	"go.sum":         "Go module dependency checksums.",
	"main.go":        "Application entry point.",
	"pyproject.toml": "Python project metadata and build configuration.",
	"setup.py":       "Python package build script.",
	"makefile":       "Build automation targets.",
	"dockerfile":     "Container image build definition.",
	"magefile.go":    "Build automation targets.",
}

// InferWhat picks the WHAT sentence: extracted doc text, then a known file
// name, then identifier expansion, then a generic sentence naming the file.
func InferWhat(facts FileFacts) string {
	if facts.HasDoc {
		if doc := plainDocText(strings.TrimSpace(facts.Doc)); doc != "" {
			return doc
		}
	}

	lowerPath := strings.ToLower(facts.Path)
	base := path.Base(facts.Path)
	lowerBase := strings.ToLower(base)
	dir := path.Base(path.Dir(facts.Path))

	if what, ok := specialFileWhat[lowerBase]; ok {
		return what
	}
	switch lowerBase {
	case "mod.rs":
		return "Module root for " + dirLabel(dir) + "."
	case "__init__.py":
		return "Package initializer for " + dirLabel(dir) + "."
	case "__main__.py":
		return "Module entry point for " + dirLabel(dir) + "."
	}

	stem := fileStem(base)
	if isManifestPath(lowerPath) {
		if words := splitIdentifier(stem); len(words) > 0 {
			return "Configuration for " + strings.Join(words, " ") + "."
		}
	}
	if isTestPath(lowerPath, facts.Language) {
		return describeTestSubject(stem)
	}
	if what, ok := describeIdentifier(primaryIdentifier(stem, facts.Exports)); ok {
		return what
	}
	return "Implements " + base + " functionality."
}

// primaryIdentifier prefers the export spelling of the file's own name, so
// that `user_profile.rs` exporting `UserProfile` describes the type.
func primaryIdentifier(stem string, exports []string) string {
	want := strings.Join(splitIdentifier(stem), "")
	if want == "" {
		return ""
	}
	for _, name := range exports {
		if strings.Join(splitIdentifier(name), "") == want {
			return name
		}
	}
	return stem
}

func dirLabel(dir string) string {
	if dir == "." || dir == "/" || dir == "" {
		return "the project root"
	}
	return dir
}

// fileStem returns the file name up to its first dot, ignoring a leading dot.
func fileStem(base string) string {
	trimmed := strings.TrimPrefix(base, ".")
	if idx := strings.Index(trimmed, "."); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func pathSegments(lowerPath string) []string {
	dir := path.Dir(lowerPath)
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(strings.Trim(dir, "/"), "/")
}

func isManifestPath(lowerPath string) bool {
	base := path.Base(lowerPath)
	if containsString(commonManifestNames, base) {
		return true
	}
	for _, spec := range builtinLanguageSpecs {
		if containsString(spec.ManifestFileNames, base) {
			return true
		}
	}
	return hasAnySuffix(base, configSuffixes)
}

func isEntryPath(lowerPath, language string) bool {
	base := path.Base(lowerPath)
	segments := pathSegments(lowerPath)

	if language == languageRust && len(segments) >= 2 && segments[len(segments)-1] == "bin" && segments[len(segments)-2] == "src" {
		return true
	}
	if spec, ok := builtinLanguageSpecs[language]; ok {
		return containsString(spec.EntryFileNames, base)
	}
	return false
}

var (
	testDirNames    = []string{"test", "tests", "__tests__", "spec", "specs", "testdata", "e2e", "fixtures"}
	utilityDirNames = []string{"util", "utils", "helper", "helpers", "common", "shared", "support"}
	utilityWords    = []string{"util", "utils", "helper", "helpers"}
)

func isTestPath(lowerPath, language string) bool {
	for _, segment := range pathSegments(lowerPath) {
		if containsString(testDirNames, segment) {
			return true
		}
	}

	base := path.Base(lowerPath)
	specs := make([]LanguageSpec, 0, 1)
	if spec, ok := builtinLanguageSpecs[language]; ok {
		specs = append(specs, spec)
	} else {
		for _, spec := range builtinLanguageSpecs {
			specs = append(specs, spec)
		}
	}
	for _, spec := range specs {
		if hasAnySuffix(base, spec.TestFileSuffixes) || hasAnyPrefix(base, spec.TestFilePrefixes) {
			return true
		}
	}
	return false
}

func isUtilityPath(lowerPath string) bool {
	for _, segment := range pathSegments(lowerPath) {
		if containsString(utilityDirNames, segment) {
			return true
		}
	}
	return hasAnyWord(splitIdentifier(fileStem(path.Base(lowerPath))), utilityWords...)
}
