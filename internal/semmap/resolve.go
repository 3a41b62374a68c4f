package semmap

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// importResolver maps import hints onto project-relative file paths.
// A candidate counts when it is a known path or, with probeDisk set, a
// regular file under root.
type importResolver struct {
	root      string
	known     map[string]bool
	probeDisk bool
	goModules map[string]goModule
}

type goModule struct {
	path string // module path, "" when no go.mod was found
	dir  string // absolute directory holding go.mod
}

func newImportResolver(absRoot string, known []string, probeDisk bool) *importResolver {
	set := make(map[string]bool, len(known))
	for _, p := range known {
		set[NormalizePath(p)] = true
	}
	return &importResolver{
		root:      absRoot,
		known:     set,
		probeDisk: probeDisk,
		goModules: make(map[string]goModule),
	}
}

// resolve returns the files imp refers to, or nil when the hint is external.
func (r *importResolver) resolve(from, language string, imp Import) []string {
	switch language {
	case languageGo:
		return r.resolveGo(from, imp.Hint)
	case languageRust:
		return r.resolveRust(from, imp)
	case languageTypeScript, languageJavaScript:
		return r.resolveScript(from, imp.Hint)
	case languagePython:
		return r.resolvePython(from, imp.Hint)
	case languageShell:
		return r.resolveShell(from, imp.Hint)
	}
	return nil
}

func (r *importResolver) exists(rel string) bool {
	if rel == "" || escapesRoot(rel) {
		return false
	}
	if r.known[rel] {
		return true
	}
	if !r.probeDisk {
		return false
	}
	info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

func (r *importResolver) first(candidates ...string) []string {
	for _, c := range candidates {
		c = NormalizePath(c)
		if r.exists(c) {
			return []string{c}
		}
	}
	return nil
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func relDir(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// Go

func (r *importResolver) resolveGo(from, hint string) []string {
	mod := r.goModuleFor(relDir(from))
	if mod.path == "" || !matchesModule(hint, mod.path) {
		return nil
	}
	sub := strings.TrimPrefix(strings.TrimPrefix(hint, mod.path), "/")
	relModDir, err := filepath.Rel(r.root, mod.dir)
	if err != nil {
		return nil
	}
	dir := NormalizePath(path.Join(filepath.ToSlash(relModDir), sub))
	if escapesRoot(dir) {
		return nil
	}
	return r.goPackageFiles(dir)
}

// goModuleFor finds the nearest go.mod at or above dir, which may lie above the scan root.
func (r *importResolver) goModuleFor(dir string) goModule {
	if mod, ok := r.goModules[dir]; ok {
		return mod
	}
	abs := filepath.Join(r.root, filepath.FromSlash(dir))
	var mod goModule
	for cur := abs; ; {
		if content, err := os.ReadFile(filepath.Join(cur, "go.mod")); err == nil {
			mod = goModule{path: modfile.ModulePath(content), dir: cur}
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	r.goModules[dir] = mod
	return mod
}

func (r *importResolver) goPackageFiles(dir string) []string {
	isSource := func(rel string) bool {
		return relDir(rel) == dir && strings.HasSuffix(rel, ".go") && !strings.HasSuffix(rel, "_test.go")
	}
	seen := make(map[string]bool)
	for rel := range r.known {
		if isSource(rel) {
			seen[rel] = true
		}
	}
	if r.probeDisk {
		entries, _ := os.ReadDir(filepath.Join(r.root, filepath.FromSlash(dir)))
		for _, e := range entries {
			rel := JoinPrefix(dir, e.Name())
			if e.Type().IsRegular() && isSource(rel) {
				seen[rel] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	files := make([]string, 0, len(seen))
	for rel := range seen {
		files = append(files, rel)
	}
	sort.Strings(files)
	return files
}

// Rust

// rustModuleDir is the directory holding the children of the module defined by file.
func rustModuleDir(file string) string {
	base := path.Base(file)
	dir := relDir(file)
	switch base {
	case "mod.rs", "lib.rs", "main.rs":
		return dir
	}
	return JoinPrefix(dir, strings.TrimSuffix(base, ".rs"))
}

// rustCrateDir is the source root of the crate containing file.
func rustCrateDir(file string) string {
	segments := strings.Split(relDir(file), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "src" {
			return strings.Join(segments[:i+1], "/")
		}
	}
	return relDir(file)
}

func (r *importResolver) resolveRust(from string, imp Import) []string {
	if imp.Kind == ImportModuleDeclaration {
		modDir := rustModuleDir(from)
		return r.first(
			JoinPrefix(modDir, imp.Hint+".rs"),
			JoinPrefix(modDir, imp.Hint+"/mod.rs"),
			JoinPrefix(relDir(from), imp.Hint+".rs"),
		)
	}

	segments := strings.Split(imp.Hint, "::")
	var base string
	switch segments[0] {
	case "crate":
		base = rustCrateDir(from)
		segments = segments[1:]
	case "self":
		base = rustModuleDir(from)
		segments = segments[1:]
	case "super":
		base = rustModuleDir(from)
		for len(segments) > 0 && segments[0] == "super" {
			base = relDir(base)
			segments = segments[1:]
		}
	default:
		base = rustModuleDir(from)
	}

	for k := len(segments); k > 0; k-- {
		stem := JoinPrefix(base, strings.Join(segments[:k], "/"))
		if found := r.first(stem+".rs", stem+"/mod.rs"); found != nil {
			return found
		}
	}
	return nil
}

// TypeScript and JavaScript

var scriptProbeExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mts", ".mjs", ".cjs"}

var scriptSourceForOutput = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func (r *importResolver) resolveScript(from, spec string) []string {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && spec != "." && spec != ".." {
		return nil
	}
	target := path.Join(relDir(from), spec)

	candidates := []string{target}
	ext := path.Ext(target)
	for _, alt := range scriptSourceForOutput[ext] {
		candidates = append(candidates, strings.TrimSuffix(target, ext)+alt)
	}
	for _, probe := range scriptProbeExtensions {
		candidates = append(candidates, target+probe)
	}
	for _, probe := range scriptProbeExtensions {
		candidates = append(candidates, target+"/index"+probe)
	}
	return r.first(candidates...)
}

// Python

func (r *importResolver) resolvePython(from, hint string) []string {
	dots := len(hint) - len(strings.TrimLeft(hint, "."))
	module := hint[dots:]
	var segments []string
	if module != "" {
		segments = strings.Split(module, ".")
	}

	var bases []string
	if dots > 0 {
		base := relDir(from)
		for i := 1; i < dots; i++ {
			if base == "" {
				return nil
			}
			base = relDir(base)
		}
		bases = []string{base}
		if len(segments) == 0 {
			return r.first(JoinPrefix(base, "__init__.py"))
		}
	} else {
		bases = []string{"", relDir(from), "src"}
	}

	for k := len(segments); k > 0; k-- {
		rel := strings.Join(segments[:k], "/")
		for _, base := range bases {
			stem := JoinPrefix(base, rel)
			if found := r.first(stem+".py", stem+"/__init__.py"); found != nil {
				return found
			}
		}
	}
	return nil
}

// Shell

func (r *importResolver) resolveShell(from, hint string) []string {
	if strings.HasPrefix(hint, "/") || strings.HasPrefix(hint, "~") {
		return nil
	}
	return r.first(path.Join(relDir(from), hint), hint)
}
