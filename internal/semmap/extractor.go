package semmap

import (
	"sort"
)

// ImportKind distinguishes how one file refers to another.
type ImportKind string

const (
	// ImportUse is an ordinary import, use or source statement.
	ImportUse ImportKind = "import"
	// ImportModuleDeclaration declares a child module, such as Rust's `mod x;`.
	ImportModuleDeclaration ImportKind = "module"
)

// Import is an unresolved reference from a file to another module.
// Hint keeps the spelling found in the source, for example "./util" or "crate::parser".
type Import struct {
	Hint string
	Kind ImportKind
}

// Extractor pulls documentation, public symbols and imports out of one language's source text.
// Implementations are pure and never fail: unparsable input yields empty results.
type Extractor interface {
	LanguageID() string
	ExtractDoc(src []byte) (string, bool)
	ExtractExports(src []byte) []string
	ExtractImports(src []byte, filePath string) []Import
}

// ExtractorRegistry stores language-specific extractors.
type ExtractorRegistry struct {
	extractors map[string]Extractor
}

// NewExtractorRegistry constructs an empty extractor registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{
		extractors: make(map[string]Extractor),
	}
}

// Register adds or replaces an extractor for a language.
func (r *ExtractorRegistry) Register(extractor Extractor) {
	if r == nil || extractor == nil {
		return
	}
	r.extractors[extractor.LanguageID()] = extractor
}

// ExtractorFor returns the extractor registered for a language.
func (r *ExtractorRegistry) ExtractorFor(languageID string) (Extractor, bool) {
	if r == nil {
		return nil, false
	}
	extractor, ok := r.extractors[canonicalLanguageID(languageID)]
	return extractor, ok
}

// ExtractorForPath selects an extractor by file suffix.
func (r *ExtractorRegistry) ExtractorForPath(relPath string) (Extractor, bool) {
	id, ok := LanguageForPath(relPath)
	if !ok {
		return nil, false
	}
	return r.ExtractorFor(id)
}

// LanguageIDs returns registered language IDs sorted lexicographically.
func (r *ExtractorRegistry) LanguageIDs() []string {
	if r == nil || len(r.extractors) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.extractors))
	for id := range r.extractors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultExtractorRegistry returns a registry holding every built-in extractor.
func DefaultExtractorRegistry() *ExtractorRegistry {
	registry := NewExtractorRegistry()
	registry.Register(GoExtractor{})
	registry.Register(RustExtractor{})
	registry.Register(TypeScriptExtractor{})
	registry.Register(TypeScriptExtractor{JavaScript: true})
	registry.Register(PythonExtractor{})
	registry.Register(ShellExtractor{})
	return registry
}

// FileFacts is everything the extractors learned about one file.
type FileFacts struct {
	Path     string
	Language string
	Doc      string
	HasDoc   bool
	Exports  []string
	Imports  []Import
}

// ExtractFacts runs the extractor registered for language over src.
// Files without an extractor still produce facts with an empty symbol surface.
func (r *ExtractorRegistry) ExtractFacts(relPath, language string, src []byte) FileFacts {
	facts := FileFacts{Path: relPath, Language: language}
	extractor, ok := r.ExtractorFor(language)
	if !ok {
		return facts
	}
	facts.Doc, facts.HasDoc = extractor.ExtractDoc(src)
	facts.Exports = sortedSet(extractor.ExtractExports(src))
	facts.Imports = extractor.ExtractImports(src, relPath)
	return facts
}

func dedupeImports(imports []Import) []Import {
	if len(imports) == 0 {
		return nil
	}
	seen := make(map[Import]struct{}, len(imports))
	out := make([]Import, 0, len(imports))
	for _, imp := range imports {
		if imp.Hint == "" {
			continue
		}
		if _, ok := seen[imp]; ok {
			continue
		}
		seen[imp] = struct{}{}
		out = append(out, imp)
	}
	return out
}
