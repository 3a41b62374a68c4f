package semmap

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	rustUseRE = regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)]*\))?[ \t]+)?use[ \t]+([^;]+);`)
	rustModRE = regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)]*\))?[ \t]+)?mod[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*;`)
	rustPubRE = regexp.MustCompile(`^pub\s`)
)

// rustItemKinds are the item nodes whose `pub` visibility makes them part of a file's surface.
var rustItemKinds = map[string]bool{
	"function_item": true,
	"struct_item":   true,
	"enum_item":     true,
	"trait_item":    true,
	"type_item":     true,
	"const_item":    true,
	"static_item":   true,
	"union_item":    true,
	"mod_item":      true,
}

// RustExtractor reads Rust sources. Public items come from the tree-sitter
// syntax tree; `use` and `mod` statements are matched line by line.
type RustExtractor struct{}

func (RustExtractor) LanguageID() string { return languageRust }

// ExtractDoc returns the leading `//!` module doc, or the `///` block in front of the first `pub` item.
func (RustExtractor) ExtractDoc(src []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var module, pending []string
	inModuleBlock := false
	leading := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inModuleBlock {
			if strings.Contains(line, "*/") {
				inModuleBlock = false
			}
			module = append(module, commentBody(line, "*"))
			continue
		}

		switch {
		case line == "":
			if leading && len(module) > 0 {
				return joinDoc(module)
			}
			pending = nil
		case strings.HasPrefix(line, "//!"):
			module = append(module, commentBody(line, "//!"))
		case leading && strings.HasPrefix(line, "/*!"):
			module = append(module, commentBody(line, "/*!"))
			inModuleBlock = !strings.Contains(line, "*/")
		case strings.HasPrefix(line, "///"):
			leading = false
			pending = append(pending, commentBody(line, "///"))
		case strings.HasPrefix(line, "#![") || strings.HasPrefix(line, "#["):
			// attributes may sit between a doc block and its item
		case strings.HasPrefix(line, "//"):
			if !leading {
				pending = nil
			}
		default:
			if len(module) > 0 {
				return joinDoc(module)
			}
			leading = false
			if rustPubRE.MatchString(line) {
				return joinDoc(pending)
			}
			pending = nil
		}
	}
	if len(module) > 0 {
		return joinDoc(module)
	}
	return "", false
}

// ExtractExports lists top-level `pub` items and `pub fn` members of impl blocks.
// A type with several impl blocks can define the same method name more than
// once; the result is deduplicated.
func (RustExtractor) ExtractExports(src []byte) []string {
	tree, ok := parseSyntaxTree(rustSyntaxLanguage, src)
	if !ok {
		return nil
	}
	defer tree.Close()

	var names []string
	root := tree.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		item := root.NamedChild(i)
		if item == nil {
			continue
		}
		switch {
		case rustItemKinds[item.Kind()]:
			if name := rustPublicItemName(item, src); name != "" {
				names = append(names, name)
			}
		case item.Kind() == "impl_item":
			names = append(names, rustImplPublicFunctions(item, src)...)
		}
	}
	return sortedSet(names)
}

func rustImplPublicFunctions(impl *sitter.Node, src []byte) []string {
	body := impl.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil || member.Kind() != "function_item" {
			continue
		}
		if name := rustPublicItemName(member, src); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// rustPublicItemName returns the item's name when it is declared plain `pub`.
// Restricted visibility such as `pub(crate)` does not count.
func rustPublicItemName(item *sitter.Node, src []byte) string {
	public := false
	for i := uint(0); i < item.NamedChildCount(); i++ {
		child := item.NamedChild(i)
		if child != nil && child.Kind() == "visibility_modifier" {
			public = strings.TrimSpace(nodeText(child, src)) == "pub"
			break
		}
	}
	if !public {
		return ""
	}
	return strings.TrimSpace(nodeText(item.ChildByFieldName("name"), src))
}

// ExtractImports returns one hint per imported path, with `{a, b}` groups expanded,
// and a module-declaration hint for every `mod name;`.
func (RustExtractor) ExtractImports(src []byte, _ string) []Import {
	text := stripRustLineComments(string(src))

	var imports []Import
	for _, m := range rustUseRE.FindAllStringSubmatch(text, -1) {
		for _, hint := range expandRustUseTree(normalizeRustUseTree(m[1])) {
			imports = append(imports, Import{Hint: hint, Kind: ImportUse})
		}
	}
	for _, m := range rustModRE.FindAllStringSubmatch(text, -1) {
		imports = append(imports, Import{Hint: m[1], Kind: ImportModuleDeclaration})
	}
	return dedupeImports(imports)
}

func stripRustLineComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// expandRustUseTree flattens `a::{b, c::{d, e}}` into `a::b`, `a::c::d`, `a::c::e`.
// Aliases (`x as y`) and glob imports keep only the path part.
func expandRustUseTree(tree string) []string {
	open := strings.Index(tree, "{")
	if open < 0 {
		if alias := strings.Index(tree, " as "); alias > 0 {
			tree = tree[:alias]
		}
		tree = strings.TrimPrefix(tree, "::")
		tree = strings.TrimSuffix(strings.TrimSuffix(tree, "::*"), "::self")
		if tree == "" || tree == "*" || tree == "self" {
			return nil
		}
		return []string{tree}
	}

	closing := strings.LastIndex(tree, "}")
	if closing < open {
		return nil
	}
	prefix := strings.TrimSuffix(tree[:open], "::")
	var out []string
	for _, part := range splitTopLevel(tree[open+1:closing], ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, sub := range expandRustUseTree(part) {
			if prefix == "" {
				out = append(out, sub)
			} else {
				out = append(out, prefix+"::"+sub)
			}
		}
		if part == "self" && prefix != "" {
			out = append(out, prefix)
		}
	}
	return out
}

func normalizeRustUseTree(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	for _, tok := range []string{"::", "{", "}", ","} {
		s = strings.ReplaceAll(s, " "+tok, tok)
		s = strings.ReplaceAll(s, tok+" ", tok)
	}
	return s
}

func splitTopLevel(text string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}
