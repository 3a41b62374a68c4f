package semmap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// TypeScriptExtractor reads TypeScript and JavaScript sources through tree-sitter.
// JavaScript is parsed with the TSX grammar so that JSX does not produce error nodes.
type TypeScriptExtractor struct {
	JavaScript bool
}

func (e TypeScriptExtractor) LanguageID() string {
	if e.JavaScript {
		return languageJavaScript
	}
	return languageTypeScript
}

// parse tries the plain TypeScript grammar first and falls back to TSX when
// the file does not parse cleanly, since the extractor never sees the file name.
func (e TypeScriptExtractor) parse(src []byte) (*syntaxTree, bool) {
	if e.JavaScript {
		return parseSyntaxTree(typeScriptTSXLanguage, src)
	}
	tree, ok := parseSyntaxTree(typeScriptSyntaxLanguage, src)
	if ok && !tree.Root().HasError() {
		return tree, true
	}
	if ok {
		tree.Close()
	}
	return parseSyntaxTree(typeScriptTSXLanguage, src)
}

// ExtractDoc returns the comment block at the top of the file, or the JSDoc
// block directly above the first export.
func (e TypeScriptExtractor) ExtractDoc(src []byte) (string, bool) {
	tree, ok := e.parse(src)
	if !ok {
		return "", false
	}
	defer tree.Close()

	root := tree.Root()
	var leading []string
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "hash_bang_line" {
			continue
		}
		if child.Kind() != "comment" {
			break
		}
		text := nodeText(child, src)
		if isToolingComment(text) {
			continue
		}
		leading = append(leading, typeScriptCommentText(text))
	}
	if doc, ok := joinDoc(leading); ok {
		return doc, true
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() != "export_statement" {
			continue
		}
		prev := child.PrevNamedSibling()
		if prev == nil || prev.Kind() != "comment" {
			return "", false
		}
		text := nodeText(prev, src)
		if !strings.HasPrefix(text, "/**") {
			return "", false
		}
		return joinDoc([]string{typeScriptCommentText(text)})
	}
	return "", false
}

func isToolingComment(text string) bool {
	body := strings.TrimSpace(strings.TrimLeft(text, "/*"))
	for _, prefix := range []string{"@ts-", "eslint", "prettier-", "istanbul", "#region", "#endregion", "<reference"} {
		if strings.HasPrefix(body, prefix) {
			return true
		}
	}
	return false
}

func typeScriptCommentText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "//") {
		return commentBody(text, "//")
	}
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = commentBody(line, "*")
		// JSDoc tags end the prose part of the block.
		if strings.HasPrefix(line, "@") {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// ExtractExports lists every name the file exports, including `default`.
func (e TypeScriptExtractor) ExtractExports(src []byte) []string {
	tree, ok := e.parse(src)
	if !ok {
		return nil
	}
	defer tree.Close()

	var names []string
	root := tree.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != "export_statement" {
			continue
		}
		names = append(names, typeScriptExportNames(stmt, src)...)
	}
	return sortedSet(names)
}

func typeScriptExportNames(stmt *sitter.Node, content []byte) []string {
	var names []string

	if declaration := stmt.ChildByFieldName("declaration"); declaration != nil {
		switch declaration.Kind() {
		case "class_declaration", "abstract_class_declaration", "interface_declaration",
			"type_alias_declaration", "enum_declaration", "function_declaration",
			"generator_function_declaration", "function_signature", "internal_module", "module":
			if name := typeScriptDeclarationName(declaration, content); name != "" {
				names = append(names, name)
			}
		case "lexical_declaration", "variable_declaration":
			names = append(names, typeScriptVariableDeclaratorNames(declaration, content)...)
		}
	}

	if value := stmt.ChildByFieldName("value"); value != nil {
		names = append(names, "default")
	}

	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		child := stmt.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "export_clause":
			names = append(names, typeScriptExportClauseNames(child, content)...)
		case "namespace_export":
			if child.NamedChildCount() > 0 {
				if name := strings.TrimSpace(nodeText(child.NamedChild(0), content)); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names
}

func typeScriptDeclarationName(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return strings.TrimSpace(nodeText(nameNode, content))
}

func typeScriptVariableDeclaratorNames(declaration *sitter.Node, content []byte) []string {
	var names []string
	for i := uint(0); i < declaration.NamedChildCount(); i++ {
		child := declaration.NamedChild(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		names = append(names, typeScriptBindingIdentifiers(child.ChildByFieldName("name"), content)...)
	}
	return names
}

func typeScriptBindingIdentifiers(node *sitter.Node, content []byte) []string {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		if name := strings.TrimSpace(nodeText(node, content)); name != "" {
			return []string{name}
		}
		return nil
	default:
		var out []string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			out = append(out, typeScriptBindingIdentifiers(node.NamedChild(i), content)...)
		}
		return out
	}
}

func typeScriptExportClauseNames(clause *sitter.Node, content []byte) []string {
	var names []string
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		spec := clause.NamedChild(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("alias")
		if nameNode == nil {
			nameNode = spec.ChildByFieldName("name")
		}
		if name := strings.TrimSpace(nodeText(nameNode, content)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ExtractImports returns the module specifiers of import and re-export
// statements plus literal `require(...)` and `import(...)` calls.
func (e TypeScriptExtractor) ExtractImports(src []byte, _ string) []Import {
	tree, ok := e.parse(src)
	if !ok {
		return nil
	}
	defer tree.Close()

	var imports []Import
	walkTreePreOrder(tree.Root(), func(node *sitter.Node) {
		switch node.Kind() {
		case "import_statement", "export_statement":
			if source := node.ChildByFieldName("source"); source != nil {
				if spec := stringLiteralValue(nodeText(source, src)); spec != "" {
					imports = append(imports, Import{Hint: spec, Kind: ImportUse})
				}
			}
		case "call_expression":
			if spec := typeScriptCallSpecifier(node, src); spec != "" {
				imports = append(imports, Import{Hint: spec, Kind: ImportUse})
			}
		}
	})
	return dedupeImports(imports)
}

func typeScriptCallSpecifier(call *sitter.Node, content []byte) string {
	function := call.ChildByFieldName("function")
	if function == nil {
		return ""
	}
	switch function.Kind() {
	case "import":
	case "identifier":
		if nodeText(function, content) != "require" {
			return ""
		}
	default:
		return ""
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return ""
	}
	arg := args.NamedChild(0)
	if arg == nil || arg.Kind() != "string" {
		return ""
	}
	return stringLiteralValue(nodeText(arg, content))
}
