package semmap

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	rustSyntaxLanguage       = sitter.NewLanguage(tree_sitter_rust.Language())
	typeScriptSyntaxLanguage = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	typeScriptTSXLanguage    = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
)

func newParserForLanguage(language *sitter.Language) (*sitter.Parser, error) {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, err
	}
	return parser, nil
}

// syntaxTree pairs a parsed tree with the parser that owns it.
type syntaxTree struct {
	parser *sitter.Parser
	tree   *sitter.Tree
}

// parseSyntaxTree parses src with language. The caller must Close the result.
func parseSyntaxTree(language *sitter.Language, src []byte) (*syntaxTree, bool) {
	parser, err := newParserForLanguage(language)
	if err != nil {
		return nil, false
	}
	tree := parser.Parse(src, nil)
	if tree == nil {
		parser.Close()
		return nil, false
	}
	return &syntaxTree{parser: parser, tree: tree}, true
}

func (t *syntaxTree) Root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *syntaxTree) Close() {
	t.tree.Close()
	t.parser.Close()
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

// stringLiteralValue strips the quotes of a JavaScript or TypeScript string literal.
func stringLiteralValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 {
		return ""
	}
	first, last := raw[0], raw[len(raw)-1]
	if first != last || (first != '"' && first != '\'' && first != '`') {
		return ""
	}
	return raw[1 : len(raw)-1]
}

func walkTreePreOrder(root *sitter.Node, visit func(*sitter.Node)) {
	if root == nil || visit == nil {
		return
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(uint(i))
			if child != nil {
				stack = append(stack, child)
			}
		}
	}
}
