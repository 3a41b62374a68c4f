package semmap

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// GoExtractor reads Go sources with go/parser.
type GoExtractor struct{}

func (GoExtractor) LanguageID() string { return languageGo }

func parseGoFile(src []byte, mode parser.Mode) *ast.File {
	// A partial AST is still useful when the file has syntax errors.
	file, _ := parser.ParseFile(token.NewFileSet(), "", src, mode)
	return file
}

// ExtractDoc returns the package comment, or the doc comment of the first exported declaration.
func (GoExtractor) ExtractDoc(src []byte) (string, bool) {
	file := parseGoFile(src, parser.ParseComments)
	if file == nil {
		return "", false
	}
	if doc, ok := commentGroupDoc(file.Doc); ok {
		return doc, true
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.IsExported() {
				return commentGroupDoc(d.Doc)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if !goSpecExported(spec) {
					continue
				}
				if doc := goSpecDoc(spec); doc != nil {
					return commentGroupDoc(doc)
				}
				return commentGroupDoc(d.Doc)
			}
		}
	}
	return "", false
}

// ExtractExports lists exported types, functions, constants and variables.
// Methods are left out because they are reached through their receiver type.
func (GoExtractor) ExtractExports(src []byte) []string {
	file := parseGoFile(src, parser.SkipObjectResolution)
	if file == nil {
		return nil
	}

	var names []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.IsExported() {
				names = append(names, d.Name.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Name.IsExported() {
						names = append(names, s.Name.Name)
					}
				case *ast.ValueSpec:
					for _, name := range s.Names {
						if name.IsExported() {
							names = append(names, name.Name)
						}
					}
				}
			}
		}
	}
	return sortedSet(names)
}

// ExtractImports returns every import path as a hint.
func (GoExtractor) ExtractImports(src []byte, _ string) []Import {
	file := parseGoFile(src, parser.ImportsOnly)
	if file == nil {
		return nil
	}

	imports := make([]Import, 0, len(file.Imports))
	for _, spec := range file.Imports {
		if spec.Path == nil {
			continue
		}
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imports = append(imports, Import{Hint: path, Kind: ImportUse})
	}
	return dedupeImports(imports)
}

func commentGroupDoc(group *ast.CommentGroup) (string, bool) {
	if group == nil {
		return "", false
	}
	return joinDoc([]string{group.Text()})
}

func goSpecExported(spec ast.Spec) bool {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Name.IsExported()
	case *ast.ValueSpec:
		for _, name := range s.Names {
			if name.IsExported() {
				return true
			}
		}
	}
	return false
}

func goSpecDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	}
	return nil
}
