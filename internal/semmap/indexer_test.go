package semmap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileIndex(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Makefile":                 "all:\n",
		"go.mod":                   "module x\n",
		"LICENSE":                  "MIT\n",
		"bin/deploy":               "#!/usr/bin/env bash\necho hi\n",
		"cmd/x/main.go":            "package main\n",
		"web/app.tsx":              "export {}\n",
		"web/node_modules/a/a.js":  "",
		"docs/notes.md":            "# notes\n",
		".github/workflows/ci.yml": "on: push\n",
		"gen/generated.pb.go":      "package gen\n",
		"SEMMAP.md":                "# x — Semantic Map\n",
	})

	opts := DefaultScanOptions()
	opts.Root = root
	opts.ExcludeGlobs = []string{"**/*.pb.go"}
	idx, err := BuildFileIndex(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"Makefile", "bin/deploy", "cmd/x/main.go", "go.mod", "web/app.tsx"}, idx.Paths())
	languages := make(map[string]string)
	for _, rec := range idx.Files {
		languages[rec.RelPath] = rec.Language
	}
	assert.Equal(t, "shell", languages["bin/deploy"])
	assert.Equal(t, "go", languages["cmd/x/main.go"])
	assert.Equal(t, "typescript", languages["web/app.tsx"])
	assert.Equal(t, "", languages["Makefile"])
}

func TestBuildFileIndexHiddenAndExcludedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".config/app.toml": "a = 1\n",
		"keep.sh":          "echo\n",
		"out.json":         "{}\n",
	})

	opts := DefaultScanOptions()
	opts.Root = root
	opts.IncludeHidden = true
	opts.ExcludeFiles = []string{filepath.Join(root, "out.json")}
	idx, err := BuildFileIndex(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{".config/app.toml", "keep.sh"}, idx.Paths())
}

func TestBuildFileIndexRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.sh": "echo\n"})
	_, err := BuildFileIndex(context.Background(), ScanOptions{Root: filepath.Join(root, "a.sh")})
	assert.Error(t, err)
}

func TestShebangProgram(t *testing.T) {
	tests := map[string]string{
		"#!/bin/bash":                "bash",
		"#!/usr/bin/env python3":     "python3",
		"#!/usr/bin/env -S node --x": "node",
	}
	for line, want := range tests {
		got, ok, err := shebangProgram(line)
		require.NoError(t, err)
		require.True(t, ok, line)
		assert.Equal(t, want, got, line)
	}
	_, ok, err := shebangProgram("echo hi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPathHelpers(t *testing.T) {
	for in, want := range map[string]string{
		"./src/a.rs":   "src/a.rs",
		`src\win\b.rs`: "src/win/b.rs",
		"/abs/c.rs":    "abs/c.rs",
		"a//b/../c.rs": "a/c.rs",
		".":            "",
		"":             "",
	} {
		assert.Equal(t, want, NormalizePath(in), in)
	}

	assert.Equal(t, "crates/a/lib.rs", JoinPrefix("./crates", "a/lib.rs"))
	assert.Equal(t, "a/lib.rs", JoinPrefix("", "./a/lib.rs"))

	assert.True(t, HasPathPrefix("crates/a/lib.rs", "crates"))
	assert.True(t, HasPathPrefix("crates", "crates"))
	assert.True(t, HasPathPrefix("anything", ""))
	assert.False(t, HasPathPrefix("crates2/a.rs", "crates"))

	root := t.TempDir()
	prefix, err := ScanPrefix(root, filepath.Join(root, "crates"))
	require.NoError(t, err)
	assert.Equal(t, "crates", prefix)

	prefix, err = ScanPrefix(root, root)
	require.NoError(t, err)
	assert.Equal(t, "", prefix)
}
