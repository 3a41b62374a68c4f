package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeProject(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func newProject(t *testing.T) (root, doc string) {
	t.Helper()
	root = t.TempDir()
	writeProject(t, root, map[string]string{
		"Cargo.toml":    "[package]\nname = \"demo\"\n",
		"src/main.rs":   "//! Command line front end.\nmod parser;\n\nfn main() {}\n",
		"src/parser.rs": "use crate::util::trim;\n\npub fn parse() {}\n",
		"src/util.rs":   "pub fn trim() {}\n",
	})
	return root, filepath.Join(root, "SEMMAP.md")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "semmap dev\n", stdout)
}

func TestGenerateValidateUpdateCycle(t *testing.T) {
	root, doc := newProject(t)

	code, stdout, stderr := runCLI(t, "generate", "--root", root, "-o", doc, "--name", "demo", "--purpose", "Parses things.")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stdout, "Generated "+doc+": 4 files in 4 layers")

	text, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(text), "# demo — Semantic Map")
	assert.Contains(t, string(text), "**Purpose:** Parses things.")

	code, stdout, stderr = runCLI(t, "validate", "-f", doc, "--check-files")
	assert.Equal(t, exitSuccess, code, stdout+stderr)
	assert.Contains(t, stdout, "0 error(s)")

	code, stdout, _ = runCLI(t, "update", "-f", doc, "--check")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "+0 -0")
	assert.Contains(t, stdout, "is up to date")

	writeProject(t, root, map[string]string{"src/lexer.rs": "pub fn lex() {}\n"})
	code, stdout, _ = runCLI(t, "update", "-f", doc, "--check")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stdout, "+1 -0")
	assert.Contains(t, stdout, "  + src/lexer.rs")
	assert.Contains(t, stdout, "is stale")

	code, stdout, _ = runCLI(t, "update", "-f", doc)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "Updated")

	code, stdout, _ = runCLI(t, "update", "-f", doc)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "unchanged")
}

func TestGenerateToStdoutInOtherFormat(t *testing.T) {
	root, _ := newProject(t)

	code, stdout, stderr := runCLI(t, "generate", "--root", root, "--stdout", "--format", "json")
	require.Equal(t, exitSuccess, code, stderr)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	_, err := os.Stat(filepath.Join(root, "SEMMAP.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestDepsReportsViolations(t *testing.T) {
	root, doc := newProject(t)
	code, _, stderr := runCLI(t, "generate", "--root", root, "-o", doc)
	require.Equal(t, exitSuccess, code, stderr)

	code, stdout, stderr := runCLI(t, "deps", "-f", doc)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "graph TD\n")
	assert.Contains(t, stdout, "|violation|")
	assert.Contains(t, stderr, "violation: src/main.rs (L1) depends on src/parser.rs (L2)")

	code, _, _ = runCLI(t, "deps", "-f", doc, "--check")
	assert.Equal(t, exitUserError, code)

	code, stdout, _ = runCLI(t, "deps", "-f", doc, "--format", "json")
	assert.Equal(t, exitSuccess, code)
	var graph struct {
		Violations []map[string]any `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &graph))
	assert.NotEmpty(t, graph.Violations)

	code, _, stderr = runCLI(t, "deps", "-f", doc, "--format", "dot")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "unknown document format")
}

func TestValidateFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "SEMMAP.md")
	require.NoError(t, os.WriteFile(bad, []byte("# p — Semantic Map\n\n## Layer 2 — Domain\n\n`a.rs`\nOnly a what.\n"), 0o644))

	code, stdout, _ := runCLI(t, "validate", "-f", bad)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stdout, "error line 5: a.rs: missing WHY description")

	require.NoError(t, os.WriteFile(bad, []byte("no title here\n"), 0o644))
	code, _, stderr := runCLI(t, "validate", "-f", bad)
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "missing-title")

	code, _, stderr = runCLI(t, "validate", "-f", filepath.Join(dir, "missing.md"))
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "semantic map not found")
}

func TestUsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "validate", "--no-such-flag")
	assert.Equal(t, exitUserError, code)

	code, _, stderr := runCLI(t, "version", "--log-level", "loud")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "invalid config")
}
