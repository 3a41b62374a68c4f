package semmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateInto(t *testing.T, root, docPath string) {
	t.Helper()
	opts := DefaultScanOptions()
	opts.Root = root
	opts.ProjectName = "demo"
	opts.ExcludeFiles = []string{docPath}
	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, WriteDocument(docPath, res.Document))
}

func TestUpdateIsIdempotent(t *testing.T) {
	root := t.TempDir()
	rustProject(t, root)
	docPath := filepath.Join(root, "SEMMAP.md")
	generateInto(t, root, docPath)
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)

	res, err := Update(context.Background(), UpdateOptions{DocPath: docPath, Scan: DefaultScanOptions()})
	require.NoError(t, err)
	assert.True(t, res.Report.Empty())
	assert.False(t, res.Changed)

	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdateAddsAndRemovesFiles(t *testing.T) {
	root := t.TempDir()
	rustProject(t, root)
	docPath := filepath.Join(root, "SEMMAP.md")
	generateInto(t, root, docPath)

	// A hand edit that must survive the update.
	doc, _, err := ReadDocument(docPath)
	require.NoError(t, err)
	doc.Layers[2].Entries[0].What = "Turns tokens into a tree."
	doc.Layers[2].Entries[0].Touch = "Keep the grammar tests in sync."
	require.NoError(t, WriteDocument(docPath, doc))

	require.NoError(t, os.Remove(filepath.Join(root, "src/utils.rs")))
	writeTree(t, root, map[string]string{"src/lexer.rs": "/// Splits input into tokens.\npub fn lex() {}\n"})

	res, err := Update(context.Background(), UpdateOptions{DocPath: docPath, Scan: DefaultScanOptions()})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lexer.rs"}, res.Report.Added)
	assert.Equal(t, []string{"src/utils.rs"}, res.Report.Removed)
	assert.True(t, res.Changed)

	written, _, err := ReadDocument(docPath)
	require.NoError(t, err)
	parser, layer, ok := written.Find("src/parser.rs")
	require.True(t, ok)
	assert.Equal(t, 2, layer)
	assert.Equal(t, "Turns tokens into a tree.", parser.What)
	assert.Equal(t, "Keep the grammar tests in sync.", parser.Touch)

	lexer, layer, ok := written.Find("src/lexer.rs")
	require.True(t, ok)
	assert.Equal(t, 2, layer)
	assert.Equal(t, "Splits input into tokens.", lexer.What)
	assert.Nil(t, written.Layer(LayerUtilities), "the utilities layer was emptied by the removal")

	again, err := Update(context.Background(), UpdateOptions{DocPath: docPath, Scan: DefaultScanOptions()})
	require.NoError(t, err)
	assert.True(t, again.Report.Empty())
	assert.False(t, again.Changed)
}

func TestUpdateDryRunDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	rustProject(t, root)
	docPath := filepath.Join(root, "SEMMAP.md")
	generateInto(t, root, docPath)
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)

	writeTree(t, root, map[string]string{"src/extra.rs": "pub fn extra() {}\n"})
	res, err := Update(context.Background(), UpdateOptions{DocPath: docPath, Scan: DefaultScanOptions(), DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"src/extra.rs"}, res.Report.Added)

	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdateWithNarrowerScanRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"crates/a/src/lib.rs": "pub fn a() {}\n",
		"crates/a/src/new.rs": "pub fn fresh() {}\n",
	})
	docPath := filepath.Join(root, "SEMMAP.md")
	doc := &Document{
		ProjectName: "workspace",
		Layers: []Layer{
			{Number: 1, Name: "Entry", Entries: []FileEntry{{Path: "crates/a/src/lib.rs", What: "Crate root.", Why: "Entry."}}},
			{Number: 3, Name: "Utilities", Entries: []FileEntry{{Path: "tools/gen.sh", What: "Generator.", Why: "Tooling."}}},
		},
	}
	require.NoError(t, WriteDocument(docPath, doc))

	res, err := Update(context.Background(), UpdateOptions{
		DocPath: docPath,
		Root:    filepath.Join(root, "crates"),
		Scan:    DefaultScanOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"crates/a/src/new.rs"}, res.Report.Added)
	assert.Empty(t, res.Report.Removed, "entries outside the scan root are kept")

	_, _, ok := res.Document.Find("tools/gen.sh")
	assert.True(t, ok)
}

func TestUpdateMissingDocument(t *testing.T) {
	_, err := Update(context.Background(), UpdateOptions{DocPath: filepath.Join(t.TempDir(), "SEMMAP.md")})
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestUpdateKeepsStructuredFormat(t *testing.T) {
	root := t.TempDir()
	rustProject(t, root)
	docPath := filepath.Join(root, "semmap.json")
	generateInto(t, root, docPath)

	writeTree(t, root, map[string]string{"src/extra.rs": "pub fn extra() {}\n"})
	res, err := Update(context.Background(), UpdateOptions{DocPath: docPath, Scan: DefaultScanOptions()})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/extra.rs"}, res.Report.Added)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"src/extra.rs"`)
}
