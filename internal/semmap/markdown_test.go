package semmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		ProjectName: "demo",
		Purpose:     "Shows how the map reads.",
		Legend: []LegendEntry{
			{Tag: "CORE", Definition: "Core business logic"},
			{Tag: "ENTRY", Definition: "Application entry point"},
		},
		Layers: []Layer{
			{Number: 0, Name: "Config", Entries: []FileEntry{
				{Path: "Cargo.toml", What: "Rust package manifest and dependencies.", Why: "Centralizes project configuration."},
			}},
			{Number: 1, Name: "Entry", Entries: []FileEntry{
				{Path: "src/main.rs", Tags: []string{"ENTRY"}, What: "Application entry point.", Why: "Provides the application entry point.", Exports: []string{"main"}},
			}},
			{Number: 2, Name: "Domain", Entries: []FileEntry{
				{Path: "src/parser.rs", Tags: []string{"CORE", "ENTRY"}, What: "Parses tokens into an AST.", Why: "Keeps syntax handling in one place. Errors carry spans.", Exports: []string{"Parser", "parse"}, Touch: "Update the grammar tests when adding nodes."},
				{Path: "src/lexer.rs", What: "Splits input into tokens.", Why: "Parses input into structured data."},
			}},
			{Number: 5},
		},
	}
}

func TestMarkdownRoundTripPreservesDocument(t *testing.T) {
	doc := sampleDocument()

	text := FormatMarkdown(doc)
	parsed, err := ParseMarkdown(text)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
	assert.Equal(t, text, FormatMarkdown(parsed))
}

func TestFormatMarkdownCanonicalLayout(t *testing.T) {
	doc := &Document{
		ProjectName: "tiny",
		Layers: []Layer{
			{Number: 2, Name: "Domain", Entries: []FileEntry{
				{Path: "a.go", Tags: []string{"CORE"}, What: "Does a.", Why: "Needed.", Exports: []string{"A", "B"}, Touch: "Careful."},
			}},
		},
	}

	want := "# tiny — Semantic Map\n\n" +
		"## Layer 2 — Domain\n\n" +
		"`a.go` `[CORE]`\n" +
		"Does a. Needed.\n" +
		"→ Exports: A, B\n" +
		"→ Touch: Careful.\n" +
		"\n"
	assert.Equal(t, want, FormatMarkdown(doc))
}

func TestFormatMarkdownSortsLayersByNumber(t *testing.T) {
	doc := &Document{
		ProjectName: "p",
		Layers:      []Layer{{Number: 3, Name: "C"}, {Number: 1, Name: "A"}},
	}
	parsed, err := ParseMarkdown(FormatMarkdown(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Layers, 2)
	assert.Equal(t, 1, parsed.Layers[0].Number)
	assert.Equal(t, 3, parsed.Layers[1].Number)
}

func TestParseMarkdownAcceptsLegacyMarkers(t *testing.T) {
	text := "# legacy — Semantic Map\n\n" +
		"Purpose: Old style purpose line.\n\n" +
		"## Layer 2 — Domain\n\n" +
		"`src/lib.rs`\n" +
		"Library root. Exposes the API.\n" +
		"Touch: Keep in sync.\n" +
		"exports: `Zeta`, Alpha\n\n" +
		"`src/util.rs`\n" +
		"Helpers. Shared code.\n" +
		"-> Exports: helper\n" +
		"-> TOUCH: none\n"

	doc, err := ParseMarkdown(text)
	require.NoError(t, err)
	assert.Equal(t, "Old style purpose line.", doc.Purpose)

	entries := doc.Layers[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "Library root.", entries[0].What)
	assert.Equal(t, "Exposes the API.", entries[0].Why)
	assert.Equal(t, []string{"Alpha", "Zeta"}, entries[0].Exports)
	assert.Equal(t, "Keep in sync.", entries[0].Touch)
	assert.Equal(t, []string{"helper"}, entries[1].Exports)
	assert.Equal(t, "none", entries[1].Touch)

	formatted := FormatMarkdown(doc)
	assert.Contains(t, formatted, "**Purpose:** Old style purpose line.\n")
	assert.Contains(t, formatted, "→ Exports: Alpha, Zeta\n→ Touch: Keep in sync.\n")
	assert.NotContains(t, formatted, "-> ")
}

func TestParseMarkdownMetadataOrderIndependent(t *testing.T) {
	first := "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`m.go`\nMain. Starts it.\n→ Exports: main\n→ Touch: x\n"
	second := "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`m.go`\nMain. Starts it.\n→ Touch: x\n→ Exports: main\n"

	a, err := ParseMarkdown(first)
	require.NoError(t, err)
	b, err := ParseMarkdown(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseMarkdownLayerWithoutName(t *testing.T) {
	doc, err := ParseMarkdown("# p — Semantic Map\n\n## Layer 7\n\n`x.py`\nDoes x.\n")
	require.NoError(t, err)
	require.Len(t, doc.Layers, 1)
	assert.Equal(t, 7, doc.Layers[0].Number)
	assert.Empty(t, doc.Layers[0].Name)
	assert.Contains(t, FormatMarkdown(doc), "## Layer 7\n\n")
}

func TestParseMarkdownIgnoresHeaderProse(t *testing.T) {
	text := "# p — Semantic Map\n\nSome introduction text.\n\n**Purpose:** Real purpose.\n\n## Notes\n\nFree text here.\n\n## Layer 0 — Config\n\n`go.mod`\nModule file.\n"
	doc, err := ParseMarkdown(text)
	require.NoError(t, err)
	assert.Equal(t, "Real purpose.", doc.Purpose)
	assert.Equal(t, 1, doc.EntryCount())
}

func TestParseMarkdownErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		line   int
		reason ParseReason
	}{
		{
			name:   "empty",
			text:   "\n\n",
			line:   1,
			reason: ReasonMissingTitle,
		},
		{
			name:   "section before title",
			text:   "## Layer 1\n",
			line:   1,
			reason: ReasonMissingTitle,
		},
		{
			name:   "bad layer header",
			text:   "# p — Semantic Map\n\n## Layer one\n",
			line:   3,
			reason: ReasonMalformedLayerHeader,
		},
		{
			name:   "unterminated path",
			text:   "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`main.go\nDoes it.\n",
			line:   5,
			reason: ReasonMalformedEntry,
		},
		{
			name:   "text after tags",
			text:   "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`main.go` `[CORE]` stray\nDoes it.\n",
			line:   5,
			reason: ReasonMalformedEntry,
		},
		{
			name:   "no description",
			text:   "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`main.go`\n\n`other.go`\nFine.\n",
			line:   5,
			reason: ReasonMissingDescription,
		},
		{
			name:   "section after layers",
			text:   "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`main.go`\nDoes it.\n\n## Appendix\n",
			line:   8,
			reason: ReasonUnexpectedSection,
		},
		{
			name:   "stray text in layer",
			text:   "# p — Semantic Map\n\n## Layer 1 — Entry\n\nloose words\n",
			line:   5,
			reason: ReasonUnexpectedContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseMarkdown(tt.text)
			require.Error(t, err)
			assert.Nil(t, doc)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.reason, perr.Reason)
		})
	}
}

func TestParseMarkdownWithLinesRecordsPositions(t *testing.T) {
	text := "# p — Semantic Map\n\n## Layer 1 — Entry\n\n`a.go`\nA.\n\n`b.go`\nB.\n"
	_, lines, err := ParseMarkdownWithLines(text)
	require.NoError(t, err)
	assert.Equal(t, 1, lines.Title)
	assert.Equal(t, 3, lines.LayerLine(0))
	assert.Equal(t, 5, lines.EntryLine(0, 0))
	assert.Equal(t, 8, lines.EntryLine(0, 1))
	assert.Equal(t, 0, lines.EntryLine(1, 0))
}

func TestSplitDescription(t *testing.T) {
	tests := []struct {
		in, what, why string
	}{
		{"Parses input. Keeps it simple.", "Parses input.", "Keeps it simple."},
		{"Single sentence.", "Single sentence.", ""},
		{"Uses v1.2 format. Stable.", "Uses v1.2 format.", "Stable."},
		{"  padded.  ", "padded.", ""},
	}
	for _, tt := range tests {
		what, why := SplitDescription(tt.in)
		assert.Equal(t, tt.what, what, tt.in)
		assert.Equal(t, tt.why, why, tt.in)
	}
}

func TestMarkdownRoundTripDescriptionsThatLookLikeMarkup(t *testing.T) {
	doc := &Document{
		ProjectName: "p",
		Layers: []Layer{{Number: 2, Name: "Domain", Entries: []FileEntry{
			{Path: "src/token.rs", What: "`Token` values.", Why: "Keeps lexing separate."},
			{Path: "src/helpers.py", What: "Exports: helpers.", Exports: []string{"help"}},
			{Path: "src/parser.rs", What: "## Overview of parser.", Why: "Parses input into structured data."},
			{Path: "src/notes.py", What: "→ Touch: carefully.", Touch: "Fragile."},
		}}},
	}

	text := FormatMarkdown(doc)
	parsed, err := ParseMarkdown(text)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
	assert.Equal(t, text, FormatMarkdown(parsed))
}

func TestParseMarkdownMissingDescriptionBeforeBlankLine(t *testing.T) {
	_, err := ParseMarkdown("# p — Semantic Map\n\n## Layer 1 — Entry\n\n`main.go`\n\n")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ReasonMissingDescription, perr.Reason)
	assert.Equal(t, 5, perr.Line)
}

func TestCodecsDecodeEmptySlicesAsNil(t *testing.T) {
	doc := &Document{
		ProjectName: "p",
		Legend:      []LegendEntry{},
		Layers: []Layer{
			{Number: 1, Name: "Entry", Entries: []FileEntry{
				{Path: "main.go", What: "Starts it.", Tags: []string{}, Exports: []string{}},
			}},
			{Number: 3, Name: "Utilities", Entries: []FileEntry{}},
		},
	}
	canonical := doc.Clone()
	assert.Nil(t, canonical.Legend)
	assert.Nil(t, canonical.Layers[1].Entries)
	assert.Nil(t, canonical.Layers[0].Entries[0].Tags)

	for _, name := range CodecNames() {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecFor(name)
			require.NoError(t, err)
			data, err := codec.Encode(doc)
			require.NoError(t, err)
			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, canonical, decoded)
		})
	}
}
