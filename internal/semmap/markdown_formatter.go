package semmap

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical metadata markers written by the formatter.
const (
	exportsMarker = "→ Exports:"
	touchMarker   = "→ Touch:"
	titleSuffix   = " — Semantic Map"
)

// FormatMarkdown renders doc in the canonical markdown form.
// Layers are written in ascending number order; entries keep their stored order.
func FormatMarkdown(doc *Document) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(doc.ProjectName)
	b.WriteString(titleSuffix)
	b.WriteString("\n\n")

	if doc.Purpose != "" {
		b.WriteString("**Purpose:** ")
		b.WriteString(doc.Purpose)
		b.WriteString("\n\n")
	}

	if len(doc.Legend) > 0 {
		b.WriteString("## Legend\n\n")
		for _, item := range doc.Legend {
			b.WriteString("`[")
			b.WriteString(item.Tag)
			b.WriteString("]` ")
			b.WriteString(item.Definition)
			b.WriteString("\n\n")
		}
	}

	layers := make([]Layer, len(doc.Layers))
	copy(layers, doc.Layers)
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].Number < layers[j].Number
	})

	for _, layer := range layers {
		b.WriteString("## Layer ")
		b.WriteString(strconv.Itoa(layer.Number))
		if layer.Name != "" {
			b.WriteString(" — ")
			b.WriteString(layer.Name)
		}
		b.WriteString("\n\n")

		for _, entry := range layer.Entries {
			writeEntry(&b, entry)
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, entry FileEntry) {
	b.WriteString("`")
	b.WriteString(entry.Path)
	b.WriteString("`")
	for _, tag := range entry.Tags {
		b.WriteString(" `[")
		b.WriteString(tag)
		b.WriteString("]`")
	}
	b.WriteString("\n")

	b.WriteString(entry.Description())
	b.WriteString("\n")

	if len(entry.Exports) > 0 {
		b.WriteString(exportsMarker)
		b.WriteString(" ")
		b.WriteString(strings.Join(entry.Exports, ", "))
		b.WriteString("\n")
	}
	if entry.Touch != "" {
		b.WriteString(touchMarker)
		b.WriteString(" ")
		b.WriteString(entry.Touch)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
