package semmap

import (
	"sort"
	"strconv"
)

// Document is the in-memory semantic map of a codebase.
type Document struct {
	ProjectName string        `json:"projectName" yaml:"projectName" toml:"projectName"`
	Purpose     string        `json:"purpose,omitempty" yaml:"purpose,omitempty" toml:"purpose,omitempty"`
	Legend      []LegendEntry `json:"legend,omitempty" yaml:"legend,omitempty" toml:"legend,omitempty"`
	Layers      []Layer       `json:"layers" yaml:"layers" toml:"layers"`
}

// LegendEntry defines one tag that entries may carry.
type LegendEntry struct {
	Tag        string `json:"tag" yaml:"tag" toml:"tag"`
	Definition string `json:"definition" yaml:"definition" toml:"definition"`
}

// Layer groups entries by how foundational they are. Lower numbers are more foundational.
type Layer struct {
	Number  int         `json:"number" yaml:"number" toml:"number"`
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Entries []FileEntry `json:"entries" yaml:"entries" toml:"entries"`
}

// FileEntry describes a single file of the codebase.
type FileEntry struct {
	Path    string   `json:"path" yaml:"path" toml:"path"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	What    string   `json:"what" yaml:"what" toml:"what"`
	Why     string   `json:"why" yaml:"why" toml:"why"`
	Exports []string `json:"exports,omitempty" yaml:"exports,omitempty" toml:"exports,omitempty"`
	Touch   string   `json:"touch,omitempty" yaml:"touch,omitempty" toml:"touch,omitempty"`
}

// Description returns the WHAT and WHY sentences joined the way the markdown form stores them.
func (e FileEntry) Description() string {
	switch {
	case e.Why == "":
		return e.What
	case e.What == "":
		return e.Why
	default:
		return e.What + " " + e.Why
	}
}

// Standard layer numbers assigned by the generator.
const (
	LayerConfig    = 0
	LayerEntry     = 1
	LayerDomain    = 2
	LayerUtilities = 3
	LayerTests     = 4
)

var defaultLayerNames = map[int]string{
	LayerConfig:    "Config",
	LayerEntry:     "Entry",
	LayerDomain:    "Domain",
	LayerUtilities: "Utilities",
	LayerTests:     "Tests",
}

// DefaultLayerName returns the generator's name for a layer number.
func DefaultLayerName(number int) string {
	if name, ok := defaultLayerNames[number]; ok {
		return name
	}
	return "Layer " + strconv.Itoa(number)
}

// DefaultLegend is the legend written into freshly generated documents.
func DefaultLegend() []LegendEntry {
	return []LegendEntry{
		{Tag: "ENTRY", Definition: "Application entry point"},
		{Tag: "CORE", Definition: "Core business logic"},
		{Tag: "TYPE", Definition: "Data structures and types"},
		{Tag: "UTIL", Definition: "Utility functions"},
	}
}

// Paths returns every entry path in document order.
func (d *Document) Paths() []string {
	paths := make([]string, 0, d.EntryCount())
	for _, layer := range d.Layers {
		for _, entry := range layer.Entries {
			paths = append(paths, entry.Path)
		}
	}
	return paths
}

// EntryCount returns the number of entries across all layers.
func (d *Document) EntryCount() int {
	n := 0
	for _, layer := range d.Layers {
		n += len(layer.Entries)
	}
	return n
}

// LayerOf maps every path to the number of the layer holding it.
// When a path appears more than once the first occurrence wins.
func (d *Document) LayerOf() map[string]int {
	out := make(map[string]int, d.EntryCount())
	for _, layer := range d.Layers {
		for _, entry := range layer.Entries {
			if _, seen := out[entry.Path]; !seen {
				out[entry.Path] = layer.Number
			}
		}
	}
	return out
}

// Find returns the entry for path and the number of its layer.
func (d *Document) Find(path string) (FileEntry, int, bool) {
	for _, layer := range d.Layers {
		for _, entry := range layer.Entries {
			if entry.Path == path {
				return entry, layer.Number, true
			}
		}
	}
	return FileEntry{}, 0, false
}

// Layer returns a pointer to the layer with the given number, or nil.
func (d *Document) Layer(number int) *Layer {
	for i := range d.Layers {
		if d.Layers[i].Number == number {
			return &d.Layers[i]
		}
	}
	return nil
}

// LayerName returns the name of the layer with the given number.
func (d *Document) LayerName(number int) string {
	if layer := d.Layer(number); layer != nil {
		return layer.Name
	}
	return ""
}

// EnsureLayer returns the layer with the given number, inserting an empty one
// at its numeric position when none exists.
func (d *Document) EnsureLayer(number int, name string) *Layer {
	if layer := d.Layer(number); layer != nil {
		return layer
	}
	pos := sort.Search(len(d.Layers), func(i int) bool {
		return d.Layers[i].Number > number
	})
	d.Layers = append(d.Layers, Layer{})
	copy(d.Layers[pos+1:], d.Layers[pos:])
	d.Layers[pos] = Layer{Number: number, Name: name}
	return &d.Layers[pos]
}

// Clone returns a deep copy of the document in canonical form: empty slices
// become nil, which is how every codec decodes them.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		ProjectName: d.ProjectName,
		Purpose:     d.Purpose,
	}
	if len(d.Legend) > 0 {
		out.Legend = append([]LegendEntry(nil), d.Legend...)
	}
	if len(d.Layers) > 0 {
		out.Layers = make([]Layer, len(d.Layers))
		for i, layer := range d.Layers {
			out.Layers[i] = Layer{Number: layer.Number, Name: layer.Name}
			if len(layer.Entries) > 0 {
				out.Layers[i].Entries = make([]FileEntry, len(layer.Entries))
				for j, entry := range layer.Entries {
					out.Layers[i].Entries[j] = entry.clone()
				}
			}
		}
	}
	return out
}

func (e FileEntry) clone() FileEntry {
	out := e
	out.Tags, out.Exports = nil, nil
	if len(e.Tags) > 0 {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if len(e.Exports) > 0 {
		out.Exports = append([]string(nil), e.Exports...)
	}
	return out
}

// sortedSet returns the unique non-empty values of in, sorted.
func sortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
