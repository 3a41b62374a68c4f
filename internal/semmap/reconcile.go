package semmap

import (
	"fmt"
	"sort"
)

// ReconcileReport lists the paths an update added and removed.
type ReconcileReport struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether the reconciliation changed no entries.
func (r ReconcileReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// Summary renders the report as "+N -M".
func (r ReconcileReport) Summary() string {
	return fmt.Sprintf("+%d -%d", len(r.Added), len(r.Removed))
}

type freshEntry struct {
	entry     FileEntry
	layer     int
	layerName string
}

// Reconcile merges a freshly generated document into an existing one.
// Fresh paths are relative to the scan root and are placed under scanPrefix,
// the scan root expressed relative to the document. Entries present in both
// are left untouched, so hand edits survive. New files are added to the layer
// the generator chose; files gone from disk are removed, but only when they
// lie under scanPrefix. old is not modified.
func Reconcile(old, fresh *Document, scanPrefix string) (*Document, ReconcileReport) {
	out := old.Clone()
	NormalizeDocumentPaths(out)
	prefix := NormalizePath(scanPrefix)

	var freshOrder []string
	freshByPath := make(map[string]freshEntry)
	for _, layer := range fresh.Layers {
		for _, entry := range layer.Entries {
			p := JoinPrefix(prefix, entry.Path)
			if _, dup := freshByPath[p]; dup {
				continue
			}
			e := entry.clone()
			e.Path = p
			freshByPath[p] = freshEntry{entry: e, layer: layer.Number, layerName: layer.Name}
			freshOrder = append(freshOrder, p)
		}
	}

	var report ReconcileReport
	existing := make(map[string]bool)
	emptied := make(map[int]bool)
	for i := range out.Layers {
		layer := &out.Layers[i]
		if len(layer.Entries) == 0 {
			continue
		}
		kept := layer.Entries[:0]
		for _, entry := range layer.Entries {
			_, stillThere := freshByPath[entry.Path]
			if !stillThere && HasPathPrefix(entry.Path, prefix) {
				report.Removed = append(report.Removed, entry.Path)
				continue
			}
			existing[entry.Path] = true
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			emptied[layer.Number] = true
			kept = nil
		}
		layer.Entries = kept
	}

	for _, p := range freshOrder {
		if existing[p] {
			continue
		}
		fe := freshByPath[p]
		layer := out.EnsureLayer(fe.layer, fe.layerName)
		layer.Entries = insertEntry(layer.Entries, fe.entry)
		existing[p] = true
		report.Added = append(report.Added, p)
	}

	if len(emptied) > 0 {
		layers := out.Layers[:0]
		for _, layer := range out.Layers {
			if emptied[layer.Number] && len(layer.Entries) == 0 {
				continue
			}
			layers = append(layers, layer)
		}
		out.Layers = layers
	}
	return out, report
}

// insertEntry places entry at its sorted position when entries are already
// ordered by path, and appends it otherwise.
func insertEntry(entries []FileEntry, entry FileEntry) []FileEntry {
	sorted := sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	if !sorted {
		return append(entries, entry)
	}
	pos := sort.Search(len(entries), func(i int) bool {
		return entries[i].Path > entry.Path
	})
	entries = append(entries, FileEntry{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = entry
	return entries
}
