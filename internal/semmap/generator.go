package semmap

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Result is the outcome of a generation run.
type Result struct {
	Document *Document
	Graph    *Graph
	Warnings []Warning
}

// Generate scans opts.Root and derives a fresh Document from the source files.
// Unreadable files are skipped and reported in Result.Warnings.
func Generate(ctx context.Context, opts ScanOptions) (*Result, error) {
	log := opts.logger()
	idx, err := BuildFileIndex(ctx, opts)
	if err != nil {
		return nil, err
	}
	registry := opts.registry()

	result := &Result{Warnings: append([]Warning(nil), idx.Warnings...)}
	facts := make([]FileFacts, 0, len(idx.Files))
	for _, rec := range idx.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(rec.AbsPath)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Path: rec.RelPath, Err: err})
			log.Warn("skipping unreadable file", slog.String("path", rec.RelPath), slog.Any("error", err))
			continue
		}
		facts = append(facts, registry.ExtractFacts(rec.RelPath, rec.Language, src))
	}

	g := NewGraph()
	known := make([]string, len(facts))
	for i, f := range facts {
		layer := InferLayer(f.Path, f.Language)
		g.AddNode(Node{Path: f.Path, Layer: layer, LayerName: DefaultLayerName(layer)})
		known[i] = f.Path
	}
	linkImports(g, facts, newImportResolver(idx.Root, known, false), log)
	result.Graph = g

	doc := &Document{
		ProjectName: opts.ProjectName,
		Purpose:     opts.Purpose,
		Legend:      DefaultLegend(),
	}
	if doc.ProjectName == "" {
		doc.ProjectName = filepath.Base(idx.Root)
	}

	grouped := make(map[int][]FileEntry)
	for _, f := range facts {
		inf := Infer(f, g.Metrics(f.Path))
		grouped[inf.Layer] = append(grouped[inf.Layer], FileEntry{
			Path:    f.Path,
			What:    inf.What,
			Why:     inf.Why,
			Exports: sortedSet(inf.Exports),
		})
	}
	for number := LayerConfig; number <= LayerTests; number++ {
		if entries := grouped[number]; len(entries) > 0 {
			doc.Layers = append(doc.Layers, Layer{Number: number, Name: DefaultLayerName(number), Entries: entries})
		}
	}
	result.Document = doc

	log.Info("generated semantic map",
		slog.String("root", idx.Root),
		slog.Int("files", doc.EntryCount()),
		slog.Int("edges", len(g.Edges)),
		slog.Int("warnings", len(result.Warnings)))
	return result, nil
}
