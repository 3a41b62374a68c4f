package semmap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Node is a file in the dependency graph. Orphan nodes exist on disk but have
// no entry in the document, so their layer is unknown.
type Node struct {
	Path      string `json:"path"`
	Layer     int    `json:"layer"`
	LayerName string `json:"layerName,omitempty"`
	Orphan    bool   `json:"orphan,omitempty"`
}

// Edge is a dependency between two nodes, referenced by index.
type Edge struct {
	From int        `json:"from"`
	To   int        `json:"to"`
	Kind ImportKind `json:"kind"`
}

// ExternalRef is an import hint that did not resolve to a project file.
type ExternalRef struct {
	From string `json:"from"`
	Hint string `json:"hint"`
}

// Violation is an edge from a more foundational layer to a less foundational one.
type Violation struct {
	From      string `json:"from"`
	To        string `json:"to"`
	FromLayer int    `json:"fromLayer"`
	ToLayer   int    `json:"toLayer"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (L%d) depends on %s (L%d)", v.From, v.FromLayer, v.To, v.ToLayer)
}

type edgeKey struct {
	from, to int
	kind     ImportKind
}

// Graph is a directed file dependency graph with index-based adjacency.
// Cycles are allowed; self edges and duplicate edges are not.
type Graph struct {
	Nodes    []Node
	Edges    []Edge
	External []ExternalRef
	Warnings []Warning

	index map[string]int
	seen  map[edgeKey]struct{}
	out   []map[int]struct{}
	in    []map[int]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		seen:  make(map[edgeKey]struct{}),
	}
}

// AddNode inserts a node and returns its index. Adding an existing path returns the existing index.
func (g *Graph) AddNode(node Node) int {
	if i, ok := g.index[node.Path]; ok {
		return i
	}
	i := len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
	g.index[node.Path] = i
	g.out = append(g.out, make(map[int]struct{}))
	g.in = append(g.in, make(map[int]struct{}))
	return i
}

// NodeIndex returns the index of the node for path.
func (g *Graph) NodeIndex(path string) (int, bool) {
	i, ok := g.index[path]
	return i, ok
}

// AddEdge links two existing nodes. It reports false for self edges,
// duplicates and unknown paths.
func (g *Graph) AddEdge(from, to string, kind ImportKind) bool {
	fi, ok := g.index[from]
	if !ok {
		return false
	}
	ti, ok := g.index[to]
	if !ok || fi == ti {
		return false
	}
	key := edgeKey{from: fi, to: ti, kind: kind}
	if _, dup := g.seen[key]; dup {
		return false
	}
	g.seen[key] = struct{}{}
	g.Edges = append(g.Edges, Edge{From: fi, To: ti, Kind: kind})
	g.out[fi][ti] = struct{}{}
	g.in[ti][fi] = struct{}{}
	return true
}

// Metrics returns the number of distinct files path depends on and that depend on it.
func (g *Graph) Metrics(path string) Metrics {
	i, ok := g.index[path]
	if !ok {
		return Metrics{}
	}
	return Metrics{FanIn: len(g.in[i]), FanOut: len(g.out[i])}
}

// Dependencies returns the paths that path depends on, sorted.
func (g *Graph) Dependencies(path string) []string {
	i, ok := g.index[path]
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(g.out[i]))
	for j := range g.out[i] {
		deps = append(deps, g.Nodes[j].Path)
	}
	sort.Strings(deps)
	return deps
}

// IsViolation reports whether the edge points from a lower layer number to a higher one.
func (g *Graph) IsViolation(e Edge) bool {
	from, to := g.Nodes[e.From], g.Nodes[e.To]
	if from.Orphan || to.Orphan {
		return false
	}
	return to.Layer > from.Layer
}

// Violations lists every layer violation in edge order. The graph is not modified.
func (g *Graph) Violations() []Violation {
	var out []Violation
	for _, e := range g.Edges {
		if !g.IsViolation(e) {
			continue
		}
		from, to := g.Nodes[e.From], g.Nodes[e.To]
		out = append(out, Violation{From: from.Path, To: to.Path, FromLayer: from.Layer, ToLayer: to.Layer})
	}
	return out
}

// CheckViolations is the functional form of Graph.Violations.
func CheckViolations(g *Graph) []Violation {
	return g.Violations()
}

// GraphOptions configure BuildGraph.
type GraphOptions struct {
	Root     string
	Registry *ExtractorRegistry
	Logger   *slog.Logger
}

// BuildGraph reads every file listed in doc from Root, extracts its imports
// and links them into a graph. Files that cannot be read are skipped with a
// warning on the graph; hints that resolve to no project file become external references.
// Targets found on disk but missing from doc are added as orphan nodes.
func BuildGraph(ctx context.Context, doc *Document, opts GraphOptions) (*Graph, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	registry := opts.Registry
	if registry == nil {
		registry = DefaultExtractorRegistry()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	g := NewGraph()
	for _, layer := range doc.Layers {
		for _, entry := range layer.Entries {
			g.AddNode(Node{Path: entry.Path, Layer: layer.Number, LayerName: layer.Name})
		}
	}

	facts := make([]FileFacts, 0, len(g.Nodes))
	for _, node := range append([]Node(nil), g.Nodes...) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs := filepath.Join(absRoot, filepath.FromSlash(node.Path))
		src, err := os.ReadFile(abs)
		if err != nil {
			g.Warnings = append(g.Warnings, Warning{Path: node.Path, Err: err})
			log.Warn("skipping unreadable file", slog.String("path", node.Path), slog.Any("error", err))
			continue
		}
		language := detectLanguage(abs, node.Path)
		facts = append(facts, registry.ExtractFacts(node.Path, language, src))
	}

	resolver := newImportResolver(absRoot, doc.Paths(), true)
	linkImports(g, facts, resolver, log)
	return g, nil
}

// linkImports resolves every file's import hints and adds the resulting edges.
func linkImports(g *Graph, facts []FileFacts, r *importResolver, log *slog.Logger) {
	for _, f := range facts {
		for _, imp := range f.Imports {
			targets := r.resolve(f.Path, f.Language, imp)
			if len(targets) == 0 {
				g.External = append(g.External, ExternalRef{From: f.Path, Hint: imp.Hint})
				log.Debug("unresolved import", slog.String("from", f.Path), slog.String("hint", imp.Hint))
				continue
			}
			for _, target := range targets {
				if _, ok := g.NodeIndex(target); !ok {
					g.AddNode(Node{Path: target, Layer: -1, Orphan: true})
				}
				g.AddEdge(f.Path, target, imp.Kind)
			}
		}
	}
}
