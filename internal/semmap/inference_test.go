package semmap

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIdentifier(t *testing.T) {
	tests := map[string][]string{
		"get_user_profile": {"get", "user", "profile"},
		"validateInput":    {"validate", "input"},
		"HTTPServer":       {"http", "server"},
		"parse-config.v2":  {"parse", "config", "v", "2"},
		"":                 nil,
	}
	for in, want := range tests {
		assert.Equal(t, want, splitIdentifier(in), in)
	}
}

func TestDescribeIdentifier(t *testing.T) {
	tests := map[string]string{
		"get_user_profile": "Gets the user profile.",
		"parse_config":     "Parses config.",
		"validateInput":    "Validates input.",
		"parser":           "Implements parser functionality.",
		"renderTable":      "Formats table for output.",
		"user_profile":     "Implements user profile.",
	}
	for in, want := range tests {
		got, ok := describeIdentifier(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := describeIdentifier("__")
	assert.False(t, ok)
}

func TestInferLayer(t *testing.T) {
	tests := []struct {
		path, language string
		want           int
	}{
		{"Cargo.toml", "", LayerConfig},
		{"tests/Cargo.toml", "", LayerConfig},
		{"config/settings.yaml", "", LayerConfig},
		{"src/main.rs", "rust", LayerEntry},
		{"src/bin/tool.rs", "rust", LayerEntry},
		{"cmd/semmap/main.go", "go", LayerEntry},
		{"tests/integration.rs", "rust", LayerTests},
		{"internal/semmap/graph_test.go", "go", LayerTests},
		{"src/components/Button.test.tsx", "typescript", LayerTests},
		{"pkg/test_models.py", "python", LayerTests},
		{"src/utils/strings.rs", "rust", LayerUtilities},
		{"src/string_utils.rs", "rust", LayerUtilities},
		{"src/parser.rs", "rust", LayerDomain},
		{"pkg/__init__.py", "python", LayerDomain},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferLayer(tt.path, tt.language), tt.path)
	}
}

func TestInferWhatPriority(t *testing.T) {
	tests := []struct {
		name  string
		facts FileFacts
		want  string
	}{
		{"doc wins", FileFacts{Path: "src/main.rs", Language: "rust", Doc: "Starts the daemon.", HasDoc: true}, "Starts the daemon."},
		{"special file", FileFacts{Path: "src/main.rs", Language: "rust"}, "Application entry point."},
		{"manifest name is case-insensitive", FileFacts{Path: "Cargo.toml"}, "Rust package manifest and dependencies."},
		{"rust module root", FileFacts{Path: "src/net/mod.rs", Language: "rust"}, "Module root for net."},
		{"python package", FileFacts{Path: "pkg/__init__.py", Language: "python"}, "Package initializer for pkg."},
		{"python package at root", FileFacts{Path: "__init__.py", Language: "python"}, "Package initializer for the project root."},
		{"config file", FileFacts{Path: "config/app_settings.yaml"}, "Configuration for app settings."},
		{"test file", FileFacts{Path: "tests/parser_test.rs", Language: "rust"}, "Tests parser."},
		{"verb template", FileFacts{Path: "src/get_user_profile.rs", Language: "rust"}, "Gets the user profile."},
		{"export spelling", FileFacts{Path: "src/user_profile.rs", Language: "rust", Exports: []string{"UserProfile"}}, "Implements user profile."},
		{"single word", FileFacts{Path: "src/parser.rs", Language: "rust"}, "Implements parser functionality."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferWhat(tt.facts))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		facts   FileFacts
		metrics Metrics
		want    Stereotype
	}{
		{"manifest", FileFacts{Path: "package.json"}, Metrics{}, StereotypeConfig},
		{"entry", FileFacts{Path: "src/main.rs", Language: "rust"}, Metrics{}, StereotypeEntry},
		{"test", FileFacts{Path: "tests/api.rs", Language: "rust"}, Metrics{}, StereotypeTest},
		{"errors", FileFacts{Path: "src/error.rs", Language: "rust"}, Metrics{}, StereotypeError},
		{"cli signature", FileFacts{Path: "src/args.rs", Language: "rust", Imports: []Import{{Hint: "clap::Parser"}}}, Metrics{}, StereotypeCLI},
		{"handler signature", FileFacts{Path: "api/routes.py", Language: "python", Imports: []Import{{Hint: "fastapi"}}}, Metrics{}, StereotypeHandler},
		{"repository signature", FileFacts{Path: "store/users.go", Language: "go", Imports: []Import{{Hint: "github.com/jackc/pgx/v5/pgxpool"}}}, Metrics{}, StereotypeRepository},
		{"relative hint is not a framework", FileFacts{Path: "src/app.ts", Language: "typescript", Imports: []Import{{Hint: "./express"}}}, Metrics{}, StereotypeUnknown},
		{"high fan-in", FileFacts{Path: "src/strings.rs", Language: "rust"}, Metrics{FanIn: 3, FanOut: 1}, StereotypeUtility},
		{"high fan-out", FileFacts{Path: "src/app.rs", Language: "rust"}, Metrics{FanOut: 5}, StereotypeService},
		{"parser name", FileFacts{Path: "src/lexer.rs", Language: "rust"}, Metrics{}, StereotypeParser},
		{"formatter name", FileFacts{Path: "src/table_renderer.rs", Language: "rust"}, Metrics{}, StereotypeFormatter},
		{"entity name", FileFacts{Path: "app/models.py", Language: "python"}, Metrics{}, StereotypeEntity},
		{"service name", FileFacts{Path: "src/user_service.ts", Language: "typescript"}, Metrics{}, StereotypeService},
		{"exports make it domain", FileFacts{Path: "src/thing.rs", Language: "rust", Exports: []string{"Thing"}}, Metrics{}, StereotypeDomain},
		{"nothing known", FileFacts{Path: "src/thing.rs", Language: "rust"}, Metrics{}, StereotypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.facts, tt.metrics))
		})
	}
}

func TestClassifyIgnoresFrameworkNamesInSource(t *testing.T) {
	src, err := os.ReadFile("stereotype.go")
	require.NoError(t, err)

	facts := DefaultExtractorRegistry().ExtractFacts("internal/semmap/stereotype.go", languageGo, src)
	got := Classify(facts, Metrics{})
	assert.NotEqual(t, StereotypeCLI, got)
	assert.NotEqual(t, StereotypeHandler, got)
	assert.NotEqual(t, StereotypeRepository, got)
}

func TestMatchesModule(t *testing.T) {
	assert.True(t, matchesModule("github.com/spf13/cobra", "github.com/spf13/cobra"))
	assert.True(t, matchesModule("github.com/spf13/cobra/doc", "github.com/spf13/cobra"))
	assert.True(t, matchesModule("axum::Router", "axum"))
	assert.True(t, matchesModule("django.http.response", "django.http"))
	assert.False(t, matchesModule("clapper", "clap"))
	assert.False(t, matchesModule("pgx", "pg"))
}

func TestStereotypeWhy(t *testing.T) {
	assert.Equal(t, "Defines the command-line interface.", StereotypeCLI.Why())
	assert.Equal(t, StereotypeUnknown.Why(), Stereotype("nonsense").Why())
}

func TestInferIsDeterministic(t *testing.T) {
	facts := FileFacts{Path: "src/parse_config.rs", Language: "rust", Exports: []string{"Config", "parse"}}
	a := Infer(facts, Metrics{FanIn: 1})
	b := Infer(facts, Metrics{FanIn: 1})
	assert.Equal(t, a, b)
	assert.Equal(t, LayerDomain, a.Layer)
	assert.Equal(t, StereotypeParser, a.Stereotype)
	assert.Equal(t, "Parses config.", a.What)
	assert.Equal(t, "Parses input into structured data.", a.Why)
}
