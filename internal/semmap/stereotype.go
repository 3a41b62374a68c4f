package semmap

import (
	"path"
	"strings"
)

// Stereotype is the architectural role a file appears to play. It only picks
// a WHY sentence during generation and is never stored in a Document.
type Stereotype string

const (
	StereotypeConfig     Stereotype = "config"
	StereotypeEntry      Stereotype = "entry"
	StereotypeDomain     Stereotype = "domain"
	StereotypeUtility    Stereotype = "utility"
	StereotypeTest       Stereotype = "test"
	StereotypeUnknown    Stereotype = "unknown"
	StereotypeCLI        Stereotype = "cli"
	StereotypeHandler    Stereotype = "handler"
	StereotypeRepository Stereotype = "repository"
	StereotypeService    Stereotype = "service"
	StereotypeParser     Stereotype = "parser"
	StereotypeFormatter  Stereotype = "formatter"
	StereotypeEntity     Stereotype = "entity"
	StereotypeError      Stereotype = "error"
)

var stereotypeWhy = map[Stereotype]string{
	StereotypeConfig:     "Centralizes project configuration.",
	StereotypeEntry:      "Provides the application entry point.",
	StereotypeDomain:     "Implements core domain behavior.",
	StereotypeUtility:    "Provides reusable helper functions.",
	StereotypeTest:       "Verifies correctness.",
	StereotypeUnknown:    "Supports application functionality.",
	StereotypeCLI:        "Defines the command-line interface.",
	StereotypeHandler:    "Handles HTTP/API requests.",
	StereotypeRepository: "Handles data persistence.",
	StereotypeService:    "Orchestrates business logic.",
	StereotypeParser:     "Parses input into structured data.",
	StereotypeFormatter:  "Formats data for output.",
	StereotypeEntity:     "Defines domain data structures.",
	StereotypeError:      "Defines error types and handling.",
}

// Why returns the fixed WHY sentence for the stereotype.
func (s Stereotype) Why() string {
	if why, ok := stereotypeWhy[s]; ok {
		return why
	}
	return stereotypeWhy[StereotypeUnknown]
}

// frameworkSignature names modules whose import marks a file's role.
type frameworkSignature struct {
	role    Stereotype
	modules []string
}

// frameworkSignatures is only ever compared with import hints produced by the
// extractors, never with raw file text, so files that merely mention these
// module names are not classified by them.
var frameworkSignatures = []frameworkSignature{
	{role: StereotypeCLI, modules: []string{
		"clap", "structopt", "argh",
		"github.com/spf13/cobra", "github.com/urfave/cli", "github.com/urfave/cli/v2", "github.com/urfave/cli/v3", "github.com/alecthomas/kong",
		"argparse", "click", "typer", "fire", "docopt",
		"commander", "yargs", "minimist", "@oclif/core", "cac",
	}},
	{role: StereotypeHandler, modules: []string{
		"axum", "actix_web", "warp", "rocket", "hyper", "tide", "poem",
		"net/http", "github.com/go-chi/chi", "github.com/go-chi/chi/v5", "github.com/gin-gonic/gin", "github.com/labstack/echo", "github.com/labstack/echo/v4", "github.com/gorilla/mux", "github.com/gofiber/fiber", "github.com/gofiber/fiber/v2",
		"flask", "fastapi", "starlette", "aiohttp", "django.http", "django.views", "tornado",
		"express", "koa", "fastify", "hono", "next/server", "@nestjs/common",
	}},
	{role: StereotypeRepository, modules: []string{
		"diesel", "sqlx", "rusqlite", "sea_orm", "mongodb", "redis",
		"database/sql", "gorm.io/gorm", "github.com/jackc/pgx", "github.com/jackc/pgx/v5", "github.com/mattn/go-sqlite3", "modernc.org/sqlite", "entgo.io/ent", "go.mongodb.org/mongo-driver",
		"sqlalchemy", "sqlite3", "psycopg2", "pymongo", "django.db", "peewee",
		"typeorm", "@prisma/client", "mongoose", "sequelize", "knex", "pg", "better-sqlite3",
	}},
}

// matchesModule reports whether an import hint refers to module or one of its sub-modules.
func matchesModule(hint, module string) bool {
	if hint == module {
		return true
	}
	if !strings.HasPrefix(hint, module) {
		return false
	}
	switch hint[len(module)] {
	case '/', '.', ':':
		return true
	}
	return false
}

func signatureRole(imports []Import) (Stereotype, bool) {
	for _, sig := range frameworkSignatures {
		for _, imp := range imports {
			if isRelativeHint(imp.Hint) {
				continue
			}
			for _, module := range sig.modules {
				if matchesModule(imp.Hint, module) {
					return sig.role, true
				}
			}
		}
	}
	return "", false
}

func isRelativeHint(hint string) bool {
	return strings.HasPrefix(hint, ".") ||
		strings.HasPrefix(hint, "/") ||
		strings.HasPrefix(hint, "crate::") ||
		strings.HasPrefix(hint, "super::") ||
		strings.HasPrefix(hint, "self::")
}

// Metrics are the dependency counts of a file within the scanned project.
type Metrics struct {
	FanIn  int
	FanOut int
}

const (
	utilityFanIn  = 3
	utilityMaxOut = 1
	serviceMinOut = 5
)

// Classify assigns a stereotype from the file's path, its import hints, its
// dependency metrics and finally its name, in that order.
func Classify(facts FileFacts, metrics Metrics) Stereotype {
	lowerPath := strings.ToLower(facts.Path)
	base := path.Base(lowerPath)
	stem := fileStem(base)

	switch {
	case isManifestPath(lowerPath):
		return StereotypeConfig
	case isEntryPath(lowerPath, facts.Language):
		return StereotypeEntry
	case isTestPath(lowerPath, facts.Language):
		return StereotypeTest
	case stem == "error" || stem == "errors" || stem == "exceptions" || stem == "apperr":
		return StereotypeError
	}

	if role, ok := signatureRole(facts.Imports); ok {
		return role
	}

	switch {
	case metrics.FanIn >= utilityFanIn && metrics.FanOut <= utilityMaxOut:
		return StereotypeUtility
	case metrics.FanOut >= serviceMinOut:
		return StereotypeService
	}

	words := splitIdentifier(stem)
	switch {
	case hasAnyWord(words, "parse", "parser", "lexer", "tokenizer", "scanner", "decoder"):
		return StereotypeParser
	case hasAnyWord(words, "format", "formatter", "render", "renderer", "printer", "view", "encoder"):
		return StereotypeFormatter
	case hasAnyWord(words, "util", "utils", "helper", "helpers", "common", "shared"):
		return StereotypeUtility
	case hasAnyWord(words, "types", "type", "model", "models", "schema", "entity", "entities", "dto"):
		return StereotypeEntity
	case hasAnyWord(words, "service", "services", "command", "commands", "manager", "controller", "orchestrator"):
		return StereotypeService
	}

	if len(facts.Exports) > 0 {
		return StereotypeDomain
	}
	return StereotypeUnknown
}

func hasAnyWord(words []string, candidates ...string) bool {
	for _, w := range words {
		if containsString(candidates, w) {
			return true
		}
	}
	return false
}
