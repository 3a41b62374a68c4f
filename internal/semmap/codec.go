package semmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec converts a Document to and from one serialized form.
type Codec interface {
	Name() string
	Extension() string
	Encode(doc *Document) ([]byte, error)
	Decode(data []byte) (*Document, error)
}

// MarkdownCodec is the canonical, human-edited form.
type MarkdownCodec struct{}

func (MarkdownCodec) Name() string      { return "md" }
func (MarkdownCodec) Extension() string { return ".md" }

func (MarkdownCodec) Encode(doc *Document) ([]byte, error) {
	return []byte(FormatMarkdown(doc)), nil
}

func (MarkdownCodec) Decode(data []byte) (*Document, error) {
	return ParseMarkdown(string(data))
}

// JSONCodec serializes the document as indented JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return ".json" }

func (JSONCodec) Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func (JSONCodec) Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return doc.Clone(), nil
}

// YAMLCodec serializes the document as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Name() string      { return "yaml" }
func (YAMLCodec) Extension() string { return ".yaml" }

func (YAMLCodec) Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.Clone(), nil
}

// TOMLCodec serializes the document as TOML.
type TOMLCodec struct{}

func (TOMLCodec) Name() string      { return "toml" }
func (TOMLCodec) Extension() string { return ".toml" }

func (TOMLCodec) Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

func (TOMLCodec) Decode(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return doc.Clone(), nil
}

var codecs = map[string]Codec{
	"md":   MarkdownCodec{},
	"json": JSONCodec{},
	"yaml": YAMLCodec{},
	"toml": TOMLCodec{},
}

// CodecFor returns the codec registered under name. Common aliases are accepted.
func CodecFor(name string) (Codec, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	switch normalized {
	case "", "markdown":
		normalized = "md"
	case "yml":
		normalized = "yaml"
	}
	codec, ok := codecs[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(CodecNames(), ", "))
	}
	return codec, nil
}

// CodecNames lists the registered codec names, sorted.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodecForPath picks a codec from a document's file extension. Files whose
// extension names no codec are treated as markdown.
func CodecForPath(p string) Codec {
	if codec, err := CodecFor(path.Ext(p)); err == nil {
		return codec
	}
	return MarkdownCodec{}
}
