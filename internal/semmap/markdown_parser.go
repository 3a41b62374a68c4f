package semmap

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	titleRE         = regexp.MustCompile(`^#\s+(.+?)\s*(?:—|--|-)\s*Semantic Map\s*$`)
	plainTitleRE    = regexp.MustCompile(`^#\s+(\S.*?)\s*$`)
	purposeRE       = regexp.MustCompile(`^(?:\*\*Purpose:\*\*|Purpose:)\s*(.*?)\s*$`)
	legendHeaderRE  = regexp.MustCompile(`(?i)^##\s+Legend\s*$`)
	legendItemRE    = regexp.MustCompile("^(?:[-*]\\s+)?`\\[([^\\]`]+)\\]`\\s*(.*?)\\s*$")
	layerPrefixRE   = regexp.MustCompile(`(?i)^##\s+Layer\b`)
	layerHeaderRE   = regexp.MustCompile(`^##\s+Layer\s+(\d+)\s*(?:(?:—|--|-|:)\s*(.*?))?\s*$`)
	entryTagRE      = regexp.MustCompile("^`?\\[([^\\]`\\s]+)\\]`?")
	metadataLineRE  = regexp.MustCompile(`(?i)^(?:→|->)?\s*(exports|touch)\s*:\s*(.*?)\s*$`)
	sectionHeaderRE = regexp.MustCompile(`^##(?:\s|$)`)
)

// LineIndex records where parsed elements appeared in the source text. Lines are 1-based.
type LineIndex struct {
	Title   int
	Layers  []int
	Entries [][]int
}

// EntryLine returns the line of the entry at the given layer and entry positions, or 0.
func (li *LineIndex) EntryLine(layer, entry int) int {
	if li == nil || layer >= len(li.Entries) || entry >= len(li.Entries[layer]) {
		return 0
	}
	return li.Entries[layer][entry]
}

// LayerLine returns the header line of the layer at the given position, or 0.
func (li *LineIndex) LayerLine(layer int) int {
	if li == nil || layer >= len(li.Layers) {
		return 0
	}
	return li.Layers[layer]
}

// ParseMarkdown parses the markdown form of a semantic map.
// Either a complete Document is returned or a *ParseError.
func ParseMarkdown(text string) (*Document, error) {
	doc, _, err := ParseMarkdownWithLines(text)
	return doc, err
}

type sectionKind int

const (
	sectionHeader sectionKind = iota
	sectionLegend
	sectionOther
	sectionLayer
)

type pendingEntry struct {
	line        int
	entry       FileEntry
	description []string
	exports     []string
	touch       []string
}

type markdownParser struct {
	doc         *Document
	lines       *LineIndex
	section     sectionKind
	seenLayer   bool
	seenPurpose bool
	current     *pendingEntry
}

// ParseMarkdownWithLines parses text and also reports the line of every element.
func ParseMarkdownWithLines(text string) (*Document, *LineIndex, error) {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	p := &markdownParser{
		doc:   &Document{},
		lines: &LineIndex{},
	}

	i := 0
	for i < len(raw) && strings.TrimSpace(raw[i]) == "" {
		i++
	}
	if i == len(raw) {
		return nil, nil, parseErrorf(1, ReasonMissingTitle, "document is empty")
	}
	title := strings.TrimSpace(raw[i])
	if strings.HasPrefix(title, "##") {
		return nil, nil, parseErrorf(i+1, ReasonMissingTitle, "expected '# <project> — Semantic Map'")
	}
	if m := titleRE.FindStringSubmatch(title); m != nil {
		p.doc.ProjectName = strings.TrimSpace(m[1])
	} else if m := plainTitleRE.FindStringSubmatch(title); m != nil {
		p.doc.ProjectName = m[1]
	} else {
		return nil, nil, parseErrorf(i+1, ReasonMissingTitle, "expected '# <project> — Semantic Map'")
	}
	p.lines.Title = i + 1

	for i++; i < len(raw); i++ {
		if err := p.parseLine(i+1, strings.TrimSpace(raw[i])); err != nil {
			return nil, nil, err
		}
	}
	if err := p.closeEntry(); err != nil {
		return nil, nil, err
	}
	return p.doc, p.lines, nil
}

func (p *markdownParser) parseLine(lineNo int, line string) error {
	if line == "" {
		return p.closeEntry()
	}

	// The line right after an entry header is always its description, whatever it starts with.
	if p.current != nil && len(p.current.description) == 0 {
		p.current.description = append(p.current.description, line)
		return nil
	}

	if sectionHeaderRE.MatchString(line) {
		if err := p.closeEntry(); err != nil {
			return err
		}
		return p.parseSectionHeader(lineNo, line)
	}

	switch p.section {
	case sectionLayer:
		return p.parseLayerLine(lineNo, line)
	case sectionLegend:
		if m := legendItemRE.FindStringSubmatch(line); m != nil {
			p.doc.Legend = append(p.doc.Legend, LegendEntry{Tag: m[1], Definition: m[2]})
			return nil
		}
	}

	if !p.seenPurpose {
		if m := purposeRE.FindStringSubmatch(line); m != nil {
			p.doc.Purpose = m[1]
			p.seenPurpose = true
		}
	}
	return nil
}

func (p *markdownParser) parseSectionHeader(lineNo int, line string) error {
	switch {
	case layerPrefixRE.MatchString(line):
		m := layerHeaderRE.FindStringSubmatch(line)
		if m == nil {
			return parseErrorf(lineNo, ReasonMalformedLayerHeader, "expected '## Layer <N> — <Name>', got %q", line)
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			return parseErrorf(lineNo, ReasonMalformedLayerHeader, "layer number %q: %v", m[1], err)
		}
		p.doc.Layers = append(p.doc.Layers, Layer{Number: number, Name: m[2]})
		p.lines.Layers = append(p.lines.Layers, lineNo)
		p.lines.Entries = append(p.lines.Entries, nil)
		p.section = sectionLayer
		p.seenLayer = true
	case p.seenLayer:
		return parseErrorf(lineNo, ReasonUnexpectedSection, "%q after layer sections", line)
	case legendHeaderRE.MatchString(line):
		p.section = sectionLegend
	default:
		p.section = sectionOther
	}
	return nil
}

func (p *markdownParser) parseLayerLine(lineNo int, line string) error {
	if strings.HasPrefix(line, "`") {
		if err := p.closeEntry(); err != nil {
			return err
		}
		entry, err := parseEntryHeader(lineNo, line)
		if err != nil {
			return err
		}
		p.current = &pendingEntry{line: lineNo, entry: entry}
		return nil
	}

	if p.current == nil {
		return parseErrorf(lineNo, ReasonUnexpectedContent, "text outside an entry: %q", line)
	}

	if m := metadataLineRE.FindStringSubmatch(line); m != nil {
		switch strings.ToLower(m[1]) {
		case "exports":
			p.current.exports = append(p.current.exports, splitExports(m[2])...)
		case "touch":
			if m[2] != "" {
				p.current.touch = append(p.current.touch, m[2])
			}
		}
		return nil
	}

	p.current.description = append(p.current.description, line)
	return nil
}

func (p *markdownParser) closeEntry() error {
	pending := p.current
	if pending == nil {
		return nil
	}
	p.current = nil

	if len(pending.description) == 0 {
		return parseErrorf(pending.line, ReasonMissingDescription, "entry %q has no description", pending.entry.Path)
	}

	entry := pending.entry
	entry.What, entry.Why = SplitDescription(strings.Join(pending.description, " "))
	entry.Exports = sortedSet(pending.exports)
	entry.Touch = strings.Join(pending.touch, " ")

	last := len(p.doc.Layers) - 1
	p.doc.Layers[last].Entries = append(p.doc.Layers[last].Entries, entry)
	p.lines.Entries[last] = append(p.lines.Entries[last], pending.line)
	return nil
}

func parseEntryHeader(lineNo int, line string) (FileEntry, error) {
	end := strings.Index(line[1:], "`")
	if end < 0 {
		return FileEntry{}, parseErrorf(lineNo, ReasonMalformedEntry, "unterminated path in %q", line)
	}
	path := strings.TrimSpace(line[1 : end+1])
	if path == "" {
		return FileEntry{}, parseErrorf(lineNo, ReasonMalformedEntry, "empty path")
	}

	var tags []string
	rest := strings.TrimSpace(line[end+2:])
	for rest != "" {
		m := entryTagRE.FindStringSubmatch(rest)
		if m == nil {
			return FileEntry{}, parseErrorf(lineNo, ReasonMalformedEntry, "unexpected text after path: %q", rest)
		}
		tags = append(tags, m[1])
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	return FileEntry{Path: path, Tags: sortedSet(tags)}, nil
}

func splitExports(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.Trim(strings.TrimSpace(part), "`")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// SplitDescription splits a description into its WHAT sentence (up to and
// including the first period followed by whitespace) and the WHY remainder.
func SplitDescription(text string) (string, string) {
	text = strings.TrimSpace(text)
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '.' && (text[i+1] == ' ' || text[i+1] == '\t') {
			return text[:i+1], strings.TrimSpace(text[i+1:])
		}
	}
	return text, ""
}
