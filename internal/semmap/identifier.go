package semmap

import (
	"strings"
	"unicode"
)

// verbTemplate turns an identifier's leading verb into a sentence about the remaining words.
type verbTemplate struct {
	verbs  []string
	format func(rest string) string
}

var verbTemplates = []verbTemplate{
	{verbs: []string{"get", "fetch", "load", "read", "retrieve"}, format: func(rest string) string { return "Gets the " + rest + "." }},
	{verbs: []string{"set", "update", "write", "save", "store"}, format: func(rest string) string { return "Sets the " + rest + "." }},
	{verbs: []string{"is", "has", "can", "should", "will"}, format: func(rest string) string { return "Checks if " + rest + "." }},
	{verbs: []string{"create", "new", "build", "make", "init"}, format: func(rest string) string { return "Creates " + rest + "." }},
	{verbs: []string{"delete", "remove", "drop", "clear"}, format: func(rest string) string { return "Removes " + rest + "." }},
	{verbs: []string{"parse", "extract", "decode"}, format: func(rest string) string { return "Parses " + rest + "." }},
	{verbs: []string{"validate", "check", "verify"}, format: func(rest string) string { return "Validates " + rest + "." }},
	{verbs: []string{"render", "format", "display", "print"}, format: func(rest string) string { return "Formats " + rest + " for output." }},
	{verbs: []string{"handle", "process", "run", "exec"}, format: func(rest string) string { return "Processes " + rest + "." }},
	{verbs: []string{"convert", "transform", "map"}, format: func(rest string) string { return "Converts " + rest + "." }},
	{verbs: []string{"find", "search", "lookup", "query"}, format: func(rest string) string { return "Finds " + rest + "." }},
	{verbs: []string{"test", "spec"}, format: func(rest string) string { return "Tests " + rest + "." }},
}

// splitIdentifier breaks an identifier into lower-case words. Underscores,
// hyphens and dots separate words; otherwise camelCase boundaries do, with
// acronym runs kept together ("HTTPServer" is "http", "server").
func splitIdentifier(name string) []string {
	var words []string
	for _, chunk := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	}) {
		words = append(words, splitCamel(chunk)...)
	}
	return words
}

func splitCamel(chunk string) []string {
	runes := []rune(chunk)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsDigit(prev) != unicode.IsDigit(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			boundary = true
		}
		if boundary {
			words = append(words, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, strings.ToLower(string(runes[start:])))
	}
	return words
}

// describeIdentifier builds a WHAT sentence from an identifier's words.
func describeIdentifier(name string) (string, bool) {
	words := splitIdentifier(name)
	if len(words) == 0 {
		return "", false
	}
	verb, rest := words[0], strings.Join(words[1:], " ")
	if rest == "" {
		return "Implements " + verb + " functionality.", true
	}
	for _, tmpl := range verbTemplates {
		if containsString(tmpl.verbs, verb) {
			return tmpl.format(rest), true
		}
	}
	return "Implements " + verb + " " + rest + ".", true
}

// describeTestSubject builds the WHAT sentence of a test file from its stem.
func describeTestSubject(stem string) string {
	var subject []string
	for _, word := range splitIdentifier(stem) {
		if word == "test" || word == "tests" || word == "spec" {
			continue
		}
		subject = append(subject, word)
	}
	if len(subject) == 0 {
		return "Tests the package."
	}
	return "Tests " + strings.Join(subject, " ") + "."
}
