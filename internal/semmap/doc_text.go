package semmap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSentenceLen = 160

// firstSentence collapses a documentation block to its first sentence.
// The result always ends in a period so that it can be stored as a WHAT clause.
func firstSentence(text string) string {
	text = plainDocText(strings.Join(strings.Fields(text), " "))
	if text == "" {
		return ""
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' {
				return closeSentence(text[:i])
			}
		}
	}

	if len(text) > maxSentenceLen {
		cut := strings.LastIndex(text[:maxSentenceLen], " ")
		if cut <= 0 {
			cut = maxSentenceLen
		}
		text = text[:cut]
	}
	return closeSentence(text)
}

// plainDocText strips markup that the markdown parser would read as document
// structure, such as code spans and leading heading or metadata markers.
func plainDocText(text string) string {
	text = strings.ReplaceAll(text, "`", "")
	labeled := false
	for {
		trimmed := strings.TrimLeft(text, "#> \t")
		if m := metadataLineRE.FindStringSubmatch(trimmed); m != nil {
			trimmed = m[2]
			labeled = true
		}
		if trimmed == text {
			break
		}
		text = trimmed
	}
	r, size := utf8.DecodeRuneInString(text)
	if !labeled || !unicode.IsLower(r) {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

func closeSentence(text string) string {
	text = strings.TrimRight(strings.TrimSpace(text), ".!?:;,-")
	if text == "" {
		return ""
	}
	return text + "."
}

// commentBody strips a comment marker and the decoration commonly found on
// block comment continuation lines.
func commentBody(line string, markers ...string) string {
	line = strings.TrimSpace(line)
	for _, marker := range markers {
		if strings.HasPrefix(line, marker) {
			line = strings.TrimPrefix(line, marker)
			break
		}
	}
	line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
	return strings.TrimSpace(line)
}

// joinDoc turns collected comment lines into a first sentence, reporting whether one was found.
func joinDoc(lines []string) (string, bool) {
	sentence := firstSentence(strings.Join(lines, " "))
	return sentence, sentence != ""
}
