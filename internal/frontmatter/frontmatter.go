package frontmatter

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style captures the newline convention of a document.
type Style struct {
	Newline string
}

// Split separates a `---` delimited header from the body.
//
// If the document does not start with a header delimiter, had is false and
// body is the full input. The header ends at the first line made of three or
// more dashes, optionally followed by spaces or tabs; that line may also be
// the last line of the file without a trailing newline.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := []byte(style.Newline)
	open := append([]byte("---"), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]
	for pos := 0; pos <= len(rest); {
		line, next := rest[pos:], len(rest)
		if i := bytes.Index(rest[pos:], nl); i >= 0 {
			line, next = rest[pos:pos+i], pos+i+len(nl)
		}
		if isClosingDelimiter(line) {
			return rest[:pos], rest[next:], true, style, nil
		}
		if next == len(rest) {
			break
		}
		pos = next
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// isClosingDelimiter reports whether line is a run of at least three dashes
// with nothing but trailing blanks after it.
func isClosingDelimiter(line []byte) bool {
	line = bytes.TrimRight(line, " \t\r")
	if len(line) < 3 {
		return false
	}
	for _, c := range line {
		if c != '-' {
			return false
		}
	}
	return true
}

// Lookup returns the value of the first `key: value` line whose key matches
// key case-insensitively. Surrounding quotes are stripped from the value.
func Lookup(frontmatter []byte, key string) (string, bool) {
	for _, line := range strings.Split(string(frontmatter), "\n") {
		k, v, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), key) {
			continue
		}
		return strings.Trim(strings.TrimSpace(v), `"'`), true
	}
	return "", false
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a header
// delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{Newline: newline}
}
