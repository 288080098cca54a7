package tsconfig

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/jsonc"
)

// findObjectBrace returns the byte offset of the opening brace of the
// top-level member key, or -1 when the document has no such member or its
// value is not an object.
//
// clean must be comment-free JSON with the same offsets as the source
// text, which is what jsonc.ToJSON produces.
func findObjectBrace(clean []byte, key string) int {
	dec := json.NewDecoder(bytes.NewReader(clean))

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return -1
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return -1
		}
		name, _ := keyTok.(string)

		if name != key {
			// Skip the whole value, whatever its type.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return -1
			}
			continue
		}

		valueTok, err := dec.Token()
		if err != nil || valueTok != json.Delim('{') {
			return -1
		}
		// InputOffset points just past the token that was returned.
		return int(dec.InputOffset()) - 1
	}
	return -1
}

// insertIntoObject inserts block as the first members of the top-level
// object named key. Block lines are indented one level deeper than the line
// holding the object's opening brace.
//
// It reports false, leaving lines untouched, when the object cannot be
// found, when its opening brace is not the last thing on its line (for
// example `"compilerOptions": {"strict": true}`), or when a block comment
// opened after the brace runs onto the next line. A line-based insert would
// land outside the object or inside the comment in those cases.
func insertIntoObject(lines []string, key string, block []string) ([]string, bool) {
	if len(block) == 0 {
		return lines, true
	}

	raw := []byte(strings.Join(lines, "\n"))
	clean := jsonc.ToJSON(raw)
	offset := findObjectBrace(clean, key)
	if offset < 0 {
		return lines, false
	}

	lineIdx := bytes.Count(clean[:offset], []byte("\n"))
	if len(bytes.TrimSpace(restOfLine(clean, offset+1))) > 0 {
		return lines, false
	}
	if opensBlockComment(restOfLine(raw, offset+1)) {
		return lines, false
	}

	braceLine := lines[lineIdx]
	indent := braceLine[:len(braceLine)-len(strings.TrimLeft(braceLine, " \t"))] + "  "
	eol := ""
	if strings.HasSuffix(braceLine, "\r") {
		eol = "\r"
	}

	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:lineIdx+1]...)
	for _, b := range block {
		out = append(out, indent+b+eol)
	}
	out = append(out, lines[lineIdx+1:]...)
	return out, true
}

// restOfLine returns text from offset up to, not including, the next newline.
func restOfLine(text []byte, offset int) []byte {
	rest := text[offset:]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return rest
}

// opensBlockComment reports whether line starts a /* comment it does not
// close. line must hold only comments and whitespace.
func opensBlockComment(line []byte) bool {
	start := bytes.LastIndex(line, []byte("/*"))
	if start < 0 {
		return false
	}
	return !bytes.Contains(line[start+2:], []byte("*/"))
}
