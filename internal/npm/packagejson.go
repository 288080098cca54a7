package npm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shinji-kodama/ts-scaffold/internal/schema"
)

// PackageFileName is the package metadata document npm init creates.
const PackageFileName = "package.json"

// ErrInvalidPackage is returned when package.json cannot be parsed or the
// rewritten document fails validation.
var ErrInvalidPackage = errors.New("invalid package.json")

// member is one top-level field of package.json, kept as raw JSON so that
// fields the scaffolder does not own are written back untouched.
type member struct {
	// key is the field name as it appeared in the document.
	key string

	// value is the field's JSON value, not re-encoded.
	value json.RawMessage
}

// ApplyScripts replaces the "scripts" field of a package.json document with
// the given table. Other top-level fields keep their order and values; a
// missing "scripts" field is appended. The output is indented with two
// spaces, ends with a newline, and has been validated against the
// package.json schema.
func ApplyScripts(raw []byte, table ScriptTable) ([]byte, error) {
	members, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	scripts, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scripts: %w", err)
	}

	replaced := false
	for i := range members {
		if members[i].key == "scripts" {
			members[i].value = scripts
			replaced = true
		}
	}
	if !replaced {
		members = append(members, member{key: "scripts", value: scripts})
	}

	compact, err := encodeObject(members)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	out.WriteByte('\n')

	result, err := schema.Validate(schema.PackageJSON, out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPackage, result.Summary())
	}

	return out.Bytes(), nil
}

// decodeObject splits a JSON object into its top-level members in
// document order.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var members []member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		members = append(members, member{key: key, value: value})
	}

	// Consume the closing brace so truncated input is rejected.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

// encodeObject writes members back as a compact JSON object in slice order.
func encodeObject(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
