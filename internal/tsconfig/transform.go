package tsconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/schema"
)

// Fixed values written into compilerOptions.
const (
	TargetValue  = "es2019"
	OutDirValue  = "./lib"
	RootDirValue = "./src"
)

// compilerOptionsKey is the top-level object that receives every edit.
const compilerOptionsKey = "compilerOptions"

// ErrInvalidConfig is returned when the input or the rewritten document is
// not a valid tsconfig. Callers should not write the result in that case.
var ErrInvalidConfig = errors.New("invalid tsconfig.json")

// lineRule replaces a whole line when its trimmed content starts with prefix.
type lineRule struct {
	prefix string
	key    string
	value  string
}

// lineRules are applied to every line of the document, first match wins.
// The commented prefixes match the disabled entries tsc --init emits.
var lineRules = []lineRule{
	{prefix: `"target":`, key: "target", value: TargetValue},
	{prefix: `// "outDir":`, key: "outDir", value: OutDirValue},
	{prefix: `// "rootDir":`, key: "rootDir", value: RootDirValue},
}

// Result is the outcome of Transform.
type Result struct {
	// Lines is the rewritten document.
	Lines []string

	// Plugins lists the transformer module paths written to
	// compilerOptions.plugins, in catalog order.
	Plugins []string

	// Structured is true when the in-place insert was not possible and the
	// document was re-serialized from a parsed map (comments are lost).
	Structured bool

	// Warnings are non-fatal observations, e.g. an active outDir that
	// points somewhere other than ./lib.
	Warnings []string
}

// Bytes joins the rewritten lines back into file contents.
func (r *Result) Bytes() []byte {
	return []byte(strings.Join(r.Lines, "\n"))
}

// Transform rewrites the lines of a generated tsconfig.json for the given
// selection.
//
// The input is never modified. The returned document has been parsed and
// schema-validated; a document that fails either check yields an error
// wrapping ErrInvalidConfig.
func Transform(sel model.Selection, lines []string) (*Result, error) {
	result := &Result{
		Lines:   ApplyLineRules(lines),
		Plugins: PluginTransforms(sel),
	}

	doc, err := parse(result.Lines)
	if err != nil {
		return nil, err
	}

	co, hasCompilerOptions := doc[compilerOptionsKey].(map[string]interface{})
	if _, present := doc[compilerOptionsKey]; present && !hasCompilerOptions {
		return nil, fmt.Errorf("%w: %q is not an object", ErrInvalidConfig, compilerOptionsKey)
	}

	// Keys the line rules could not place (no matching line in the input)
	// are injected together with the plugin list.
	missing := missingKeys(co)
	result.Warnings = append(result.Warnings, conflictingKeys(co)...)

	needPlugins := len(result.Plugins) > 0
	if len(missing) > 0 || needPlugins {
		_, hasPlugins := co["plugins"]
		inserted := false
		if hasCompilerOptions && !(needPlugins && hasPlugins) {
			block := injectedLines(missing, result.Plugins)
			result.Lines, inserted = insertIntoObject(result.Lines, compilerOptionsKey, block)
		}
		if !inserted {
			result.Lines, err = structuredMerge(doc, missing, result.Plugins)
			if err != nil {
				return nil, err
			}
			result.Structured = true
			result.Warnings = append(result.Warnings,
				"compilerOptions could not be edited in place; tsconfig.json was re-serialized without comments")
		}
	}

	if err := verify(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyLineRules returns a copy of lines with the target, outDir and rootDir
// rules applied. Lines that match no rule are returned unchanged.
func ApplyLineRules(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = applyRules(line)
	}
	return out
}

func applyRules(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, r := range lineRules {
		if !strings.HasPrefix(trimmed, r.prefix) {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		replaced := indent + entry(r.key, r.value)
		// Keep CRLF files CRLF.
		if strings.HasSuffix(line, "\r") {
			replaced += "\r"
		}
		return replaced
	}
	return line
}

// entry renders one `"key": "value",` member.
func entry(key, value string) string {
	v, _ := json.Marshal(value)
	return fmt.Sprintf("%q: %s,", key, v)
}

// PluginTransforms returns the transformer module paths for the selected
// plugin options, in catalog order.
func PluginTransforms(sel model.Selection) []string {
	var out []string
	for _, o := range sel.PluginOptions() {
		out = append(out, o.TransformPath())
	}
	return out
}

// pluginEntry is one element of compilerOptions.plugins.
type pluginEntry struct {
	Transform string `json:"transform"`
}

// injectedLines renders the members inserted at the top of compilerOptions,
// without indentation. Missing rule keys come first, then the plugin list.
func injectedLines(missing []lineRule, plugins []string) []string {
	var out []string
	for _, r := range missing {
		out = append(out, entry(r.key, r.value))
	}
	if len(plugins) == 0 {
		return out
	}

	out = append(out, `"plugins": [`)
	for i, p := range plugins {
		data, _ := json.Marshal(pluginEntry{Transform: p})
		line := "  " + string(data)
		if i < len(plugins)-1 {
			line += ","
		}
		out = append(out, line)
	}
	return append(out, "],")
}

func missingKeys(co map[string]interface{}) []lineRule {
	var out []lineRule
	for _, r := range lineRules {
		if _, ok := co[r.key]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// conflictingKeys reports active keys whose value differs from the one the
// scaffolder would have written. They are left alone.
func conflictingKeys(co map[string]interface{}) []string {
	var out []string
	for _, r := range lineRules {
		v, ok := co[r.key]
		if !ok {
			continue
		}
		if s, isString := v.(string); !isString || !strings.EqualFold(s, r.value) {
			out = append(out, fmt.Sprintf("compilerOptions.%s is already set to %v; expected %q", r.key, v, r.value))
		}
	}
	return out
}

// parse strips JSONC comments and trailing commas and decodes the document.
func parse(lines []string) (map[string]interface{}, error) {
	clean := jsonc.ToJSON([]byte(strings.Join(lines, "\n")))

	var doc map[string]interface{}
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidConfig)
	}
	return doc, nil
}

// structuredMerge sets the missing keys and plugins on a parsed document and
// re-serializes it with two-space indentation. Existing plugin entries are
// kept; transforms already listed are not added twice.
func structuredMerge(doc map[string]interface{}, missing []lineRule, plugins []string) ([]string, error) {
	co, ok := doc[compilerOptionsKey].(map[string]interface{})
	if !ok {
		co = make(map[string]interface{})
	}

	for _, r := range missing {
		co[r.key] = r.value
	}

	if len(plugins) > 0 {
		var list []interface{}
		if existing, ok := co["plugins"].([]interface{}); ok {
			list = existing
		}
		for _, p := range plugins {
			if !hasTransform(list, p) {
				list = append(list, map[string]interface{}{"transform": p})
			}
		}
		co["plugins"] = list
	}

	doc[compilerOptionsKey] = co

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize tsconfig.json: %w", err)
	}
	return strings.Split(string(data)+"\n", "\n"), nil
}

func hasTransform(list []interface{}, transform string) bool {
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok && m["transform"] == transform {
			return true
		}
	}
	return false
}

// verify parses the rewritten document, checks the plugin list matches what
// was requested, and validates it against the tsconfig schema.
func verify(result *Result) error {
	clean := jsonc.ToJSON(result.Bytes())

	var doc struct {
		CompilerOptions struct {
			Plugins []pluginEntry `json:"plugins"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(clean, &doc); err != nil {
		return fmt.Errorf("%w: rewritten document does not parse: %v", ErrInvalidConfig, err)
	}

	for _, want := range result.Plugins {
		found := false
		for _, p := range doc.CompilerOptions.Plugins {
			if p.Transform == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: plugin %q missing from compilerOptions.plugins", ErrInvalidConfig, want)
		}
	}

	validation, err := schema.Validate(schema.TSConfig, clean)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !validation.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, validation.Summary())
	}
	return nil
}
