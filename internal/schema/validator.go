// Package schema validates the JSON documents ts-scaffold generates
// (tsconfig.json and package.json) against embedded JSON Schemas.
//
// The scaffolder rewrites both documents as text; validation is the step
// that proves the rewritten text is still well-formed structured data
// before it is written to disk.
package schema

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Document identifies which embedded schema a document is validated against.
type Document string

const (
	// TSConfig is the schema for a rewritten tsconfig.json.
	TSConfig Document = "tsconfig.schema.json"

	// PackageJSON is the schema for a package.json with generated scripts.
	PackageJSON Document = "package.schema.json"
)

var (
	compiled    map[Document]*jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
	printer     = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/compilerOptions/plugins/0")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

// String formats the issue as "path: message".
func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Summary joins all issues into one line for error messages.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// compileAll compiles every embedded schema once.
func compileAll() (map[Document]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		docs := []Document{TSConfig, PackageJSON}

		for _, d := range docs {
			raw, err := schemaFS.ReadFile(path.Join("schemas", string(d)))
			if err != nil {
				compileErr = fmt.Errorf("reading schema %s: %w", d, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling schema %s: %w", d, err)
				return
			}
			if err := c.AddResource(string(d), doc); err != nil {
				compileErr = fmt.Errorf("adding schema resource %s: %w", d, err)
				return
			}
		}

		out := make(map[Document]*jsonschema.Schema, len(docs))
		for _, d := range docs {
			s, err := c.Compile(string(d))
			if err != nil {
				compileErr = fmt.Errorf("compiling schema %s: %w", d, err)
				return
			}
			out[d] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// Validate checks plain JSON bytes (comments already stripped) against the
// schema for doc. The error return is for malformed JSON or schema
// compilation failures; schema violations are reported in the result.
func Validate(doc Document, jsonData []byte) (*ValidationResult, error) {
	schemas, err := compileAll()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	s, ok := schemas[doc]
	if !ok {
		return nil, fmt.Errorf("unknown schema document %q", doc)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", strings.TrimSuffix(string(doc), ".schema.json"), err)
	}

	err = s.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf errors
// with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectValidationIssues(cause, issues)
		}
		return
	}

	loc := ""
	if len(ve.InstanceLocation) > 0 {
		loc = "/" + strings.Join(ve.InstanceLocation, "/")
	}

	keyword := ""
	msg := ""
	if ve.ErrorKind != nil {
		if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
			keyword = kwPath[len(kwPath)-1]
		}
		msg = ve.ErrorKind.LocalizedString(printer)
	}

	// Container keywords only say "a subschema failed"; their causes carry the detail.
	if keyword == "allOf" || keyword == "$ref" || keyword == "" {
		return
	}

	*issues = append(*issues, ValidationIssue{
		Path:    loc,
		Message: msg,
		Keyword: keyword,
	})
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
