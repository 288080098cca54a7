package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Option is a selectable scaffolding feature flag. Options are opaque
// identifiers; their only attribute is membership in the catalog.
type Option string

const (
	// OptionGit appends ignore rules and initializes a Git repository.
	OptionGit Option = "git"

	// OptionExpress installs the express web framework and its typings.
	OptionExpress Option = "express"

	// OptionTypescriptIs installs the typescript-is runtime type-check transformer.
	OptionTypescriptIs Option = "typescript-is"

	// OptionTransformerKeys installs the ts-transformer-keys transformer.
	OptionTransformerKeys Option = "ts-transformer-keys"

	// OptionTransformerEnumerate installs the ts-transformer-enumerate transformer.
	OptionTransformerEnumerate Option = "ts-transformer-enumerate"
)

// catalog is the closed, ordered set of valid options. Every function that
// iterates over options walks this slice so that output order never depends
// on the order in which a user ticked checkboxes or typed flag values.
var catalog = []Option{
	OptionGit,
	OptionExpress,
	OptionTypescriptIs,
	OptionTransformerKeys,
	OptionTransformerEnumerate,
}

// ErrUnknownOption is returned when a string does not name a catalog option.
var ErrUnknownOption = errors.New("unknown option")

// Catalog returns the ordered list of all valid options.
// The returned slice is a copy and may be modified by the caller.
func Catalog() []Option {
	out := make([]Option, len(catalog))
	copy(out, catalog)
	return out
}

// String returns the string representation of Option.
func (o Option) String() string {
	return string(o)
}

// IsValid reports whether the option is a member of the catalog.
func (o Option) IsValid() bool {
	for _, c := range catalog {
		if c == o {
			return true
		}
	}
	return false
}

// RequiresPluginHost reports whether the option is a compile-time
// transformer that only works under the ttypescript compiler wrapper.
func (o Option) RequiresPluginHost() bool {
	switch o {
	case OptionTypescriptIs, OptionTransformerKeys, OptionTransformerEnumerate:
		return true
	default:
		return false
	}
}

// TransformPath returns the module path that tsconfig.json's plugin list
// must reference for a transformer option. It is empty for options that
// do not require the plugin host.
func (o Option) TransformPath() string {
	switch o {
	case OptionTypescriptIs:
		return "typescript-is/lib/transform-inline/transformer"
	case OptionTransformerKeys:
		return "ts-transformer-keys/transformer"
	case OptionTransformerEnumerate:
		return "ts-transformer-enumerate/transformer"
	default:
		return ""
	}
}

// Description returns a one-line summary shown next to the option in the
// interactive multi-select prompt.
func (o Option) Description() string {
	switch o {
	case OptionGit:
		return "initialize a Git repository with a .gitignore"
	case OptionExpress:
		return "add the express web framework"
	case OptionTypescriptIs:
		return "runtime type checks generated from TypeScript types"
	case OptionTransformerKeys:
		return "keys<T>() for interface property names"
	case OptionTransformerEnumerate:
		return "enumerate<T>() for string literal unions"
	default:
		return ""
	}
}

// ParseOption converts a string to an Option. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseOption(s string) (Option, error) {
	opt := Option(strings.ToLower(strings.TrimSpace(s)))
	if !opt.IsValid() {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownOption, s, strings.Join(optionNames(), ", "))
	}
	return opt, nil
}

// ParseOptions parses a list of option strings into a Selection.
// Empty strings are skipped so that a flag value like "git," works.
func ParseOptions(values []string) (Selection, error) {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		opt, err := ParseOption(v)
		if err != nil {
			return Selection{}, err
		}
		opts = append(opts, opt)
	}
	return NewSelection(opts...)
}

func optionNames() []string {
	names := make([]string, len(catalog))
	for i, o := range catalog {
		names[i] = o.String()
	}
	return names
}

// Selection is the set of options chosen for one scaffold run.
// It is immutable once built; the zero value is the empty selection.
//
// Membership is stored as a set so duplicates collapse, while every
// accessor returns options in catalog order.
type Selection struct {
	set map[Option]struct{}
}

// NewSelection builds a Selection from the given options.
// Duplicates are collapsed. An option outside the catalog is rejected.
func NewSelection(opts ...Option) (Selection, error) {
	set := make(map[Option]struct{}, len(opts))
	for _, o := range opts {
		if !o.IsValid() {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownOption, string(o))
		}
		set[o] = struct{}{}
	}
	return Selection{set: set}, nil
}

// MustSelection is like NewSelection but panics on an unknown option.
// It is intended for constants and tests.
func MustSelection(opts ...Option) Selection {
	sel, err := NewSelection(opts...)
	if err != nil {
		panic(err)
	}
	return sel
}

// Has reports whether the option is selected.
func (s Selection) Has(o Option) bool {
	_, ok := s.set[o]
	return ok
}

// Len returns the number of selected options.
func (s Selection) Len() int {
	return len(s.set)
}

// Options returns the selected options in catalog order.
func (s Selection) Options() []Option {
	var out []Option
	for _, o := range catalog {
		if s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// PluginOptions returns the selected options that need the plugin host,
// in catalog order.
func (s Selection) PluginOptions() []Option {
	var out []Option
	for _, o := range catalog {
		if o.RequiresPluginHost() && s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// RequiresPluginHost reports whether any selected option needs ttypescript.
func (s Selection) RequiresPluginHost() bool {
	return len(s.PluginOptions()) > 0
}

// Strings returns the selected option identifiers in catalog order.
func (s Selection) Strings() []string {
	opts := s.Options()
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.String()
	}
	return out
}

// String renders the selection as a comma-separated list, or "none".
func (s Selection) String() string {
	if s.Len() == 0 {
		return "none"
	}
	return strings.Join(s.Strings(), ",")
}

// CurrentDir is the project name that scaffolds into the working directory.
const CurrentDir = "."

// projectNameRegex matches folder names accepted for a new project:
// lowercase letters, digits, underscores and hyphens. These are also
// valid npm package names, which npm init derives from the folder.
var projectNameRegex = regexp.MustCompile(`^[a-z0-9_\-]+$`)

// ValidateProjectName checks that name is either "." or a valid folder name.
func ValidateProjectName(name string) error {
	if name == CurrentDir {
		return nil
	}
	if name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if !projectNameRegex.MatchString(name) {
		return fmt.Errorf("invalid project name %q: use lowercase letters, digits, '_' and '-', or '.' for the current directory", name)
	}
	return nil
}
