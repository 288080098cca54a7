// Package npm computes everything ts-scaffold hands to the npm toolchain:
// the list of packages to install, the install arguments (with optional
// semver pins), the generated script table, and the rewritten package.json.
//
// All functions in this package are pure; running npm is the job of
// internal/toolchain.
package npm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

// BasePackages are installed into every project: Node typings, the
// parallel/sequential script runner, and the file-watching process runner.
var BasePackages = []string{"@types/node", "npm-run-all", "nodemon"}

// PluginHostPackage is the compiler wrapper that loads transformer plugins.
const PluginHostPackage = "ttypescript"

// expressPackages are added when the express option is selected.
var expressPackages = []string{"express", "@types/express"}

// ResolvePackages returns the ordered, de-duplicated list of packages to
// install for the selection:
//
//  1. the base packages
//  2. express and its typings, when selected
//  3. the plugin host once, then each selected transformer in catalog order
func ResolvePackages(sel model.Selection) []string {
	var pkgs []string
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				pkgs = append(pkgs, n)
			}
		}
	}

	add(BasePackages...)

	if sel.Has(model.OptionExpress) {
		add(expressPackages...)
	}

	if sel.RequiresPluginHost() {
		add(PluginHostPackage)
		for _, o := range sel.PluginOptions() {
			// Transformer options are published under their option name.
			add(o.String())
		}
	}

	return pkgs
}

// Pin is a validated version constraint for one package.
type Pin struct {
	// Constraint is the parsed semver constraint.
	Constraint *semver.Constraints

	// Range is the constraint rewritten in npm's range syntax, ready to be
	// appended to "name@".
	Range string
}

// ParsePins validates a map of package name to semver constraint, as read
// from the "pins" config key. Every constraint must parse and must be
// expressible as an npm range.
func ParsePins(raw map[string]string) (map[string]Pin, error) {
	pins := make(map[string]Pin, len(raw))

	// Sorted so that the first reported error does not depend on map order.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c, err := semver.NewConstraint(raw[name])
		if err != nil {
			return nil, fmt.Errorf("invalid version pin for %s: %q: %w", name, raw[name], err)
		}
		r, err := NPMRange(raw[name])
		if err != nil {
			return nil, fmt.Errorf("invalid version pin for %s: %q: %w", name, raw[name], err)
		}
		pins[name] = Pin{Constraint: c, Range: r}
	}
	return pins, nil
}

// NPMRange rewrites a semver constraint into npm's range syntax. Caret,
// tilde, hyphen, and comparison ranges are shared; comma-joined AND groups
// become space-joined. npm has no "!=" operator, so it is rejected.
func NPMRange(constraint string) (string, error) {
	if strings.Contains(constraint, "!=") {
		return "", errors.New(`npm version ranges do not support "!="`)
	}

	var groups []string
	for _, group := range strings.Split(constraint, "||") {
		var parts []string
		for _, part := range strings.Split(group, ",") {
			if part = strings.Join(strings.Fields(part), " "); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			return "", errors.New("empty version range")
		}
		groups = append(groups, strings.Join(parts, " "))
	}
	return strings.Join(groups, " || "), nil
}

// InstallArgs turns a package list into `npm install` arguments.
// A package with a pin is requested as "name@range", with the range in npm
// syntax; pins for packages not in the list are ignored.
func InstallArgs(pkgs []string, raw map[string]string) ([]string, error) {
	pins, err := ParsePins(raw)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(pkgs)+1)
	args = append(args, "install")
	for _, p := range pkgs {
		if pin, ok := pins[p]; ok {
			args = append(args, p+"@"+pin.Range)
			continue
		}
		args = append(args, p)
	}
	return args, nil
}
