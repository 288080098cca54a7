package npm

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

// Script is one named entry of package.json "scripts".
type Script struct {
	// Name is the alias passed to `npm run`, e.g. "build".
	Name string `json:"name" yaml:"name"`

	// Command is the shell command npm runs for the alias.
	Command string `json:"command" yaml:"command"`
}

// ScriptTable is the ordered set of generated scripts. It marshals to a
// JSON object whose keys keep the table order.
type ScriptTable []Script

// Script aliases, in the order they are written.
const (
	// ScriptBuild compiles src/ into lib/ once.
	ScriptBuild = "build"

	// ScriptBuildWatch recompiles on every source change.
	ScriptBuildWatch = "build-watch"

	// ScriptRun starts the compiled entry point.
	ScriptRun = "run"

	// ScriptRunWatch restarts the compiled entry point when lib/ changes.
	ScriptRunWatch = "run-watch"

	// ScriptOnce builds and then runs, sequentially. The scaffold uses it
	// as its smoke test.
	ScriptOnce = "once"

	// ScriptWatch runs build-watch and run-watch in parallel.
	ScriptWatch = "watch"
)

// BuildScripts returns the script table for a selection. Only the build
// commands depend on the selection: ttsc replaces tsc when any transformer
// plugin is selected.
func BuildScripts(sel model.Selection) ScriptTable {
	compiler := "tsc"
	if sel.RequiresPluginHost() {
		compiler = "ttsc"
	}

	return ScriptTable{
		{Name: ScriptBuild, Command: compiler},
		{Name: ScriptBuildWatch, Command: compiler + " -w"},
		{Name: ScriptRun, Command: "node lib/index.js"},
		{Name: ScriptRunWatch, Command: "nodemon --watch lib lib/index.js"},
		{Name: ScriptOnce, Command: "npm-run-all -s build run"},
		{Name: ScriptWatch, Command: "npm-run-all -p build-watch run-watch"},
	}
}

// Get returns the command for an alias.
func (t ScriptTable) Get(name string) (string, bool) {
	for _, s := range t {
		if s.Name == name {
			return s.Command, true
		}
	}
	return "", false
}

// Names returns the aliases in table order.
func (t ScriptTable) Names() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.Name
	}
	return out
}

// MarshalJSON writes the table as a JSON object in table order.
func (t ScriptTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.Command)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the table as a YAML mapping in table order.
func (t ScriptTable) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, s := range t {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Command},
		)
	}
	return node, nil
}
