package npm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

func TestBuildScripts_Compiler(t *testing.T) {
	tests := []struct {
		name      string
		opts      []model.Option
		wantBuild string
	}{
		{name: "no options", wantBuild: "tsc"},
		{name: "express only", opts: []model.Option{model.OptionExpress, model.OptionGit}, wantBuild: "tsc"},
		{name: "ts-transformer-keys", opts: []model.Option{model.OptionTransformerKeys}, wantBuild: "ttsc"},
		{name: "typescript-is", opts: []model.Option{model.OptionTypescriptIs}, wantBuild: "ttsc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildScripts(model.MustSelection(tt.opts...))

			build, ok := table.Get(ScriptBuild)
			require.True(t, ok)
			assert.Equal(t, tt.wantBuild, build)

			watch, ok := table.Get(ScriptBuildWatch)
			require.True(t, ok)
			assert.Equal(t, tt.wantBuild+" -w", watch)
		})
	}
}

// TestBuildScripts_FixedAliases verifies the four selection-independent scripts.
func TestBuildScripts_FixedAliases(t *testing.T) {
	table := BuildScripts(model.MustSelection(model.OptionTypescriptIs))

	assert.Equal(t, []string{"build", "build-watch", "run", "run-watch", "once", "watch"}, table.Names())

	want := map[string]string{
		ScriptRun:      "node lib/index.js",
		ScriptRunWatch: "nodemon --watch lib lib/index.js",
		ScriptOnce:     "npm-run-all -s build run",
		ScriptWatch:    "npm-run-all -p build-watch run-watch",
	}
	for name, cmd := range want {
		got, ok := table.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, cmd, got, name)
	}

	_, ok := table.Get("test")
	assert.False(t, ok)
}

func TestScriptTable_MarshalJSONKeepsOrder(t *testing.T) {
	data, err := json.Marshal(BuildScripts(model.Selection{}))
	require.NoError(t, err)

	assert.Equal(t,
		`{"build":"tsc","build-watch":"tsc -w","run":"node lib/index.js","run-watch":"nodemon --watch lib lib/index.js","once":"npm-run-all -s build run","watch":"npm-run-all -p build-watch run-watch"}`,
		string(data))
}

// npmInitOutput is what `npm init -y` writes for a folder named demo.
const npmInitOutput = `{
  "name": "demo",
  "version": "1.0.0",
  "description": "",
  "main": "index.js",
  "scripts": {
    "test": "echo \"Error: no test specified\" && exit 1"
  },
  "keywords": [],
  "author": "",
  "license": "ISC"
}
`

func TestApplyScripts(t *testing.T) {
	out, err := ApplyScripts([]byte(npmInitOutput), BuildScripts(model.Selection{}))
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.NotContains(t, text, "no test specified", "the placeholder test script is replaced")

	// Field order is preserved.
	fields := []string{`"name"`, `"version"`, `"description"`, `"main"`, `"scripts"`, `"keywords"`, `"author"`, `"license"`}
	last := -1
	for _, f := range fields {
		idx := strings.Index(text, f)
		require.GreaterOrEqual(t, idx, 0, "field %s missing", f)
		assert.Greater(t, idx, last, "field %s out of order", f)
		last = idx
	}

	// Script keys are exactly the six aliases, in order.
	members, err := decodeObject(out)
	require.NoError(t, err)
	var scripts json.RawMessage
	for _, m := range members {
		if m.key == "scripts" {
			scripts = m.value
		}
	}
	scriptMembers, err := decodeObject(scripts)
	require.NoError(t, err)
	keys := make([]string, len(scriptMembers))
	for i, m := range scriptMembers {
		keys[i] = m.key
	}
	assert.Equal(t, []string{"build", "build-watch", "run", "run-watch", "once", "watch"}, keys)

	assert.Contains(t, text, "\n  \"scripts\": {\n    \"build\": \"tsc\",\n")
}

func TestApplyScripts_AddsMissingScripts(t *testing.T) {
	out, err := ApplyScripts([]byte(`{"name": "demo"}`), BuildScripts(model.MustSelection(model.OptionTransformerKeys)))
	require.NoError(t, err)

	var doc struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "demo", doc.Name)
	assert.Equal(t, "ttsc", doc.Scripts["build"])
	assert.Len(t, doc.Scripts, 6)
}

func TestApplyScripts_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "truncated", input: `{"name": "demo",`},
		{name: "array", input: `[]`},
		{name: "missing name", input: `{"version": "1.0.0"}`},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyScripts([]byte(tt.input), BuildScripts(model.Selection{}))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPackage))
		})
	}
}

func TestScriptTable_MarshalYAMLKeepsOrder(t *testing.T) {
	data, err := yaml.Marshal(BuildScripts(model.MustSelection(model.OptionTransformerKeys)))
	require.NoError(t, err)

	assert.Equal(t, `build: ttsc
build-watch: ttsc -w
run: node lib/index.js
run-watch: nodemon --watch lib lib/index.js
once: npm-run-all -s build run
watch: npm-run-all -p build-watch run-watch
`, string(data))
}
