package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

func TestProjectName(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		input   string
		want    string
		asks    int
	}{
		{name: "valid argument skips prompt", initial: "demo", want: "demo", asks: 0},
		{name: "dot argument", initial: ".", want: ".", asks: 0},
		{name: "empty argument prompts", input: "my-app\n", want: "my-app", asks: 1},
		{name: "invalid argument re-prompts", initial: "My App", input: "my_app\n", want: "my_app", asks: 1},
		{name: "loops until valid", input: "\nBad\nfoo/bar\nok-1\n", want: "ok-1", asks: 4},
		{name: "last line without newline", input: "final", want: "final", asks: 1},
		{name: "surrounding whitespace trimmed", input: "  spaced  \r\n", want: "spaced", asks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			got, err := p.ProjectName(tt.initial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.asks, strings.Count(out.String(), "Project folder name: "))
		})
	}
}

func TestProjectName_InvalidIsReported(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("ok\n"), &out)

	_, err := p.ProjectName("UPPER")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `invalid project name "UPPER"`)
}

func TestProjectName_EOF(t *testing.T) {
	p := New(strings.NewReader("Bad\n"), &bytes.Buffer{})

	_, err := p.ProjectName("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Option
	}{
		{name: "empty selects none", input: "\n", want: nil},
		{name: "single number", input: "2\n", want: []model.Option{model.OptionExpress}},
		{
			name:  "commas and spaces",
			input: "5, 1 3\n",
			want:  []model.Option{model.OptionGit, model.OptionTypescriptIs, model.OptionTransformerEnumerate},
		},
		{name: "names accepted", input: "express,git\n", want: []model.Option{model.OptionGit, model.OptionExpress}},
		{name: "duplicates collapse", input: "1,1,git\n", want: []model.Option{model.OptionGit}},
		{name: "out of range re-prompts", input: "9\n4\n", want: []model.Option{model.OptionTransformerKeys}},
		{name: "unknown name re-prompts", input: "react\n2\n", want: []model.Option{model.OptionExpress}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			sel, err := p.Options()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Options())
		})
	}
}

func TestOptions_ListsCatalog(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\n"), &out)

	_, err := p.Options()
	require.NoError(t, err)

	text := out.String()
	for i, o := range model.Catalog() {
		assert.Contains(t, text, o.String())
		assert.Contains(t, text, o.Description())
		if i > 0 {
			prev := model.Catalog()[i-1]
			assert.Less(t, strings.Index(text, prev.String()), strings.Index(text, o.String()))
		}
	}
}

func TestOptions_InvalidReported(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("0\n\n"), &out)

	_, err := p.Options()
	require.NoError(t, err)
	assert.Contains(t, out.String(), `invalid selection "0": choose 1-5`)
}

func TestOptions_EOF(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Options()
	assert.True(t, errors.Is(err, ErrCancelled))
}
