package prompt

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

func TestIsInteractive_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsInteractive(f))
}

func TestFor_NonTerminalUsesLineMode(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "answers"))
	require.NoError(t, err)
	defer f.Close()

	_, ok := For(f, &bytes.Buffer{}).(*Prompter)
	assert.True(t, ok, "regular file should get the line prompter")

	_, ok = For(strings.NewReader("demo\n"), &bytes.Buffer{}).(*Prompter)
	assert.True(t, ok, "in-memory reader should get the line prompter")
}

func TestFor_LineModeShowsNumberedMenu(t *testing.T) {
	var out bytes.Buffer
	asker := For(strings.NewReader("2\n"), &out)

	sel, err := asker.Options()
	require.NoError(t, err)
	assert.Equal(t, []model.Option{model.OptionExpress}, sel.Options())
	assert.Contains(t, out.String(), "  2) express")
}
