package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/npm"
	"github.com/shinji-kodama/ts-scaffold/internal/tsconfig"
)

// EntrySource is the starter program written to src/index.ts.
const EntrySource = `async function main() {
    console.log("Hello!");
}

main()
    .then(() => 0)
    .catch(e => {
        console.error(e);
        return 1;
    })
    .then(code => process.exit(code));
`

// writeEntryFile creates src/index.ts with the starter program.
func writeEntryFile(dir string) error {
	src := filepath.Join(dir, sourceDir)
	if err := os.MkdirAll(src, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to create %s", src), err)
	}

	path := filepath.Join(src, entryFile)
	if err := os.WriteFile(path, []byte(EntrySource), 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// rewriteTSConfig applies the tsconfig transform to the file tsc --init
// generated and writes it back. A document the transform rejects maps to
// ExitInvalidDocument.
func rewriteTSConfig(dir string, sel model.Selection) (*tsconfig.Result, error) {
	path := filepath.Join(dir, tsconfig.FileName)

	lines, err := tsconfig.Load(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load tsconfig.json", err)
	}

	result, err := tsconfig.Transform(sel, lines)
	if err != nil {
		return nil, documentError("failed to update tsconfig.json", err, tsconfig.ErrInvalidConfig)
	}

	if err := tsconfig.Write(path, result.Lines); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to save tsconfig.json", err)
	}
	return result, nil
}

// rewritePackageJSON replaces the "scripts" field of the package.json npm
// init generated.
func rewritePackageJSON(dir string, scripts npm.ScriptTable) error {
	path := filepath.Join(dir, npm.PackageFileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load package.json", err)
	}

	out, err := npm.ApplyScripts(raw, scripts)
	if err != nil {
		return documentError("failed to update package.json", err, npm.ErrInvalidPackage)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to save package.json", err)
	}
	return nil
}

// documentError maps a rewrite failure to ExitInvalidDocument when it wraps
// the package's sentinel, and to ExitGeneralError otherwise.
func documentError(message string, err, sentinel error) error {
	code := model.ExitGeneralError
	if errors.Is(err, sentinel) {
		code = model.ExitInvalidDocument
	}
	return model.WrapCLIError(code, message, err)
}

// appendGitignore adds the ignore entries to .gitignore, creating it if
// needed and starting on a fresh line if the file does not end with one.
func appendGitignore(dir string) error {
	path := filepath.Join(dir, gitignoreFile)

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return model.WrapCLIError(model.ExitGeneralError, "failed to read .gitignore", err)
	}

	var b strings.Builder
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	for _, e := range gitignoreEntries {
		b.WriteString(e)
		b.WriteString("\n")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to open .gitignore", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write .gitignore", err)
	}
	return nil
}
