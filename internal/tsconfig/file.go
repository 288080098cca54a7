package tsconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the compiler configuration file tsc --init creates.
const FileName = "tsconfig.json"

// Load reads a tsconfig.json and splits it into lines. A trailing newline
// shows up as a final empty line, so Write(Load(p)) round-trips exactly.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// Write joins lines with "\n" and writes them to path with 0644
// permissions, creating parent directories as needed.
func Write(path string, lines []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
