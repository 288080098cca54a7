package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

// Prompter reads answers line by line. Invalid answers are reported and
// the question is asked again.
type Prompter struct {
	reader *bufio.Reader
	w      io.Writer
}

// New returns a Prompter reading from r and writing questions to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), w: w}
}

// readLine returns the next line without its line ending. A final line
// without a newline is still returned; ErrCancelled is returned only when
// nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ProjectName asks for a folder name until one matches the allowed
// pattern or is ".". A valid initial value is returned without asking.
func (p *Prompter) ProjectName(initial string) (string, error) {
	name := strings.TrimSpace(initial)
	for {
		if name != "" {
			err := model.ValidateProjectName(name)
			if err == nil {
				return name, nil
			}
			fmt.Fprintln(p.w, err)
		}

		fmt.Fprint(p.w, "Project folder name: ")
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		name = line
	}
}

// Options shows the option catalog as a numbered list and returns the
// chosen selection. Entries are separated by commas or spaces and may be
// numbers or option names; an empty answer selects nothing.
func (p *Prompter) Options() (model.Selection, error) {
	catalog := model.Catalog()

	fmt.Fprintln(p.w, "\nSelect options:")
	for i, o := range catalog {
		fmt.Fprintf(p.w, "  %d) %-26s %s\n", i+1, o, o.Description())
	}

	for {
		fmt.Fprintf(p.w, "Enter numbers [1-%d] separated by commas or spaces (empty for none): ", len(catalog))
		line, err := p.readLine()
		if err != nil {
			return model.Selection{}, err
		}

		sel, err := parseAnswer(line, catalog)
		if err == nil {
			return sel, nil
		}
		fmt.Fprintf(p.w, "%v\n", err)
	}
}

// parseAnswer converts a multi-select answer into a Selection.
func parseAnswer(line string, catalog []model.Option) (model.Selection, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	opts := make([]model.Option, 0, len(fields))
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			if n < 1 || n > len(catalog) {
				return model.Selection{}, fmt.Errorf("invalid selection %q: choose 1-%d", f, len(catalog))
			}
			opts = append(opts, catalog[n-1])
			continue
		}

		o, err := model.ParseOption(f)
		if err != nil {
			return model.Selection{}, fmt.Errorf("invalid selection %q: choose 1-%d", f, len(catalog))
		}
		opts = append(opts, o)
	}
	return model.NewSelection(opts...)
}
