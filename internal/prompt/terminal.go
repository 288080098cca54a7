package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Terminal asks its questions as interactive bubbletea programs.
type Terminal struct {
	in   io.Reader
	out  io.Writer
	opts []tea.ProgramOption
}

// NewTerminal returns a Terminal reading keys from in and drawing on out.
func NewTerminal(in io.Reader, out io.Writer, opts ...tea.ProgramOption) *Terminal {
	return &Terminal{in: in, out: out, opts: opts}
}

// run drives m until it quits and returns the final model.
func (t *Terminal) run(m tea.Model) (tea.Model, error) {
	opts := append([]tea.ProgramOption{tea.WithInput(t.in), tea.WithOutput(t.out)}, t.opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

// ProjectName asks for a folder name in a text input. Enter is refused
// until the value is valid; Esc or Ctrl-C cancels.
func (t *Terminal) ProjectName(initial string) (string, error) {
	name := strings.TrimSpace(initial)
	if name != "" && model.ValidateProjectName(name) == nil {
		return name, nil
	}

	final, err := t.run(newNameModel(name))
	if err != nil {
		return "", err
	}
	m := final.(nameModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value, nil
}

// Options shows the catalog as a checkbox list: arrows move, space
// toggles, enter confirms.
func (t *Terminal) Options() (model.Selection, error) {
	final, err := t.run(newSelectModel(model.Catalog()))
	if err != nil {
		return model.Selection{}, err
	}
	m := final.(selectModel)
	if m.cancelled {
		return model.Selection{}, ErrCancelled
	}
	return m.selection()
}

// nameModel is the folder name question.
type nameModel struct {
	input textinput.Model

	// err is the validation error for the last submitted value.
	err error

	value     string
	done      bool
	cancelled bool
}

func newNameModel(initial string) nameModel {
	ti := textinput.New()
	ti.Prompt = "Project folder name: "
	ti.Placeholder = "my-app"
	ti.CharLimit = 214 // npm's package name limit
	ti.Focus()

	m := nameModel{input: ti}
	if initial != "" {
		m.input.SetValue(initial)
		m.err = model.ValidateProjectName(initial)
	}
	return m
}

func (m nameModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m nameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			if err := model.ValidateProjectName(v); err != nil {
				m.err = err
				return m, nil
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m nameModel) View() string {
	if m.done {
		return m.input.Prompt + m.value + "\n"
	}
	if m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// selectModel is the options checkbox list.
type selectModel struct {
	catalog []model.Option
	cursor  int
	chosen  map[model.Option]bool

	done      bool
	cancelled bool
}

func newSelectModel(catalog []model.Option) selectModel {
	return selectModel{catalog: catalog, chosen: make(map[model.Option]bool)}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyUp:
		m.move(-1)
	case tea.KeyDown, tea.KeyTab:
		m.move(1)
	case tea.KeySpace:
		m.toggle()
	case tea.KeyRunes:
		switch key.String() {
		case "k":
			m.move(-1)
		case "j":
			m.move(1)
		case "x":
			m.toggle()
		}
	}
	return m, nil
}

// move shifts the cursor by delta, wrapping at both ends.
func (m *selectModel) move(delta int) {
	n := len(m.catalog)
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m *selectModel) toggle() {
	o := m.catalog[m.cursor]
	m.chosen[o] = !m.chosen[o]
}

// selection returns the checked options in catalog order.
func (m selectModel) selection() (model.Selection, error) {
	var opts []model.Option
	for _, o := range m.catalog {
		if m.chosen[o] {
			opts = append(opts, o)
		}
	}
	return model.NewSelection(opts...)
}

func (m selectModel) View() string {
	if m.cancelled {
		return ""
	}

	var b strings.Builder
	if m.done {
		var names []string
		for _, o := range m.catalog {
			if m.chosen[o] {
				names = append(names, o.String())
			}
		}
		if len(names) == 0 {
			names = []string{"none"}
		}
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Options:"), strings.Join(names, ", "))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Select options:"))
	b.WriteString("\n")
	for i, o := range m.catalog {
		box := "[ ]"
		if m.chosen[o] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %-26s %s", box, o, o.Description())
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("up/down to move, space to toggle, enter to confirm, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}
