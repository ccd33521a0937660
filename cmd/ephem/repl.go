package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// NewReplCommand creates the repl command.
func NewReplCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Pick operations and fill in parameters interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(cmd.OutOrStdout()) {
				return fmt.Errorf("repl needs a terminal; use \"ephem call\" instead")
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := context.Background()
			b, err := openBridge(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := b.Close(ctx); cerr != nil {
					logger.Warn("close bridge", zap.Error(cerr))
				}
			}()

			p := tea.NewProgram(newReplModel(b, schema.All()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

type replState int

const (
	stateSelectOp replState = iota
	stateInputArgs
	stateShowResult
)

// caller is the part of the bridge the picker uses.
type caller interface {
	Call(ctx context.Context, req ephemeris.Request) (ephemeris.Result, error)
	State() engine.State
}

type replModel struct {
	engine   caller
	specs    []*schema.Spec
	inputs   []textinput.Model
	err      error
	result   string
	selected int
	focusIdx int
	state    replState
}

func newReplModel(eng caller, specs []*schema.Spec) *replModel {
	return &replModel{engine: eng, specs: specs, state: stateSelectOp}
}

type callResultMsg struct {
	err    error
	result string
}

func (m *replModel) Init() tea.Cmd {
	return nil
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.specs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
				return m, nil
			}

		case "tab", "shift+tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
			return m, nil
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// prepareInputs creates one field per positional param, plus a flags field
// for operations that take flags.
func (m *replModel) prepareInputs() {
	spec := m.specs[m.selected]
	params := spec.Positional()
	m.inputs = make([]textinput.Model, 0, len(params)+1)
	for _, p := range params {
		m.inputs = append(m.inputs, newInput(p.Name, paramType(p)))
	}
	if spec.HasFlags() {
		m.inputs = append(m.inputs, newInput("flags", "int32"))
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	m.focusIdx = 0
}

func newInput(name, typ string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = typ
	ti.Prompt = name + ": "
	ti.Width = 40
	return ti
}

func paramType(p schema.Param) string {
	typ := p.Kind.String()
	if p.Kind == schema.ParamFloats {
		typ += "[" + strconv.Itoa(p.Len) + "] a,b,c"
	}
	if p.Optional {
		typ += " (optional)"
	}
	return typ
}

// request builds the request from the input fields. Trailing empty fields
// are left out so optional params fall back to their defaults.
func (m *replModel) request() (ephemeris.Request, error) {
	spec := m.specs[m.selected]
	values := make([]string, 0, len(m.inputs))
	for _, input := range m.inputs {
		values = append(values, input.Value())
	}

	var (
		flags    int32
		hasFlags bool
	)
	if spec.HasFlags() {
		text := strings.TrimSpace(values[len(values)-1])
		values = values[:len(values)-1]
		if text != "" {
			n, err := strconv.ParseInt(text, 0, 32)
			if err != nil {
				return ephemeris.Request{}, fmt.Errorf("flags: %w", err)
			}
			flags, hasFlags = int32(n), true
		}
	}
	for len(values) > 0 && strings.TrimSpace(values[len(values)-1]) == "" {
		values = values[:len(values)-1]
	}

	params, err := spec.ParseArgs(values)
	if err != nil {
		return ephemeris.Request{}, err
	}
	req := ephemeris.NewRequest(spec.Op, params...)
	if hasFlags {
		req = req.WithFlags(flags)
	}
	return req, nil
}

func (m *replModel) call() tea.Msg {
	req, err := m.request()
	if err != nil {
		return callResultMsg{err: err}
	}

	res, err := m.engine.Call(context.Background(), req)
	if err != nil {
		return callResultMsg{err: err}
	}

	var b strings.Builder
	if err := writeResult(&b, res); err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: strings.TrimRight(b.String(), "\n")}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ephemeris"))
	b.WriteString(" engine: ")
	b.WriteString(m.engine.State().String())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, spec := range m.specs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + spec.Signature()))
			} else {
				b.WriteString("  " + m.formatOp(spec))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		spec := m.specs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n", opStyle.Render(string(spec.Op))))
		if spec.Doc != "" {
			b.WriteString(helpStyle.Render(spec.Doc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		spec := m.specs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(string(spec.Op))))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *replModel) formatOp(spec *schema.Spec) string {
	params := make([]string, 0, len(spec.Params))
	for _, p := range spec.Positional() {
		params = append(params, p.Name+": "+typeStyle.Render(p.Kind.String()))
	}
	return opStyle.Render(string(spec.Op)) + "(" + strings.Join(params, ", ") + ") -> " + typeStyle.Render(string(spec.Family))
}
