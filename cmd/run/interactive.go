package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-sandbox/abi"
	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/fixture"
	"github.com/wippyai/wasm-sandbox/internal/guests"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	caseStyle = lipgloss.NewStyle().
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

type interactiveModel struct {
	err      error
	app      *app
	filename string
	result   string
	cases    []caseInfo
	input    textinput.Model
	selected int
	state    modelState
}

type caseInfo struct {
	name   string
	values string
	guest  guests.Guest
}

type modelState int

const (
	stateSelectCase modelState = iota
	stateEditInput
	stateShowResult
)

func newInteractiveModel(a *app, filename string) *interactiveModel {
	return &interactiveModel{
		app:      a,
		filename: filename,
		state:    stateSelectCase,
	}
}

type loadedMsg struct {
	err   error
	cases []caseInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadFixture
}

func (m *interactiveModel) loadFixture() tea.Msg {
	set, err := fixture.Load(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	var cases []caseInfo
	for _, name := range set.Names() {
		g, ok := guests.ForCase(name)
		if !ok {
			continue
		}
		ci := caseInfo{name: name, guest: g}
		if g.Floats {
			v, err := set.Floats(name)
			if err != nil {
				return loadedMsg{err: err}
			}
			ci.values = formatNumbers(nil, v)
		} else {
			v, err := set.Ints(name)
			if err != nil {
				return loadedMsg{err: err}
			}
			ci.values = formatNumbers(v, nil)
		}
		cases = append(cases, ci)
	}
	if len(cases) == 0 {
		return loadedMsg{err: fmt.Errorf("%s has no case matching a guest", m.filename)}
	}
	return loadedMsg{cases: cases}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateEditInput {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectCase && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectCase && m.selected < len(m.cases)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectCase:
				if len(m.cases) == 0 {
					return m, nil
				}
				m.prepareInput()
				m.state = stateEditInput
				return m, textinput.Blink

			case stateEditInput:
				return m, m.runCase

			case stateShowResult:
				m.state = stateSelectCase
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateEditInput:
				m.state = stateSelectCase
			case stateShowResult:
				m.state = stateSelectCase
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cases = msg.cases

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateEditInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	c := m.cases[m.selected]
	ti := textinput.New()
	ti.Prompt = "values: "
	ti.Placeholder = "comma separated"
	ti.Width = 60
	ti.SetValue(c.values)
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) runCase() tea.Msg {
	c := m.cases[m.selected]

	var input []byte
	if c.guest.Floats {
		v, err := parseFloats(m.input.Value())
		if err != nil {
			return callResultMsg{err: err}
		}
		input = fixture.EncodeFloats(v)
	} else {
		v, err := parseInts(m.input.Value())
		if err != nil {
			return callResultMsg{err: err}
		}
		input = fixture.EncodeInts(v)
	}

	ctx, cancel := m.app.callContext(context.Background())
	defer cancel()
	res, err := m.app.engine.Execute(ctx, engine.Request{
		Module:  c.guest.Build(),
		Inputs:  [][]byte{input},
		Profile: c.guest.Profile.WithEntry(m.app.cfg.Engine.Entry),
	})
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: fmt.Sprintf("%s (%d pages, %s)", res, res.Pages, res.Duration)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.cases) == 0 {
		return "Loading fixture..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Sandbox"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectCase:
		b.WriteString("Select a case to run:\n\n")
		for i, c := range m.cases {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatCase(c)))
			} else {
				b.WriteString("  " + m.formatCase(c))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • q quit"))

	case stateEditInput:
		c := m.cases[m.selected]
		b.WriteString(fmt.Sprintf("Running %s with %s\n\n", caseStyle.Render(c.name), caseStyle.Render(c.guest.Name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		c := m.cases[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", caseStyle.Render(c.name)))
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

func (m *interactiveModel) formatCase(c caseInfo) string {
	return caseStyle.Render(c.name) + " " + c.guest.Name + " -> " + typeStyle.Render(abi.TypeName(c.guest.Profile.Result))
}

func newTUICmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Pick fixture cases, edit their values and run them interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := tea.NewProgram(newInteractiveModel(a, path), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "fixture", "f", "", "fixture JSON file")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}
