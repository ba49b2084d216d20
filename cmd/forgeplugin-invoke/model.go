package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgebuild/pluginhost/invocation"
)

// Messages the progress delegate forwards from the running session.
type (
	compilationStartedMsg struct{ plugin string }
	compilationSkippedMsg struct{ plugin string }
	compilationEndedMsg   struct {
		plugin   string
		duration time.Duration
		err      error
	}
	pluginOutputMsg   struct{ chunk string }
	diagnosticMsg     struct{ diag invocation.Diagnostic }
	progressMsg       struct{ message string }
	buildCommandMsg   struct{ cmd invocation.BuildCommand }
	prebuildCommandMsg struct{ cmd invocation.PrebuildCommand }
	doneMsg           struct {
		result *invocation.BuildToolPluginInvocationResult
		err    error
	}
)

// model is the root Bubble Tea model for the plugin invocation progress
// view: a scrolling log of compile/session events, ended with the final
// result once the Accessor's invoke(module, action, …) call returns.
type model struct {
	pluginName string
	lines      []string
	diagCount  int
	cmdCount   int
	done       bool
	result     *invocation.BuildToolPluginInvocationResult
	err        error
	width      int
	spinner    spinner.Model
}

func newModel(pluginName string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle
	return model{pluginName: pluginName, width: 80, spinner: s}
}

func (m model) Init() tea.Cmd { return m.spinner.Tick }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.done && (msg.String() == "q" || msg.String() == "esc" || msg.String() == "enter") {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case compilationStartedMsg:
		m.lines = append(m.lines, infoStyle.Render("compiling "+msg.plugin))
		return m, nil

	case compilationSkippedMsg:
		m.lines = append(m.lines, subtleStyle.Render("compile cache hit for "+msg.plugin))
		return m, nil

	case compilationEndedMsg:
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render(fmt.Sprintf("compile failed after %s: %v", msg.duration, msg.err)))
		} else {
			m.lines = append(m.lines, infoStyle.Render(fmt.Sprintf("compiled in %s", msg.duration)))
		}
		return m, nil

	case pluginOutputMsg:
		for _, line := range strings.Split(strings.TrimRight(msg.chunk, "\n"), "\n") {
			m.lines = append(m.lines, subtleStyle.Render("  "+line))
		}
		return m, nil

	case diagnosticMsg:
		m.diagCount++
		m.lines = append(m.lines, diagnosticStyle(msg.diag.Severity).Render(fmt.Sprintf("[%s] %s", msg.diag.Severity, msg.diag.Message)))
		return m, nil

	case progressMsg:
		m.lines = append(m.lines, subtleStyle.Render(msg.message))
		return m, nil

	case buildCommandMsg:
		m.cmdCount++
		m.lines = append(m.lines, infoStyle.Render("build command: "+msg.cmd.Configuration.DisplayName))
		return m, nil

	case prebuildCommandMsg:
		m.cmdCount++
		m.lines = append(m.lines, infoStyle.Render("prebuild command: "+msg.cmd.Configuration.DisplayName))
		return m, nil

	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf(" forgeplugin-invoke — %s", m.pluginName))
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		switch {
		case m.err != nil:
			b.WriteString(errorStyle.Render("invocation failed: " + m.err.Error()))
		case m.result != nil:
			status := "succeeded"
			if !m.result.Succeeded {
				status = "failed"
			}
			b.WriteString(titleStyle.Render(fmt.Sprintf("invocation %s in %s · %d diagnostic(s) · %d command(s)",
				status, m.result.Duration, len(m.result.Diagnostics), len(m.result.BuildCommands)+len(m.result.PrebuildCommands))))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("press q to exit"))
	} else {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " " + helpStyle.Render("running…"))
	}

	return b.String()
}
