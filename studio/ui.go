package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vox.town/capture"
	"vox.town/stt"
)

// refreshMsg tells the UI that studio state changed somewhere.
type refreshMsg struct{}

type exportedMsg struct {
	path string
	err  error
}

type model struct {
	studio  *Studio
	updates chan struct{}

	viewport viewport.Model
	input    textinput.Model
	entering bool
	notice   string
	ready    bool
}

func initialModel(s *Studio, updates chan struct{}) model {
	input := textinput.New()
	input.Placeholder = "path to an audio or video file"
	return model{
		studio:  s,
		updates: updates,
		input:   input,
	}
}

// NewProgram builds the terminal studio. The updates channel carries change
// notifications from the studio; wire Options.OnChange to a non-blocking
// send into it.
func NewProgram(s *Studio, updates chan struct{}) *tea.Program {
	return tea.NewProgram(
		initialModel(s, updates),
		tea.WithAltScreen(),
	)
}

func waitForUpdate(updates chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return refreshMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m model) toggleRecording() tea.Cmd {
	if m.studio.RecordingState() == capture.StateIdle {
		return func() tea.Msg {
			m.studio.StartRecording(context.Background())
			return refreshMsg{}
		}
	}
	return func() tea.Msg {
		m.studio.StopRecording()
		return refreshMsg{}
	}
}

func (m model) submitFile(path string) tea.Cmd {
	return func() tea.Msg {
		src, err := stt.SourceFromFile(path)
		if err != nil {
			m.studio.fail(fmt.Errorf("could not read %s: %w", path, err))
			return refreshMsg{}
		}
		m.studio.Submit(context.Background(), src)
		return refreshMsg{}
	}
}

func (m model) export(kind ExportKind) tea.Cmd {
	return func() tea.Msg {
		path, err := m.studio.Export(context.Background(), kind)
		return exportedMsg{path: path, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.entering {
			switch msg.String() {
			case "enter":
				path := strings.TrimSpace(m.input.Value())
				m.entering = false
				m.input.Reset()
				if path != "" {
					return m, m.submitFile(path)
				}
				return m, nil
			case "esc":
				m.entering = false
				m.input.Reset()
				return m, nil
			}
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			return m, m.toggleRecording()
		case "u":
			m.entering = true
			m.input.Focus()
			return m, textinput.Blink
		case "c":
			m.studio.Copy()
			m.notice = "copied to clipboard"
		case "s":
			m.studio.SpeakToggle()
		case "x":
			m.studio.Clear()
			m.notice = ""
		case "d":
			m.studio.DismissError()
		case "w":
			return m, func() tea.Msg {
				path, err := m.studio.SaveClip()
				return exportedMsg{path: path, err: err}
			}
		case "1":
			return m, m.export(ExportText)
		case "2":
			return m, m.export(ExportSRT)
		case "3":
			return m, m.export(ExportVTT)
		case "4":
			return m, m.export(ExportTimestamped)
		case "5":
			return m, m.export(ExportPDF)
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(m.contentView())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}

	case refreshMsg:
		m.viewport.SetContent(m.contentView())
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForUpdate(m.updates))

	case exportedMsg:
		if msg.err == nil {
			m.notice = "saved " + msg.path
		}
		m.viewport.SetContent(m.contentView())
		cmds = append(cmds, waitForUpdate(m.updates))
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.entering {
		return fmt.Sprintf(
			"%s\n%s\n\n  Transcribe file: %s\n\n%s",
			m.headerView(),
			m.viewport.View(),
			m.input.View(),
			m.footerView(),
		)
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)
	recStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#D02020")).
			Padding(0, 1)
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5050"))
)

func (m model) headerView() string {
	title := titleStyle.Render("Voxpad")
	status := ""
	switch m.studio.RecordingState() {
	case capture.StateStarting:
		status = recStyle.Render("requesting microphone")
	case capture.StateListening:
		status = recStyle.Render("recording")
	}
	if m.studio.Loading() {
		status += " " + titleStyle.Render("transcribing...")
	}
	if m.studio.Speaking() {
		status += " " + titleStyle.Render("speaking")
	}
	line := strings.Repeat(
		"─",
		max(0, m.viewport.Width-lipgloss.Width(title)-lipgloss.Width(status)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, line, status)
}

func (m model) footerView() string {
	help := "r record · u upload · c copy · s speak · w save rec · x clear · " +
		"1 txt · 2 srt · 3 vtt · 4 timed · 5 pdf · q quit"
	if m.notice != "" {
		help = m.notice + "  ·  " + help
	}
	info := titleStyle.Render(help)
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(info)))
	return lipgloss.JoinHorizontal(lipgloss.Center, line, info)
}

func (m model) contentView() string {
	var b strings.Builder
	if errMsg := m.studio.Err(); errMsg != "" {
		b.WriteString(errStyle.Render("✗ " + errMsg))
		b.WriteString("\n\n")
	}
	text := m.studio.Text()
	if text == "" {
		b.WriteString("Press r to start dictating, or u to transcribe a file.")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n")
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
