// Package tui is the terminal chat front-end.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/chat"
)

// Answerer is the TUI-facing subset of the assistant.
type Answerer interface {
	Answer(ctx context.Context, question string) (chat.Answer, error)
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type answerMsg struct {
	answer chat.Answer
	err    error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	assistant Answerer
	input     textinput.Model
	viewport  viewport.Model
	spin      spinner.Model
	lines     []string
	thinking  bool
	ready     bool
}

// New creates the chat model. corpusSize is shown in the greeting so
// the user knows the knowledge base actually loaded.
func New(assistant Answerer, corpusSize int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask me anything about KKH nursing protocols..."
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	greeting := noteStyle.Render("Knowledge base loaded. Ctrl+C to quit.")
	return Model{
		assistant: assistant,
		input:     ti,
		viewport:  viewport.New(0, 0),
		spin:      sp,
		lines:     []string{greeting},
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + ih + 1 // header, input frame, status line
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.thinking = true
			m.appendLine(userStyle.Render("You: ") + question)
			return m, tea.Batch(m.spin.Tick, m.ask(question))
		}

	case answerMsg:
		m.thinking = false
		if msg.err != nil {
			m.appendLine(noteStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLine(botStyle.Render("KKH Assistant: ") + msg.answer.Text)
		if msg.answer.Grounded && !msg.answer.Generated {
			m.appendLine(noteStyle.Render("(model offline; showing the matching guideline text directly)"))
		}
		return m, nil

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("KKH Nursing Chatbot")
	status := ""
	if m.thinking {
		status = m.spin.View() + " Thinking..."
	}
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line, "")
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.assistant.Answer(context.Background(), question)
		return answerMsg{answer: answer, err: err}
	}
}
