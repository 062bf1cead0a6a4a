package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Assistant is the TUI-facing subset of the query router.
type Assistant interface {
	Answer(query string) string
}

type exchange struct {
	query  string
	answer string
}

type answerMsg exchange

// Model is the Bubble Tea model for the chat application.
type Model struct {
	assistant Assistant
	input     textinput.Model
	viewport  viewport.Model
	history   []exchange
	summary   string
	status    string
	pending   bool
	ready     bool
}

// New creates a new chat model. summary is shown under the header.
func New(assistant Assistant, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about attendance or performance, Enter to send"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{assistant: assistant, input: ti, viewport: vp, summary: summary, status: "Ready. Ctrl+C to quit."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{query: q, answer: m.assistant.Answer(q)}
	}
}

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := historyBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case answerMsg:
		m.pending = false
		m.history = append(m.history, exchange(msg))
		m.status = fmt.Sprintf("Answered %q", msg.query)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			if q == "exit" || q == "quit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.pending = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Employee Tracker Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	history := historyBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No questions yet. Try \"who is on leave today\"."
	}
	blocks := make([]string, len(m.history))
	for i, ex := range m.history {
		blocks[i] = userStyle.Render("You: "+ex.query) + "\n" + highlightMatchingLines(ex.answer, ex.query)
	}
	return strings.Join(blocks, "\n\n")
}

var (
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe          = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// highlightMatchingLines emphasises the answer line sharing the most
// words with the query.
func highlightMatchingLines(answer, query string) string {
	lines := strings.Split(answer, "\n")
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 || len(lines) < 2 {
		return answer
	}
	bestIdx, bestScore := -1, 0
	for i, l := range lines {
		if score := tokenOverlapScore(qTokens, l); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if bestIdx >= 0 {
		lines[bestIdx] = highlightStyle.Render(lines[bestIdx])
	}
	return strings.Join(lines, "\n")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, line string) int {
	score := 0
	seen := map[string]struct{}{}
	for _, t := range wordRe.FindAllString(strings.ToLower(line), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
