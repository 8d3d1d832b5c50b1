package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const editorTitle = "QUERY CONSOLE"

// returns a new query console bound to client
func NewEditor(client *Client) *EditorModel {
	ti := textinput.New()
	ti.Placeholder = "start typing a SQL query..."
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = "sql> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPurple)

	return &EditorModel{
		input:   ti,
		client:  client,
		recent:  []string{},
		spinner: sp,
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.suggestion == "" {
				return m, nil
			}

			m.input.SetValue(joinSuggestion(m.input.Value(), m.suggestion))
			m.input.CursorEnd()
			m.clearSuggestion()

			return m, m.debounce()

		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}

			m.recent = appendRecent(m.recent, query)
			m.input.SetValue("")
			m.clearSuggestion()
			m.status = ""

			return m, m.client.RecordHistoryCmd(query)

		case "ctrl+l":
			m.input.SetValue("")
			m.recent = []string{}
			m.clearSuggestion()
			m.status = ""
			m.isFetching = false

			return m, nil
		}

		before := m.input.Value()

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		if m.input.Value() == before {
			return m, cmd
		}

		// any edit invalidates the shown suggestion and restarts the debounce
		m.clearSuggestion()
		return m, tea.Batch(cmd, m.debounce())

	case debounceMsg:
		if msg.seq != m.seq || !shouldSuggest(m.input.Value()) {
			return m, nil
		}

		m.isFetching = true
		return m, tea.Batch(
			m.client.CompleteCmd(m.recent, currentLine(m.input.Value())),
			m.spinner.Tick,
		)

	case SuggestionMsg:
		m.isFetching = false

		// the query changed while the request was in flight
		if msg.query != currentLine(m.input.Value()) {
			return m, nil
		}

		m.suggestion = msg.suggestion
		m.retrieved = msg.retrieved
		m.model = msg.model
		m.status = ""

		return m, nil

	case SuggestionErrorMsg:
		m.isFetching = false
		m.status = fmt.Sprintf("suggestion failed: %v", msg.err)

		return m, nil

	case HistoryRecordedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("history not recorded: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("recorded %d executed quer%s", msg.accepted, plural(msg.accepted, "y", "ies"))
		}

		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-12)
		m.glamourRenderer = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// schedules a suggestion request for the current edit
func (m *EditorModel) debounce() tea.Cmd {
	m.seq++
	seq := m.seq

	return tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *EditorModel) clearSuggestion() {
	m.suggestion = ""
	m.retrieved = 0
	m.model = ""
}

func (m *EditorModel) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorWhite).
		Render(editorTitle)

	help := lipgloss.NewStyle().
		Foreground(colorGray).
		Render("[Tab: Accept] [Enter: Execute] [Ctrl+L: Clear] [Ctrl+C: Back]")

	headerLine := lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(0, m.width-len(editorTitle)-lipgloss.Width(help)-2)),
		help,
	)

	b.WriteString(headerLine)
	b.WriteString("\n\n")

	// executed queries
	historyBox := borderStyle.
		Width(max(20, m.width-4)).
		Height(10).
		Padding(0, 1).
		Render(m.renderHistory())

	b.WriteString(historyBox)
	b.WriteString("\n\n")

	// input with the pending suggestion as ghost text
	line := m.input.View()
	if m.suggestion != "" {
		line += suggestionStyle.Render(strings.TrimPrefix(joinSuggestion(m.input.Value(), m.suggestion), m.input.Value()))
	}

	inputBox := borderStyle.
		Width(max(20, m.width-4)).
		Padding(0, 1).
		Render(line)

	b.WriteString(inputBox)
	b.WriteString("\n")

	switch {
	case m.isFetching:
		b.WriteString(m.spinner.View())
		b.WriteString(infoStyle.Render(" fetching suggestion..."))
	case m.suggestion != "":
		b.WriteString(infoStyle.Render(fmt.Sprintf("retrieved: %d similar | model: %s", m.retrieved, m.model)))
	case m.status != "":
		b.WriteString(infoStyle.Render(m.status))
	}

	return b.String()
}

// renders executed queries as a highlighted SQL block, newest last
func (m *EditorModel) renderHistory() string {
	if len(m.recent) == 0 {
		return infoStyle.Render("executed queries appear here. type below; suggestions follow a short pause.")
	}

	shown := m.recent
	if len(shown) > 8 {
		shown = shown[len(shown)-8:]
	}

	markdown := "```sql\n" + strings.Join(shown, "\n") + "\n```\n"

	if m.glamourRenderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(20, m.width-8)),
		)
		if err != nil {
			return strings.Join(shown, "\n")
		}

		m.glamourRenderer = renderer
	}

	rendered, err := m.glamourRenderer.Render(markdown)
	if err != nil {
		return strings.Join(shown, "\n")
	}

	return strings.TrimSpace(rendered)
}

// the accepted-plus-typed text currently in the console
func (m *EditorModel) Value() string {
	return m.input.Value()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
