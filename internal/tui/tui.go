package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// creates the app; endpoint may be empty to use PGSUGGEST_API_ENDPOINT
func NewApp(mode, endpoint string) *Model {
	client := NewClient(endpoint)

	return &Model{
		state:     StateDashboard,
		mode:      mode,
		dashboard: NewDashboard(mode, client),
		editor:    NewEditor(client),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.dashboard.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// both screens track the size so switching does not need a resize
		m.dashboard, _ = m.dashboard.Update(msg)
		m.editor, _ = m.editor.Update(msg)

		return m, nil

	case EnterEditorMsg:
		m.state = StateEditor
		return m, m.editor.Init()

	// background results belong to the dashboard whichever screen is showing
	case StatsMsg, ServerStartedMsg, IngesterCompleteMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// ctrl+c leaves the console; stats may have moved while typing
		if m.state == StateEditor && msg.String() == "ctrl+c" {
			m.state = StateDashboard
			return m, m.dashboard.client.StatsCmd()
		}
	}

	if m.state == StateEditor {
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	m.dashboard, cmd = m.dashboard.Update(msg)

	return m, cmd
}

func (m *Model) View() string {
	if m.state == StateEditor {
		return m.editor.View()
	}

	return m.dashboard.View()
}
