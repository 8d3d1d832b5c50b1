package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newDashboardKeys(mode string) dashboardKeys {
	keys := dashboardKeys{
		Console: key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter", "query console")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start server")),
		Ingest:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ingest pgAdmin history")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}

	// the ingester writes to the configured store, so only offer it locally
	keys.Ingest.SetEnabled(mode == "development")

	return keys
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Console, k.Start, k.Ingest, k.Refresh, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// returns the start screen for the server behind client
func NewDashboard(mode string, client *Client) *Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPurple)

	return &Dashboard{
		mode:    mode,
		client:  client,
		keys:    newDashboardKeys(mode),
		help:    help.New(),
		spinner: sp,
	}
}

func (d *Dashboard) Init() tea.Cmd {
	return d.client.StatsCmd()
}

func (d *Dashboard) Update(msg tea.Msg) (*Dashboard, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, d.keys.Quit) {
			return d, tea.Quit
		}

		// one background task at a time
		if d.task != "" {
			return d, nil
		}

		switch {
		case key.Matches(msg, d.keys.Console):
			return d, func() tea.Msg { return EnterEditorMsg{} }

		case key.Matches(msg, d.keys.Refresh):
			return d, d.client.StatsCmd()

		case key.Matches(msg, d.keys.Start):
			if d.stats != nil {
				d.status = "server already answering at " + d.client.endpoint
				return d, nil
			}

			return d, d.begin("starting server", startServer(d.client))

		case key.Matches(msg, d.keys.Ingest):
			return d, d.begin("ingesting pgAdmin history", runIngester)
		}

	case StatsMsg:
		d.stats, d.statsErr = msg.stats, msg.err
		if msg.err != nil {
			d.stats = nil
		}

	case ServerStartedMsg:
		d.task = ""
		if msg.err != nil {
			d.status = fmt.Sprintf("server failed to start: %v", msg.err)
			return d, nil
		}

		d.status = "server started"
		return d, d.client.StatsCmd()

	case IngesterCompleteMsg:
		d.task = ""
		if msg.err != nil {
			d.status = fmt.Sprintf("ingestion failed: %v", msg.err)
		} else {
			d.status = "ingested: " + msg.summary
		}

		return d, d.client.StatsCmd()

	case spinner.TickMsg:
		if d.task == "" {
			return d, nil
		}

		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)

		return d, cmd

	case tea.WindowSizeMsg:
		d.help.Width = msg.Width
	}

	return d, nil
}

func (d *Dashboard) begin(task string, cmd tea.Cmd) tea.Cmd {
	d.task = task
	d.status = ""

	return tea.Batch(cmd, d.spinner.Tick)
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("SQL completion from your own query history"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s · %s", d.mode, d.client.endpoint)))
	b.WriteString("\n\n")

	b.WriteString(borderStyle.Padding(0, 1).Render(d.storePanel()))
	b.WriteString("\n\n")

	if d.task != "" {
		b.WriteString(d.spinner.View() + " " + infoStyle.Render(d.task+"..."))
		b.WriteString("\n")
	} else if d.status != "" {
		b.WriteString(infoStyle.Render(d.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(d.help.View(d.keys)))

	return b.String()
}

func (d *Dashboard) storePanel() string {
	label := lipgloss.NewStyle().Foreground(colorGray).Width(18)
	value := lipgloss.NewStyle().Foreground(colorWhite).Bold(true)

	row := func(name, v string) string {
		return label.Render(name) + value.Render(v)
	}

	switch {
	case d.statsErr != nil:
		return strings.Join([]string{
			value.Render("server unreachable"),
			infoStyle.Render(d.statsErr.Error()),
			infoStyle.Render("press s to start it"),
		}, "\n")

	case d.stats == nil:
		return infoStyle.Render("connecting...")
	}

	s := d.stats
	generator := s.GeneratorModel
	if !s.GeneratorReady {
		generator += " (no API key)"
	}

	return strings.Join([]string{
		row("stored queries", fmt.Sprintf("%d", s.Queries)),
		row("pending history", fmt.Sprintf("%d", s.PendingHistory)),
		row("store", fmt.Sprintf("%s, %s, %d dims", s.Store, s.Metric, s.Dimension)),
		row("embedder", s.EmbedderModel),
		row("generator", generator),
	}, "\n")
}
