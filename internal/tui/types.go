package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateDashboard AppState = iota
	StateEditor
)

// main TUI application model
type Model struct {
	state     AppState
	mode      string
	width     int
	height    int
	dashboard *Dashboard
	editor    *EditorModel
}

// sent to transition to the editor state
type EnterEditorMsg struct{}

// query console with inline suggestions
type EditorModel struct {
	input           textinput.Model
	width           int
	height          int
	client          *Client
	recent          []string // executed queries, oldest first
	seq             int      // bumped on every edit; stale debounce ticks are ignored
	suggestion      string
	retrieved       int
	model           string
	status          string
	isFetching      bool
	spinner         spinner.Model
	glamourRenderer *glamour.TermRenderer
}

// fires once typing has paused for the debounce interval
type debounceMsg struct {
	seq int
}

// sent when the completion endpoint answers
type SuggestionMsg struct {
	query      string
	suggestion string
	retrieved  int
	model      string
}

// sent when a completion request fails
type SuggestionErrorMsg struct {
	query string
	err   error
}

// sent after executed queries were handed to the history endpoint
type HistoryRecordedMsg struct {
	accepted int
	err      error
}

// start screen: store stats plus server and ingestion controls
type Dashboard struct {
	mode     string
	client   *Client
	keys     dashboardKeys
	help     help.Model
	spinner  spinner.Model
	stats    *statsResponse
	statsErr error  // last failed refresh, nil once the server answers
	task     string // background task in flight, empty when idle
	status   string
}

type dashboardKeys struct {
	Console key.Binding
	Start   key.Binding
	Ingest  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// sent when a stats refresh finishes
type StatsMsg struct {
	stats *statsResponse
	err   error
}

// sent once a started server answers pings, or failed to
type ServerStartedMsg struct {
	err error
}

// sent when the ingester process exits
type IngesterCompleteMsg struct {
	summary string
	err     error
}
