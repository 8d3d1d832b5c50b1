package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m *EditorModel, text string) (*EditorModel, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestShouldSuggest(t *testing.T) {
	assert.False(t, shouldSuggest("SELEC"))
	assert.False(t, shouldSuggest("   SELECT\n  from "))
	assert.True(t, shouldSuggest("SELECT"))
	assert.True(t, shouldSuggest("x\nSELECT * FROM"))
}

func TestJoinSuggestion(t *testing.T) {
	tests := []struct {
		current    string
		suggestion string
		want       string
	}{
		{"SELECT name F", "ROM users", "SELECT name FROM users"},
		{"SELECT * FROM", "users", "SELECT * FROM users"},
		{"SELECT * FROM ", "users", "SELECT * FROM users"},
		{"SELECT id", ", name FROM users", "SELECT id, name FROM users"},
		{"SELECT 1", "", "SELECT 1"},
		{"", "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, joinSuggestion(tt.current, tt.suggestion), tt.current)
	}
}

func TestAppendRecent_CapsLength(t *testing.T) {
	var recent []string
	for i := 0; i < maxRecentQueries+5; i++ {
		recent = appendRecent(recent, "q")
	}

	assert.Len(t, recent, maxRecentQueries)
}

func TestEditor_DebounceIgnoresStaleTicks(t *testing.T) {
	m := NewEditor(NewClient("http://127.0.0.1:0"))

	m, cmd := typeText(m, "SELECT * FROM")
	require.NotNil(t, cmd)
	assert.Equal(t, "SELECT * FROM", m.Value())

	stale := m.seq - 1
	m, cmd = m.Update(debounceMsg{seq: stale})
	assert.Nil(t, cmd)
	assert.False(t, m.isFetching)

	_, cmd = m.Update(debounceMsg{seq: m.seq})
	assert.NotNil(t, cmd)
	assert.True(t, m.isFetching)
}

func TestEditor_ShortInputDoesNotFetch(t *testing.T) {
	m := NewEditor(NewClient("http://127.0.0.1:0"))

	m, _ = typeText(m, "SEL")
	m, cmd := m.Update(debounceMsg{seq: m.seq})

	assert.Nil(t, cmd)
	assert.False(t, m.isFetching)
}

func TestEditor_AcceptSuggestion(t *testing.T) {
	m := NewEditor(NewClient("http://127.0.0.1:0"))

	m, _ = typeText(m, "SELECT name F")
	m, _ = m.Update(SuggestionMsg{query: "SELECT name F", suggestion: "ROM users", retrieved: 2, model: "gpt-4o-mini"})
	assert.Equal(t, "ROM users", m.suggestion)
	assert.Contains(t, m.View(), "retrieved: 2 similar")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.Equal(t, "SELECT name FROM users", m.Value())
	assert.Empty(t, m.suggestion)
}

func TestEditor_DropsSuggestionForChangedQuery(t *testing.T) {
	m := NewEditor(NewClient("http://127.0.0.1:0"))

	m, _ = typeText(m, "SELECT name FROM u")
	m, _ = m.Update(SuggestionMsg{query: "SELECT name F", suggestion: "ROM users"})

	assert.Empty(t, m.suggestion)
	assert.False(t, m.isFetching)
}

func TestEditor_EnterRecordsHistory(t *testing.T) {
	var got historyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/history", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"accepted":1}`))
	}))
	defer srv.Close()

	m := NewEditor(NewClient(srv.URL))

	m, _ = typeText(m, "SELECT 1")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, []string{"SELECT 1"}, m.recent)
	assert.Empty(t, m.Value())

	msg := cmd()
	recorded, ok := msg.(HistoryRecordedMsg)
	require.True(t, ok)
	require.NoError(t, recorded.err)
	assert.Equal(t, 1, recorded.accepted)
	assert.Equal(t, []string{"SELECT 1"}, got.Queries)

	m, _ = m.Update(recorded)
	assert.Contains(t, m.status, "recorded 1 executed query")
}

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/complete", r.URL.Path)

		var req completeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"SELECT 1"}, req.RecentQueries)
		assert.Equal(t, "SELECT * FROM", req.CurrentQuery)

		_, _ = w.Write([]byte(`{"suggestion":"users","similar_queries_retrieved":3,"model":"gpt-4o-mini"}`))
	}))
	defer srv.Close()

	msg := NewClient(srv.URL).CompleteCmd([]string{"SELECT 1"}, "SELECT * FROM")()

	suggestion, ok := msg.(SuggestionMsg)
	require.True(t, ok)
	assert.Equal(t, "users", suggestion.suggestion)
	assert.Equal(t, 3, suggestion.retrieved)
	assert.Equal(t, "SELECT * FROM", suggestion.query)
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"store_unavailable","message":"vector store unavailable"}`))
	}))
	defer srv.Close()

	msg := NewClient(srv.URL).CompleteCmd(nil, "SELECT * FROM")()

	failed, ok := msg.(SuggestionErrorMsg)
	require.True(t, ok)
	assert.Contains(t, failed.err.Error(), "store_unavailable")
}

func keyPress(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func offlineEndpoint(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	return srv.URL
}

func TestDashboard_ShowsStoreStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"queries":42,"store":"bolt","metric":"l2","dimension":1536,` +
			`"embedder_model":"text-embedding-3-small","generator_model":"gpt-4o-mini",` +
			`"generator_ready":false,"pending_history":3}`))
	}))
	defer srv.Close()

	d := NewDashboard("development", NewClient(srv.URL))
	assert.Contains(t, d.View(), "connecting...")

	msg := d.Init()()
	stats, ok := msg.(StatsMsg)
	require.True(t, ok)
	require.NoError(t, stats.err)

	d, _ = d.Update(stats)
	view := d.View()

	assert.Contains(t, view, "42")
	assert.Contains(t, view, "bolt, l2, 1536 dims")
	assert.Contains(t, view, "gpt-4o-mini (no API key)")
	assert.Contains(t, view, "text-embedding-3-small")
}

func TestDashboard_ServerUnreachable(t *testing.T) {
	d := NewDashboard("development", NewClient(offlineEndpoint(t)))

	d, _ = d.Update(d.Init()())

	assert.Nil(t, d.stats)
	require.Error(t, d.statsErr)
	assert.Contains(t, d.View(), "server unreachable")
}

func TestDashboard_IngestOnlyInDevelopment(t *testing.T) {
	prod := NewDashboard("production", NewClient(offlineEndpoint(t)))
	prod, cmd := prod.Update(keyPress("i"))
	assert.Nil(t, cmd)
	assert.Empty(t, prod.task)
	assert.NotContains(t, prod.View(), "ingest pgAdmin history")

	dev := NewDashboard("development", NewClient(offlineEndpoint(t)))
	assert.Contains(t, dev.View(), "ingest pgAdmin history")

	dev, cmd = dev.Update(keyPress("i"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "ingesting pgAdmin history", dev.task)

	// a second task waits for the first
	_, cmd = dev.Update(keyPress("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, "ingesting pgAdmin history", dev.task)
}

func TestDashboard_StartSkippedWhenServerAnswers(t *testing.T) {
	d := NewDashboard("development", NewClient("http://localhost:8000"))
	d, _ = d.Update(StatsMsg{stats: &statsResponse{Store: "memory"}})

	d, cmd := d.Update(keyPress("s"))

	assert.Nil(t, cmd)
	assert.Empty(t, d.task)
	assert.Contains(t, d.status, "already answering at http://localhost:8000")
}

func TestDashboard_TaskResults(t *testing.T) {
	d := NewDashboard("development", NewClient(offlineEndpoint(t)))

	d.task = "starting server"
	d, cmd := d.Update(ServerStartedMsg{err: assert.AnError})
	assert.Nil(t, cmd)
	assert.Empty(t, d.task)
	assert.Contains(t, d.status, "server failed to start")

	d.task = "ingesting pgAdmin history"
	d, cmd = d.Update(IngesterCompleteMsg{summary: "inserted 3"})
	assert.NotNil(t, cmd)
	assert.Empty(t, d.task)
	assert.Equal(t, "ingested: inserted 3", d.status)
	assert.Contains(t, d.View(), "ingested: inserted 3")
}

func TestSummarizeReport(t *testing.T) {
	out := `
Read:            10
Blank skipped:   1
Distinct:        8
Inserted:        6
Already present: 2
Embed failures:  0
Store failures:  0
`

	assert.Equal(t,
		"read 10, blank skipped 1, distinct 8, inserted 6, already present 2, embed failures 0, store failures 0",
		summarizeReport(out),
	)
	assert.Equal(t, "done", summarizeReport(""))
}

func TestClient_WaitReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).WaitReady(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 3*readyPollInterval)
	defer cancel()

	err := NewClient(offlineEndpoint(t)).WaitReady(ctx)
	assert.ErrorContains(t, err, "did not answer")
}

func TestApp_Navigation(t *testing.T) {
	app := NewApp("development", offlineEndpoint(t))
	assert.Equal(t, StateDashboard, app.state)

	_, _ = app.Update(keyPress("c"))
	assert.Equal(t, StateDashboard, app.state)

	_, _ = app.Update(EnterEditorMsg{})
	assert.Equal(t, StateEditor, app.state)

	// background results reach the dashboard while the console shows
	_, _ = app.Update(StatsMsg{stats: &statsResponse{Queries: 7}})
	require.NotNil(t, app.dashboard.stats)
	assert.Equal(t, 7, app.dashboard.stats.Queries)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, StateDashboard, app.state)
	assert.NotNil(t, cmd)
}
