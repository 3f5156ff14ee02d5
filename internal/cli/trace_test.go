package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTrace(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceMissingJournalFlag(t *testing.T) {
	_, err := executeTrace(t, "text", "--session", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentJournal(t *testing.T) {
	_, err := executeTrace(t, "text", "--journal", "/nonexistent/orders.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestTraceSessionAndTokenExclusive(t *testing.T) {
	path, _ := seedJournal(t)
	_, err := executeTrace(t, "text", "--journal", path, "--session", "a", "--token", "b")
	require.Error(t, err)
}

func TestTraceListSessions(t *testing.T) {
	path, id := seedJournal(t)

	out, err := executeTrace(t, "text", "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "booth-1")
	assert.Contains(t, out, "4 events")
}

func TestTraceSession(t *testing.T) {
	path, id := seedJournal(t)

	out, err := executeTrace(t, "text", "--journal", path, "--session", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Session: "+id)
	assert.Contains(t, out, "  #1 Added t1 qty=2\n")
	assert.Contains(t, out, "  #2 Committed token=tok-1\n")
	assert.Contains(t, out, "  #3 Invalidated token=tok-1 cause=ItemsUnavailable\n")
	assert.Contains(t, out, "  #4 StockOut Uni T-shirt\n")
	assert.Contains(t, out, "Stats: 4 events (Added=1 Committed=1 Invalidated=1 StockOut=1)")
}

func TestTraceSessionJSON(t *testing.T) {
	path, id := seedJournal(t)

	out, err := executeTrace(t, "json", "--journal", path, "--session", id)
	require.NoError(t, err)

	var resp struct {
		Status  string      `json:"status"`
		Session string      `json:"session"`
		Data    TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, id, resp.Session)
	require.Len(t, resp.Data.Timeline, 4)
	assert.Equal(t, "Committed", resp.Data.Timeline[1].Type)
	assert.Equal(t, `{"seq":2,"token":"tok-1","type":"Committed"}`, resp.Data.Timeline[1].Payload)
	assert.Equal(t, 1, resp.Data.Counts["StockOut"])
}

func TestTraceToken(t *testing.T) {
	path, id := seedJournal(t)

	out, err := executeTrace(t, "text", "--journal", path, "--token", "tok-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Token: tok-1")
	assert.Contains(t, out, id+"  #2 Committed token=tok-1")
	assert.Contains(t, out, id+"  #3 Invalidated")
	assert.NotContains(t, out, "Added")

	out, err = executeTrace(t, "text", "--journal", path, "--token", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found for token: nope")
}

func TestTraceUnknownSession(t *testing.T) {
	path, _ := seedJournal(t)

	out, err := executeTrace(t, "text", "--journal", path, "--session", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found for session: missing")
}
