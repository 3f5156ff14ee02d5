package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qrorder/internal/journal"
	"github.com/roach88/qrorder/internal/testutil"
)

func executeRun(t *testing.T, opts *RunOptions, stdin string, args ...string) (string, error) {
	t.Helper()
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	if opts.Tokens == nil {
		opts.Tokens = testutil.NewSequentialTokens("tok")
	}
	buf := &bytes.Buffer{}
	cmd := newRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunScript(t *testing.T) {
	script := `# a customer orders two shirts and a keychain
add t1 2
add a1
commit
status
verify tok-1
dec t1
verify tok-1
add zz
`
	out, err := executeRun(t, &RunOptions{}, script, "--delay", "1h")
	require.NoError(t, err)

	want := []string{
		"#1 Added t1 qty=2",
		"#2 Added a1 qty=1",
		"#3 Committed token=tok-1",
		"cart: t1 x2, a1 x1 (JPY 7,800)",
		"order: Pending token=tok-1",
		"verify tok-1: valid",
		"#4 Invalidated token=tok-1 cause=CartChanged",
		"#5 Decremented t1 qty=1",
		"verify tok-1: invalid",
		"#6 Rejected zz code=INVALID_ARGUMENT",
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", out)
}

func TestRunScript_JSON(t *testing.T) {
	out, err := executeRun(t, &RunOptions{RootOptions: &RootOptions{Format: "json"}},
		"add t1 2\ncommit\nverify tok-1\nstatus\n", "--delay", "1h")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `{"item_id":"t1","quantity":2,"seq":1,"type":"Added"}`, lines[0])
	assert.Equal(t, `{"seq":2,"token":"tok-1","type":"Committed"}`, lines[1])
	assert.Equal(t, `{"token":"tok-1","valid":true}`, lines[2])
	assert.Equal(t, `{"status":{"cart":{"t1":2},"cause":"None","status":"Pending","token":"tok-1","total":7000,"unavailable":[]}}`, lines[3])
}

func TestRunScript_StockOutFires(t *testing.T) {
	out, err := executeRun(t, &RunOptions{}, "add t1\ncommit\nwait 300ms\nstatus\n", "--delay", "20ms")
	require.NoError(t, err)

	assert.Contains(t, out, "#3 Invalidated token=tok-1 cause=ItemsUnavailable")
	assert.Contains(t, out, "#4 StockOut Uni T-shirt")
	assert.Contains(t, out, "cart: empty (JPY 0)")
	assert.Contains(t, out, "order: Invalidated token=tok-1 cause=ItemsUnavailable")
	assert.Contains(t, out, "sold out: Uni T-shirt")
}

func TestRunScript_CommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{"unknown command", "add t1\nfly away\n", "line 2: unknown command \"fly\""},
		{"missing argument", "add\n", "line 1: wrong number of arguments for add"},
		{"too many arguments", "commit now\n", "line 1: wrong number of arguments for commit"},
		{"bad quantity", "add t1 lots\n", "line 1: bad quantity \"lots\""},
		{"bad duration", "wait soon\n", "line 1: bad duration \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRun(t, &RunOptions{}, tt.script)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunScript_RejectionsContinue(t *testing.T) {
	out, err := executeRun(t, &RunOptions{}, "commit\ndec t1\nsoldout t2\nadd t2\nadd t1 -1\nadd t3\n", "--delay", "1h")
	require.NoError(t, err)

	assert.Contains(t, out, "#1 Rejected code=EMPTY_CART")
	assert.Contains(t, out, "#2 Rejected t1 code=NOT_FOUND")
	assert.Contains(t, out, "#3 StockOut Chocolat T-shirt")
	assert.Contains(t, out, "#4 Rejected t2 code=ITEM_UNAVAILABLE")
	assert.Contains(t, out, "#5 Rejected t1 code=INVALID_ARGUMENT")
	assert.Contains(t, out, "#6 Added t3 qty=1")
}

func TestRunScriptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.txt")
	require.NoError(t, os.WriteFile(path, []byte("add a3 2\nremove a3\n"), 0o644))

	out, err := executeRun(t, &RunOptions{}, "", "--script", path)
	require.NoError(t, err)
	assert.Equal(t, "#1 Added a3 qty=2\n#2 Removed a3\n", out)

	_, err = executeRun(t, &RunOptions{}, "", "--script", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunBadFlags(t *testing.T) {
	_, err := executeRun(t, &RunOptions{}, "", "--delay", "0s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--delay must be positive")

	_, err = executeRun(t, &RunOptions{}, "", "--catalog", "/nonexistent/menu.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestRunJournalAndStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "orders.db")

	out, err := executeRun(t, &RunOptions{}, "add t1 2\ncommit\nadd a2\n",
		"--journal", dbPath, "--label", "booth-1", "--stats", "--delay", "1h")
	require.NoError(t, err)

	assert.Contains(t, out, "journal session: ")
	assert.Contains(t, out, "stats:")
	assert.Contains(t, out, "  qrorder.commits.total 1")
	assert.Contains(t, out, "  qrorder.invalidations.total{cause=CartChanged} 1")
	assert.Contains(t, out, "  qrorder.events.total{event.type=Added} 2")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "booth-1", sessions[0].Label)
	assert.Equal(t, 4, sessions[0].EventCount)

	entries, err := j.Events(ctx, sessions[0].ID)
	require.NoError(t, err)
	st, err := journal.Replay(entries)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"t1": 2, "a2": 1}, st.Cart)
	assert.Equal(t, "tok-1", st.Token)
}
