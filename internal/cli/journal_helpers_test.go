package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qrorder/internal/catalog"
	"github.com/roach88/qrorder/internal/journal"
	"github.com/roach88/qrorder/internal/order"
	"github.com/roach88/qrorder/internal/testutil"
)

// seedJournal records one consistent session that ends with a stock-out and
// returns the journal path and session id.
func seedJournal(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	id, err := j.StartSession(ctx, "booth-1", "JPY")
	require.NoError(t, err)
	rec := j.Recorder(ctx, id)

	sched := testutil.NewManualScheduler()
	s := order.NewSession(catalog.Default(), sched,
		order.WithNotifier(rec),
		order.WithSelector(testutil.PickAll),
		order.WithTokenGenerator(testutil.NewFixedTokens("tok-1")),
	)
	require.NoError(t, s.Add("t1", 2))
	_, err = s.Commit()
	require.NoError(t, err)
	sched.Advance(order.DefaultStockOutDelay)
	require.NoError(t, rec.Err())
	return path, id
}

// appendBrokenSession adds a session whose log voids a code that was never
// issued.
func appendBrokenSession(t *testing.T, path string) string {
	t.Helper()
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	id, err := j.StartSession(ctx, "broken", "JPY")
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, id, order.Event{Seq: 1, Type: order.EventAdded, ItemID: "t1", Quantity: 1}))
	require.NoError(t, j.Append(ctx, id, order.Event{Seq: 2, Type: order.EventInvalidated, Token: "ghost", Cause: order.CauseCartChanged}))
	return id
}
