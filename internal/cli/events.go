package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/qrorder/internal/canon"
	"github.com/roach88/qrorder/internal/order"
)

// formatEvent renders e as one human-readable line.
func formatEvent(e order.Event) string {
	parts := []string{fmt.Sprintf("#%d", e.Seq), string(e.Type)}
	if e.ItemID != "" {
		parts = append(parts, e.ItemID)
	}
	switch e.Type {
	case order.EventAdded, order.EventDecremented:
		parts = append(parts, fmt.Sprintf("qty=%d", e.Quantity))
	case order.EventStockOut:
		parts = append(parts, strings.Join(e.ItemNames, ", "))
	}
	if e.Token != "" {
		parts = append(parts, "token="+e.Token)
	}
	if e.Cause != "" && e.Cause != order.CauseNone {
		parts = append(parts, "cause="+string(e.Cause))
	}
	if e.Code != "" {
		parts = append(parts, "code="+string(e.Code))
	}
	return strings.Join(parts, " ")
}

// lineWriter serialises whole lines from the engine loop and the command
// reader onto one writer.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) Println(line string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	fmt.Fprintln(lw.w, line)
}

// eventPrinter is an order.Notifier that prints each event. JSON output is
// one canonical object per line.
type eventPrinter struct {
	out  *lineWriter
	json bool
}

func (p *eventPrinter) Notify(e order.Event) {
	if !p.json {
		p.out.Println(formatEvent(e))
		return
	}
	if err := p.out.PrintCanonical(e.Payload()); err != nil {
		slog.Error("failed to encode event", "seq", e.Seq, "error", err)
	}
}

// PrintCanonical writes v as one line of canonical JSON.
func (lw *lineWriter) PrintCanonical(v any) error {
	data, err := canon.Marshal(v)
	if err != nil {
		return err
	}
	lw.Println(string(data))
	return nil
}
