package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/qrorder/internal/engine"
	"github.com/roach88/qrorder/internal/order"
)

// scriptCommand is one parsed line of a run script.
type scriptCommand struct {
	Line int
	Op   string
	Args []string
}

// arity is the allowed argument count per command; max -1 means unbounded.
var arity = map[string][2]int{
	"add":     {1, 2},
	"dec":     {1, 1},
	"remove":  {1, 1},
	"clear":   {0, 0},
	"commit":  {0, 0},
	"restart": {0, 0},
	"soldout": {1, -1},
	"verify":  {1, 1},
	"status":  {0, 0},
	"wait":    {1, 1},
}

// parseLine parses one script line. Blank lines and comments return ok=false.
func parseLine(n int, line string) (scriptCommand, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return scriptCommand{}, false, nil
	}
	fields := strings.Fields(line)
	c := scriptCommand{Line: n, Op: strings.ToLower(fields[0]), Args: fields[1:]}

	bounds, known := arity[c.Op]
	if !known {
		return c, false, NewExitError(ExitCommandError, fmt.Sprintf("line %d: unknown command %q", n, fields[0]))
	}
	if len(c.Args) < bounds[0] || (bounds[1] >= 0 && len(c.Args) > bounds[1]) {
		return c, false, NewExitError(ExitCommandError, fmt.Sprintf("line %d: wrong number of arguments for %s", n, c.Op))
	}
	return c, true, nil
}

// runScript executes commands from r until EOF or ctx is cancelled.
// Rejected operations are reported through the event stream and do not stop
// the script.
func runScript(ctx context.Context, eng *engine.Engine, r io.Reader, out *lineWriter, asJSON bool) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		c, ok, err := parseLine(n, scanner.Text())
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := execCommand(ctx, eng, c, out, asJSON); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read commands", err)
	}
	return nil
}

func execCommand(ctx context.Context, eng *engine.Engine, c scriptCommand, out *lineWriter, asJSON bool) error {
	var err error
	switch c.Op {
	case "add":
		qty := 1
		if len(c.Args) == 2 {
			qty, err = strconv.Atoi(c.Args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("line %d: bad quantity %q", c.Line, c.Args[1]))
			}
		}
		err = eng.Add(ctx, c.Args[0], qty)
	case "dec":
		err = eng.Decrement(ctx, c.Args[0])
	case "remove":
		err = eng.Remove(ctx, c.Args[0])
	case "clear":
		err = eng.Clear(ctx)
	case "commit":
		_, err = eng.Commit(ctx)
	case "restart":
		err = eng.Restart(ctx)
	case "soldout":
		err = eng.MarkUnavailable(ctx, c.Args...)
	case "verify":
		var valid bool
		valid, err = eng.Verify(ctx, c.Args[0])
		if err == nil {
			err = printVerify(out, c.Args[0], valid, asJSON)
		}
	case "status":
		var view order.View
		view, err = eng.View(ctx)
		if err == nil {
			err = printStatus(out, eng, view, asJSON)
		}
	case "wait":
		d, perr := time.ParseDuration(c.Args[0])
		if perr != nil || d < 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("line %d: bad duration %q", c.Line, c.Args[0]))
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var oe *order.Error
	if errors.As(err, &oe) {
		return nil
	}
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("line %d: %s", c.Line, c.Op), err)
	}
	return nil
}

func printVerify(out *lineWriter, token string, valid bool, asJSON bool) error {
	if asJSON {
		return out.PrintCanonical(map[string]any{"token": token, "valid": valid})
	}
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	out.Println(fmt.Sprintf("verify %s: %s", token, verdict))
	return nil
}

func printStatus(out *lineWriter, eng *engine.Engine, v order.View, asJSON bool) error {
	cat := eng.Catalog()
	if asJSON {
		cart := make(map[string]any, v.Cart.Len())
		for _, l := range v.Cart.Lines() {
			cart[l.ItemID] = l.Quantity
		}
		status := map[string]any{
			"cart":        cart,
			"total":       v.Cart.Total(),
			"status":      string(v.Commitment.Status),
			"unavailable": v.Unavailable,
		}
		if v.HasCommitment {
			status["token"] = v.Commitment.Token
			status["cause"] = string(v.Commitment.Cause)
		}
		return out.PrintCanonical(map[string]any{"status": status})
	}

	lines := make([]string, 0, v.Cart.Len())
	for _, l := range v.Cart.Lines() {
		lines = append(lines, fmt.Sprintf("%s x%d", l.ItemID, l.Quantity))
	}
	cartText := "empty"
	if len(lines) > 0 {
		cartText = strings.Join(lines, ", ")
	}
	out.Println(fmt.Sprintf("cart: %s (%s)", cartText, cat.FormatPrice(v.Cart.Total())))

	switch v.Commitment.Status {
	case order.StatusPending:
		out.Println("order: Pending token=" + v.Commitment.Token)
	case order.StatusInvalidated:
		out.Println(fmt.Sprintf("order: Invalidated token=%s cause=%s", v.Commitment.Token, v.Commitment.Cause))
	default:
		out.Println("order: None")
	}
	if len(v.Unavailable) > 0 {
		out.Println("sold out: " + strings.Join(cat.Names(v.Unavailable), ", "))
	}
	return nil
}
