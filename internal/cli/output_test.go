package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"token": "abc"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("EMPTY_CART", "cart is empty", []string{"commit"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	assert.Equal(t, "cart is empty", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("Order code: abc"))
	require.NoError(t, formatter.Error("NOT_FOUND", "t1 is not in the cart", map[string]string{"item": "t1"}))

	out := buf.String()
	assert.Contains(t, out, "Order code: abc")
	assert.Contains(t, out, "Error [NOT_FOUND]: t1 is not in the cart")
	assert.NotContains(t, out, "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("NOT_FOUND", "gone", "t1"))
	assert.Contains(t, buf.String(), "Details: t1")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		errW    bool
	}{
		{"quiet", false, false},
		{"verbose to writer", true, false},
		{"verbose to err writer", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.errW {
				formatter.ErrWriter = errOut
			}

			formatter.VerboseLog("loaded %d items", 8)

			switch {
			case !tt.verbose:
				assert.Empty(t, out.String())
			case tt.errW:
				assert.Empty(t, out.String())
				assert.Equal(t, "loaded 8 items\n", errOut.String())
			default:
				assert.Equal(t, "loaded 8 items\n", out.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", cause, ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", WrapExitError(ExitFailure, "journal", cause)), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to open journal", cause)
	assert.Equal(t, "failed to open journal: no such file", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
