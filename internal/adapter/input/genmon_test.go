package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocf/paper-applet/internal/model"
)

// writeScript creates an executable shell script named paper-genmon in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, Command)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func newTestAdapter(command string, timeout time.Duration) *GenmonAdapter {
	a := NewGenmonAdapter(timeout, nil)
	a.command = command
	return a
}

func TestGenmonAdapter_Name(t *testing.T) {
	assert.Equal(t, "paper-genmon", NewGenmonAdapter(0, nil).Name())
}

func TestGenmonAdapter_Read_TrimsOutput(t *testing.T) {
	script := writeScript(t, `printf '  \n 123 pages remaining \t\n\n'`)

	r := newTestAdapter(script, 5*time.Second).Read(context.Background())

	require.NoError(t, r.Err)
	assert.Equal(t, "123 pages remaining", r.Text)
	assert.False(t, r.Failed())
	assert.NotEmpty(t, r.RunID)
	assert.False(t, r.At.IsZero())
}

func TestGenmonAdapter_Read_MultilineKeepsInnerNewlines(t *testing.T) {
	script := writeScript(t, `printf 'line one\nline two\n'`)

	r := newTestAdapter(script, 0).Read(context.Background())

	require.NoError(t, r.Err)
	assert.Equal(t, "line one\nline two", r.Text)
}

func TestGenmonAdapter_Read_MissingCommand(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	r := newTestAdapter(missing, time.Second).Read(context.Background())

	assert.Equal(t, "Error", r.Text)
	require.Error(t, r.Err)
	assert.True(t, r.Failed())

	var adapterErr *AdapterError
	require.True(t, errors.As(r.Err, &adapterErr))
	assert.Equal(t, "paper-genmon", adapterErr.Source)
	assert.Equal(t, "failed to execute", adapterErr.Message)
}

func TestGenmonAdapter_Read_NonZeroExitKeepsStdout(t *testing.T) {
	script := writeScript(t, "echo 'quota unavailable'\necho oops >&2\nexit 3")

	r := newTestAdapter(script, time.Second).Read(context.Background())

	assert.NoError(t, r.Err)
	assert.Equal(t, "quota unavailable", r.Text)
}

func TestGenmonAdapter_Read_Timeout(t *testing.T) {
	script := writeScript(t, "exec sleep 10")

	start := time.Now()
	r := newTestAdapter(script, 100*time.Millisecond).Read(context.Background())

	assert.Equal(t, model.ErrorText, r.Text)
	require.Error(t, r.Err)
	assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGenmonAdapter_Read_CancelledContext(t *testing.T) {
	script := writeScript(t, "echo 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestAdapter(script, 0).Read(ctx)

	assert.Equal(t, model.ErrorText, r.Text)
	assert.ErrorIs(t, r.Err, context.Canceled)
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"empty", nil, ""},
		{"whitespace only", []byte(" \n\t "), ""},
		{"plain", []byte("5 pages"), "5 pages"},
		{"trailing newline", []byte("5 pages\n"), "5 pages"},
		{"invalid utf8 replaced", []byte("a\xffb\n"), "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOutput(tt.input))
		})
	}
}

func TestAvailable(t *testing.T) {
	script := writeScript(t, "echo 1")

	t.Setenv("PATH", filepath.Dir(script))
	assert.True(t, Available())

	t.Setenv("PATH", t.TempDir())
	assert.False(t, Available())
}

func TestAdapterError(t *testing.T) {
	cause := errors.New("exec: not found")
	err := &AdapterError{Source: "paper-genmon", Message: "failed to execute", Err: cause}

	assert.Equal(t, "paper-genmon: failed to execute: exec: not found", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &AdapterError{Source: "paper-genmon", Message: "no output"}
	assert.Equal(t, "paper-genmon: no output", bare.Error())
}

func TestGenmonAdapter_SetTimeout(t *testing.T) {
	a := NewGenmonAdapter(time.Second, nil)
	assert.Equal(t, time.Second, a.Timeout())

	a.SetTimeout(0)
	assert.Equal(t, time.Duration(0), a.Timeout())
}
