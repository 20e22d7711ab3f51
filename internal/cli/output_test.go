package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Error(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		verbose bool
		details interface{}
		want    []string
		absent  []string
	}{
		{
			name:   "text",
			format: "text",
			want:   []string{"Error [E004]: sweep failed"},
			absent: []string{"Details:"},
		},
		{
			name:    "text hides details unless verbose",
			format:  "text",
			details: "trial 3",
			absent:  []string{"trial 3"},
		},
		{
			name:    "text verbose details",
			format:  "text",
			verbose: true,
			details: "trial 3",
			want:    []string{"Details: trial 3"},
		},
		{
			name:    "json",
			format:  "json",
			details: map[string]string{"file": "sweep.yaml"},
			want:    []string{`"status":"error"`, `"code":"E004"`, `"file":"sweep.yaml"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(ErrCodeSweep, "sweep failed", tt.details))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, buf.String(), a)
			}
		})
	}
}

func TestOutputFormatter_Success(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: buf}).Success("Sweep complete"))
	assert.Equal(t, "Sweep complete\n", buf.String())

	buf.Reset()
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: buf}).Success(map[string]int{"trials": 4}))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"trials": 4.0}, resp.Data)
	assert.Empty(t, resp.Session)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.VerboseLog("Validating %s", "sweep.yaml")
	assert.Empty(t, diag.String())

	formatter.Verbose = true
	formatter.VerboseLog("Validating %s", "sweep.yaml")
	assert.Equal(t, "Validating sweep.yaml\n", diag.String())
	assert.Empty(t, out.String())
}

type textResult struct{ trials int }

func (r textResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d trials\n", r.trials)
	return err
}

func TestOutputFormatter_Texter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(textResult{trials: 72}))
	assert.Equal(t, "72 trials\n", buf.String())
}

func TestOutputFormatter_SuccessWithSession(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.SuccessWithSession(map[string]int{"rows": 2}, "session-1"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "session-1", resp.Session)
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}
	cause := errors.New("disk full")

	err := formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", cause)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
	assert.Equal(t, "disk full", resp.Error.Details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
}
