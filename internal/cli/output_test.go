package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/config"
	"github.com/roach88/sentropy/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E_CALCULATION", "measurement failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_CALCULATION", resp.Error.Code)
	assert.Equal(t, "measurement failed", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All records valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "All records valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E_IO", "journal unavailable", map[string]string{"path": "x.db"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E_IO]: journal unavailable")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"path": "x.db"}
	err := formatter.Error("E_IO", "journal unavailable", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E_IO]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Validated %d record(s)", 3)

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "Validated 3 record(s)")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"calculation", ir.NewError(ir.KindCalculation, "op", "bad"), "E_CALCULATION"},
		{"marker", ir.NewMarkerError("align", "a", "b"), "E_MARKER_VALIDATION"},
		{"wrapped", fmt.Errorf("outer: %w", ir.NewError(ir.KindIO, "op", "disk")), "E_IO"},
		{"plain", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitFailure, exitCodeFor(ir.NewError(ir.KindCalculation, "op", "bad")))
	assert.Equal(t, ExitFailure, exitCodeFor(ir.NewError(ir.KindAlignment, "op", "bad")))
	assert.Equal(t, ExitCommandError, exitCodeFor(ir.NewError(ir.KindConfiguration, "op", "bad")))
	assert.Equal(t, ExitCommandError, exitCodeFor(ir.NewError(ir.KindIO, "op", "bad")))
	assert.Equal(t, ExitCommandError, exitCodeFor(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, exitCodeFor(errors.New("boom")))
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := ir.NewError(ir.KindConfiguration, "validate_config", "history cap must be positive").
		WithDetail("field", "history_cap")
	err := formatter.Fail("invalid configuration", cause)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, errors.Is(err, cause))

	resp, _ := decodeResponse(t, buf.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_CONFIGURATION", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid configuration")
	assert.Equal(t, map[string]any{"field": "history_cap"}, resp.Error.Details)
}

func TestErrorDetails_CompileError(t *testing.T) {
	cErr := &config.CompileError{Field: "policy.decay_factor", Message: "out of bound", Pos: token.NoPos}
	wrapped := ir.WrapError(ir.KindConfiguration, "load_config", cErr)

	assert.Equal(t, map[string]string{"field": "policy.decay_factor"}, errorDetails(wrapped))
	assert.Nil(t, errorDetails(errors.New("boom")))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitCommandError, "failed to open", errors.New("no such file"))
	assert.Equal(t, "failed to open: no such file", err.Error())
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
