package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/models"
	"studytracker/internal/repository"
	"studytracker/internal/services"
)

func newTestCommand(jsonMode bool) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "probe"}
	cmd.Flags().Bool("json", jsonMode, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func TestHandleServiceError_Codes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{
			name:    "validation",
			err:     &services.ValidationError{Fields: map[string]string{"subject": "Subject cannot be empty"}},
			code:    "VALIDATION_ERROR",
			message: "Validation failed",
		},
		{
			name:    "wrapped storage",
			err:     fmt.Errorf("report: %w", &repository.StorageError{Op: "retrieve study sessions", Err: errors.New("disk I/O error")}),
			code:    "STORAGE_ERROR",
			message: "Could not retrieve study sessions",
		},
		{
			name:    "anything else",
			err:     errors.New("unexpected"),
			code:    "INTERNAL_ERROR",
			message: "unexpected",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, out := newTestCommand(true)
			err := handleServiceError(cmd, tc.err)

			var cmdErr *CommandError
			require.ErrorAs(t, err, &cmdErr)
			assert.Equal(t, tc.code, cmdErr.Response.Error.Code)
			assert.Equal(t, tc.message, cmdErr.Response.Error.Message)

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(out.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleServiceError_TextModeWritesNothing(t *testing.T) {
	cmd, out := newTestCommand(false)
	err := handleServiceError(cmd, &services.ValidationError{Fields: map[string]string{"id": "Invalid session ID"}})

	assert.EqualError(t, err, "VALIDATION_ERROR: Validation failed (id: Invalid session ID)")
	assert.Empty(t, out.String())
}

func TestParseID(t *testing.T) {
	cmd, _ := newTestCommand(false)

	id, err := parseID(cmd, " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID(cmd, "4x")
	assert.ErrorContains(t, err, "Invalid session ID")
}
