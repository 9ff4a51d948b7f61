package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"studytracker/internal/middleware"
	"studytracker/internal/models"
	"studytracker/internal/repository"
	"studytracker/internal/services"
)

// CommandError is returned by a handler after the error has been reported.
type CommandError struct {
	Response models.ErrorResponse
}

func (e *CommandError) Error() string {
	msg := e.Response.Error.Code + ": " + e.Response.Error.Message
	if len(e.Response.Error.Fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(e.Response.Error.Fields))
	for k := range e.Response.Error.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Response.Error.Fields[k])
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}

func writeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func errorResp(code, message string, cmd *cobra.Command) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:    code,
			Message: message,
			RunID:   middleware.GetRunID(cmd.Context()).String(),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, cmd *cobra.Command) models.ErrorResponse {
	resp := errorResp(code, message, cmd)
	resp.Error.Fields = fields
	return resp
}

// fail reports resp in --json mode and returns it as an error so the process
// exits non-zero.
func fail(cmd *cobra.Command, resp models.ErrorResponse) error {
	if jsonOutput(cmd) {
		writeJSON(cmd.OutOrStdout(), resp)
	}
	return &CommandError{Response: resp}
}

func handleServiceError(cmd *cobra.Command, err error) error {
	var verr *services.ValidationError
	var serr *repository.StorageError
	switch {
	case errors.As(err, &verr):
		return fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed", verr.Fields, cmd))
	case errors.As(err, &serr):
		return fail(cmd, errorResp("STORAGE_ERROR", "Could not "+serr.Op, cmd))
	default:
		return fail(cmd, errorResp("INTERNAL_ERROR", err.Error(), cmd))
	}
}

func notFound(cmd *cobra.Command, id int64) error {
	return fail(cmd, errorResp("NOT_FOUND", fmt.Sprintf("Study session %d not found", id), cmd))
}

func parseID(cmd *cobra.Command, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"id": "Invalid session ID"}, cmd))
	}
	return id, nil
}
