package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"studytracker/internal/services"
)

type TransferHandler struct {
	svc *services.StudySessionService
}

func NewTransferHandler(svc *services.StudySessionService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// Export writes a snapshot to --output, or to stdout when it is empty or "-".
func (h *TransferHandler) Export(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	format, err := h.format(cmd, output)
	if err != nil {
		return handleServiceError(cmd, err)
	}

	if output == "" || output == "-" {
		if _, err := h.svc.ExportSessions(cmd.Context(), cmd.OutOrStdout(), format); err != nil {
			return handleServiceError(cmd, err)
		}
		return nil
	}

	n, err := h.exportToFile(cmd, output, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d study sessions to %s\n", n, output)
	return nil
}

// exportToFile removes the file again if anything fails, so no partial
// snapshot is left behind.
func (h *TransferHandler) exportToFile(cmd *cobra.Command, path string, format services.Format) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fail(cmd, errorResp("IO_ERROR", fmt.Sprintf("Could not create %s: %v", path, err), cmd))
	}

	n, err := h.svc.ExportSessions(cmd.Context(), f, format)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, handleServiceError(cmd, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, fail(cmd, errorResp("IO_ERROR", fmt.Sprintf("Could not write %s: %v", path, err), cmd))
	}
	return n, nil
}

func (h *TransferHandler) Import(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := h.format(cmd, path)
	if err != nil {
		return handleServiceError(cmd, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(cmd, errorResp("IO_ERROR", fmt.Sprintf("Could not open %s: %v", path, err), cmd))
	}
	defer f.Close()

	n, err := h.svc.ImportSessions(cmd.Context(), f, format)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d study sessions from %s\n", n, path)
	return nil
}

// format uses --format when set, else the file extension, else YAML.
func (h *TransferHandler) format(cmd *cobra.Command, path string) (services.Format, error) {
	if cmd.Flags().Changed("format") {
		raw, _ := cmd.Flags().GetString("format")
		return services.ParseFormat(raw)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return services.FormatJSON, nil
	}
	return services.FormatYAML, nil
}
