package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type contextKey string

const RunIDKey contextKey = "run_id"

// RunFunc matches cobra.Command.RunE.
type RunFunc func(cmd *cobra.Command, args []string) error

type Middleware func(RunFunc) RunFunc

// Chain wraps h so that the first middleware runs outermost.
func Chain(h RunFunc, mws ...Middleware) RunFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RunID attaches a fresh run ID to the command context.
func RunID(next RunFunc) RunFunc {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, RunIDKey, uuid.New()))
		return next(cmd, args)
	}
}

// GetRunID extracts the run ID from ctx; it is uuid.Nil outside a command.
func GetRunID(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	id, _ := ctx.Value(RunIDKey).(uuid.UUID)
	return id
}

// Logger logs each command with its run ID and duration.
func Logger(logger *slog.Logger) Middleware {
	return func(next RunFunc) RunFunc {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err := next(cmd, args)

			attrs := []any{
				"command", cmd.CommandPath(),
				"run_id", GetRunID(cmd.Context()).String(),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Debug("command failed", append(attrs, "error", err)...)
				return err
			}
			logger.Debug("command finished", attrs...)
			return nil
		}
	}
}
