package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// MutationResult reports the outcome of a mutation command.
type MutationResult struct {
	Op           string `json:"op"`
	ID           string `json:"id"`
	SyncStatus   string `json:"sync_status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (r MutationResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s %s: %s\n", r.Op, r.ID, r.SyncStatus)
}

// mutation runs one engine call and returns the id of the record it touched.
type mutation func(ctx context.Context, e *engine.Engine) (string, error)

// runMutation opens the engine, runs m and reports the settled state. A
// gateway rejection exits with ExitFailure after the rollback; refused input
// exits with ExitCommandError.
func runMutation(opts *RootOptions, cmd *cobra.Command, op gateway.Op, m mutation) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	a, err := openInitialized(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := m(ctx, a.engine)
	state := a.engine.State()
	result := MutationResult{
		Op:           string(op),
		ID:           id,
		SyncStatus:   string(state.SyncStatus),
		ErrorMessage: state.ErrorMessage,
	}

	var missing errMissing
	var engErr *engine.Error
	switch {
	case err == nil:
		return out.Success(result)
	case gateway.IsError(err):
		if err := out.Error(CodeSyncFailed, state.ErrorMessage, result); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("%s rolled back", op), err)
	case model.IsValidationError(err):
		if err := out.Error(CodeValidation, err.Error(), nil); err != nil {
			return err
		}
		return WrapExitError(ExitCommandError, "invalid input", err)
	case errors.As(err, &missing):
		return notFound(out, missing.kind, missing.id)
	case errors.As(err, &engErr) && engine.IsUnknownStack(err):
		return notFound(out, "stack", engErr.ID)
	}
	return err
}

// notFound reports a missing record and exits with ExitCommandError.
func notFound(out *OutputFormatter, kind, id string) error {
	msg := fmt.Sprintf("%s %s not found", kind, id)
	if err := out.Error(CodeNotFound, msg, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, msg)
}

// requireStack refuses ids the engine would silently ignore.
func requireStack(e *engine.Engine, id string) error {
	if !e.Snapshot().HasStack(id) {
		return errMissing{kind: "stack", id: id}
	}
	return nil
}

func requireCard(e *engine.Engine, id string) error {
	if !e.Snapshot().HasCard(id) {
		return errMissing{kind: "card", id: id}
	}
	return nil
}

// errMissing is returned by a mutation whose target does not exist.
type errMissing struct{ kind, id string }

func (e errMissing) Error() string { return fmt.Sprintf("%s %s not found", e.kind, e.id) }
