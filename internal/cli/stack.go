package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// NewStackCommand creates the stack command group.
func NewStackCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Create, rename, shuffle or delete a stack",
		Long: `Create, rename, shuffle or delete a stack.

Each change is applied locally, sent to the gateway and committed, or
rolled back when the gateway rejects it.

Exit codes:
  0 - The change was committed
  1 - The gateway rejected the change and it was rolled back
  2 - Command error (invalid name, unknown stack, etc.)`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a stack with a generated cover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpCreateStack, func(ctx context.Context, e *engine.Engine) (string, error) {
				st, err := e.CreateStack(ctx, args[0])
				return st.ID, err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a stack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpUpdateStack, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireStack(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.UpdateStack(ctx, args[0], model.StackUpdate{Name: &args[1]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "shuffle <id>",
		Short: "Give a stack a new random cover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpUpdateStack, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireStack(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.ShuffleStackCover(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stack and all of its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpDeleteStack, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireStack(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.DeleteStack(ctx, args[0])
			})
		},
	})

	return cmd
}
