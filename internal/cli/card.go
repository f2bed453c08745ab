package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// CardOptions holds the field flags of card add and card edit.
type CardOptions struct {
	Name        string
	Description string
	Cover       string
}

// NewCardCommand creates the card command group.
func NewCardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Add, edit, move or delete a card",
		Long: `Add, edit, move or delete a card.

Exit codes:
  0 - The change was committed
  1 - The gateway rejected the change and it was rolled back
  2 - Command error (invalid name, unknown card or stack, etc.)`,
	}

	cmd.AddCommand(newCardAddCommand(rootOpts))
	cmd.AddCommand(newCardEditCommand(rootOpts))

	cmd.AddCommand(&cobra.Command{
		Use:   "move <id> <stack-id>",
		Short: "Move a card to another stack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpMoveCard, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireCard(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.MoveCard(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpDeleteCard, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireCard(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.DeleteCard(ctx, args[0])
			})
		},
	})

	return cmd
}

func newCardAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CardOptions{}

	cmd := &cobra.Command{
		Use:   "add <stack-id> <name>",
		Short: "Add a card to a stack",
		Long: `Add a card to a stack.

Without --cover the card gets a generated placeholder image.

Example:
  stackdock card add s1 "Dune" --description "Frank Herbert"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(rootOpts, cmd, gateway.OpCreateCard, func(ctx context.Context, e *engine.Engine) (string, error) {
				c, err := e.CreateCard(ctx, model.NewCard{
					StackID:     args[0],
					Name:        args[1],
					Description: opts.Description,
					Cover:       opts.Cover,
				})
				return c.ID, err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Description, "description", "", "card description")
	cmd.Flags().StringVar(&opts.Cover, "cover", "", "cover image URL")

	return cmd
}

func newCardEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CardOptions{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a card's name, description or cover",
		Long: `Change a card's name, description or cover.

Only the flags given are changed.

Example:
  stackdock card edit c1 --name "Dune Messiah"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u model.CardUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &opts.Name
			}
			if cmd.Flags().Changed("description") {
				u.Description = &opts.Description
			}
			if cmd.Flags().Changed("cover") {
				u.Cover = &opts.Cover
			}
			if u == (model.CardUpdate{}) {
				return NewExitError(ExitCommandError, "nothing to change: pass --name, --description or --cover")
			}
			return runMutation(rootOpts, cmd, gateway.OpUpdateCard, func(ctx context.Context, e *engine.Engine) (string, error) {
				if err := requireCard(e, args[0]); err != nil {
					return args[0], err
				}
				return args[0], e.UpdateCard(ctx, args[0], u)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "new description")
	cmd.Flags().StringVar(&opts.Cover, "cover", "", "new cover image URL")

	return cmd
}
