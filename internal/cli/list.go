package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/stackdock/internal/model"
)

// StackRow is one line of the stacks listing.
type StackRow struct {
	model.Stack
	CardCount int `json:"cardCount"`
}

// StackList is the result of the stacks command.
type StackList []StackRow

func (l StackList) RenderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No stacks.")
		return
	}
	for _, r := range l {
		fmt.Fprintf(w, "%s  %s  (%d cards)\n", r.ID, r.Name, r.CardCount)
	}
}

// CardList is the result of the cards command.
type CardList []model.Card

func (l CardList) RenderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No cards.")
		return
	}
	for _, c := range l {
		if c.Description != "" {
			fmt.Fprintf(w, "%s  %s  - %s\n", c.ID, c.Name, c.Description)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", c.ID, c.Name)
	}
}

// NewStacksCommand creates the stacks command.
func NewStacksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stacks",
		Short: "List stacks with their card counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openInitialized(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.engine.Snapshot()
			rows := make(StackList, 0, len(snap.Stacks))
			for _, st := range snap.Stacks {
				rows = append(rows, StackRow{Stack: st, CardCount: snap.CardCount(st.ID)})
			}
			return rootOpts.formatter(cmd).Success(rows)
		},
	}
}

// NewCardsCommand creates the cards command.
func NewCardsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cards <stack-id>",
		Short: "List the cards of a stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openInitialized(cmd.Context(), rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.engine.Snapshot().HasStack(args[0]) {
				return notFound(rootOpts.formatter(cmd), "stack", args[0])
			}
			return rootOpts.formatter(cmd).Success(CardList(a.engine.CardsForStack(args[0])))
		},
	}
}
