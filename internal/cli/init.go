package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/roach88/stackdock/internal/model"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Seed  string // JSONC file with stacks and cards
	Reset bool   // clear the stored snapshot first
}

// InitResult reports the snapshot the database holds after init.
type InitResult struct {
	Database string `json:"database"`
	Source   string `json:"source"` // "stored", "demo" or the seed path
	Stacks   int    `json:"stacks"`
	Cards    int    `json:"cards"`
}

func (r InitResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s: %d stacks, %d cards (%s)\n", r.Database, r.Stacks, r.Cards, r.Source)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or load the local database",
		Long: `Create or load the local database.

Without flags the stored snapshot is loaded, or the demo stacks are
installed when the database holds none. --seed replaces the snapshot with
the stacks and cards of a JSON file; comments and trailing commas are
allowed.

Examples:
  stackdock init
  stackdock init --reset
  stackdock init --seed ./seed.jsonc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "JSONC file with stacks and cards to install")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "clear the stored snapshot first")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	var seed *model.Snapshot
	if opts.Seed != "" {
		data, err := os.ReadFile(opts.Seed)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read seed", err)
		}
		seed, err = parseSeed(data, time.Now().UnixMilli())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid seed %s", opts.Seed), err)
		}
	}

	a, err := openApp(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.Reset {
		if err := a.store.Clear(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to clear database", err)
		}
		out.VerboseLog("cleared %s", a.cfg.Database)
	}

	source := "stored"
	if seed != nil {
		if err := a.engine.Restore(ctx, seed); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid seed %s", opts.Seed), err)
		}
		source = opts.Seed
	} else {
		// Initialize falls back to the demo stacks when nothing usable is stored.
		if stored, err := a.store.LoadSnapshot(ctx); err != nil || len(stored.Stacks) == 0 {
			source = "demo"
		}
		a.engine.Initialize(ctx)
	}

	snap := a.engine.Snapshot()
	return out.Success(InitResult{
		Database: a.cfg.Database,
		Source:   source,
		Stacks:   len(snap.Stacks),
		Cards:    len(snap.Cards),
	})
}

// parseSeed decodes a JSONC snapshot. Missing covers and timestamps are
// filled in; names must be valid.
func parseSeed(data []byte, now int64) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(jsonc.ToJSON(data), &snap); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	for i := range snap.Stacks {
		st := &snap.Stacks[i]
		if st.ID == "" {
			return nil, fmt.Errorf("stacks[%d]: id is required", i)
		}
		if err := model.ValidateName(st.Name); err != nil {
			return nil, fmt.Errorf("stacks[%d]: %w", i, err)
		}
		st.Name = model.NormalizeName(st.Name)
		if st.Cover == "" {
			st.Cover, st.CoverType = model.NewCover(nil)
		}
		if st.CoverType == "" {
			st.CoverType = model.CoverColor
		}
		if !st.CoverType.Valid() {
			return nil, fmt.Errorf("stacks[%d]: unknown coverType %q", i, st.CoverType)
		}
		fillTimestamps(&st.CreatedAt, &st.UpdatedAt, now)
	}
	for i := range snap.Cards {
		c := &snap.Cards[i]
		if c.ID == "" || c.StackID == "" {
			return nil, fmt.Errorf("cards[%d]: id and stackId are required", i)
		}
		if err := model.ValidateName(c.Name); err != nil {
			return nil, fmt.Errorf("cards[%d]: %w", i, err)
		}
		c.Name = model.NormalizeName(c.Name)
		if c.Cover == "" {
			c.Cover = model.PlaceholderCover(c.ID)
		}
		fillTimestamps(&c.CreatedAt, &c.UpdatedAt, now)
	}
	return &snap, nil
}

func fillTimestamps(created, updated *int64, now int64) {
	if *created == 0 {
		*created = now
	}
	if *updated == 0 {
		*updated = *created
	}
}
