package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSONC = `{
	// Two stacks, one of them empty.
	"stacks": [
		{"id": "s1", "name": "Reading"},
		{"id": "s2", "name": "Done", "cover": "#22c55e", "coverType": "color"},
	],
	"cards": [
		{"id": "c1", "name": "Dune", "stackId": "s1"},
		{"id": "c2", "name": "Emma", "stackId": "s1", "description": "Austen"}, // trailing comma
	],
}`

// seeded writes a config and installs the seed into its database.
func seeded(t *testing.T, failureRate string) string {
	t.Helper()
	cfg := writeConfig(t, failureRate)
	seedPath := filepath.Join(t.TempDir(), "seed.jsonc")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedJSONC), 0644))

	out, err := execute(t, "--config", cfg, "init", "--seed", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 stacks, 2 cards")
	return cfg
}

// decodeData runs a JSON command and decodes its data payload into v.
func decodeData(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := execute(t, append([]string{"--format", "json"}, args...)...)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestInit_InstallsDemoOnce(t *testing.T) {
	cfg := writeConfig(t, "0.0")

	out, err := execute(t, "--config", cfg, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "3 stacks, 5 cards (demo)")

	out, err = execute(t, "--config", cfg, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "3 stacks, 5 cards (stored)")

	out, err = execute(t, "--config", cfg, "init", "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "(demo)")
}

func TestInit_DatabaseFlagOverridesConfig(t *testing.T) {
	cfg := writeConfig(t, "0.0")
	db := filepath.Join(t.TempDir(), "other.db")

	out, err := execute(t, "--config", cfg, "--db", db, "init")
	require.NoError(t, err)
	assert.Contains(t, out, db)
	assert.FileExists(t, db)
}

func TestInit_Seed(t *testing.T) {
	cfg := seeded(t, "0.0")

	var stacks []StackRow
	decodeData(t, &stacks, "--config", cfg, "stacks")
	require.Len(t, stacks, 2)
	assert.Equal(t, "s1", stacks[0].ID)
	assert.Equal(t, 2, stacks[0].CardCount)
	assert.NotEmpty(t, stacks[0].Cover)
	assert.Equal(t, "#22c55e", stacks[1].Cover)
	assert.Equal(t, 0, stacks[1].CardCount)

	out, err := execute(t, "--config", cfg, "cards", "s1")
	require.NoError(t, err)
	assert.Equal(t, "c1  Dune\nc2  Emma  - Austen\n", out)
}

func TestInit_InvalidSeed(t *testing.T) {
	cfg := writeConfig(t, "0.0")
	seeds := map[string]string{
		"dangling":   `{"stacks": [], "cards": [{"id": "c1", "name": "Dune", "stackId": "gone"}]}`,
		"empty name": `{"stacks": [{"id": "s1", "name": "  "}]}`,
		"duplicate":  `{"stacks": [{"id": "s1", "name": "A"}, {"id": "s1", "name": "B"}]}`,
		"malformed":  `{"stacks": [`,
	}

	for name, body := range seeds {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.jsonc")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := execute(t, "--config", cfg, "init", "--seed", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "invalid seed")
		})
	}
}

func TestStackAndCardLifecycle(t *testing.T) {
	cfg := seeded(t, "0.0")

	var created MutationResult
	decodeData(t, &created, "--config", cfg, "stack", "create", "  Later  ")
	assert.Equal(t, "create_stack", created.Op)
	assert.Equal(t, "idle", created.SyncStatus)
	require.NotEmpty(t, created.ID)

	out, err := execute(t, "--config", cfg, "stack", "rename", created.ID, "Someday")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("update_stack %s: idle\n", created.ID), out)

	_, err = execute(t, "--config", cfg, "stack", "shuffle", created.ID)
	require.NoError(t, err)

	var card MutationResult
	decodeData(t, &card, "--config", cfg, "card", "add", created.ID, "Ulysses", "--description", "Joyce")
	require.NotEmpty(t, card.ID)

	_, err = execute(t, "--config", cfg, "card", "edit", card.ID, "--name", "Ulysses (annotated)")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfg, "card", "move", "c1", created.ID)
	require.NoError(t, err)
	_, err = execute(t, "--config", cfg, "card", "delete", "c2")
	require.NoError(t, err)

	out, err = execute(t, "--config", cfg, "cards", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Ulysses (annotated)  - Joyce")
	assert.Contains(t, out, "c1  Dune")

	out, err = execute(t, "--config", cfg, "stacks")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%s  Someday  (2 cards)", created.ID))
	assert.Contains(t, out, "s1  Reading  (0 cards)")

	_, err = execute(t, "--config", cfg, "stack", "delete", created.ID)
	require.NoError(t, err)

	var stacks []StackRow
	decodeData(t, &stacks, "--config", cfg, "stacks")
	assert.Len(t, stacks, 2)
}

func TestMutation_GatewayRejects(t *testing.T) {
	cfg := seeded(t, "1.0")

	out, err := execute(t, "--config", cfg, "stack", "rename", "s1", "Renamed")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "update_stack rolled back")
	assert.Contains(t, out, "update_stack s1: error")
	assert.Contains(t, out, "Error [E_SYNC_FAILED]: Failed to update stack. Please try again.")

	out, err = execute(t, "--config", cfg, "--format", "json", "card", "delete", "c1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeSyncFailed, resp.Error.Code)

	// The rollbacks left the stored snapshot untouched.
	out, err = execute(t, "--config", cfg, "stacks")
	require.NoError(t, err)
	assert.Contains(t, out, "s1  Reading  (2 cards)")
}

func TestMutation_RefusedInput(t *testing.T) {
	cfg := seeded(t, "0.0")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown stack rename", []string{"stack", "rename", "ghost", "X"}, "stack ghost not found"},
		{"unknown stack delete", []string{"stack", "delete", "ghost"}, "stack ghost not found"},
		{"card into unknown stack", []string{"card", "add", "ghost", "X"}, "stack ghost not found"},
		{"move to unknown stack", []string{"card", "move", "c1", "ghost"}, "stack ghost not found"},
		{"unknown card", []string{"card", "delete", "ghost"}, "card ghost not found"},
		{"blank name", []string{"stack", "create", "   "}, "invalid input"},
		{"edit without flags", []string{"card", "edit", "c1"}, "nothing to change"},
		{"cards of unknown stack", []string{"cards", "ghost"}, "stack ghost not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--config", cfg}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServe_HTTPGateway(t *testing.T) {
	cfg := seeded(t, "0.0")

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		cmd := &cobra.Command{}
		cmd.SetContext(ctx)
		cmd.SetOut(&strings.Builder{})
		cmd.SetErr(&strings.Builder{})
		opts := &ServeOptions{
			RootOptions: &RootOptions{Format: "text", Config: cfg},
			Addr:        "127.0.0.1:0",
			ready:       ready,
		}
		done <- runServe(opts, cmd)
	}()

	addr := <-ready
	body, err := os.ReadFile(cfg)
	require.NoError(t, err)
	httpCfg := filepath.Join(filepath.Dir(cfg), "http.cue")
	require.NoError(t, os.WriteFile(httpCfg, append(body,
		[]byte(fmt.Sprintf("gateway: {mode: \"http\", url: %q}\n", "http://"+addr))...), 0644))

	out, err := execute(t, "--config", httpCfg, "card", "edit", "c1", "--name", "Dune Messiah")
	require.NoError(t, err)
	assert.Equal(t, "update_card c1: idle\n", out)

	// A stack created through the server can be renamed through it.
	out, err = execute(t, "--config", httpCfg, "stack", "create", "Later")
	require.NoError(t, err)
	var created string
	_, err = fmt.Sscanf(out, "create_stack %s", &created)
	require.NoError(t, err)

	_, err = execute(t, "--config", httpCfg, "stack", "rename", strings.TrimSuffix(created, ":"), "Someday")
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)
}

func TestServe_InvalidFailureRate(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, "0.0"), "serve", "--failure-rate", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
