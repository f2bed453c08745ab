package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stackdock/internal/model"
)

// Scenario drives the engine through a sequence of operations with scripted
// gateway outcomes and checks the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is restored into the engine before the first step.
	Seed Seed `yaml:"seed"`

	// IDs are handed out, in order, to records the steps create. When empty,
	// ids are new-1, new-2, ...
	IDs []string `yaml:"ids,omitempty"`

	// Policies select engine policies by their config names.
	StatusPolicy   string `yaml:"status_policy,omitempty"`
	ConflictPolicy string `yaml:"conflict_policy,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Seed is the starting snapshot.
type Seed struct {
	Stacks []SeedStack `yaml:"stacks"`
	Cards  []SeedCard  `yaml:"cards,omitempty"`
}

// SeedStack is a stack with a fixed id. Omitted cover fields default to a
// solid color; omitted timestamps default to 1.
type SeedStack struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Cover     string `yaml:"cover,omitempty"`
	CoverType string `yaml:"cover_type,omitempty"`
	CreatedAt int64  `yaml:"created_at,omitempty"`
	UpdatedAt int64  `yaml:"updated_at,omitempty"`
}

// SeedCard is a card with a fixed id.
type SeedCard struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cover       string `yaml:"cover,omitempty"`
	StackID     string `yaml:"stack_id"`
	CreatedAt   int64  `yaml:"created_at,omitempty"`
	UpdatedAt   int64  `yaml:"updated_at,omitempty"`
}

// Step is one engine call.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	Args StepArgs `yaml:"args,omitempty"`

	// Outcome decides the gateway result: "succeed" (default) or "fail".
	Outcome string `yaml:"outcome,omitempty"`

	// Error is the rejection message when Outcome is "fail".
	Error string `yaml:"error,omitempty"`

	// As leaves the gateway call pending under this label. A later settle
	// step resolves it, which lets scenarios overlap operations.
	As string `yaml:"as,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// StepArgs carries the arguments of every op; each op reads its own.
type StepArgs struct {
	ID          string  `yaml:"id,omitempty"`
	Name        *string `yaml:"name,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Cover       *string `yaml:"cover,omitempty"`
	CoverType   *string `yaml:"cover_type,omitempty"`
	StackID     string  `yaml:"stack_id,omitempty"`
	To          string  `yaml:"to,omitempty"`
	Index       int     `yaml:"index,omitempty"`

	// Ref names the pending call a settle step resolves.
	Ref string `yaml:"ref,omitempty"`
}

// Expect is checked right after a step.
type Expect struct {
	// Returns is the kind of error the call returned: ok, gateway,
	// validation, unknown_stack. Empty skips the check.
	Returns      string  `yaml:"returns,omitempty"`
	SyncStatus   string  `yaml:"sync_status,omitempty"`
	ErrorMessage *string `yaml:"error_message,omitempty"`
	StackCount   *int    `yaml:"stack_count,omitempty"`
	CardCount    *int    `yaml:"card_count,omitempty"`
	ActiveStack  *string `yaml:"active_stack,omitempty"`
	SwipeIndex   *int    `yaml:"swipe_index,omitempty"`
	Pending      *int    `yaml:"pending,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// ID is the stack or card the assertion is about.
	ID string `yaml:"id,omitempty"`

	// Stack is the stack a card_in_stack or card_count assertion is about.
	Stack string `yaml:"stack,omitempty"`

	// Name optionally pins the record's name (stack_exists, card_in_stack).
	Name string `yaml:"name,omitempty"`

	// UpdatedAt optionally pins the record's updatedAt.
	UpdatedAt int64 `yaml:"updated_at,omitempty"`

	Count  int    `yaml:"count,omitempty"`
	Status string `yaml:"status,omitempty"`
}

// Step ops.
const (
	OpCreateStack  = "create_stack"
	OpUpdateStack  = "update_stack"
	OpShuffleCover = "shuffle_cover"
	OpDeleteStack  = "delete_stack"
	OpCreateCard   = "create_card"
	OpUpdateCard   = "update_card"
	OpDeleteCard   = "delete_card"
	OpMoveCard     = "move_card"
	OpSettle       = "settle"
	OpSelectStack  = "select_stack"
	OpEnterSwipe   = "enter_swipe"
	OpExitSwipe    = "exit_swipe"
	OpSetSwipe     = "set_swipe"
	OpNextCard     = "next_card"
	OpPrevCard     = "prev_card"
	OpClearError   = "clear_error"
)

// Step outcomes.
const (
	OutcomeSucceed = "succeed"
	OutcomeFail    = "fail"
)

// Assertion types.
const (
	AssertStackExists           = "stack_exists"
	AssertStackAbsent           = "stack_absent"
	AssertCardInStack           = "card_in_stack"
	AssertCardAbsent            = "card_absent"
	AssertCardCount             = "card_count"
	AssertSyncStatus            = "sync_status"
	AssertPersistedEqualsMemory = "persisted_equals_memory"
)

// Returns kinds.
const (
	ReturnsOK           = "ok"
	ReturnsGateway      = "gateway"
	ReturnsValidation   = "validation"
	ReturnsUnknownStack = "unknown_stack"
)

// gatewayOps are the ops that reach the gateway (when their record exists).
var gatewayOps = map[string]bool{
	OpCreateStack:  true,
	OpUpdateStack:  true,
	OpShuffleCover: true,
	OpDeleteStack:  true,
	OpCreateCard:   true,
	OpUpdateCard:   true,
	OpDeleteCard:   true,
	OpMoveCard:     true,
}

var localOps = map[string]bool{
	OpSelectStack: true,
	OpEnterSwipe:  true,
	OpExitSwipe:   true,
	OpSetSwipe:    true,
	OpNextCard:    true,
	OpPrevCard:    true,
	OpClearError:  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Unknown fields are rejected so typos like "assertion:" surface.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Snapshot converts the seed into a model snapshot.
func (s Seed) Snapshot() *model.Snapshot {
	snap := model.EmptySnapshot()
	for _, st := range s.Stacks {
		cover, coverType := st.Cover, model.CoverType(st.CoverType)
		if cover == "" {
			cover = "#3b82f6"
		}
		if coverType == "" {
			coverType = model.CoverColor
		}
		snap.Stacks = append(snap.Stacks, model.Stack{
			ID:        st.ID,
			Name:      st.Name,
			Cover:     cover,
			CoverType: coverType,
			CreatedAt: orOne(st.CreatedAt),
			UpdatedAt: orOne(st.UpdatedAt),
		})
	}
	for _, c := range s.Cards {
		cover := c.Cover
		if cover == "" {
			cover = model.PlaceholderCover(c.ID)
		}
		snap.Cards = append(snap.Cards, model.Card{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Cover:       cover,
			StackID:     c.StackID,
			CreatedAt:   orOne(c.CreatedAt),
			UpdatedAt:   orOne(c.UpdatedAt),
		})
	}
	return snap
}

func orOne(v int64) int64 {
	if v == 0 {
		return 1
	}
	return v
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, st := range s.Seed.Stacks {
		if st.ID == "" || st.Name == "" {
			return fmt.Errorf("seed.stacks[%d]: id and name are required", i)
		}
		if st.CoverType != "" && !model.CoverType(st.CoverType).Valid() {
			return fmt.Errorf("seed.stacks[%d]: unknown cover_type %q", i, st.CoverType)
		}
	}
	for i, c := range s.Seed.Cards {
		if c.ID == "" || c.Name == "" || c.StackID == "" {
			return fmt.Errorf("seed.cards[%d]: id, name and stack_id are required", i)
		}
	}

	labels := make(map[string]bool)
	for i, step := range s.Steps {
		if err := validateStep(i, step, labels); err != nil {
			return err
		}
	}
	for label := range labels {
		return fmt.Errorf("steps: label %q is never settled", label)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step, labels map[string]bool) error {
	switch {
	case gatewayOps[step.Op]:
		if step.As != "" {
			if labels[step.As] {
				return fmt.Errorf("steps[%d]: label %q already pending", i, step.As)
			}
			labels[step.As] = true
			if step.Outcome != "" {
				return fmt.Errorf("steps[%d]: pending steps take their outcome from the settle step", i)
			}
		}
	case step.Op == OpSettle:
		if !labels[step.Args.Ref] {
			return fmt.Errorf("steps[%d]: settle refers to unknown label %q", i, step.Args.Ref)
		}
		delete(labels, step.Args.Ref)
	case localOps[step.Op]:
		if step.As != "" || step.Outcome != "" {
			return fmt.Errorf("steps[%d]: %s does not call the gateway", i, step.Op)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	switch step.Outcome {
	case "", OutcomeSucceed, OutcomeFail:
	default:
		return fmt.Errorf("steps[%d]: unknown outcome %q", i, step.Outcome)
	}
	if step.Error != "" && step.Outcome != OutcomeFail {
		return fmt.Errorf("steps[%d]: error is only valid with outcome fail", i)
	}
	if step.Expect != nil {
		switch step.Expect.Returns {
		case "", ReturnsOK, ReturnsGateway, ReturnsValidation, ReturnsUnknownStack:
		default:
			return fmt.Errorf("steps[%d].expect: unknown returns %q", i, step.Expect.Returns)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStackExists, AssertStackAbsent, AssertCardAbsent:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	case AssertCardInStack:
		if a.ID == "" || a.Stack == "" {
			return fmt.Errorf("assertions[%d]: id and stack are required for card_in_stack", index)
		}
	case AssertCardCount:
		if a.Stack == "" {
			return fmt.Errorf("assertions[%d]: stack is required for card_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for card_count", index)
		}
	case AssertSyncStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for sync_status", index)
		}
	case AssertPersistedEqualsMemory:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
