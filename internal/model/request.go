package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ValidationError reports a request field that cannot be merged.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeName trims surrounding whitespace and NFC-normalizes a display
// name so visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName checks that a normalized display name is non-empty.
func ValidateName(name string) error {
	if NormalizeName(name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}

// NewCard carries the caller-supplied fields of a card about to be created.
// ID and timestamps are assigned by the engine.
type NewCard struct {
	StackID     string `json:"stackId" yaml:"stack_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Cover is an image URL. Empty means a generated placeholder.
	Cover string `json:"cover,omitempty" yaml:"cover,omitempty"`
}

// Validate checks the request before a card is built from it.
func (n NewCard) Validate() error {
	if strings.TrimSpace(n.StackID) == "" {
		return &ValidationError{Field: "stackId", Message: "must not be empty"}
	}
	return ValidateName(n.Name)
}

// Build constructs the card with the given id and creation time.
func (n NewCard) Build(id string, now int64) Card {
	cover := strings.TrimSpace(n.Cover)
	if cover == "" {
		cover = PlaceholderCover(id)
	}
	return Card{
		ID:          id,
		Name:        NormalizeName(n.Name),
		Description: strings.TrimSpace(n.Description),
		Cover:       cover,
		StackID:     n.StackID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StackUpdate lists the stack fields that may be patched. Nil fields are
// left unchanged.
type StackUpdate struct {
	Name      *string    `json:"name,omitempty"`
	Cover     *string    `json:"cover,omitempty"`
	CoverType *CoverType `json:"coverType,omitempty"`
}

// Validate checks every set field.
func (u StackUpdate) Validate() error {
	if u.Name != nil {
		if err := ValidateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Cover != nil && strings.TrimSpace(*u.Cover) == "" {
		return &ValidationError{Field: "cover", Message: "must not be empty"}
	}
	if u.CoverType != nil && !u.CoverType.Valid() {
		return &ValidationError{Field: "coverType", Message: fmt.Sprintf("unknown cover type %q", *u.CoverType)}
	}
	return nil
}

// ApplyTo merges the set fields onto st and stamps updatedAt.
func (u StackUpdate) ApplyTo(st Stack, updatedAt int64) Stack {
	if u.Name != nil {
		st.Name = NormalizeName(*u.Name)
	}
	if u.Cover != nil {
		st.Cover = strings.TrimSpace(*u.Cover)
	}
	if u.CoverType != nil {
		st.CoverType = *u.CoverType
	}
	st.UpdatedAt = updatedAt
	return st
}

// CardUpdate lists the card fields that may be patched. StackID is absent on
// purpose: cards change stacks only through a move.
type CardUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Cover       *string `json:"cover,omitempty"`
}

// Validate checks every set field.
func (u CardUpdate) Validate() error {
	if u.Name != nil {
		if err := ValidateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Cover != nil && strings.TrimSpace(*u.Cover) == "" {
		return &ValidationError{Field: "cover", Message: "must not be empty"}
	}
	return nil
}

// ApplyTo merges the set fields onto c and stamps updatedAt.
func (u CardUpdate) ApplyTo(c Card, updatedAt int64) Card {
	if u.Name != nil {
		c.Name = NormalizeName(*u.Name)
	}
	if u.Description != nil {
		c.Description = strings.TrimSpace(*u.Description)
	}
	if u.Cover != nil {
		c.Cover = strings.TrimSpace(*u.Cover)
	}
	c.UpdatedAt = updatedAt
	return c
}
