package model

import (
	"cmp"
	"slices"
)

// CoverType discriminates how a Stack cover string is rendered.
type CoverType string

const (
	CoverImage    CoverType = "image"
	CoverGradient CoverType = "gradient"
	CoverColor    CoverType = "color"
)

// Valid reports whether t is one of the known cover types.
func (t CoverType) Valid() bool {
	switch t {
	case CoverImage, CoverGradient, CoverColor:
		return true
	}
	return false
}

// Stack is a named collection of cards.
type Stack struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cover     string    `json:"cover"`
	CoverType CoverType `json:"coverType"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// Card is an item belonging to exactly one Stack.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cover       string `json:"cover"`
	StackID     string `json:"stackId"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Snapshot is the full set of stacks and cards at one point in time.
// Treat a *Snapshot as read-only; derive new ones with the With/Without
// methods.
type Snapshot struct {
	Stacks []Stack `json:"stacks"`
	Cards  []Card  `json:"cards"`
}

// EmptySnapshot returns a snapshot with no records and non-nil slices.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Stacks: []Stack{}, Cards: []Card{}}
}

// Clone returns a deep copy of s. A nil snapshot clones to an empty one.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return EmptySnapshot()
	}
	return &Snapshot{
		Stacks: append(make([]Stack, 0, len(s.Stacks)), s.Stacks...),
		Cards:  append(make([]Card, 0, len(s.Cards)), s.Cards...),
	}
}

// Stack looks up a stack by id.
func (s *Snapshot) Stack(id string) (Stack, bool) {
	if s == nil {
		return Stack{}, false
	}
	for _, st := range s.Stacks {
		if st.ID == id {
			return st, true
		}
	}
	return Stack{}, false
}

// Card looks up a card by id.
func (s *Snapshot) Card(id string) (Card, bool) {
	if s == nil {
		return Card{}, false
	}
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// HasStack reports whether a stack with the given id exists.
func (s *Snapshot) HasStack(id string) bool {
	_, ok := s.Stack(id)
	return ok
}

// HasCard reports whether a card with the given id exists.
func (s *Snapshot) HasCard(id string) bool {
	_, ok := s.Card(id)
	return ok
}

// CardsForStack returns the cards whose StackID equals stackID, in snapshot
// order. The result is never nil.
func (s *Snapshot) CardsForStack(stackID string) []Card {
	cards := []Card{}
	if s == nil {
		return cards
	}
	for _, c := range s.Cards {
		if c.StackID == stackID {
			cards = append(cards, c)
		}
	}
	return cards
}

// CardCount returns the number of cards in the given stack.
func (s *Snapshot) CardCount(stackID string) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, c := range s.Cards {
		if c.StackID == stackID {
			n++
		}
	}
	return n
}

// WithStack returns a snapshot with st appended.
func (s *Snapshot) WithStack(st Stack) *Snapshot {
	next := s.Clone()
	next.Stacks = append(next.Stacks, st)
	return next
}

// WithCard returns a snapshot with c appended.
func (s *Snapshot) WithCard(c Card) *Snapshot {
	next := s.Clone()
	next.Cards = append(next.Cards, c)
	return next
}

// ReplaceStack returns a snapshot where the stack with st.ID is replaced by st.
// If no such stack exists the result equals s.
func (s *Snapshot) ReplaceStack(st Stack) *Snapshot {
	next := s.Clone()
	for i := range next.Stacks {
		if next.Stacks[i].ID == st.ID {
			next.Stacks[i] = st
		}
	}
	return next
}

// ReplaceCard returns a snapshot where the card with c.ID is replaced by c.
// If no such card exists the result equals s.
func (s *Snapshot) ReplaceCard(c Card) *Snapshot {
	next := s.Clone()
	for i := range next.Cards {
		if next.Cards[i].ID == c.ID {
			next.Cards[i] = c
		}
	}
	return next
}

// WithoutStack returns a snapshot without the stack with the given id.
// Cards are left untouched; use RemoveStack for the cascading delete.
func (s *Snapshot) WithoutStack(id string) *Snapshot {
	next := s.Clone()
	next.Stacks = slices.DeleteFunc(next.Stacks, func(st Stack) bool { return st.ID == id })
	return next
}

// WithoutCard returns a snapshot without the card with the given id.
func (s *Snapshot) WithoutCard(id string) *Snapshot {
	next := s.Clone()
	next.Cards = slices.DeleteFunc(next.Cards, func(c Card) bool { return c.ID == id })
	return next
}

// WithoutCardsIn returns a snapshot without any card whose StackID is stackID.
func (s *Snapshot) WithoutCardsIn(stackID string) *Snapshot {
	next := s.Clone()
	next.Cards = slices.DeleteFunc(next.Cards, func(c Card) bool { return c.StackID == stackID })
	return next
}

// RemoveStack removes a stack and all of its cards in one transition.
// It returns the new snapshot, the removed stack, and the removed cards.
// ok is false (and next equals s) when the stack does not exist.
func (s *Snapshot) RemoveStack(id string) (next *Snapshot, removed Stack, cards []Card, ok bool) {
	removed, ok = s.Stack(id)
	if !ok {
		return s.Clone(), Stack{}, nil, false
	}
	cards = s.CardsForStack(id)
	return s.WithoutStack(id).WithoutCardsIn(id), removed, cards, true
}

// DanglingCards returns the cards whose StackID does not reference a stack
// in the snapshot.
func (s *Snapshot) DanglingCards() []Card {
	if s == nil {
		return nil
	}
	var dangling []Card
	for _, c := range s.Cards {
		if !s.HasStack(c.StackID) {
			dangling = append(dangling, c)
		}
	}
	return dangling
}

// Equal reports whether s and o hold the same records field for field,
// ignoring order.
func (s *Snapshot) Equal(o *Snapshot) bool {
	a, b := s.Clone(), o.Clone()
	if len(a.Stacks) != len(b.Stacks) || len(a.Cards) != len(b.Cards) {
		return false
	}
	byStackID := func(x, y Stack) int { return cmp.Compare(x.ID, y.ID) }
	byCardID := func(x, y Card) int { return cmp.Compare(x.ID, y.ID) }
	slices.SortFunc(a.Stacks, byStackID)
	slices.SortFunc(b.Stacks, byStackID)
	slices.SortFunc(a.Cards, byCardID)
	slices.SortFunc(b.Cards, byCardID)
	return slices.Equal(a.Stacks, b.Stacks) && slices.Equal(a.Cards, b.Cards)
}
