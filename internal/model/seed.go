package model

import "math/rand/v2"

// DemoSnapshot builds the dataset installed when no stored snapshot exists:
// three stacks and five cards spread across them.
func DemoSnapshot(ids IDGenerator, now int64, r *rand.Rand) *Snapshot {
	newStack := func(name string) Stack {
		cover, coverType := NewCover(r)
		return Stack{
			ID:        ids.NewID(),
			Name:      name,
			Cover:     cover,
			CoverType: coverType,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	reading := newStack("Reading List")
	tech := newStack("Tech Articles")
	shopping := newStack("Shopping")

	newCard := func(stack Stack, name, description, seed string) Card {
		return Card{
			ID:          ids.NewID(),
			Name:        name,
			Description: description,
			Cover:       PlaceholderCover(seed),
			StackID:     stack.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return &Snapshot{
		Stacks: []Stack{reading, tech, shopping},
		Cards: []Card{
			newCard(tech, "The Future of AI", "An in-depth look at where artificial intelligence is heading in the next decade.", "ai-future"),
			newCard(tech, "React 19 Features", "Exploring the new features coming in React 19.", "react19"),
			newCard(reading, "Design Systems Guide", "Building scalable design systems for modern applications.", "design-sys"),
			newCard(shopping, "Wireless Headphones", "Premium noise-canceling headphones for work and travel.", "headphones"),
			newCard(shopping, "Mechanical Keyboard", "A high-quality mechanical keyboard with RGB lighting.", "keyboard"),
		},
	}
}
