package engine

// SetActiveStack selects a stack and leaves swipe mode. An empty id clears
// the selection. Unknown ids are refused.
func (e *Engine) SetActiveStack(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id != "" && !e.snap.HasStack(id) {
		return newUnknownStackError(id)
	}
	e.activeStack = id
	e.swipeMode = false
	e.swipeIndex = 0
	e.publishLocked()
	return nil
}

// EnterSwipeMode starts browsing the active stack from its first card.
func (e *Engine) EnterSwipeMode() {
	e.setSwipe(true)
}

// ExitSwipeMode leaves swipe mode and rewinds the cursor.
func (e *Engine) ExitSwipeMode() {
	e.setSwipe(false)
}

func (e *Engine) setSwipe(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.swipeMode = on
	e.swipeIndex = 0
	e.publishLocked()
}

// SetSwipeIndex moves the cursor to i, clamped to the active stack's cards.
func (e *Engine) SetSwipeIndex(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.swipeIndex = min(max(i, 0), e.lastIndexLocked())
	e.publishLocked()
}

// NextCard advances the cursor unless it is on the last card.
func (e *Engine) NextCard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.swipeIndex < e.lastIndexLocked() {
		e.swipeIndex++
		e.publishLocked()
	}
}

// PrevCard moves the cursor back unless it is on the first card.
func (e *Engine) PrevCard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.swipeIndex > 0 {
		e.swipeIndex--
		e.publishLocked()
	}
}

// lastIndexLocked is the highest valid cursor, never below zero.
func (e *Engine) lastIndexLocked() int {
	return max(e.snap.CardCount(e.activeStack)-1, 0)
}
