package domain

// Transition is the result of Behavior.Step and Behavior.Handle.
// The zero value means "keep the current behavior".
type Transition struct {
	next Behavior
}

// Stay keeps the current behavior.
func Stay() Transition {
	return Transition{}
}

// Replace supersedes the current behavior with next.
// A nil next is treated as Stay so a slot can never become empty.
func Replace(next Behavior) Transition {
	return Transition{next: next}
}

// Next returns the replacement behavior, if any.
func (t Transition) Next() (Behavior, bool) {
	return t.next, t.next != nil
}

// Resolve returns the behavior that should be active after the transition.
func (t Transition) Resolve(current Behavior) Behavior {
	if t.next == nil {
		return current
	}
	return t.next
}

// IsStay reports whether the transition keeps current.
// Replacing a behavior with itself counts as staying.
func (t Transition) IsStay(current Behavior) bool {
	return t.next == nil || t.next == current
}
