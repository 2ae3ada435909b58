package domain

// Behavior is one phase of device behavior (a "state").
//
// Behaviors are owned by exactly one state.Slot at a time. The slot calls
// Enter when the behavior becomes active and Leave when it is superseded;
// ownership ends as soon as Leave returns.
type Behavior interface {
	// Enter is called when the behavior becomes active.
	Enter()

	// Leave is called when the behavior stops being active.
	Leave()

	// Step is called periodically while the behavior is active.
	Step() Transition

	// Handle is called for every command routed to the behavior.
	Handle(cmd Command) Transition

	// Describe returns a short human readable description.
	Describe() string
}

// Parent is implemented by behaviors that own nested behaviors.
// It is used for introspection only; callers must not mutate the result.
type Parent interface {
	Nested() []Behavior
}

// Idle provides no-op Enter, Leave, Step and Handle.
// Leaves embed it and override what they need.
type Idle struct{}

func (Idle) Enter() {}

func (Idle) Leave() {}

func (Idle) Step() Transition { return Stay() }

func (Idle) Handle(Command) Transition { return Stay() }
