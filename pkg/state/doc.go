/*
Package state implements the transition protocol of the behavior engine.

A Slot exclusively owns one active behavior and performs the leave-then-enter
protocol whenever a step or command handler asks for a replacement. A
Composite is itself a behavior that owns a fixed, ordered list of slots and
fans every step and command out to all of them.

	root := state.NewSlot(initial)
	initial.Enter()
	for {
		root.Step()
	}
*/
package state
