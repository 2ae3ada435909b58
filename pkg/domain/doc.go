/*
Package domain contains the core vocabulary of the voicelink behavior engine.

It defines the capability set every behavior implements, the transition result
returned by periodic steps and command handlers, the immutable command routed
to behaviors, and the lifecycle hooks used for observability. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Behavior: one phase of device behavior (enter, leave, step, handle, describe).
  - Transition: the outcome of Step/Handle, either Stay or Replace.
  - Command: a (name, args) pair decoded from the control connection.
  - LifecycleHooks: callbacks fired when behaviors are entered, left or fed commands.
*/
package domain
