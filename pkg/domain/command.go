package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Command is an inbound instruction routed to behaviors by name.
// It is immutable: the same value is handed to every recipient of a fan-out.
type Command struct {
	name string
	args map[string]any
}

// NewCommand creates a command. args is the full decoded wire object and is
// not copied; callers hand over ownership.
func NewCommand(name string, args map[string]any) Command {
	return Command{name: name, args: args}
}

// Name returns the dispatch key (the wire "type").
func (c Command) Name() string {
	return c.name
}

// Args returns the raw payload. It must be treated as read-only.
func (c Command) Args() map[string]any {
	return c.args
}

// String returns the string field key, if present.
func (c Command) String(key string) (string, bool) {
	v, ok := c.args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Decode copies the payload into out using its json tags.
func (c Command) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(c.args); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", c.name, err)
	}
	return nil
}
