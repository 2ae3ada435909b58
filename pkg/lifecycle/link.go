package lifecycle

import (
	"time"

	"github.com/aretw0/voicelink/pkg/domain"
)

// Link is the resource a connecting/connected pair manages.
type Link interface {
	// Reset prepares a fresh attempt. Called when the connecting phase is entered.
	Reset()

	// Establish performs one synchronous attempt and reports success.
	Establish() bool

	// Alive reports whether the established link is still usable.
	Alive() bool

	// Describe names the link for descriptions and logs.
	Describe() string
}

// Session is implemented by links that deliver inbound commands while
// established.
type Session interface {
	Link

	// Open starts delivering inbound commands to deliver. The returned revoke
	// function stops delivery; no call to deliver happens after it returns.
	Open(deliver func(domain.Command)) (revoke func())
}

// Policy holds the fixed delays of the retry/recovery loop.
type Policy struct {
	// RetryInterval is slept after each failed Establish.
	RetryInterval time.Duration

	// LossDelay is slept after the link is found dead, before reconnecting.
	LossDelay time.Duration

	// Sleep blocks for d. Defaults to time.Sleep.
	Sleep func(d time.Duration)
}

func (p Policy) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}
