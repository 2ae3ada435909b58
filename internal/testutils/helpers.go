package testutils

import (
	"time"

	"github.com/aretw0/voicelink/pkg/domain"
)

// Journal records calls across several probes so tests can assert ordering.
type Journal struct {
	Entries []string
}

// Add appends one entry.
func (j *Journal) Add(entry string) {
	if j == nil {
		return
	}
	j.Entries = append(j.Entries, entry)
}

// Reset clears the journal.
func (j *Journal) Reset() {
	j.Entries = nil
}

// Probe is a behavior that counts and journals every call it receives.
// OnStep and OnHandle, when set, decide the transition; otherwise it stays.
type Probe struct {
	Name     string
	Journal  *Journal
	OnStep   func() domain.Transition
	OnHandle func(cmd domain.Command) domain.Transition

	Enters   int
	Leaves   int
	Steps    int
	Commands []domain.Command
}

var _ domain.Behavior = (*Probe)(nil)

// NewProbe creates a probe writing to journal.
func NewProbe(name string, journal *Journal) *Probe {
	return &Probe{Name: name, Journal: journal}
}

func (p *Probe) Enter() {
	p.Enters++
	p.Journal.Add(p.Name + ":enter")
}

func (p *Probe) Leave() {
	p.Leaves++
	p.Journal.Add(p.Name + ":leave")
}

func (p *Probe) Step() domain.Transition {
	p.Steps++
	p.Journal.Add(p.Name + ":step")
	if p.OnStep != nil {
		return p.OnStep()
	}
	return domain.Stay()
}

func (p *Probe) Handle(cmd domain.Command) domain.Transition {
	p.Commands = append(p.Commands, cmd)
	p.Journal.Add(p.Name + ":handle:" + cmd.Name())
	if p.OnHandle != nil {
		return p.OnHandle(cmd)
	}
	return domain.Stay()
}

func (p *Probe) Describe() string {
	return p.Name
}

// Calls returns the total number of calls received.
func (p *Probe) Calls() int {
	return p.Enters + p.Leaves + p.Steps + len(p.Commands)
}

// Sleeps records requested sleeps instead of blocking.
type Sleeps struct {
	Durations []time.Duration
}

// Sleep implements the lifecycle sleep hook.
func (s *Sleeps) Sleep(d time.Duration) {
	s.Durations = append(s.Durations, d)
}
