// onboarding/sequencer.go

// Package onboarding drives the slide deck shown to first-time users as an
// explicit state machine, so any surface (web client, test harness) can walk
// it without UI coupling.
package onboarding

import (
	"context"
	"time"
)

// Key is a navigation key forwarded by the client.
type Key string

const (
	KeyRight Key = "ArrowRight"
	KeyLeft  Key = "ArrowLeft"
)

// ExitAction is one of the terminal actions on the demo slide. Exits are
// process-level navigations, not state transitions; both mark onboarding as
// seen.
type ExitAction string

const (
	ExitPricing ExitAction = "pricing"
	ExitHub     ExitAction = "hub"
	ExitSkip    ExitAction = "skip"
)

// Settling delays before navigation affordances activate on slide entry.
// Presentation contract only; the sequencer itself has no timers.
const (
	NavRevealDelay  = 600 * time.Millisecond
	DemoEnableDelay = 1200 * time.Millisecond
)

// SeenStore persists the long-lived "onboarding seen" flag.
type SeenStore interface {
	MarkSeen(ctx context.Context, userID string) error
	Seen(ctx context.Context, userID string) (bool, error)
}

// Sequencer is a strictly linear state machine over a fixed slide deck.
// Index always stays in [0, len(slides)-1]; Next and Prev saturate at the
// edges instead of wrapping.
type Sequencer struct {
	slides []Slide
	index  int
}

// NewSequencer starts a sequencer at slide 0. An empty deck falls back to
// DefaultSlides.
func NewSequencer(slides []Slide) *Sequencer {
	if len(slides) == 0 {
		slides = DefaultSlides
	}
	return &Sequencer{slides: slides}
}

// Index returns the current position.
func (s *Sequencer) Index() int {
	return s.index
}

// Current returns the slide at the current position.
func (s *Sequencer) Current() Slide {
	return s.slides[s.index]
}

// Len returns the number of slides.
func (s *Sequencer) Len() int {
	return len(s.slides)
}

// Next advances one slide, saturating at the last one.
func (s *Sequencer) Next() {
	if s.index < len(s.slides)-1 {
		s.index++
	}
}

// Prev steps back one slide, saturating at the first one.
func (s *Sequencer) Prev() {
	if s.index > 0 {
		s.index--
	}
}

// HandleKey maps arrow keys onto Next/Prev. Any other key is a no-op.
func (s *Sequencer) HandleKey(key Key) {
	switch key {
	case KeyRight:
		s.Next()
	case KeyLeft:
		s.Prev()
	}
}

// AtEnd reports whether the current slide is the terminal one, which disables
// the "next" affordance.
func (s *Sequencer) AtEnd() bool {
	return s.index == len(s.slides)-1
}

// DemoActive reports whether the current slide is the interactive demo.
func (s *Sequencer) DemoActive() bool {
	return s.Current().Kind == KindDemo
}

// Exit performs a terminal action: it marks onboarding as seen for the user
// and returns the navigation target the shell should route to. Marking twice
// is harmless.
func (s *Sequencer) Exit(ctx context.Context, store SeenStore, userID string, action ExitAction) (string, error) {
	if err := store.MarkSeen(ctx, userID); err != nil {
		return "", err
	}
	switch action {
	case ExitPricing:
		return "/pricing", nil
	default:
		return "/hub", nil
	}
}
