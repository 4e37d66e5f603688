// onboarding/sequencer_test.go
package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memorySeenStore struct {
	seen      map[string]bool
	markCalls int
}

func newMemorySeenStore() *memorySeenStore {
	return &memorySeenStore{seen: map[string]bool{}}
}

func (m *memorySeenStore) MarkSeen(ctx context.Context, userID string) error {
	m.markCalls++
	m.seen[userID] = true
	return nil
}

func (m *memorySeenStore) Seen(ctx context.Context, userID string) (bool, error) {
	return m.seen[userID], nil
}

func makeSlides(n int) []Slide {
	slides := make([]Slide, n)
	for i := range slides {
		slides[i] = Slide{ID: string(rune('a' + i)), Kind: KindContent}
	}
	slides[n-1].Kind = KindDemo
	return slides
}

func TestSequencerNavigation(t *testing.T) {
	t.Run("StartsAtZero", func(t *testing.T) {
		seq := NewSequencer(makeSlides(5))
		assert.Equal(t, 0, seq.Index())
	})

	t.Run("PrevAtStartIsNoOp", func(t *testing.T) {
		seq := NewSequencer(makeSlides(5))
		seq.Prev()
		assert.Equal(t, 0, seq.Index())
	})

	t.Run("NextSaturatesAtLastSlide", func(t *testing.T) {
		seq := NewSequencer(makeSlides(3))
		seq.Next()
		seq.Next()
		seq.Next()
		seq.Next()
		assert.Equal(t, 2, seq.Index())
		assert.True(t, seq.AtEnd())
	})

	t.Run("TenSlidesNineRightsLandsOnLast", func(t *testing.T) {
		seq := NewSequencer(makeSlides(10))
		for i := 0; i < 9; i++ {
			seq.HandleKey(KeyRight)
		}
		assert.Equal(t, 9, seq.Index())

		seq.HandleKey(KeyRight)
		assert.Equal(t, 9, seq.Index())
	})

	t.Run("UnknownKeyIsNoOp", func(t *testing.T) {
		seq := NewSequencer(makeSlides(5))
		seq.HandleKey("Enter")
		seq.HandleKey("Escape")
		assert.Equal(t, 0, seq.Index())
	})

	t.Run("LeftThenRightRoundTrips", func(t *testing.T) {
		seq := NewSequencer(makeSlides(5))
		seq.HandleKey(KeyRight)
		seq.HandleKey(KeyRight)
		seq.HandleKey(KeyLeft)
		assert.Equal(t, 1, seq.Index())
	})

	t.Run("EmptyDeckFallsBackToDefaults", func(t *testing.T) {
		seq := NewSequencer(nil)
		assert.Equal(t, len(DefaultSlides), seq.Len())
	})

	t.Run("DemoActiveOnlyOnDemoSlide", func(t *testing.T) {
		seq := NewSequencer(makeSlides(3))
		assert.False(t, seq.DemoActive())
		seq.Next()
		seq.Next()
		assert.True(t, seq.DemoActive())
	})
}

func TestSequencerExit(t *testing.T) {
	ctx := context.Background()

	t.Run("ExitToPricing", func(t *testing.T) {
		store := newMemorySeenStore()
		seq := NewSequencer(makeSlides(3))

		target, err := seq.Exit(ctx, store, "user-1", ExitPricing)
		assert.NoError(t, err)
		assert.Equal(t, "/pricing", target)

		seen, _ := store.Seen(ctx, "user-1")
		assert.True(t, seen)
	})

	t.Run("ExitToHub", func(t *testing.T) {
		store := newMemorySeenStore()
		seq := NewSequencer(makeSlides(3))

		target, err := seq.Exit(ctx, store, "user-1", ExitHub)
		assert.NoError(t, err)
		assert.Equal(t, "/hub", target)
	})

	t.Run("SkipRoutesToHub", func(t *testing.T) {
		store := newMemorySeenStore()
		seq := NewSequencer(makeSlides(3))

		target, err := seq.Exit(ctx, store, "user-1", ExitSkip)
		assert.NoError(t, err)
		assert.Equal(t, "/hub", target)
	})

	t.Run("RepeatedExitMarksSeenIdempotently", func(t *testing.T) {
		store := newMemorySeenStore()
		seq := NewSequencer(makeSlides(3))

		_, err := seq.Exit(ctx, store, "user-1", ExitHub)
		assert.NoError(t, err)
		_, err = seq.Exit(ctx, store, "user-1", ExitHub)
		assert.NoError(t, err)

		seen, _ := store.Seen(ctx, "user-1")
		assert.True(t, seen)
		assert.Equal(t, 2, store.markCalls)
	})
}
