package cube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// TestResolveCommitsByCenter verifies the center sticker selects the face
// slot for the commit.
func TestResolveCommitsByCenter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := NewState()
	state.Start(ctx)
	defer state.Stop()

	resolver := NewResolver(state)

	// Green center surrounded by other known colors.
	reading := uniformReading(types.ColorWhite)
	reading[types.CenterIndex] = types.ColorGreen

	face, err := resolver.Resolve(reading)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if face != 2 {
		t.Errorf("resolved face = %d, want 2 (green)", face)
	}

	update := waitUpdate(t, state.Updates())
	if update.Face != 2 || update.Reading != reading {
		t.Errorf("unexpected update %+v", update)
	}
}

// TestResolveUnknownCenter verifies a consensus with an unmapped center is
// discarded without committing.
func TestResolveUnknownCenter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := NewState()
	state.Start(ctx)
	defer state.Stop()

	resolver := NewResolver(state)

	reading := uniformReading(types.ColorWhite)
	reading[types.CenterIndex] = types.ColorUnknown

	if _, err := resolver.Resolve(reading); !errors.Is(err, ErrUnresolvableCenter) {
		t.Fatalf("expected ErrUnresolvableCenter, got %v", err)
	}

	select {
	case u := <-state.Updates():
		t.Fatalf("unexpected commit %+v for unresolvable center", u)
	case <-time.After(100 * time.Millisecond):
	}

	if stats := state.Stats(); stats.CommitsRequested != 0 {
		t.Errorf("commits requested = %d, want 0", stats.CommitsRequested)
	}
}
