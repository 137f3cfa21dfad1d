package stabilize

import (
	"testing"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

func uniformReading(c types.DiscreteColor) types.FaceReading {
	var r types.FaceReading
	for i := range r {
		r[i] = c
	}
	return r
}

// TestConsensusAfterNIdenticalFrames verifies feeding N identical frames
// emits exactly one consensus equal to that frame and clears the history.
func TestConsensusAfterNIdenticalFrames(t *testing.T) {
	s := New(5, 4)
	reading := uniformReading(types.ColorGreen)

	for i := 0; i < 4; i++ {
		if _, ok := s.Observe(reading); ok {
			t.Fatalf("premature consensus after %d frames", i+1)
		}
	}

	consensus, ok := s.Observe(reading)
	if !ok {
		t.Fatal("expected consensus after 5 identical frames")
	}
	if consensus != reading {
		t.Errorf("consensus = %v, want %v", consensus, reading)
	}
	if s.Len() != 0 {
		t.Errorf("history length after consensus = %d, want 0", s.Len())
	}
}

// TestNoReEmissionFromStaleHistory verifies the frame after a consensus does
// not re-emit from stale entries.
func TestNoReEmissionFromStaleHistory(t *testing.T) {
	s := New(5, 4)
	reading := uniformReading(types.ColorBlue)

	for i := 0; i < 5; i++ {
		s.Observe(reading)
	}

	if _, ok := s.Observe(reading); ok {
		t.Fatal("consensus re-emitted immediately after history clear")
	}
	if s.Len() != 1 {
		t.Errorf("history length = %d, want 1", s.Len())
	}
}

// TestQuorumToleratesOneDivergentVote verifies the N−1-of-N policy: a single
// flickering frame does not block consensus, and the majority color wins.
func TestQuorumToleratesOneDivergentVote(t *testing.T) {
	s := New(5, 4)
	steady := uniformReading(types.ColorRed)
	flicker := steady
	flicker[0] = types.ColorOrange

	s.Observe(steady)
	s.Observe(steady)
	s.Observe(flicker)
	s.Observe(steady)

	consensus, ok := s.Observe(steady)
	if !ok {
		t.Fatal("expected consensus with one divergent vote")
	}
	if consensus != steady {
		t.Errorf("consensus = %v, want majority reading %v", consensus, steady)
	}
}

// TestQuorumFailsWithTwoDivergentVotes verifies two divergent votes out of
// five exceed the allowed slack and block consensus, retaining history.
func TestQuorumFailsWithTwoDivergentVotes(t *testing.T) {
	s := New(5, 4)
	steady := uniformReading(types.ColorRed)
	flicker := steady
	flicker[0] = types.ColorOrange

	s.Observe(steady)
	s.Observe(flicker)
	s.Observe(steady)
	s.Observe(flicker)

	if _, ok := s.Observe(steady); ok {
		t.Fatal("consensus emitted despite 2/5 divergent votes")
	}
	if s.Len() != 5 {
		t.Errorf("history length after failed evaluation = %d, want 5 (retained)", s.Len())
	}
}

// TestUnknownWinnerBlocksConsensus verifies a position whose winning color is
// Unknown never reaches consensus even with full agreement.
func TestUnknownWinnerBlocksConsensus(t *testing.T) {
	s := New(5, 4)
	reading := uniformReading(types.ColorWhite)
	reading[types.CenterIndex] = types.ColorUnknown

	for i := 0; i < 5; i++ {
		if _, ok := s.Observe(reading); ok {
			t.Fatal("consensus emitted with unknown winner")
		}
	}
}

// TestLateAgreementReachesConsensus verifies a failed evaluation recovers
// once enough agreeing frames displace the divergent ones.
func TestLateAgreementReachesConsensus(t *testing.T) {
	s := New(5, 4)
	steady := uniformReading(types.ColorYellow)
	flicker := steady
	flicker[8] = types.ColorWhite

	// Two divergent votes block the first full evaluation.
	s.Observe(flicker)
	s.Observe(flicker)
	s.Observe(steady)
	s.Observe(steady)
	if _, ok := s.Observe(steady); ok {
		t.Fatal("premature consensus")
	}

	// One more steady frame pushes the oldest flicker out: 4/5 agree.
	consensus, ok := s.Observe(steady)
	if !ok {
		t.Fatal("expected consensus once divergent votes aged out")
	}
	if consensus != steady {
		t.Errorf("consensus = %v, want %v", consensus, steady)
	}
}

// TestReset verifies Reset discards accumulated history.
func TestReset(t *testing.T) {
	s := New(5, 4)
	s.Observe(uniformReading(types.ColorBlue))
	s.Observe(uniformReading(types.ColorBlue))

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("history length after reset = %d, want 0", s.Len())
	}
}
