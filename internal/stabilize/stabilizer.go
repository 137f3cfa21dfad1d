// Package stabilize accumulates classified face readings in a bounded rolling
// history and emits a consensus reading only when enough recent frames agree
// per sticker position.
package stabilize

import (
	"log/slog"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// DefaultDepth is the rolling history capacity N.
//
// The default quorum is N−1 agreeing frames per position: one flickering
// frame out of N does not block consensus, two do.
const DefaultDepth = 5

// Stabilizer is a two-state machine: Accumulating while the history is below
// capacity, Deciding once it is full. A successful consensus clears the
// history; a failed evaluation retains it so later frames can still tip the
// quorum.
//
// Not safe for concurrent use: the host capture mechanism is expected to
// deliver frames serially. Serialize externally if it does not.
type Stabilizer struct {
	depth   int
	quorum  int
	history []types.FaceReading
}

// New creates a stabilizer with history capacity depth requiring quorum
// agreeing frames per position. Out-of-range arguments select DefaultDepth
// and a quorum of depth−1.
func New(depth, quorum int) *Stabilizer {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if quorum <= 0 || quorum > depth {
		quorum = depth - 1
	}
	return &Stabilizer{
		depth:   depth,
		quorum:  quorum,
		history: make([]types.FaceReading, 0, depth),
	}
}

// Observe appends one classified frame and attempts consensus. It returns the
// consensus reading and true when every position reaches quorum on a known
// color; otherwise the zero reading and false.
func (s *Stabilizer) Observe(reading types.FaceReading) (types.FaceReading, bool) {
	s.history = append(s.history, reading)
	if len(s.history) > s.depth {
		s.history = s.history[1:]
	}

	// Only decide at capacity; keep accumulating otherwise.
	if len(s.history) < s.depth {
		return types.FaceReading{}, false
	}

	var consensus types.FaceReading
	for pos := 0; pos < types.StickersPerFace; pos++ {
		winner, count := tally(s.history, pos)
		if winner == types.ColorUnknown || count < s.quorum {
			slog.Debug("quorum not reached",
				"position", pos,
				"winner", winner.String(),
				"votes", count,
				"quorum", s.quorum,
			)
			return types.FaceReading{}, false
		}
		consensus[pos] = winner
	}

	// Clearing here prevents re-emitting the same consensus from stale
	// entries on the very next frame.
	s.history = s.history[:0]

	return consensus, true
}

// Len returns the current history length.
func (s *Stabilizer) Len() int {
	return len(s.history)
}

// Reset discards the accumulated history.
func (s *Stabilizer) Reset() {
	s.history = s.history[:0]
}

// tally counts votes per color at one sticker position and returns the color
// with the highest count. Ties break in first-seen order, which is sound
// because callers additionally require a quorum-sized majority.
func tally(history []types.FaceReading, pos int) (types.DiscreteColor, int) {
	var counts [types.ColorGreen + 1]int
	var order []types.DiscreteColor

	for _, reading := range history {
		c := reading[pos]
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	winner := types.ColorUnknown
	best := 0
	for _, c := range order {
		if counts[c] > best {
			best = counts[c]
			winner = c
		}
	}

	return winner, best
}
