package cube

import (
	"errors"
	"fmt"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// ErrUnresolvableCenter indicates a consensus reading whose center sticker
// has no face mapping. The reading is discarded; no commit is retried with
// stale data.
var ErrUnresolvableCenter = errors.New("center color has no face mapping")

// Resolver maps consensus readings to face slots and forwards them to the
// state owner. It holds no state of its own.
type Resolver struct {
	state *State
}

// NewResolver creates a resolver committing into state.
func NewResolver(state *State) *Resolver {
	return &Resolver{state: state}
}

// Resolve extracts the center sticker, maps it to a face slot, and submits
// the reading to the state owner. The owner performs the stored-reading
// comparison, so redundant consensus readings end as silent no-ops there.
// Returns the resolved face index.
func (r *Resolver) Resolve(reading types.FaceReading) (int, error) {
	center := reading.Center()

	face, ok := FaceIndexFor(center)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvableCenter, center)
	}

	if err := r.state.Commit(face, reading); err != nil {
		return face, fmt.Errorf("commit face %d: %w", face, err)
	}

	return face, nil
}
