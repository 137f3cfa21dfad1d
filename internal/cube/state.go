// Package cube owns the reconstructed cube state. The six committed face
// readings are mutated by a single owner goroutine; the capture pipeline
// hands commits over an ordered channel and never touches the state directly.
package cube

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// NumFaces is the number of faces on the cube.
const NumFaces = 6

// faceSlots maps a center sticker color to its face slot. Total over the six
// known colors; Unknown and any unmapped value resolve to no slot.
var faceSlots = map[types.DiscreteColor]int{
	types.ColorWhite:  0,
	types.ColorYellow: 1,
	types.ColorGreen:  2,
	types.ColorBlue:   3,
	types.ColorRed:    4,
	types.ColorOrange: 5,
}

// FaceIndexFor resolves a center sticker color to its face index. It is a
// pure lookup and safe to call from any goroutine.
func FaceIndexFor(center types.DiscreteColor) (int, bool) {
	idx, ok := faceSlots[center]
	return idx, ok
}

// Update describes one committed face change, delivered to subscribers in
// commit order.
type Update struct {
	// Face is the face index in [0, NumFaces)
	Face int
	// Reading is the newly committed face reading
	Reading types.FaceReading
	// Seq is the monotonic commit sequence number
	Seq uint64
	// Timestamp is when the commit was applied
	Timestamp time.Time
	// Complete is true when this commit made all six faces scanned
	Complete bool
}

type commitRequest struct {
	face    int
	reading types.FaceReading
}

// Stats is a snapshot of state-owner counters.
type Stats struct {
	CommitsRequested uint64
	CommitsApplied   uint64
	CommitsRedundant uint64
	CommitsDropped   uint64
	FacesScanned     int
}

// State holds the six committed face readings. All faces start as placeholder
// readings (every sticker Unknown) until a scan commits them.
type State struct {
	commits chan commitRequest
	updates chan Update
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu           sync.RWMutex
	faces        [NumFaces]types.FaceReading
	scanned      [NumFaces]bool
	commitSeq    uint64
	requested    uint64
	applied      uint64
	redundant    uint64
	dropped      uint64
	completeSent bool
	isRunning    bool
}

// NewState creates a cube state with all faces set to the neutral placeholder.
func NewState() *State {
	return &State{
		commits: make(chan commitRequest, 32),
		updates: make(chan Update, 16),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the owner goroutine. Commits submitted before Start are
// applied once it runs.
func (s *State) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("cube state already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	slog.Info("cube state owner started", "faces", NumFaces)
	return nil
}

// Stop shuts down the owner goroutine and closes the updates channel.
func (s *State) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	close(s.updates)

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	slog.Info("cube state owner stopped")
	return nil
}

// Commit asks the owner goroutine to store a reading for a face. It never
// blocks the caller: if the commit queue is full the request is dropped and
// counted, relying on the next consensus. Ordering between accepted commits
// is preserved (FIFO).
func (s *State) Commit(face int, reading types.FaceReading) error {
	if face < 0 || face >= NumFaces {
		return fmt.Errorf("face index %d out of range", face)
	}

	s.mu.Lock()
	s.requested++
	s.mu.Unlock()

	select {
	case s.commits <- commitRequest{face: face, reading: reading}:
		return nil
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		slog.Warn("commit queue full, dropping commit", "face", face)
		return fmt.Errorf("commit queue full")
	}
}

// Updates returns the channel of committed face changes, in commit order.
// The channel is closed by Stop.
func (s *State) Updates() <-chan Update {
	return s.updates
}

// Snapshot returns a copy of the six face readings.
func (s *State) Snapshot() [NumFaces]types.FaceReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faces
}

// Stats returns a snapshot of the owner's counters.
func (s *State) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scanned := 0
	for _, ok := range s.scanned {
		if ok {
			scanned++
		}
	}

	return Stats{
		CommitsRequested: s.requested,
		CommitsApplied:   s.applied,
		CommitsRedundant: s.redundant,
		CommitsDropped:   s.dropped,
		FacesScanned:     scanned,
	}
}

// run is the owner loop: the only place faces are mutated.
func (s *State) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case req := <-s.commits:
			s.apply(req)
		}
	}
}

// apply stores a reading if it differs from what the face already holds.
// Redundant readings are a success with a no-op commit, not an error, and
// produce no downstream notification.
func (s *State) apply(req commitRequest) {
	s.mu.Lock()

	if s.faces[req.face] == req.reading && s.scanned[req.face] {
		s.redundant++
		s.mu.Unlock()
		slog.Debug("redundant reading, skipping commit", "face", req.face)
		return
	}

	s.faces[req.face] = req.reading
	s.scanned[req.face] = true
	s.commitSeq++
	s.applied++

	complete := false
	if !s.completeSent {
		complete = true
		for _, ok := range s.scanned {
			if !ok {
				complete = false
				break
			}
		}
		if complete {
			s.completeSent = true
		}
	}

	update := Update{
		Face:      req.face,
		Reading:   req.reading,
		Seq:       s.commitSeq,
		Timestamp: time.Now(),
		Complete:  complete,
	}
	s.mu.Unlock()

	slog.Info("face committed",
		"face", update.Face,
		"center", update.Reading.Center().String(),
		"seq", update.Seq,
		"complete", complete,
	)

	// Non-blocking fan-out: a slow subscriber loses notifications, never
	// stalls the owner loop.
	select {
	case s.updates <- update:
	default:
		slog.Warn("updates channel full, notification dropped",
			"face", update.Face,
			"seq", update.Seq,
		)
	}
}
