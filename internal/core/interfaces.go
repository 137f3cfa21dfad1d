package core

import (
	"context"

	"github.com/brunoaduarte/rubik-solver/internal/cube"
	"github.com/brunoaduarte/rubik-solver/internal/emitter"
	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// StreamProvider provides a stream of video frames
type StreamProvider interface {
	// Start begins streaming frames
	Start(ctx context.Context) error
	// Frames returns a channel of frames
	Frames() <-chan types.Frame
	// Stop stops the stream
	Stop() error
	// Stats returns stream statistics
	Stats() types.StreamStats
}

// Publisher publishes scanner events to a message broker
type Publisher interface {
	// Connect establishes connection to the broker
	Connect(ctx context.Context) error
	// PublishFace publishes one committed face update
	PublishFace(update cube.Update) error
	// PublishComplete publishes the full cube snapshot
	PublishComplete(snapshot [cube.NumFaces][9]string) error
	// PublishHealth publishes a health heartbeat
	PublishHealth(health emitter.HealthPayload) error
	// Disconnect closes the connection
	Disconnect() error
}
