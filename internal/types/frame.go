package types

import (
	"errors"
	"time"
)

// Frame represents a single video frame in BGRA format (4 bytes per pixel,
// blue/green/red/alpha byte order, row-major with an explicit row stride).
type Frame struct {
	// Seq is the monotonic sequence number
	Seq uint64
	// Timestamp is when the frame was captured/decoded
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Stride is the row stride in bytes (>= Width*4; may include padding)
	Stride int
	// Data contains the interleaved BGRA pixel data
	Data []byte
	// SourceStream identifies the stream ("camera", "mock")
	SourceStream string
	// TraceID is a unique identifier for tracing a frame through the pipeline
	TraceID string
}

// PixelBuffer is a locked, read-only view of one frame's pixels. It is valid
// only for the duration of one frame callback; the pipeline never keeps a
// reference past the call.
//
// Lock returns the BGRA bytes, or an error when the buffer has no accessible
// backing memory. Every successful Lock must be paired with Unlock, on every
// exit path.
type PixelBuffer interface {
	// Bounds returns width, height and row stride in bytes.
	Bounds() (width, height, stride int)
	// Lock acquires a read view of the pixel data.
	Lock() ([]byte, error)
	// Unlock releases the view acquired by Lock.
	Unlock()
}

// ErrNoBackingMemory is returned by Lock when the frame carries no pixel data.
var ErrNoBackingMemory = errors.New("frame has no backing memory")

// Bounds implements PixelBuffer.
func (f *Frame) Bounds() (int, int, int) {
	return f.Width, f.Height, f.Stride
}

// Lock implements PixelBuffer. Memory-backed frames are always mapped, so
// locking only validates that data is present.
func (f *Frame) Lock() ([]byte, error) {
	if f.Data == nil {
		return nil, ErrNoBackingMemory
	}
	return f.Data, nil
}

// Unlock implements PixelBuffer.
func (f *Frame) Unlock() {}

// StreamStats contains stream statistics.
type StreamStats struct {
	FrameCount   uint64
	FPSTarget    int
	FPSReal      float64
	SourceStream string
	Resolution   string
	Reconnects   uint32
	IsConnected  bool
	Errors       uint64
}
