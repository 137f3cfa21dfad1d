package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brunoaduarte/rubik-solver/internal/types"
	"github.com/google/uuid"
)

// StickerRGB is one painted sticker color for the mock pattern.
type StickerRGB struct {
	R, G, B uint8
}

// MockStream generates synthetic BGRA frames for testing. Each frame is
// painted as a 3×3 grid of sticker colors covering the whole frame, so the
// sampler's center-aligned patches land inside distinct cells.
type MockStream struct {
	width  int
	height int
	fps    int
	source string

	framesCh chan types.Frame
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu            sync.RWMutex
	pattern       [9]StickerRGB
	seq           uint64
	framesEmitted uint64
	isRunning     bool
	startTime     time.Time
}

// NewMockStream creates a new mock stream provider. The initial pattern is
// all black; set one with SetPattern before or while running.
func NewMockStream(width, height, fps int) *MockStream {
	return &MockStream{
		width:    width,
		height:   height,
		fps:      fps,
		source:   "mock",
		framesCh: make(chan types.Frame, 10),
		stopCh:   make(chan struct{}),
	}
}

// SetPattern sets the 9 sticker colors painted into subsequent frames,
// row-major.
func (m *MockStream) SetPattern(pattern [9]StickerRGB) {
	m.mu.Lock()
	m.pattern = pattern
	m.mu.Unlock()
}

// Start begins generating frames
func (m *MockStream) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return fmt.Errorf("stream already running")
	}
	m.isRunning = true
	m.startTime = time.Now()
	m.mu.Unlock()

	slog.Info("mock stream starting",
		"width", m.width,
		"height", m.height,
		"fps", m.fps,
	)

	m.wg.Add(1)
	go m.generateFrames(ctx)

	return nil
}

// Frames returns the frames channel
func (m *MockStream) Frames() <-chan types.Frame {
	return m.framesCh
}

// Stop stops the stream
func (m *MockStream) Stop() error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	close(m.stopCh)
	m.wg.Wait()
	close(m.framesCh)

	m.mu.Lock()
	m.isRunning = false
	m.mu.Unlock()

	slog.Info("mock stream stopped",
		"frames_emitted", m.framesEmitted,
		"duration", time.Since(m.startTime),
	)

	return nil
}

// Stats returns stream statistics
func (m *MockStream) Stats() types.StreamStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var fpsReal float64
	if m.isRunning && m.framesEmitted > 0 {
		elapsed := time.Since(m.startTime).Seconds()
		if elapsed > 0 {
			fpsReal = float64(m.framesEmitted) / elapsed
		}
	}

	return types.StreamStats{
		FrameCount:   m.framesEmitted,
		FPSTarget:    m.fps,
		FPSReal:      fpsReal,
		SourceStream: m.source,
		Resolution:   fmt.Sprintf("%dx%d", m.width, m.height),
		IsConnected:  m.isRunning,
	}
}

// generateFrames generates frames at the target FPS
func (m *MockStream) generateFrames(ctx context.Context) {
	defer m.wg.Done()

	frameDuration := time.Second / time.Duration(m.fps)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			frame := m.createFrame()
			select {
			case m.framesCh <- frame:
				m.mu.Lock()
				m.framesEmitted++
				m.mu.Unlock()
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			}
		}
	}
}

// createFrame paints a BGRA frame with the current sticker pattern.
func (m *MockStream) createFrame() types.Frame {
	m.mu.Lock()
	seq := m.seq
	m.seq++
	pattern := m.pattern
	m.mu.Unlock()

	stride := m.width * 4
	data := make([]byte, m.height*stride)

	cellW := m.width / 3
	cellH := m.height / 3

	for y := 0; y < m.height; y++ {
		row := y / cellH
		if row > 2 {
			row = 2
		}
		for x := 0; x < m.width; x++ {
			col := x / cellW
			if col > 2 {
				col = 2
			}
			c := pattern[row*3+col]
			off := y*stride + x*4
			data[off] = c.B
			data[off+1] = c.G
			data[off+2] = c.R
			data[off+3] = 0xFF
		}
	}

	return types.Frame{
		Seq:          seq,
		Timestamp:    time.Now(),
		Width:        m.width,
		Height:       m.height,
		Stride:       stride,
		Data:         data,
		SourceStream: m.source,
		TraceID:      uuid.New().String(),
	}
}
