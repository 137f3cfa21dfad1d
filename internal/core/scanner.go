// Package core orchestrates the scanner: frames from a stream provider run
// through the detection pipeline (sample → classify → stabilize → resolve)
// and committed faces fan out to the cube state owner and the emitter.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brunoaduarte/rubik-solver/internal/classify"
	"github.com/brunoaduarte/rubik-solver/internal/config"
	"github.com/brunoaduarte/rubik-solver/internal/cube"
	"github.com/brunoaduarte/rubik-solver/internal/emitter"
	"github.com/brunoaduarte/rubik-solver/internal/sampler"
	"github.com/brunoaduarte/rubik-solver/internal/stabilize"
	"github.com/brunoaduarte/rubik-solver/internal/stream"
	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// Stats is a snapshot of pipeline counters.
type Stats struct {
	FramesProcessed  uint64
	FramesSkipped    uint64
	ConsensusEmitted uint64
	Unresolvable     uint64
}

// Scanner is the main service orchestrator
type Scanner struct {
	cfg *config.Config

	// Core components
	stream     StreamProvider
	classifier *classify.Classifier
	stabilizer *stabilize.Stabilizer
	state      *cube.State
	resolver   *cube.Resolver
	publisher  Publisher

	// Lifecycle management
	started   time.Time
	mu        sync.RWMutex
	wg        sync.WaitGroup
	isRunning bool

	framesProcessed  uint64
	framesSkipped    uint64
	consensusEmitted uint64
	unresolvable     uint64
}

// NewScanner creates a scanner from a configuration file, choosing the
// camera stream when a source is configured and the mock stream otherwise.
func NewScanner(configPath string) (*Scanner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("configuration loaded",
		"instance_id", cfg.InstanceID,
		"camera_source", cfg.Camera.Source,
	)

	width, height := config.ParseResolution(cfg.Camera.Resolution)

	var provider StreamProvider
	if cfg.Camera.Source != "" {
		cam, err := stream.NewCameraStream(stream.CameraConfig{
			Source: cfg.Camera.Source,
			Width:  width,
			Height: height,
			FPS:    cfg.Camera.FPS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create camera stream: %w", err)
		}
		provider = cam
		slog.Info("using camera stream", "source", cfg.Camera.Source)
	} else {
		provider = stream.NewMockStream(width, height, cfg.Camera.FPS)
		slog.Info("using mock stream (no camera source configured)")
	}

	var publisher Publisher
	if cfg.MQTT.Broker != "" {
		publisher = emitter.NewMQTTEmitter(cfg)
	}

	return New(cfg, provider, publisher), nil
}

// New assembles a scanner from explicit components. publisher may be nil to
// disable event publishing.
func New(cfg *config.Config, provider StreamProvider, publisher Publisher) *Scanner {
	state := cube.NewState()

	return &Scanner{
		cfg:    cfg,
		stream: provider,
		classifier: classify.New(classify.Config{
			RejectDistance: cfg.Pipeline.RejectDistance,
			MinValue:       cfg.Pipeline.MinValue,
		}),
		stabilizer: stabilize.New(cfg.Pipeline.HistoryDepth, cfg.Pipeline.Quorum),
		state:      state,
		resolver:   cube.NewResolver(state),
		publisher:  publisher,
	}
}

// State returns the cube state owner (snapshots, stats).
func (s *Scanner) State() *cube.State {
	return s.state
}

// Run starts the scanner and blocks until the context is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("scanner is already running")
	}
	s.isRunning = true
	s.started = time.Now()
	s.mu.Unlock()

	slog.Info("scanner starting", "instance_id", s.cfg.InstanceID)

	if err := s.state.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cube state: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect publisher: %w", err)
		}
	}

	if err := s.stream.Start(ctx); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}

	s.wg.Add(1)
	go s.consumeFrames(ctx)

	s.wg.Add(1)
	go s.consumeUpdates()

	s.wg.Add(1)
	go s.statsLoop(ctx, 10*time.Second)

	slog.Info("scanner running")

	<-ctx.Done()

	slog.Info("scanner run loop exiting")
	return nil
}

// Shutdown performs graceful shutdown of all components
func (s *Scanner) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	slog.Info("shutting down scanner")

	// Stop the frame source first so the pipeline drains
	if err := s.stream.Stop(); err != nil {
		slog.Error("failed to stop stream", "error", err)
	}

	// Then the state owner: consumeUpdates exits when its channel closes
	if err := s.state.Stop(); err != nil {
		slog.Error("failed to stop cube state", "error", err)
	}

	s.wg.Wait()

	if s.publisher != nil {
		if err := s.publisher.Disconnect(); err != nil {
			slog.Error("failed to disconnect publisher", "error", err)
		}
	}

	s.mu.Lock()
	uptime := time.Since(s.started)
	s.isRunning = false
	s.mu.Unlock()

	slog.Info("scanner shutdown complete", "uptime", uptime)
	return nil
}

// ShutdownTimeout returns the configured graceful shutdown timeout.
func (s *Scanner) ShutdownTimeout() time.Duration {
	timeout := time.Duration(s.cfg.ShutdownTimeoutS) * time.Second
	if timeout == 0 {
		return 5 * time.Second
	}
	return timeout
}

// Stats returns a snapshot of pipeline counters.
func (s *Scanner) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		FramesProcessed:  s.framesProcessed,
		FramesSkipped:    s.framesSkipped,
		ConsensusEmitted: s.consensusEmitted,
		Unresolvable:     s.unresolvable,
	}
}

// consumeFrames runs the detection pipeline over each incoming frame. Frames
// arrive serially, so the stabilizer history needs no locking here.
func (s *Scanner) consumeFrames(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.stream.Frames():
			if !ok {
				return
			}
			s.processFrame(frame)
		}
	}
}

// processFrame is one full pipeline pass: sample → classify → stabilize →
// resolve. Every failure is non-fatal; the pipeline waits for better input.
func (s *Scanner) processFrame(frame types.Frame) {
	samples, err := sampler.Sample(&frame)
	if err != nil {
		s.mu.Lock()
		s.framesSkipped++
		s.mu.Unlock()
		slog.Debug("frame skipped",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
			"error", err,
		)
		return
	}

	var reading types.FaceReading
	for i, sample := range samples {
		reading[i] = s.classifier.Classify(sample)
	}

	s.mu.Lock()
	s.framesProcessed++
	s.mu.Unlock()

	consensus, ok := s.stabilizer.Observe(reading)
	if !ok {
		return
	}

	s.mu.Lock()
	s.consensusEmitted++
	s.mu.Unlock()

	slog.Debug("consensus reached",
		"center", consensus.Center().String(),
		"trace_id", frame.TraceID,
	)

	if _, err := s.resolver.Resolve(consensus); err != nil {
		if errors.Is(err, cube.ErrUnresolvableCenter) {
			// Discard silently; never retried with stale data
			s.mu.Lock()
			s.unresolvable++
			s.mu.Unlock()
			return
		}
		slog.Warn("failed to resolve consensus", "error", err)
	}
}

// consumeUpdates forwards committed face changes to the publisher. It exits
// when the state owner closes the updates channel during shutdown.
func (s *Scanner) consumeUpdates() {
	defer s.wg.Done()

	for update := range s.state.Updates() {
		if s.publisher == nil {
			continue
		}

		if err := s.publisher.PublishFace(update); err != nil {
			slog.Warn("failed to publish face update",
				"face", update.Face,
				"error", err,
			)
		}

		if update.Complete {
			var snapshot [cube.NumFaces][9]string
			for i, reading := range s.state.Snapshot() {
				snapshot[i] = emitter.StickerNames(reading)
			}
			if err := s.publisher.PublishComplete(snapshot); err != nil {
				slog.Warn("failed to publish scan completion", "error", err)
			} else {
				slog.Info("cube scan complete, snapshot published")
			}
		}
	}
}

// statsLoop periodically logs pipeline statistics and publishes health.
func (s *Scanner) statsLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := s.Stats()
			cubeStats := s.state.Stats()
			streamStats := s.stream.Stats()

			slog.Debug("pipeline stats",
				"frames_processed", stats.FramesProcessed,
				"frames_skipped", stats.FramesSkipped,
				"consensus_emitted", stats.ConsensusEmitted,
				"commits_applied", cubeStats.CommitsApplied,
				"faces_scanned", cubeStats.FacesScanned,
				"stream_fps", fmt.Sprintf("%.1f", streamStats.FPSReal),
			)

			if s.publisher != nil {
				health := emitter.HealthPayload{
					InstanceID:   s.cfg.InstanceID,
					UptimeS:      time.Since(s.started).Seconds(),
					FacesScanned: cubeStats.FacesScanned,
					Commits:      cubeStats.CommitsApplied,
				}
				if err := s.publisher.PublishHealth(health); err != nil {
					slog.Debug("failed to publish health", "error", err)
				}
			}
		}
	}
}
