package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/brunoaduarte/rubik-solver/internal/types"
)

// CameraStream captures live frames through a GStreamer pipeline ending in a
// BGRA appsink. RTSP URLs and v4l2 device paths are supported.
type CameraStream struct {
	source    string
	width     int
	height    int
	targetFPS int

	pipeline *gst.Pipeline
	appsink  *app.Sink

	frames chan types.Frame
	mu     sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	frameCount uint64
	started    time.Time
	reconnects uint32
	errorCount uint64

	maxRetries     int
	retryDelay     time.Duration
	maxRetryDelay  time.Duration
	currentRetries int
}

// CameraConfig contains camera stream configuration
type CameraConfig struct {
	// Source is an rtsp:// URL or a v4l2 device path (/dev/video0)
	Source string
	Width  int
	Height int
	FPS    int
}

// NewCameraStream creates a new camera stream
func NewCameraStream(cfg CameraConfig) (*CameraStream, error) {
	if cfg.Source == "" {
		return nil, fmt.Errorf("camera source is required")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid resolution: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid fps: %d", cfg.FPS)
	}

	return &CameraStream{
		source:        cfg.Source,
		width:         cfg.Width,
		height:        cfg.Height,
		targetFPS:     cfg.FPS,
		frames:        make(chan types.Frame, 10),
		maxRetries:    5,
		retryDelay:    1 * time.Second,
		maxRetryDelay: 30 * time.Second,
	}, nil
}

// Start initializes GStreamer and starts the capture pipeline
func (s *CameraStream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("stream already started")
	}

	gst.Init(nil)

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = time.Now()

	s.wg.Add(1)
	go s.runPipeline()

	slog.Info("camera stream starting",
		"source", s.source,
		"resolution", fmt.Sprintf("%dx%d", s.width, s.height),
		"target_fps", s.targetFPS,
	)

	return nil
}

// Frames returns the frames channel
func (s *CameraStream) Frames() <-chan types.Frame {
	return s.frames
}

// Stop stops the capture pipeline
func (s *CameraStream) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	s.wg.Wait()

	slog.Info("camera stream stopped",
		"frames", atomic.LoadUint64(&s.frameCount),
		"reconnects", atomic.LoadUint32(&s.reconnects),
	)

	return nil
}

// Stats returns stream statistics
func (s *CameraStream) Stats() types.StreamStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := atomic.LoadUint64(&s.frameCount)
	var fpsReal float64
	if !s.started.IsZero() && count > 0 {
		elapsed := time.Since(s.started).Seconds()
		if elapsed > 0 {
			fpsReal = float64(count) / elapsed
		}
	}

	return types.StreamStats{
		FrameCount:   count,
		FPSTarget:    s.targetFPS,
		FPSReal:      fpsReal,
		SourceStream: "camera",
		Resolution:   fmt.Sprintf("%dx%d", s.width, s.height),
		Reconnects:   atomic.LoadUint32(&s.reconnects),
		IsConnected:  s.cancel != nil,
		Errors:       atomic.LoadUint64(&s.errorCount),
	}
}

// runPipeline runs the GStreamer pipeline with reconnection logic
func (s *CameraStream) runPipeline() {
	defer s.wg.Done()
	defer close(s.frames)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.connectAndStream(); err != nil {
			atomic.AddUint64(&s.errorCount, 1)
			slog.Error("camera pipeline error", "error", err)
		}

		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.currentRetries++
		atomic.AddUint32(&s.reconnects, 1)

		if s.currentRetries > s.maxRetries {
			slog.Error("max retries exceeded, stopping camera stream",
				"retries", s.currentRetries,
			)
			return
		}

		// Exponential backoff
		delay := s.retryDelay * time.Duration(1<<uint(s.currentRetries-1))
		if delay > s.maxRetryDelay {
			delay = s.maxRetryDelay
		}

		slog.Warn("reconnecting to camera",
			"retry", s.currentRetries,
			"delay", delay,
		)

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}
}

// connectAndStream builds the capture pipeline and streams frames until EOS,
// error, or cancellation.
func (s *CameraStream) connectAndStream() error {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	s.pipeline = pipeline

	videoconvert, _ := gst.NewElement("videoconvert")
	videoscale, _ := gst.NewElement("videoscale")
	videorate, _ := gst.NewElement("videorate")
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, _ := gst.NewElement("capsfilter")
	caps := gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=BGRA,width=%d,height=%d,framerate=%d/1",
		s.width, s.height, s.targetFPS,
	))
	capsfilter.SetProperty("caps", caps)

	appsink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("failed to create appsink: %w", err)
	}
	s.appsink = appsink
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1)
	appsink.SetProperty("drop", true)

	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return s.onNewSample(sink)
		},
	})

	pipeline.AddMany(videoconvert, videoscale, videorate, capsfilter, appsink.Element)
	gst.ElementLinkMany(videoconvert, videoscale, videorate, capsfilter, appsink.Element)

	if strings.HasPrefix(s.source, "rtsp://") {
		rtspsrc, err := gst.NewElement("rtspsrc")
		if err != nil {
			return fmt.Errorf("failed to create rtspsrc: %w", err)
		}
		rtspsrc.SetProperty("location", s.source)
		rtspsrc.SetProperty("protocols", 4) // TCP
		rtspsrc.SetProperty("latency", 200)

		rtph264depay, _ := gst.NewElement("rtph264depay")
		avdecH264, _ := gst.NewElement("avdec_h264")

		pipeline.AddMany(rtspsrc, rtph264depay, avdecH264)
		gst.ElementLinkMany(rtph264depay, avdecH264, videoconvert)

		// rtspsrc pads appear only once the stream is negotiated
		rtspsrc.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
			sinkPad := rtph264depay.GetStaticPad("sink")
			if sinkPad != nil {
				srcPad.Link(sinkPad)
			}
		})
	} else {
		v4l2src, err := gst.NewElement("v4l2src")
		if err != nil {
			return fmt.Errorf("failed to create v4l2src: %w", err)
		}
		v4l2src.SetProperty("device", s.source)

		pipeline.AddMany(v4l2src)
		gst.ElementLinkMany(v4l2src, videoconvert)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("failed to set pipeline to playing: %w", err)
	}

	bus := pipeline.GetPipelineBus()
	for {
		select {
		case <-s.ctx.Done():
			pipeline.SetState(gst.StateNull)
			return nil
		default:
		}

		// Short poll keeps shutdown responsive
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageEOS:
			slog.Info("camera end of stream")
			pipeline.SetState(gst.StateNull)
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			pipeline.SetState(gst.StateNull)
			return fmt.Errorf("pipeline error: %w", gerr)
		}
	}
}

// onNewSample copies one appsink sample into a Frame and hands it to the
// consumer, dropping when the channel is full.
func (s *CameraStream) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowEOS
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowError
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	defer buffer.Unmap()

	if len(data) == 0 {
		return gst.FlowOK
	}

	// Copy out: the gst buffer is unmapped when this callback returns
	frameData := make([]byte, len(data))
	copy(frameData, data)

	seq := atomic.AddUint64(&s.frameCount, 1)

	frame := types.Frame{
		Seq:          seq,
		Timestamp:    time.Now(),
		Width:        s.width,
		Height:       s.height,
		Stride:       len(frameData) / s.height,
		Data:         frameData,
		SourceStream: "camera",
		TraceID:      uuid.New().String(),
	}

	select {
	case s.frames <- frame:
	default:
		slog.Debug("frame channel full, dropping frame", "seq", seq)
	}

	return gst.FlowOK
}
