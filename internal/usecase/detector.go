package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
)

// ErrNoDetectionCapability is returned when neither detection strategy is
// available in the execution environment.
var ErrNoDetectionCapability = errors.New("no barcode detection capability available")

// DetectorAdapterConfig tunes the detection loops.
type DetectorAdapterConfig struct {
	FrameInterval  time.Duration
	DecodeInterval time.Duration
}

// detectionStrategy is the polymorphic capability owned for the lifetime of a
// scan attempt. The session controller never branches on which variant runs.
type detectionStrategy interface {
	run(ctx context.Context, stream domain.MediaStream, emit func(domain.Detection), report func(error))
}

// frameStrategy samples single frames from the live stream and forwards a
// result only when the raw value differs from the previously forwarded one,
// suppressing duplicate events from a barcode sitting in frame.
type frameStrategy struct {
	detector domain.FrameDetector
	interval time.Duration
	lastSent string
}

func (f *frameStrategy) run(ctx context.Context, stream domain.MediaStream, emit func(domain.Detection), report func(error)) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := stream.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			report(err)
			continue
		}

		detections, err := f.detector.Detect(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			report(err)
			continue
		}
		if len(detections) == 0 {
			continue
		}

		detection := detections[0]
		if detection.RawValue == f.lastSent {
			continue
		}
		f.lastSent = detection.RawValue
		emit(detection)
	}
}

// decodeStrategy is the continuous-decode fallback: one decode attempt per
// cycle, polling while nothing is found, forwarding exactly one event on
// success.
type decodeStrategy struct {
	decoder  domain.ContinuousDecoder
	interval time.Duration
}

func (d *decodeStrategy) run(ctx context.Context, stream domain.MediaStream, emit func(domain.Detection), report func(error)) {
	for {
		detection, err := d.decoder.DecodeOnce(ctx, stream)
		if err == nil {
			emit(detection)
			return
		}
		if !errors.Is(err, domain.ErrNoBarcode) {
			if ctx.Err() != nil {
				return
			}
			report(err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(d.interval):
		}
	}
}

// DetectorAdapter owns the camera stream lifecycle and exactly one detection
// strategy per scan attempt. The strategy is picked once at start based on
// which capabilities the environment provides.
type DetectorAdapter struct {
	provider      domain.MediaProvider
	frameDetector domain.FrameDetector
	decoder       domain.ContinuousDecoder
	cfg           DetectorAdapterConfig
	log           zerolog.Logger

	mu     sync.Mutex
	stream domain.MediaStream
	cancel context.CancelFunc
}

// NewDetectorAdapter creates a detector adapter. Either capability may be
// nil; frame detection is preferred when both are present.
func NewDetectorAdapter(
	provider domain.MediaProvider,
	frameDetector domain.FrameDetector,
	decoder domain.ContinuousDecoder,
	cfg DetectorAdapterConfig,
	log zerolog.Logger,
) *DetectorAdapter {
	if cfg.FrameInterval == 0 {
		cfg.FrameInterval = 33 * time.Millisecond
	}
	if cfg.DecodeInterval == 0 {
		cfg.DecodeInterval = 200 * time.Millisecond
	}

	return &DetectorAdapter{
		provider:      provider,
		frameDetector: frameDetector,
		decoder:       decoder,
		cfg:           cfg,
		log:           log.With().Str("component", "detector").Logger(),
	}
}

// ListCameras enumerates the available video input devices.
func (a *DetectorAdapter) ListCameras(ctx context.Context) ([]domain.CameraDevice, error) {
	return a.provider.Enumerate(ctx)
}

// Start acquires a camera stream and begins detection. A specified device is
// requested exactly; otherwise a rear-facing camera is preferred. Any prior
// stream is released first so at most one device handle is ever held.
func (a *DetectorAdapter) Start(ctx context.Context, deviceID string, onDetect func(domain.Detection), onError func(error)) error {
	a.Stop()

	constraints := domain.StreamConstraints{FacingMode: "environment"}
	if deviceID != "" {
		constraints = domain.StreamConstraints{DeviceID: deviceID}
	}

	stream, err := a.provider.Open(ctx, constraints)
	if err != nil {
		camErr := domain.AsCameraError(err)
		a.log.Warn().Err(err).Str("kind", string(camErr.Kind)).Msg("camera acquisition failed")
		return camErr
	}

	strategy, err := a.pickStrategy()
	if err != nil {
		stream.Stop()
		return err
	}

	// The loop outlives the caller's request context; it ends on Stop.
	runCtx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.stream = stream
	a.cancel = cancel
	a.mu.Unlock()

	emit := func(detection domain.Detection) {
		if runCtx.Err() != nil {
			return
		}
		a.log.Debug().Str("barcode", detection.RawValue).Str("format", detection.Format).Msg("barcode detected")
		onDetect(detection)
	}
	report := func(err error) {
		if runCtx.Err() != nil {
			return
		}
		onError(err)
	}

	go strategy.run(runCtx, stream, emit, report)

	a.log.Debug().Str("device", stream.Device().ID).Msg("detection started")
	return nil
}

func (a *DetectorAdapter) pickStrategy() (detectionStrategy, error) {
	if a.frameDetector != nil {
		return &frameStrategy{detector: a.frameDetector, interval: a.cfg.FrameInterval}, nil
	}
	if a.decoder != nil {
		return &decodeStrategy{decoder: a.decoder, interval: a.cfg.DecodeInterval}, nil
	}
	return nil, ErrNoDetectionCapability
}

// Stop halts the detection loop and releases all stream tracks. Safe to call
// when nothing is running, safe to call repeatedly, and safe to call from
// inside a detection callback: cancellation is signalled, never awaited, and
// the context guard on emit/report keeps a winding-down loop silent.
func (a *DetectorAdapter) Stop() {
	a.mu.Lock()
	stream := a.stream
	cancel := a.cancel
	a.stream = nil
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		stream.Stop()
	}
}

// Running reports whether a detection loop currently owns a stream.
func (a *DetectorAdapter) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream != nil
}
