package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productResolver is the slice of the lookup service the session needs.
type productResolver interface {
	Resolve(ctx context.Context, barcode string) (*domain.Product, error)
	RecordUsage(name string)
}

// listManager is the slice of the list service the session needs.
type listManager interface {
	AddItem(ctx context.Context, name, listID string, product *domain.Product) error
	FindByBarcode(ctx context.Context, barcode, listID string) (*domain.ShoppingListItem, error)
	IncrementItem(ctx context.Context, item domain.ShoppingListItem, listID string) error
}

// barcodeDetector is the slice of the detector adapter the session needs.
type barcodeDetector interface {
	ListCameras(ctx context.Context) ([]domain.CameraDevice, error)
	Start(ctx context.Context, deviceID string, onDetect func(domain.Detection), onError func(error)) error
	Stop()
}

// SessionCallbacks are injected per card instance instead of process-wide
// event listeners, so repeated open/close cycles cannot leak registrations.
type SessionCallbacks struct {
	OnPhase       func(domain.Phase)
	OnDetection   func(domain.Detection)
	OnBanner      func(*domain.Banner)
	OnItemAdded   func(name string)
	OnListRefresh func()
}

// ScanSessionConfig holds the session controller's policy knobs.
type ScanSessionConfig struct {
	ListID        string
	BrandRequired bool
	AutoAdd       bool
	CameraEnabled bool
	// PipelineTimeout bounds the detection-to-commit pipeline triggered from
	// the detector goroutine, which has no caller context.
	PipelineTimeout time.Duration
}

// SessionState is a snapshot of the transient per-dialog state.
type SessionState struct {
	SessionID      string                `json:"session_id"`
	Phase          domain.Phase          `json:"phase"`
	LastDetected   domain.Detection      `json:"last_detected"`
	Draft          domain.ReviewDraft    `json:"draft"`
	Cameras        []domain.CameraDevice `json:"cameras"`
	SelectedCamera string                `json:"selected_camera"`
	Banner         *domain.Banner        `json:"banner,omitempty"`
}

// ScanSession orchestrates detector, lookup, dedup and list service into one
// user-facing flow: Idle -> Scanning -> Detected -> Resolving -> Reviewing ->
// Committing -> Idle. Closing from any phase tears the camera down and clears
// every session field; a generation counter discards async results that
// arrive after teardown.
type ScanSession struct {
	detector  barcodeDetector
	lookup    productResolver
	list      listManager
	validate  *validator.Validate
	cfg       ScanSessionConfig
	callbacks SessionCallbacks
	log       zerolog.Logger

	mu         sync.Mutex
	generation uint64
	sessionID  string
	phase      domain.Phase
	detected   domain.Detection
	draft      domain.ReviewDraft
	resolved   *domain.Product
	cameras    []domain.CameraDevice
	camera     string
	banner     *domain.Banner
}

// NewScanSession creates the session controller. All collaborators are
// required at construction; there is no per-call nil guarding downstream.
func NewScanSession(
	detector barcodeDetector,
	lookup productResolver,
	list listManager,
	cfg ScanSessionConfig,
	callbacks SessionCallbacks,
	log zerolog.Logger,
) (*ScanSession, error) {
	if detector == nil || lookup == nil || list == nil {
		return nil, fmt.Errorf("%w: detector, lookup and list are required", domain.ErrInvalidRequest)
	}
	if cfg.ListID == "" {
		return nil, fmt.Errorf("%w: list entity id is required", domain.ErrInvalidRequest)
	}
	if cfg.PipelineTimeout == 0 {
		cfg.PipelineTimeout = 15 * time.Second
	}

	return &ScanSession{
		detector:  detector,
		lookup:    lookup,
		list:      list,
		validate:  validator.New(),
		cfg:       cfg,
		callbacks: callbacks,
		phase:     domain.PhaseIdle,
		log:       log.With().Str("component", "scan_session").Logger(),
	}, nil
}

// Open starts a fresh scanning session. Reopening always resets every session
// field; nothing leaks from a previous scan's draft.
func (s *ScanSession) Open(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.sessionID = uuid.NewString()
	s.phase = domain.PhaseScanning
	s.detected = domain.Detection{}
	s.draft = domain.ReviewDraft{}
	s.resolved = nil
	s.cameras = nil
	s.camera = ""
	s.banner = nil
	s.mu.Unlock()

	s.notifyPhase(domain.PhaseScanning)
	s.log.Info().Uint64("generation", gen).Msg("scan session opened")

	cameras, err := s.detector.ListCameras(ctx)
	if err != nil {
		// Non-fatal: scanning continues, the banner explains the empty
		// device list.
		s.log.Warn().Err(err).Msg("camera enumeration failed")
		s.setBanner(gen, domain.ErrorBanner("errors.camera_enumeration_failed", nil))
		cameras = nil
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.cameras = cameras
	if s.camera == "" && len(cameras) > 0 {
		s.camera = cameras[0].ID
	}
	device := s.camera
	s.mu.Unlock()

	if !s.cfg.CameraEnabled {
		// Detections still arrive through HandleDetection (native scanner).
		return nil
	}

	return s.startCapture(ctx, gen, device)
}

func (s *ScanSession) startCapture(ctx context.Context, gen uint64, device string) error {
	err := s.detector.Start(ctx, device,
		func(detection domain.Detection) { s.handleDetection(gen, detection) },
		func(err error) { s.handleDetectorError(gen, err) },
	)
	if err != nil {
		// Capture is halted but the dialog stays open for device
		// re-selection; the failure is scoped to this scan attempt.
		camErr := domain.AsCameraError(err)
		s.setBanner(gen, domain.ErrorBanner(camErr.Kind.TranslationKey(), nil))
		return camErr
	}
	return nil
}

// SelectCamera switches the active device, tearing down the current stream
// before acquiring the new one.
func (s *ScanSession) SelectCamera(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	if s.phase != domain.PhaseScanning {
		s.mu.Unlock()
		return fmt.Errorf("%w: can only switch camera while scanning", domain.ErrInvalidRequest)
	}
	gen := s.generation
	s.camera = deviceID
	s.banner = nil
	s.mu.Unlock()

	if !s.cfg.CameraEnabled {
		return nil
	}
	s.detector.Stop()
	return s.startCapture(ctx, gen, deviceID)
}

// HandleDetection feeds an externally sourced detection (the host app's
// native scanner) into the current session.
func (s *ScanSession) HandleDetection(detection domain.Detection) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	s.handleDetection(gen, detection)
}

// handleDetection runs the single detection-to-resolution pipeline. The
// detector is stopped synchronously first, so no second pipeline can start
// while this one is in flight.
func (s *ScanSession) handleDetection(gen uint64, detection domain.Detection) {
	s.mu.Lock()
	if gen != s.generation || s.phase != domain.PhaseScanning {
		s.mu.Unlock()
		return
	}
	if detection.RawValue == s.detected.RawValue && detection.RawValue != "" {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseDetected
	s.detected = detection
	s.mu.Unlock()

	s.detector.Stop()
	s.notifyPhase(domain.PhaseDetected)
	if s.callbacks.OnDetection != nil {
		s.callbacks.OnDetection(detection)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PipelineTimeout)
	defer cancel()

	existing, err := s.list.FindByBarcode(ctx, detection.RawValue, s.cfg.ListID)
	if err != nil {
		// Degrade to the lookup path; worst case the user reviews a
		// duplicate row instead of an increment.
		s.log.Warn().Err(err).Msg("existing-item probe failed")
		existing = nil
	}

	if existing != nil {
		s.commitIncrement(ctx, gen, *existing)
		return
	}

	s.transition(gen, domain.PhaseResolving)

	product, err := s.lookup.Resolve(ctx, detection.RawValue)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		s.log.Warn().Err(err).Msg("lookup failed")
		product = nil
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.resolved = product
	s.draft = domain.DraftFromProduct(product, detection.RawValue)
	s.mu.Unlock()

	if s.cfg.AutoAdd && product != nil {
		s.commitDraft(ctx, gen)
		return
	}

	s.transition(gen, domain.PhaseReviewing)
}

// commitIncrement handles a barcode that already exists on the list: one
// increment call, no second row, then the session closes.
func (s *ScanSession) commitIncrement(ctx context.Context, gen uint64, item domain.ShoppingListItem) {
	if !s.transition(gen, domain.PhaseCommitting) {
		return
	}

	if err := s.list.IncrementItem(ctx, item, s.cfg.ListID); err != nil {
		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		// Keep the session recoverable: surface the failure and drop into
		// review with the existing item's fields so the user can retry.
		s.phase = domain.PhaseReviewing
		s.draft = domain.ReviewDraft{Name: item.Name, Brand: item.Brand, Barcode: item.Barcode}
		s.banner = incrementFailureBanner(err)
		s.mu.Unlock()
		s.notifyPhase(domain.PhaseReviewing)
		return
	}

	s.lookup.RecordUsage(item.Name)
	s.finishCommit(gen, item.Name)
}

// handleDetectorError surfaces detector/camera trouble as a non-fatal banner
// without advancing or terminating the session.
func (s *ScanSession) handleDetectorError(gen uint64, err error) {
	s.log.Warn().Err(err).Msg("detector error")
	s.setBanner(gen, domain.ErrorBanner("errors.detection_failed", map[string]string{
		"reason": err.Error(),
	}))
}

// UpdateDraft edits the review draft. Editing clears the current banner.
func (s *ScanSession) UpdateDraft(name, brand string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseReviewing {
		return fmt.Errorf("%w: no draft under review", domain.ErrInvalidRequest)
	}
	s.draft.Name = name
	s.draft.Brand = brand
	s.banner = nil
	return nil
}

// Confirm validates the draft and commits it to the list. Validation and
// commit failures keep the session in Reviewing so the user can edit and
// resubmit; success closes to Idle.
func (s *ScanSession) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != domain.PhaseReviewing {
		s.mu.Unlock()
		return fmt.Errorf("%w: nothing to confirm", domain.ErrInvalidRequest)
	}
	gen := s.generation
	s.mu.Unlock()

	return s.commitDraft(ctx, gen)
}

func (s *ScanSession) commitDraft(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	draft := s.draft
	resolved := s.resolved
	s.mu.Unlock()

	if err := s.validateDraft(draft); err != nil {
		// Rejected locally: no service call is issued and the session
		// stays in Reviewing.
		s.mu.Lock()
		if gen == s.generation {
			s.phase = domain.PhaseReviewing
			s.banner = domain.ErrorBanner("errors.required_fields", nil)
		}
		s.mu.Unlock()
		return err
	}

	if !s.transition(gen, domain.PhaseCommitting) {
		return domain.ErrSessionClosed
	}

	source := domain.SourceManual
	if resolved != nil {
		source = resolved.Source
	}
	product := &domain.Product{
		Barcode: draft.Barcode,
		Name:    draft.Name,
		Brand:   draft.Brand,
		Source:  source,
	}

	if err := s.list.AddItem(ctx, draft.Name, s.cfg.ListID, product); err != nil {
		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return domain.ErrSessionClosed
		}
		s.phase = domain.PhaseReviewing
		s.banner = addFailureBanner(err)
		s.mu.Unlock()
		s.notifyPhase(domain.PhaseReviewing)
		return err
	}

	s.lookup.RecordUsage(draft.Name)
	s.finishCommit(gen, draft.Name)
	return nil
}

func (s *ScanSession) validateDraft(draft domain.ReviewDraft) error {
	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if s.cfg.BrandRequired && draft.Brand == "" {
		return fmt.Errorf("%w: brand is required", domain.ErrValidation)
	}
	return nil
}

// finishCommit closes the session after a successful list write and tells the
// shell to refresh its table.
func (s *ScanSession) finishCommit(gen uint64, name string) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.closeLocked()
	s.banner = domain.SuccessBanner("success.added_item", map[string]string{"name": name})
	s.mu.Unlock()

	s.detector.Stop()
	s.notifyPhase(domain.PhaseIdle)
	if s.callbacks.OnItemAdded != nil {
		s.callbacks.OnItemAdded(name)
	}
	if s.callbacks.OnListRefresh != nil {
		s.callbacks.OnListRefresh()
	}
}

// Close tears the session down from any phase: camera stream released,
// detection loop stopped, session fields cleared. In-flight network calls
// resolve harmlessly; the generation bump makes their continuations no-ops.
func (s *ScanSession) Close() {
	s.mu.Lock()
	wasActive := s.phase.Active()
	s.closeLocked()
	s.banner = nil
	s.mu.Unlock()

	s.detector.Stop()
	if wasActive {
		s.notifyPhase(domain.PhaseIdle)
		s.log.Info().Msg("scan session closed")
	}
}

// closeLocked resets session fields; callers hold the mutex.
func (s *ScanSession) closeLocked() {
	s.generation++
	s.phase = domain.PhaseIdle
	s.sessionID = ""
	s.detected = domain.Detection{}
	s.draft = domain.ReviewDraft{}
	s.resolved = nil
	s.cameras = nil
	s.camera = ""
}

// State returns a snapshot of the session for the presentation shell.
func (s *ScanSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	cameras := make([]domain.CameraDevice, len(s.cameras))
	copy(cameras, s.cameras)

	return SessionState{
		SessionID:      s.sessionID,
		Phase:          s.phase,
		LastDetected:   s.detected,
		Draft:          s.draft,
		Cameras:        cameras,
		SelectedCamera: s.camera,
		Banner:         s.banner,
	}
}

// transition moves to the target phase if the session generation still
// matches; it reports whether the move happened.
func (s *ScanSession) transition(gen uint64, phase domain.Phase) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	s.phase = phase
	s.mu.Unlock()

	s.notifyPhase(phase)
	return true
}

func (s *ScanSession) setBanner(gen uint64, banner *domain.Banner) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.banner = banner
	s.mu.Unlock()

	if s.callbacks.OnBanner != nil {
		s.callbacks.OnBanner(banner)
	}
}

func (s *ScanSession) notifyPhase(phase domain.Phase) {
	if s.callbacks.OnPhase != nil {
		s.callbacks.OnPhase(phase)
	}
}

func addFailureBanner(err error) *domain.Banner {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return domain.ErrorBanner("errors.no_todo_service", nil)
	}
	return domain.ErrorBanner("errors.add_failed", nil)
}

func incrementFailureBanner(err error) *domain.Banner {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return domain.ErrorBanner("errors.no_todo_service", nil)
	}
	return domain.ErrorBanner("errors.item_update_failed", nil)
}
