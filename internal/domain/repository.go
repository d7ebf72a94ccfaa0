package domain

import (
	"context"
	"time"
)

// ProductCache defines the interface for barcode-keyed product caching
type ProductCache interface {
	Get(ctx context.Context, barcode string) (*Product, error)
	Set(ctx context.Context, barcode string, product *Product, ttl time.Duration) error
	Delete(ctx context.Context, barcode string) error
}

// ProductDatabase defines the interface for the remote product database.
// Lookup returns ErrProductNotFound for a miss and ErrLookupFailure for
// transport-level failures.
type ProductDatabase interface {
	Lookup(ctx context.Context, barcode string) (*Product, error)
}

// UsageStore persists the advisory "most added items" ranking used for
// quick-add suggestions.
type UsageStore interface {
	Increment(name string) error
	Top(limit int) ([]string, error)
	Close() error
}

// ListEntry is the wire shape of a single todo item as the host exposes it in
// entity state attributes.
type ListEntry struct {
	UID         string `json:"uid"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// EntityState is the host state snapshot for a list entity.
type EntityState struct {
	EntityID string      `json:"entity_id"`
	Items    []ListEntry `json:"items"`
}

// ServiceRegistry maps service domain -> action -> available. The host's
// registry can change between calls, so every operation re-reads it.
type ServiceRegistry map[string]map[string]bool

// Has reports whether the registry exposes the given service action.
func (r ServiceRegistry) Has(domain, action string) bool {
	actions, ok := r[domain]
	return ok && actions[action]
}

// HostBus defines the interface for the host platform's state and service
// call bus.
type HostBus interface {
	CallService(ctx context.Context, domain, action string, payload map[string]any) error
	GetState(ctx context.Context, entityID string) (*EntityState, error)
	Services(ctx context.Context) (ServiceRegistry, error)
}

// StreamConstraints select a camera for stream acquisition. An empty DeviceID
// falls back to the FacingMode hint.
type StreamConstraints struct {
	DeviceID   string
	FacingMode string
}

// Frame is a single captured video frame handed to the single-frame detector.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// MediaStream is a live camera stream. Stop halts all tracks and must be
// idempotent.
type MediaStream interface {
	Frame(ctx context.Context) (*Frame, error)
	Stop()
	Active() bool
	Device() CameraDevice
}

// MediaProvider abstracts camera acquisition and device enumeration. Open
// failures are classified CameraErrors.
type MediaProvider interface {
	Enumerate(ctx context.Context) ([]CameraDevice, error)
	Open(ctx context.Context, constraints StreamConstraints) (MediaStream, error)
}

// FrameDetector is the native single-frame detection capability.
type FrameDetector interface {
	Detect(ctx context.Context, frame *Frame) ([]Detection, error)
}

// ContinuousDecoder is the fallback decode capability: one decode attempt
// against the live stream, ErrNoBarcode when nothing was found.
type ContinuousDecoder interface {
	DecodeOnce(ctx context.Context, stream MediaStream) (Detection, error)
}

// Translator resolves user-facing message keys with variable interpolation.
type Translator interface {
	Translate(key string, vars map[string]string) string
}
