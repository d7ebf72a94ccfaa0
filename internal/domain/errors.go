package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a barcode cannot be resolved to a product.
	// Lookup misses are expected and callers degrade to manual entry.
	ErrProductNotFound = errors.New("product not found")

	// ErrServiceUnavailable is returned when the host's todo integration is not enabled
	ErrServiceUnavailable = errors.New("todo service not available")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoBarcode is returned by a decode attempt that found no barcode in frame
	ErrNoBarcode = errors.New("no barcode found")

	// ErrLookupFailure is returned when the product database request fails
	ErrLookupFailure = errors.New("product database request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSessionClosed is returned when an operation targets a scan session
	// that has already been torn down
	ErrSessionClosed = errors.New("scan session closed")

	// ErrValidation is returned when a review draft fails required-field checks
	ErrValidation = errors.New("validation failed")

	// ErrItemNotFound is returned when a list item id does not exist on the list entity
	ErrItemNotFound = errors.New("list item not found")
)

// CameraErrorKind classifies camera acquisition failures. Each kind maps to a
// distinct user-facing message; none are fatal beyond the current scan attempt.
type CameraErrorKind string

const (
	CameraPermissionDenied       CameraErrorKind = "permission_denied"
	CameraDeviceNotFound         CameraErrorKind = "device_not_found"
	CameraDeviceBusy             CameraErrorKind = "device_busy"
	CameraConstraintsUnsupported CameraErrorKind = "constraints_unsupported"
	CameraUnknown                CameraErrorKind = "unknown"
)

// TranslationKey returns the i18n key for the kind's user-facing banner.
func (k CameraErrorKind) TranslationKey() string {
	return "errors.camera." + string(k)
}

// CameraError wraps a camera acquisition failure with its classification.
type CameraError struct {
	Kind CameraErrorKind
	Err  error
}

func (e *CameraError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("camera error: %s", e.Kind)
	}
	return fmt.Sprintf("camera error (%s): %v", e.Kind, e.Err)
}

func (e *CameraError) Unwrap() error { return e.Err }

// NewCameraError builds a classified camera error.
func NewCameraError(kind CameraErrorKind, err error) *CameraError {
	return &CameraError{Kind: kind, Err: err}
}

// AsCameraError extracts a CameraError from an error chain, classifying
// unrecognized errors as CameraUnknown.
func AsCameraError(err error) *CameraError {
	var camErr *CameraError
	if errors.As(err, &camErr) {
		return camErr
	}
	return &CameraError{Kind: CameraUnknown, Err: err}
}
