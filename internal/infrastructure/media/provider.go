// Package media provides MediaProvider implementations for the detector
// adapter.
package media

import (
	"context"
	"errors"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
)

// NoDeviceProvider serves deployments without local video hardware, where
// detections arrive through the detection injection endpoint instead of a
// captured stream. Enumeration is empty and every open attempt reports a
// classified device-not-found camera error.
type NoDeviceProvider struct{}

func (NoDeviceProvider) Enumerate(ctx context.Context) ([]domain.CameraDevice, error) {
	return nil, nil
}

func (NoDeviceProvider) Open(ctx context.Context, constraints domain.StreamConstraints) (domain.MediaStream, error) {
	return nil, domain.NewCameraError(domain.CameraDeviceNotFound, errors.New("no video devices present"))
}
