// Package geo provides the user's position and turns coordinates into
// place names and back.
package geo

import (
	"context"
	"errors"
	"fmt"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/relay"
)

var (
	ErrPermissionDenied    = fmt.Errorf("%w: location access was denied", app_errors.ErrPermission)
	ErrPositionUnavailable = errors.New("geo: position unavailable")
	ErrTimeout             = errors.New("geo: timed out waiting for a position")
	ErrUnsupported         = errors.New("geo: geolocation is not supported")
)

// Locator reports the device's current position.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinates, error)
}

// ErrorFromCode maps a GeolocationPositionError code (1 permission denied,
// 2 position unavailable, 3 timeout) to an error. 0 means the browser has
// no geolocation support at all.
func ErrorFromCode(code int) error {
	switch code {
	case 0:
		return ErrUnsupported
	case 1:
		return ErrPermissionDenied
	case 2:
		return ErrPositionUnavailable
	case 3:
		return ErrTimeout
	default:
		return fmt.Errorf("%w: code %d", ErrPositionUnavailable, code)
	}
}

// RelayLocator is a Locator whose positions are posted by the view.
type RelayLocator struct {
	relay *relay.Relay[model.Coordinates]
	start func()
}

// NewRelayLocator returns a locator that calls start to ask the view for a
// position.
func NewRelayLocator(start func()) *RelayLocator {
	return &RelayLocator{relay: relay.New[model.Coordinates](), start: start}
}

func (l *RelayLocator) Locate(ctx context.Context) (model.Coordinates, error) {
	return l.relay.Await(ctx, l.start)
}

// Deliver completes the pending request with a position.
func (l *RelayLocator) Deliver(c model.Coordinates) error {
	return l.relay.Deliver(c)
}

// Fail completes the pending request with a browser error code.
func (l *RelayLocator) Fail(code int) error {
	return l.relay.Fail(ErrorFromCode(code))
}
