package location

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned when the process is not allowed to access the location source.
var ErrPermissionDenied = errors.New("location permission denied")

// ErrNoFix is returned when the source answered but had no usable position.
var ErrNoFix = errors.New("no valid location fix")

// Provider interface defines the methods for location providers
type Provider interface {
	GetLocation(ctx context.Context) (Location, error)
	Close() error
}
