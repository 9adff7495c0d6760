//go:build !linux

// Package mpris exposes a playback session as an MPRIS media player on
// D-Bus. On non-Linux platforms it is a no-op.
package mpris

import "github.com/llehouerou/cadence/internal/session"

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *session.Session) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
