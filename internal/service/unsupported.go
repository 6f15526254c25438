package service

import (
	"context"
	"fmt"
)

// unsupported is returned for hosts with no recognized service manager.
// Every operation fails with ErrUnsupportedPlatform so callers can report
// the condition instead of silently doing nothing.
type unsupported struct {
	typ string
}

func (u unsupported) err() error {
	if u.typ == "" {
		return fmt.Errorf("%w: no service manager configured", ErrUnsupportedPlatform)
	}
	return fmt.Errorf("%w: service type %q", ErrUnsupportedPlatform, u.typ)
}

func (u unsupported) Install(context.Context) error { return u.err() }
func (u unsupported) Start(context.Context) error   { return u.err() }
func (u unsupported) Stop(context.Context) error    { return u.err() }
func (u unsupported) Restart(context.Context) error { return u.err() }
func (u unsupported) Status(context.Context) (Status, error) {
	return StatusUnknown, u.err()
}
func (u unsupported) Logs(context.Context, int, bool) error { return u.err() }
