package engine

import "errors"

// ErrStopped is returned by Do once the engine no longer accepts work.
var ErrStopped = errors.New("engine stopped")

// IsStopped reports whether err is, or wraps, ErrStopped.
func IsStopped(err error) bool {
	return errors.Is(err, ErrStopped)
}
