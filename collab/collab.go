// Package collab holds the calling convention shared by every external model
// collaborator: a per-call deadline and one error type for "could not be used".
package collab

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable matches every *UnavailableError.
var ErrUnavailable = errors.New("collaborator unavailable")

// UnavailableError reports that a collaborator could not serve a call, because
// it failed, timed out, returned an empty or malformed result, or is not
// configured.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Service, ErrUnavailable)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func Unavailable(service string, err error) error {
	return &UnavailableError{Service: service, Err: err}
}

// Call runs fn under a deadline of timeout (none when timeout <= 0). The
// deadline is enforced even if fn ignores its context. Any failure is returned
// as *UnavailableError.
func Call[T any](ctx context.Context, service string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return zero, Unavailable(service, ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, ErrUnavailable) {
				return zero, r.err
			}
			return zero, Unavailable(service, r.err)
		}
		return r.v, nil
	}
}
