// Package clients holds the HTTP adapters for the model collaborators. Each
// service exposes one JSON endpoint; responses are validated here before any
// pipeline stage sees them.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/maastricht-university/clinote/cache"
)

type HTTP struct {
	c       *http.Client
	retries int
	backoff time.Duration
	store   cache.Store
	ttl     time.Duration
}

type Option func(*HTTP)

// WithRetry retries transient failures up to retries extra times with
// exponential backoff starting at backoff.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(h *HTTP) {
		h.retries = retries
		h.backoff = backoff
	}
}

func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(h *HTTP) {
		h.store = store
		h.ttl = ttl
	}
}

func NewHTTP(opts ...Option) *HTTP {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	h := &HTTP{c: &http.Client{Timeout: 60 * time.Second, Transport: transport}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// StatusError is a non-200 reply.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Service, e.Code, e.Body)
}

func retriable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func (h *HTTP) retry(ctx context.Context, fn func() error) error {
	delay := h.backoff
	var err error
	for i := 0; i <= h.retries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn()
		if err == nil || !retriable(err) || i == h.retries {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}
	return err
}

func (h *HTTP) postJSON(ctx context.Context, service, url string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s encode: %w", service, err)
	}
	return h.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &StatusError{Service: service, Code: resp.StatusCode, Body: string(body)}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s decode: %w", service, err)
		}
		return nil
	})
}

// cached wraps fn with the response cache when one is configured.
func cached[T any](ctx context.Context, h *HTTP, service string, key []string, fn func(context.Context) (T, error)) (T, error) {
	if h.store == nil {
		return fn(ctx)
	}
	return cache.Memoize(ctx, h.store, cache.Key(service, key...), h.ttl, fn)
}
