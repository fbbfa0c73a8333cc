// Package remote talks to the hotel booking and auth HTTP services. Every call runs inside a
// circuit breaker and a client span.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/roombook/internal/logger"
)

const (
	tracerName      = "github.com/avstrong/roombook/internal/remote"
	maxErrorBodyLen = 4096
)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

type client struct {
	l       *logger.Logger
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
}

func newClient(l *logger.Logger, name string, conf Config) *client {
	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.Timeout} //nolint:exhaustruct
	}

	maxFailures := conf.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	//nolint:exhaustruct
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: conf.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError

			switch {
			case err == nil, errors.Is(err, context.Canceled):
				// A caller giving up says nothing about the service.
				return true
			case errors.As(err, &statusErr):
				return statusErr.Code < http.StatusInternalServerError
			}

			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.LogWarnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	return &client{
		l:       l,
		baseURL: conf.BaseURL,
		http:    httpClient,
		breaker: breaker,
		tracer:  otel.Tracer(tracerName),
	}
}

// do sends in as JSON and decodes the response into out. A *[]byte out receives the raw body.
func (c *client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, span, method, path, header, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s %s: %w", method, path, ErrUnavailable)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	span.SetStatus(codes.Ok, "")

	return nil
}

func (c *client) roundTrip(
	ctx context.Context,
	span trace.Span,
	method, path string,
	header http.Header,
	in, out any,
) error {
	var body io.Reader

	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	switch dst := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
	case *[]byte:
		if *dst, err = io.ReadAll(resp.Body); err != nil {
			return fmt.Errorf("read %s %s response: %w", method, path, err)
		}
	default:
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}

	return nil
}
