package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/metrics"
)

var (
	// ErrConnectivity indicates the request never produced a response.
	ErrConnectivity = errors.New("connectivity error")
	// ErrInvalidData indicates the response could not be mapped.
	ErrInvalidData = errors.New("invalid data")
)

// Mapper turns a response body into a value.
type Mapper[T any] func(data []byte, resp *http.Response) (T, error)

// Loader fetches one URL and maps the response.
type Loader[T any] struct {
	client *http.Client
	url    *url.URL
	mapper Mapper[T]
	kind   string
	log    *zap.Logger
}

// NewLoader creates a Loader. kind labels logs and metrics.
func NewLoader[T any](client *http.Client, u *url.URL, kind string, mapper Mapper[T], log *zap.Logger) *Loader[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader[T]{client: client, url: u, mapper: mapper, kind: kind, log: log}
}

// Load performs the GET and maps the result.
func (l *Loader[T]) Load(ctx context.Context) (T, error) {
	return get(ctx, l.client, l.url, l.kind, l.mapper, l.log)
}

func get[T any](ctx context.Context, client *http.Client, u *url.URL, kind string, mapper Mapper[T], log *zap.Logger) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(kind, "connectivity").Inc()
		log.Debug("remote request failed", zap.String("url", u.String()), zap.Error(err))
		return zero, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(kind, "connectivity").Inc()
		return zero, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	value, err := mapper(data, resp)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(kind, "invalid").Inc()
		log.Debug("remote response rejected", zap.String("url", u.String()), zap.Int("status", resp.StatusCode), zap.Error(err))
		return zero, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	metrics.RemoteRequests.WithLabelValues(kind, "success").Inc()
	return value, nil
}

// HTTPStatusError describes a non-200 HTTP response.
type HTTPStatusError struct {
	URL    string
	Status string
	Code   int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("unexpected status: %s (%s)", e.Status, e.URL)
	}
	return "unexpected status: " + e.Status
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	err := &HTTPStatusError{Status: resp.Status, Code: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		err.URL = resp.Request.URL.String()
	}
	return err
}
