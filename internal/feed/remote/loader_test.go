package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func respond(status int, body string) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Status:     http.StatusText(status),
				Header:     make(http.Header),
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
				Request:    req,
			}, nil
		}),
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestFeedLoaderDeliversItems(t *testing.T) {
	t.Parallel()

	id1, id2 := uuid.New(), uuid.New()
	body := `{"items":[
		{"id":"` + id1.String() + `","description":"a description","location":"a location","image":"https://a-url.com/1"},
		{"id":"` + id2.String() + `","image":"https://a-url.com/2"}
	]}`

	var requested string
	client := respond(http.StatusOK, body)
	inner := client.Transport
	client.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requested = req.URL.String()
		return inner.RoundTrip(req)
	})

	feed, err := NewFeedLoader(client, mustURL(t, "https://example.com/feed"), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if requested != "https://example.com/feed" {
		t.Fatalf("unexpected request url %q", requested)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 items, got %d", len(feed))
	}
	if feed[0].ID != id1 || feed[0].Description != "a description" || feed[0].Location != "a location" || feed[0].URL.String() != "https://a-url.com/1" {
		t.Fatalf("unexpected first item: %+v", feed[0])
	}
	if feed[1].ID != id2 || feed[1].Description != "" || feed[1].Location != "" {
		t.Fatalf("unexpected second item: %+v", feed[1])
	}
}

func TestFeedLoaderEmptyItems(t *testing.T) {
	t.Parallel()

	feed, err := NewFeedLoader(respond(http.StatusOK, `{"items":[]}`), mustURL(t, "https://example.com/feed"), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Fatalf("expected empty non-nil feed, got %#v", feed)
	}
}

func TestFeedLoaderInvalidData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200 status", status: http.StatusBadRequest, body: `{"items":[]}`},
		{name: "201 status", status: http.StatusCreated, body: `{"items":[]}`},
		{name: "invalid json", status: http.StatusOK, body: "invalid json"},
		{name: "missing items", status: http.StatusOK, body: `{}`},
		{name: "invalid id", status: http.StatusOK, body: `{"items":[{"id":"nope","image":"https://a-url.com"}]}`},
		{name: "missing id", status: http.StatusOK, body: `{"items":[{"image":"https://a-url.com"}]}`},
		{name: "relative image", status: http.StatusOK, body: `{"items":[{"id":"` + uuid.NewString() + `","image":"/relative"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFeedLoader(respond(tt.status, tt.body), mustURL(t, "https://example.com/feed"), nil).Load(context.Background())
			if !errors.Is(err, ErrInvalidData) {
				t.Fatalf("expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestFeedLoaderStatusErrorIsExposed(t *testing.T) {
	t.Parallel()

	_, err := NewFeedLoader(respond(http.StatusServiceUnavailable, ""), mustURL(t, "https://example.com/feed"), nil).Load(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable || statusErr.URL != "https://example.com/feed" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestLoaderConnectivity(t *testing.T) {
	t.Parallel()

	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("offline")
		}),
	}
	_, err := NewFeedLoader(client, mustURL(t, "https://example.com/feed"), nil).Load(context.Background())
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
	_, err = NewImageDataLoader(client, nil).LoadImageData(context.Background(), mustURL(t, "https://a-url.com/img"))
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
}

func TestImageDataLoader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "data", status: http.StatusOK, body: "image-bytes"},
		{name: "empty body", status: http.StatusOK, body: "", wantErr: ErrInvalidData},
		{name: "not found", status: http.StatusNotFound, body: "missing", wantErr: ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := NewImageDataLoader(respond(tt.status, tt.body), nil).LoadImageData(context.Background(), mustURL(t, "https://a-url.com/img"))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadImageData error: %v", err)
			}
			if string(data) != tt.body {
				t.Fatalf("unexpected data %q", data)
			}
		})
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, req.Context().Err()
		}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewImageDataLoader(client, nil).LoadImageData(ctx, mustURL(t, "https://a-url.com/img"))
	if !errors.Is(err, ErrConnectivity) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected connectivity wrapping cancellation, got %v", err)
	}
}
