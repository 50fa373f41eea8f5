package cachetest

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/greeddj/go-zzfeed/internal/feed/model"
)

// MessageKind names a call received by StoreSpy.
type MessageKind string

const (
	// MessageRetrieve is a Retrieve call.
	MessageRetrieve MessageKind = "retrieve"
	// MessageInsert is an Insert call.
	MessageInsert MessageKind = "insert"
	// MessageDelete is a DeleteCachedFeed call.
	MessageDelete MessageKind = "delete"
	// MessageRetrieveData is a RetrieveImageData call.
	MessageRetrieveData MessageKind = "retrieve_data"
	// MessageInsertData is an InsertImageData call.
	MessageInsertData MessageKind = "insert_data"
)

// Message is one recorded call with its arguments.
type Message struct {
	Kind      MessageKind
	Feed      []model.LocalFeedImage
	Timestamp time.Time
	URL       string
	Data      []byte
}

// StoreSpy records every call and answers with stubbed results.
type StoreSpy struct {
	mu       sync.Mutex
	messages []Message

	RetrieveResult  *model.CachedFeed
	RetrieveErr     error
	InsertErr       error
	DeleteErr       error
	ImageData       []byte
	RetrieveDataErr error
	InsertDataErr   error
	// OnRetrieveData runs inside RetrieveImageData before it returns.
	OnRetrieveData func()
}

// Messages returns the calls received so far, in order.
func (s *StoreSpy) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Kinds returns the kinds of the calls received so far, in order.
func (s *StoreSpy) Kinds() []MessageKind {
	messages := s.Messages()
	kinds := make([]MessageKind, 0, len(messages))
	for _, m := range messages {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

func (s *StoreSpy) record(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

// Retrieve implements cache.FeedStore.
func (s *StoreSpy) Retrieve(_ context.Context) (*model.CachedFeed, error) {
	s.record(Message{Kind: MessageRetrieve})
	return s.RetrieveResult, s.RetrieveErr
}

// Insert implements cache.FeedStore.
func (s *StoreSpy) Insert(_ context.Context, feed []model.LocalFeedImage, timestamp time.Time) error {
	s.record(Message{Kind: MessageInsert, Feed: feed, Timestamp: timestamp})
	return s.InsertErr
}

// DeleteCachedFeed implements cache.FeedStore.
func (s *StoreSpy) DeleteCachedFeed(_ context.Context) error {
	s.record(Message{Kind: MessageDelete})
	return s.DeleteErr
}

// RetrieveImageData implements cache.ImageDataStore.
func (s *StoreSpy) RetrieveImageData(_ context.Context, u *url.URL) ([]byte, error) {
	s.record(Message{Kind: MessageRetrieveData, URL: u.String()})
	if s.OnRetrieveData != nil {
		s.OnRetrieveData()
	}
	return s.ImageData, s.RetrieveDataErr
}

// InsertImageData implements cache.ImageDataStore.
func (s *StoreSpy) InsertImageData(_ context.Context, data []byte, u *url.URL) error {
	s.record(Message{Kind: MessageInsertData, URL: u.String(), Data: data})
	return s.InsertDataErr
}
