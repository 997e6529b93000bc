// Package memory implementa el change feed dentro del proceso.
package memory

import (
	"context"
	"strings"
	"sync"

	"petora-connect/internal/platform/metrics"
	"petora-connect/internal/ports/changefeed"
)

// DefaultBuffer es la capacidad por suscriptor; si se llena, el evento se descarta.
const DefaultBuffer = 64

type Feed struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Feed{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

func (f *Feed) Publish(_ context.Context, ev changefeed.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for s := range f.subs[ev.Topic] {
		select {
		case s.ch <- ev:
		default:
			metrics.FeedDrops.WithLabelValues("memory").Inc()
		}
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, topic string) (changefeed.Subscription, error) {
	topic = strings.TrimSpace(topic)
	s := &subscription{
		feed:  f,
		topic: topic,
		ch:    make(chan changefeed.Event, f.buffer),
		done:  make(chan struct{}),
	}

	f.mu.Lock()
	if f.subs[topic] == nil {
		f.subs[topic] = make(map[*subscription]struct{})
	}
	f.subs[topic][s] = struct{}{}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (f *Feed) remove(s *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if set := f.subs[s.topic]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(f.subs, s.topic)
		}
	}
	// Con el lock tomado nadie está publicando en s.ch.
	close(s.ch)
}

type subscription struct {
	feed  *Feed
	topic string
	ch    chan changefeed.Event
	done  chan struct{}
	once  sync.Once
}

func (s *subscription) Events() <-chan changefeed.Event { return s.ch }

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.feed.remove(s)
	})
	return nil
}
