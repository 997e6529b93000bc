// Package redis publica el change feed en canales Redis pub/sub, para varias réplicas.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/platform/metrics"
	"petora-connect/internal/ports/changefeed"

	goredis "github.com/redis/go-redis/v9"
)

const channelPrefix = "petora:feed:"

// Channel devuelve el canal Redis de un topic.
func Channel(topic string) string {
	return channelPrefix + topic
}

type Feed struct {
	rdb    *goredis.Client
	log    logger.Logger
	buffer int
}

// NewClient parsea REDIS_URL (redis://... o host:port) y hace ping.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	url = strings.TrimSpace(url)
	var opts *goredis.Options
	if strings.Contains(url, "://") {
		o, err := goredis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = o
	} else {
		opts = &goredis.Options{Addr: url}
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewFeed(rdb *goredis.Client, log logger.Logger) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{rdb: rdb, log: log, buffer: 64}
}

func (f *Feed) Publish(ctx context.Context, ev changefeed.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := f.rdb.Publish(ctx, Channel(ev.Topic), b).Err(); err != nil {
		return apperr.Upstream("redis publish", err)
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, topic string) (changefeed.Subscription, error) {
	ps := f.rdb.Subscribe(ctx, Channel(topic))
	// Esperar la confirmación para no perder lo que se publique justo después.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, apperr.Upstream("redis subscribe", err)
	}

	s := &subscription{
		ps:   ps,
		out:  make(chan changefeed.Event, f.buffer),
		done: make(chan struct{}),
	}
	go s.pump(ctx, f.log)
	return s, nil
}

type subscription struct {
	ps   *goredis.PubSub
	out  chan changefeed.Event
	done chan struct{}
	once sync.Once
}

func (s *subscription) Events() <-chan changefeed.Event { return s.out }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *subscription) pump(ctx context.Context, log logger.Logger) {
	defer close(s.out)
	msgs := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev changefeed.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("discarding malformed feed message", map[string]any{"channel": msg.Channel, "err": err})
				continue
			}
			select {
			case s.out <- ev:
			default:
				metrics.FeedDrops.WithLabelValues("redis").Inc()
			}
		}
	}
}
