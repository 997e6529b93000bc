package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"petora-connect/internal/platform/httpclient"
	"petora-connect/internal/ports/changefeed"

	"github.com/gorilla/websocket"
)

// streamBuffer absorbe ráfagas mientras el consumidor aplica eventos.
const streamBuffer = 32

// Stream es una suscripción WebSocket a un topic. Implementa changefeed.Subscription.
type Stream struct {
	conn   *websocket.Conn
	events chan changefeed.Event
	done   chan struct{}
	once   sync.Once
}

// Subscribe abre el stream en path. Cancelar ctx equivale a Close.
func (c *Client) Subscribe(ctx context.Context, path string) (*Stream, error) {
	raw, err := c.http.ResolveURL(path)
	if err != nil {
		return nil, err
	}
	u := wsURL(raw)

	hdr := http.Header{}
	for k, v := range c.http.DefaultHeaders {
		hdr.Set(k, v)
	}

	conn, resp, err := c.dialer.DialContext(ctx, u, hdr)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("subscribe %s: %w", path, &httpclient.HTTPError{StatusCode: resp.StatusCode})
		}
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	s := &Stream{
		conn:   conn,
		events: make(chan changefeed.Event, streamBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (c *Client) StreamListings(ctx context.Context) (*Stream, error) {
	return c.Subscribe(ctx, "/pets/stream")
}

func (c *Client) StreamPosts(ctx context.Context) (*Stream, error) {
	return c.Subscribe(ctx, "/posts/stream")
}

func (c *Client) StreamPost(ctx context.Context, postID string) (*Stream, error) {
	return c.Subscribe(ctx, "/posts/"+postID+"/stream")
}

func (c *Client) StreamGroup(ctx context.Context, groupID string) (*Stream, error) {
	return c.Subscribe(ctx, "/groups/"+groupID+"/stream")
}

// Events se cierra cuando el stream termina (Close, ctx o desconexión del servidor).
func (s *Stream) Events() <-chan changefeed.Event {
	return s.events
}

func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

func (s *Stream) readLoop() {
	defer close(s.events)
	for {
		var ev changefeed.Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			return
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func wsURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
