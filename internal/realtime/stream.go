// Package realtime expone topics del change feed como streams WebSocket.
package realtime

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/httpx"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/platform/metrics"
	"petora-connect/internal/ports/changefeed"

	"github.com/gorilla/websocket"
)

const (
	// Tiempo para escribir un mensaje al peer.
	writeWait = 10 * time.Second

	// Tiempo para recibir el próximo pong.
	pongWait = 60 * time.Second

	// Debe ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10

	// El cliente no manda datos; solo control frames.
	maxMessageSize = 512
)

type Streamer struct {
	sub      changefeed.Subscriber
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewStreamer: allowedOrigins vacío o con "*" acepta cualquier origen.
func NewStreamer(sub changefeed.Subscriber, log logger.Logger, allowedOrigins []string) *Streamer {
	if log == nil {
		log = logger.Nop()
	}
	return &Streamer{
		sub: sub,
		log: log.With(map[string]any{"module": "realtime"}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Serve suscribe a topic y reenvía cada evento como JSON hasta que el cliente cierra.
// La autorización del topic la resuelve el handler que llama.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, topic string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := s.sub.Subscribe(ctx, topic)
	if err != nil {
		httpx.WriteError(w, r, s.log, apperr.Upstream("subscribe", err))
		return
	}
	defer func() { _ = sub.Close() }()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió con el error HTTP.
		s.log.Debug("websocket upgrade failed", map[string]any{"topic": topic, "err": err})
		return
	}
	defer func() { _ = conn.Close() }()

	gauge := metrics.StreamConnections.WithLabelValues(rootTopic(topic))
	gauge.Inc()
	defer gauge.Dec()

	go readPump(conn, cancel)
	s.writePump(ctx, conn, sub, topic)
}

// readPump descarta lo que mande el cliente y cancela al desconectarse.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Streamer) writePump(ctx context.Context, conn *websocket.Conn, sub changefeed.Subscription, topic string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case ev, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug("websocket write failed", map[string]any{"topic": topic, "err": err})
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Clientes no-browser no mandan Origin.
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func rootTopic(topic string) string {
	if i := strings.IndexByte(topic, '/'); i >= 0 {
		return topic[:i]
	}
	return topic
}
