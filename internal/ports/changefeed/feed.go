package changefeed

import (
	"context"
	"encoding/json"
	"time"
)

// Topics fijos; los hijos usan Child (p.ej. "groups/<id>").
const (
	TopicListings = "listings"
	TopicGroups   = "groups"
	TopicPosts    = "posts"
)

// Tipos de cambio.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// Event es una notificación de cambio. Payload es el documento serializado (vacío en deletes).
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// Child arma el topic de un documento hijo.
func Child(topic, id string) string {
	return topic + "/" + id
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscription entrega eventos hasta Close o hasta que se cancela el ctx del Subscribe.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Feed interface {
	Publisher
	Subscriber
}

// NewEvent serializa doc como payload. Si doc no se puede serializar, se manda sin payload.
func NewEvent(topic, typ, id string, doc any, at time.Time) Event {
	ev := Event{Topic: topic, Type: typ, ID: id, At: at.UTC()}
	if doc != nil {
		if b, err := json.Marshal(doc); err == nil {
			ev.Payload = b
		}
	}
	return ev
}
